package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Seeds the donations table with a handful of records in different
// lifecycle states so the API can be exercised against a fresh database.

const schema = `
create table if not exists donations (
    id               uuid primary key,
    donor_id         text not null,
    title            text not null,
    quantity         int  not null,
    category         text not null,
    labels           text[] not null default '{}',
    image_key        text not null default '',
    made_at          timestamptz not null,
    expires_at       timestamptz not null,
    location_code    text not null,
    zone             text not null default '',
    status           text not null default 'available',
    accepted_by      text,
    volunteer_id     text,
    recycled_by      text,
    possession_token text not null default '',
    freshness        text not null default '',
    is_urgent        boolean not null default false,
    created_at       timestamptz not null default now(),
    updated_at       timestamptz not null default now()
);
create index if not exists donations_status_location_idx on donations (status, location_code);
create index if not exists donations_donor_idx on donations (donor_id);
`

type seedDonation struct {
	title     string
	quantity  int
	category  string
	labels    []string
	madeAgo   time.Duration
	expiresIn time.Duration
	location  string
	zone      string
	status    string
	freshness string
	urgent    bool
}

func main() {
	var (
		donorFlag    string
		locationFlag string
		dropFlag     bool
	)
	flag.StringVar(&donorFlag, "donor", "demo-donor", "donor ID to attribute the seeded records to")
	flag.StringVar(&locationFlag, "pin", "560001", "location code for the seeded records")
	flag.BoolVar(&dropFlag, "drop", false, "drop the donations table before seeding")
	flag.Parse()

	donorID := strings.TrimSpace(donorFlag)
	location := strings.TrimSpace(locationFlag)
	if donorID == "" || location == "" {
		exitWithError(errors.New("-donor and -pin must be non-empty"))
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to open database: %w", err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}

	if dropFlag {
		if _, err := db.ExecContext(ctx, `drop table if exists donations`); err != nil {
			exitWithError(fmt.Errorf("failed to drop donations table: %w", err))
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		exitWithError(fmt.Errorf("failed to create schema: %w", err))
	}

	now := time.Now().UTC()
	seeds := []seedDonation{
		{
			title: "Veg biryani trays", quantity: 12, category: "veg",
			labels: []string{"Veg", "Freshly Cooked", "Safe to Donate"},
			madeAgo: 2 * time.Hour, expiresIn: 8 * time.Hour,
			location: location, zone: "A", status: "available", freshness: "Fresh",
		},
		{
			title: "Chicken curry portions", quantity: 20, category: "non-veg",
			labels: []string{"Non-Veg", "Freshly Cooked", "Safe to Donate"},
			madeAgo: time.Hour, expiresIn: 2 * time.Hour,
			location: location, zone: "B", status: "available", freshness: "Consume Soon", urgent: true,
		},
		{
			title: "Bread and pastries", quantity: 30, category: "veg",
			labels: []string{"Veg", "Bakery"},
			madeAgo: 6 * time.Hour, expiresIn: 45 * time.Minute,
			location: location, zone: "A", status: "available", freshness: "High Risk", urgent: true,
		},
		{
			title: "Rice and dal", quantity: 15, category: "veg",
			labels: []string{"Veg", "Freshly Cooked"},
			madeAgo: 10 * time.Hour, expiresIn: -2 * time.Hour,
			location: location, zone: "C", status: "expired", freshness: "High Risk", urgent: true,
		},
	}

	for _, s := range seeds {
		id := uuid.NewString()
		_, err := db.ExecContext(ctx, `
insert into donations(id, donor_id, title, quantity, category, labels, made_at, expires_at,
                      location_code, zone, status, possession_token, freshness, is_urgent)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			id, donorID, s.title, s.quantity, s.category, pq.Array(s.labels),
			now.Add(-s.madeAgo), now.Add(s.expiresIn), s.location, s.zone,
			s.status, randomToken(), s.freshness, s.urgent)
		if err != nil {
			exitWithError(fmt.Errorf("failed to seed %q: %w", s.title, err))
		}
		fmt.Printf("seeded %s %-26s status=%-9s expires_in=%s\n", id, s.title, s.status, s.expiresIn)
	}
	fmt.Printf("done: %d donations for donor %s at pin %s\n", len(seeds), donorID, location)
}

// randomToken produces a placeholder possession token. Seeded records are for
// browsing flows; pickup confirmation needs records created through the API.
func randomToken() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return uuid.NewString()
	}
	return hex.EncodeToString(buf)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
