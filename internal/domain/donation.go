package domain

import "time"

// DonationStatus enumerates the lifecycle states of a donation.
type DonationStatus string

const (
	StatusAvailable DonationStatus = "available"
	StatusAccepted  DonationStatus = "accepted"
	StatusPicked    DonationStatus = "picked"
	StatusCompleted DonationStatus = "completed"
	StatusExpired   DonationStatus = "expired"
	StatusRecycled  DonationStatus = "recycled"
)

// FoodCategory enumerates the supported food categories.
type FoodCategory string

const (
	CategoryVeg    FoodCategory = "veg"
	CategoryNonVeg FoodCategory = "non-veg"
)

// ValidCategory reports whether the value belongs to the closed category set.
func ValidCategory(c FoodCategory) bool {
	return c == CategoryVeg || c == CategoryNonVeg
}

// ValidZone reports whether the value is one of the delivery zones or empty.
func ValidZone(z string) bool {
	switch z {
	case "", "A", "B", "C", "D":
		return true
	}
	return false
}

// Donation represents a surplus-food item and its lifecycle record.
type Donation struct {
	ID           string
	DonorID      string
	Title        string
	Quantity     int
	Category     FoodCategory
	Labels       []string
	ImageKey     string
	MadeAt       time.Time
	ExpiresAt    time.Time
	LocationCode string
	Zone         string
	Status       DonationStatus
	AcceptedBy   *string
	VolunteerID  *string
	RecycledBy   *string
	// PossessionToken is issued once at creation and required to confirm
	// pickup. It must never appear in bulk listings for non-owning actors.
	PossessionToken string
	Freshness       string
	// IsUrgent is a creation-time snapshot; it is not recomputed on read.
	IsUrgent  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Terminal reports whether the donation can no longer transition.
func (d Donation) Terminal() bool {
	return d.Status == StatusCompleted || d.Status == StatusRecycled
}

// ExpiryDue reports whether the donation is eligible for lazy expiry
// reconciliation at the given instant.
func (d Donation) ExpiryDue(now time.Time) bool {
	return d.Status == StatusAvailable && now.After(d.ExpiresAt)
}
