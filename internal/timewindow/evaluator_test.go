package timewindow

import (
	"testing"
	"time"
)

func TestClassifyTiers(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name      string
		expiresAt time.Time
		hours     int
		urgent    bool
		tier      Tier
	}{
		{"thirty minutes left", now.Add(30 * time.Minute), 0, true, TierHighRisk},
		{"ninety minutes left", now.Add(90 * time.Minute), 1, true, TierHighRisk},
		{"two hours left", now.Add(2 * time.Hour), 2, true, TierConsumeSoon},
		{"three hours left", now.Add(3 * time.Hour), 3, true, TierConsumeSoon},
		{"just over three hours", now.Add(3*time.Hour + time.Minute), 3, true, TierConsumeSoon},
		{"four hours left", now.Add(4 * time.Hour), 4, false, TierFresh},
		{"one day left", now.Add(24 * time.Hour), 24, false, TierFresh},
		{"expired half an hour ago", now.Add(-30 * time.Minute), -1, true, TierHighRisk},
		{"expired exactly two hours ago", now.Add(-2 * time.Hour), -2, true, TierHighRisk},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(now, tc.expiresAt)
			if got.HoursRemaining != tc.hours {
				t.Fatalf("HoursRemaining = %d, want %d", got.HoursRemaining, tc.hours)
			}
			if got.Urgent != tc.urgent {
				t.Fatalf("Urgent = %v, want %v", got.Urgent, tc.urgent)
			}
			if got.Tier != tc.tier {
				t.Fatalf("Tier = %q, want %q", got.Tier, tc.tier)
			}
		})
	}
}

func TestClassifyMonotonicInExpiry(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	prev := Classify(now, now.Add(-48*time.Hour)).HoursRemaining
	for step := -47; step <= 48; step++ {
		c := Classify(now, now.Add(time.Duration(step)*time.Hour+17*time.Minute))
		if c.HoursRemaining < prev {
			t.Fatalf("HoursRemaining decreased from %d to %d at step %d", prev, c.HoursRemaining, step)
		}
		if c.HoursRemaining > UrgentThresholdHours && c.Urgent {
			t.Fatalf("urgent with %d hours remaining", c.HoursRemaining)
		}
		prev = c.HoursRemaining
	}
}

func TestClassifyPure(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	expires := now.Add(5 * time.Hour)

	first := Classify(now, expires)
	for i := 0; i < 10; i++ {
		if got := Classify(now, expires); got != first {
			t.Fatalf("Classify not stable: got %+v, want %+v", got, first)
		}
	}
}
