package domain

import "context"

// AvailableFilter narrows the available-for-pickup listing.
type AvailableFilter struct {
	LocationCode string
	Category     FoodCategory
}

// DonationRepository handles donation persistence. Every Mark/Assign method
// is an atomic conditional update: it mutates the record only when the
// status precondition still holds at write time and returns ErrNotFound
// when it does not (the caller re-reads to tell a missing record from a
// lost race).
type DonationRepository interface {
	Insert(ctx context.Context, d *Donation) error
	GetByID(ctx context.Context, id string) (*Donation, error)

	// DeleteAvailable removes the record only while it is still available
	// and owned by donorID.
	DeleteAvailable(ctx context.Context, id, donorID string) error

	// MarkAccepted transitions available -> accepted and records the
	// accepting organization.
	MarkAccepted(ctx context.Context, id, orgID string) (*Donation, error)

	// AssignVolunteer records the courier while the donation is accepted.
	AssignVolunteer(ctx context.Context, id, volunteerID string) (*Donation, error)

	// MarkExpired transitions available -> expired; a no-op returning
	// ErrNotFound when the record is no longer available.
	MarkExpired(ctx context.Context, id string) (*Donation, error)

	// Confirm applies the pickup confirmation: expired -> recycled,
	// otherwise -> completed, allowed only from the given statuses.
	Confirm(ctx context.Context, id string) (*Donation, error)

	// MarkRecycled transitions expired -> recycled and records the
	// recovery agent.
	MarkRecycled(ctx context.Context, id, agentID string) (*Donation, error)

	ListAvailable(ctx context.Context, f AvailableFilter) ([]Donation, error)
	ListForRecovery(ctx context.Context) ([]Donation, error)
	ListByDonor(ctx context.Context, donorID string) ([]Donation, error)
	ListByParticipant(ctx context.Context, actorID string) ([]Donation, error)
}
