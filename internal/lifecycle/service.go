// Package lifecycle implements the donation state machine. It is the only
// component that mutates donation status: every operation checks the actor
// role against the transition table, reconciles overdue expiry before any
// status guard runs, and applies the transition through the repository's
// atomic conditional updates.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"foodshare/internal/domain"
	"foodshare/internal/possession"
	"foodshare/internal/timewindow"
)

// Op names a guarded operation of the state machine.
type Op string

const (
	OpCreate          Op = "create"
	OpDelete          Op = "delete"
	OpAccept          Op = "accept"
	OpVolunteerAccept Op = "volunteer-accept"
	OpConfirmPickup   Op = "confirm-pickup"
	OpRecycleAccept   Op = "recycle-accept"
	OpListAvailable   Op = "list-available"
	OpListForRecovery Op = "list-expired"
)

// transitionRoles is the actor-role column of the transition table. Listing
// a role here only opens the gate; status preconditions still apply.
var transitionRoles = map[Op][]domain.Role{
	OpCreate:          {domain.RoleDonor},
	OpDelete:          {domain.RoleDonor},
	OpAccept:          {domain.RoleOrg},
	OpVolunteerAccept: {domain.RoleCourier},
	OpConfirmPickup:   {domain.RoleOrg, domain.RoleCourier, domain.RoleRecovery},
	OpRecycleAccept:   {domain.RoleRecovery},
	OpListAvailable:   {domain.RoleOrg, domain.RoleCourier},
	OpListForRecovery: {domain.RoleRecovery},
}

var confirmableStatuses = []domain.DonationStatus{
	domain.StatusAvailable,
	domain.StatusAccepted,
	domain.StatusPicked,
	domain.StatusExpired,
}

// Service coordinates donation lifecycle transitions.
type Service struct {
	repo   domain.DonationRepository
	issuer *possession.Issuer
	logger zerolog.Logger
	now    func() time.Time
}

// NewService creates the lifecycle service.
func NewService(repo domain.DonationRepository, issuer *possession.Issuer, logger zerolog.Logger) *Service {
	return &Service{repo: repo, issuer: issuer, logger: logger, now: time.Now}
}

// WithClock overrides the service clock. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateInput carries the donor-supplied fields for a new donation.
type CreateInput struct {
	Title        string
	Quantity     int
	Category     domain.FoodCategory
	Labels       []string
	ImageKey     string
	MadeAt       time.Time
	ExpiresAt    time.Time
	LocationCode string
	Zone         string
}

// Create registers a new donation: status available, possession token
// issued once, urgency and freshness snapshotted from the creation-time
// deadline.
func (s *Service) Create(ctx context.Context, actor domain.Actor, in CreateInput) (*domain.Donation, error) {
	if err := requireRole(OpCreate, actor.Role); err != nil {
		return nil, err
	}
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	// labels is a not-null array column; a nil slice would encode as NULL.
	labels := in.Labels
	if labels == nil {
		labels = []string{}
	}

	cls := timewindow.Classify(s.now(), in.ExpiresAt)
	d := &domain.Donation{
		ID:              uuid.NewString(),
		DonorID:         actor.ID,
		Title:           strings.TrimSpace(in.Title),
		Quantity:        in.Quantity,
		Category:        in.Category,
		Labels:          labels,
		ImageKey:        in.ImageKey,
		MadeAt:          in.MadeAt,
		ExpiresAt:       in.ExpiresAt,
		LocationCode:    strings.TrimSpace(in.LocationCode),
		Zone:            in.Zone,
		Status:          domain.StatusAvailable,
		PossessionToken: s.issuer.Issue(actor.ID),
		Freshness:       string(cls.Tier),
		IsUrgent:        cls.Urgent,
	}
	if err := s.repo.Insert(ctx, d); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("donation_id", d.ID).
		Str("donor_id", d.DonorID).
		Bool("urgent", d.IsUrgent).
		Msg("lifecycle: donation created")
	return d, nil
}

// Delete removes a donation that is still available. Only the original
// donor may delete it.
func (s *Service) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if err := requireRole(OpDelete, actor.Role); err != nil {
		return err
	}
	d, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if d.DonorID != actor.ID {
		return fmt.Errorf("%w: not the donor of this donation", domain.ErrForbidden)
	}
	if d.Status != domain.StatusAvailable {
		return &domain.StateError{Status: d.Status, Want: []domain.DonationStatus{domain.StatusAvailable}}
	}
	if err := s.repo.DeleteAvailable(ctx, id, actor.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return s.raceOutcome(ctx, id, domain.StatusAvailable)
		}
		return err
	}
	s.logger.Info().Str("donation_id", id).Msg("lifecycle: donation deleted")
	return nil
}

// Accept transitions an available donation to accepted on behalf of a
// receiving organization.
func (s *Service) Accept(ctx context.Context, actor domain.Actor, id string) (*domain.Donation, error) {
	if err := requireRole(OpAccept, actor.Role); err != nil {
		return nil, err
	}
	d, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Status != domain.StatusAvailable {
		return nil, &domain.StateError{Status: d.Status, Want: []domain.DonationStatus{domain.StatusAvailable}}
	}
	updated, err := s.repo.MarkAccepted(ctx, id, actor.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, s.raceOutcome(ctx, id, domain.StatusAvailable)
		}
		return nil, err
	}
	s.logger.Info().Str("donation_id", id).Str("org_id", actor.ID).Msg("lifecycle: donation accepted")
	return updated, nil
}

// VolunteerAccept records the courier on an accepted donation. The status
// itself does not change.
func (s *Service) VolunteerAccept(ctx context.Context, actor domain.Actor, id string) (*domain.Donation, error) {
	if err := requireRole(OpVolunteerAccept, actor.Role); err != nil {
		return nil, err
	}
	d, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Status != domain.StatusAccepted {
		return nil, &domain.StateError{Status: d.Status, Want: []domain.DonationStatus{domain.StatusAccepted}}
	}
	updated, err := s.repo.AssignVolunteer(ctx, id, actor.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, s.raceOutcome(ctx, id, domain.StatusAccepted)
		}
		return nil, err
	}
	s.logger.Info().Str("donation_id", id).Str("volunteer_id", actor.ID).Msg("lifecycle: volunteer assigned")
	return updated, nil
}

// ConfirmPickup closes out a donation once the presented possession token
// matches. A donation that expired before confirmation lands in recycled;
// anything else lands in completed.
func (s *Service) ConfirmPickup(ctx context.Context, actor domain.Actor, id, presentedToken string) (*domain.Donation, error) {
	if err := requireRole(OpConfirmPickup, actor.Role); err != nil {
		return nil, err
	}
	d, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !statusIn(d.Status, confirmableStatuses) {
		return nil, &domain.StateError{Status: d.Status, Want: confirmableStatuses}
	}
	if !possession.Validate(presentedToken, d.PossessionToken) {
		return nil, domain.ErrInvalidProof
	}
	updated, err := s.repo.Confirm(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, s.raceOutcome(ctx, id, confirmableStatuses...)
		}
		return nil, err
	}
	s.logger.Info().
		Str("donation_id", id).
		Str("actor_id", actor.ID).
		Str("status", string(updated.Status)).
		Msg("lifecycle: pickup confirmed")
	return updated, nil
}

// RecycleAccept lets a recovery agent claim an expired donation.
func (s *Service) RecycleAccept(ctx context.Context, actor domain.Actor, id string) (*domain.Donation, error) {
	if err := requireRole(OpRecycleAccept, actor.Role); err != nil {
		return nil, err
	}
	d, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Status != domain.StatusExpired {
		return nil, &domain.StateError{Status: d.Status, Want: []domain.DonationStatus{domain.StatusExpired}}
	}
	updated, err := s.repo.MarkRecycled(ctx, id, actor.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, s.raceOutcome(ctx, id, domain.StatusExpired)
		}
		return nil, err
	}
	s.logger.Info().Str("donation_id", id).Str("agent_id", actor.ID).Msg("lifecycle: donation recycled")
	return updated, nil
}

// ListAvailable returns available donations for the location, soonest
// expiry first.
func (s *Service) ListAvailable(ctx context.Context, actor domain.Actor, f domain.AvailableFilter) ([]domain.Donation, error) {
	if err := requireRole(OpListAvailable, actor.Role); err != nil {
		return nil, err
	}
	if strings.TrimSpace(f.LocationCode) == "" {
		return nil, fmt.Errorf("%w: location code is required", domain.ErrValidation)
	}
	if f.Category != "" && !domain.ValidCategory(f.Category) {
		return nil, fmt.Errorf("%w: unknown category %q", domain.ErrValidation, f.Category)
	}
	return s.repo.ListAvailable(ctx, f)
}

// ListForRecovery returns donations of interest to a recovery agent, most
// recently updated first.
func (s *Service) ListForRecovery(ctx context.Context, actor domain.Actor) ([]domain.Donation, error) {
	if err := requireRole(OpListForRecovery, actor.Role); err != nil {
		return nil, err
	}
	return s.repo.ListForRecovery(ctx)
}

// ListMine returns the donations an actor is party to: donors see what they
// created, everyone else sees donations they accepted, delivered, or
// recycled. Expiry is reconciled for every returned record.
func (s *Service) ListMine(ctx context.Context, actor domain.Actor) ([]domain.Donation, error) {
	var (
		items []domain.Donation
		err   error
	)
	if actor.Role == domain.RoleDonor {
		items, err = s.repo.ListByDonor(ctx, actor.ID)
	} else {
		items, err = s.repo.ListByParticipant(ctx, actor.ID)
	}
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ExpiryDue(s.now()) {
			reconciled, err := s.reconcileExpiry(ctx, &items[i])
			if err != nil {
				return nil, err
			}
			items[i] = *reconciled
		}
	}
	return items, nil
}

// Get returns a single donation, reconciling overdue expiry first so no
// caller observes a stale available status past its deadline.
func (s *Service) Get(ctx context.Context, id string) (*domain.Donation, error) {
	return s.load(ctx, id)
}

// load fetches a donation and reconciles overdue expiry before any guard
// sees its status.
func (s *Service) load(ctx context.Context, id string) (*domain.Donation, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.reconcileExpiry(ctx, d)
}

// reconcileExpiry flips an overdue available donation to expired. The
// system has no scheduler; expiry is observed on load, not timed. The
// conditional update makes reconciliation idempotent under races: if
// another request already moved the record on, the fresh read wins.
// Any other storage failure propagates; guards must never run against a
// snapshot that could not be reconciled.
func (s *Service) reconcileExpiry(ctx context.Context, d *domain.Donation) (*domain.Donation, error) {
	if !d.ExpiryDue(s.now()) {
		return d, nil
	}
	expired, err := s.repo.MarkExpired(ctx, d.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error().Err(err).Str("donation_id", d.ID).Msg("lifecycle: expiry reconciliation failed")
			return nil, err
		}
		return s.repo.GetByID(ctx, d.ID)
	}
	s.logger.Info().Str("donation_id", d.ID).Msg("lifecycle: donation expired on read")
	return expired, nil
}

// raceOutcome classifies a lost conditional update: the record either
// disappeared or changed status between the guard read and the write.
func (s *Service) raceOutcome(ctx context.Context, id string, want ...domain.DonationStatus) error {
	fresh, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.ErrNotFound
	}
	return &domain.StateError{Status: fresh.Status, Want: want}
}

func requireRole(op Op, role domain.Role) error {
	allowed := transitionRoles[op]
	for _, r := range allowed {
		if r == role {
			return nil
		}
	}
	return &domain.RoleError{Role: role, Allowed: allowed}
}

func statusIn(status domain.DonationStatus, set []domain.DonationStatus) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

func validateCreate(in CreateInput) error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	case in.Quantity <= 0:
		return fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	case !domain.ValidCategory(in.Category):
		return fmt.Errorf("%w: category must be veg or non-veg", domain.ErrValidation)
	case in.MadeAt.IsZero():
		return fmt.Errorf("%w: madeAt is required", domain.ErrValidation)
	case in.ExpiresAt.IsZero():
		return fmt.Errorf("%w: expiresAt is required", domain.ErrValidation)
	case strings.TrimSpace(in.LocationCode) == "":
		return fmt.Errorf("%w: location code is required", domain.ErrValidation)
	case !domain.ValidZone(in.Zone):
		return fmt.Errorf("%w: zone must be A, B, C, D or empty", domain.ErrValidation)
	}
	return nil
}
