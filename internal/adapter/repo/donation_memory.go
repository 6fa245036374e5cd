package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"foodshare/internal/domain"
)

// DonationRepositoryMemory is a mutex-guarded in-memory DonationRepository.
// It applies the same conditional-update semantics as the PostgreSQL
// implementation, which makes it usable both for tests and for running the
// service without a database.
type DonationRepositoryMemory struct {
	mu    sync.Mutex
	items map[string]*domain.Donation
	now   func() time.Time
}

// NewMemoryRepository creates an empty in-memory donation repo.
func NewMemoryRepository() *DonationRepositoryMemory {
	return &DonationRepositoryMemory{
		items: make(map[string]*domain.Donation),
		now:   time.Now,
	}
}

func (r *DonationRepositoryMemory) Insert(_ context.Context, d *domain.Donation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := cloneDonation(d)
	now := r.now()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	r.items[cp.ID] = cp
	d.CreatedAt = now
	d.UpdatedAt = now
	return nil
}

func (r *DonationRepositoryMemory) GetByID(_ context.Context, id string) (*domain.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneDonation(d), nil
}

func (r *DonationRepositoryMemory) DeleteAvailable(_ context.Context, id, donorID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.items[id]
	if !ok || d.DonorID != donorID || d.Status != domain.StatusAvailable {
		return domain.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *DonationRepositoryMemory) MarkAccepted(_ context.Context, id, orgID string) (*domain.Donation, error) {
	return r.transition(id, []domain.DonationStatus{domain.StatusAvailable}, func(d *domain.Donation) {
		d.Status = domain.StatusAccepted
		d.AcceptedBy = &orgID
	})
}

func (r *DonationRepositoryMemory) AssignVolunteer(_ context.Context, id, volunteerID string) (*domain.Donation, error) {
	return r.transition(id, []domain.DonationStatus{domain.StatusAccepted}, func(d *domain.Donation) {
		d.VolunteerID = &volunteerID
	})
}

func (r *DonationRepositoryMemory) MarkExpired(_ context.Context, id string) (*domain.Donation, error) {
	return r.transition(id, []domain.DonationStatus{domain.StatusAvailable}, func(d *domain.Donation) {
		d.Status = domain.StatusExpired
	})
}

func (r *DonationRepositoryMemory) Confirm(_ context.Context, id string) (*domain.Donation, error) {
	from := []domain.DonationStatus{
		domain.StatusAvailable,
		domain.StatusAccepted,
		domain.StatusPicked,
		domain.StatusExpired,
	}
	return r.transition(id, from, func(d *domain.Donation) {
		if d.Status == domain.StatusExpired {
			d.Status = domain.StatusRecycled
		} else {
			d.Status = domain.StatusCompleted
		}
	})
}

func (r *DonationRepositoryMemory) MarkRecycled(_ context.Context, id, agentID string) (*domain.Donation, error) {
	return r.transition(id, []domain.DonationStatus{domain.StatusExpired}, func(d *domain.Donation) {
		d.Status = domain.StatusRecycled
		d.RecycledBy = &agentID
	})
}

func (r *DonationRepositoryMemory) ListAvailable(_ context.Context, f domain.AvailableFilter) ([]domain.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var items []domain.Donation
	for _, d := range r.items {
		if d.Status != domain.StatusAvailable || d.LocationCode != f.LocationCode {
			continue
		}
		if f.Category != "" && d.Category != f.Category {
			continue
		}
		items = append(items, *cloneDonation(d))
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ExpiresAt.Before(items[j].ExpiresAt) })
	return items, nil
}

func (r *DonationRepositoryMemory) ListForRecovery(_ context.Context) ([]domain.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var items []domain.Donation
	for _, d := range r.items {
		switch d.Status {
		case domain.StatusExpired, domain.StatusPicked, domain.StatusRecycled, domain.StatusCompleted:
			items = append(items, *cloneDonation(d))
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].UpdatedAt.After(items[j].UpdatedAt) })
	return items, nil
}

func (r *DonationRepositoryMemory) ListByDonor(_ context.Context, donorID string) ([]domain.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var items []domain.Donation
	for _, d := range r.items {
		if d.DonorID == donorID {
			items = append(items, *cloneDonation(d))
		}
	}
	sortNewestFirst(items)
	return items, nil
}

func (r *DonationRepositoryMemory) ListByParticipant(_ context.Context, actorID string) ([]domain.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var items []domain.Donation
	for _, d := range r.items {
		if matchesID(d.AcceptedBy, actorID) || matchesID(d.VolunteerID, actorID) || matchesID(d.RecycledBy, actorID) {
			items = append(items, *cloneDonation(d))
		}
	}
	sortNewestFirst(items)
	return items, nil
}

func (r *DonationRepositoryMemory) transition(id string, from []domain.DonationStatus, apply func(*domain.Donation)) (*domain.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	allowed := false
	for _, s := range from {
		if d.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, domain.ErrNotFound
	}
	apply(d)
	d.UpdatedAt = r.now()
	return cloneDonation(d), nil
}

func matchesID(p *string, id string) bool {
	return p != nil && *p == id
}

func sortNewestFirst(items []domain.Donation) {
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
}

func cloneDonation(d *domain.Donation) *domain.Donation {
	cp := *d
	if d.Labels != nil {
		cp.Labels = append([]string(nil), d.Labels...)
	}
	cp.AcceptedBy = clonePtr(d.AcceptedBy)
	cp.VolunteerID = clonePtr(d.VolunteerID)
	cp.RecycledBy = clonePtr(d.RecycledBy)
	return &cp
}

func clonePtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

var _ domain.DonationRepository = (*DonationRepositoryMemory)(nil)
