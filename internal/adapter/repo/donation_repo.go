package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"foodshare/internal/domain"
	"foodshare/internal/infra"
	"foodshare/internal/sqlinline"
)

// DonationRepositoryPG implements DonationRepository on PostgreSQL. Every
// transition is a single conditional UPDATE so concurrent actors racing for
// the same record cannot both win; the losing side sees ErrNotFound and the
// service re-reads to report the precise failure.
type DonationRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewDonationRepository creates a new donation repo over the SQL executor.
func NewDonationRepository(sql infra.SQLExecutor) *DonationRepositoryPG {
	return &DonationRepositoryPG{sql: sql}
}

func (r *DonationRepositoryPG) Insert(ctx context.Context, d *domain.Donation) error {
	_, err := r.sql.Exec(ctx, sqlinline.QInsertDonation,
		d.ID, d.DonorID, d.Title, d.Quantity, string(d.Category), d.Labels, d.ImageKey,
		d.MadeAt, d.ExpiresAt, d.LocationCode, d.Zone, d.PossessionToken, d.Freshness, d.IsUrgent)
	return err
}

func (r *DonationRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Donation, error) {
	return r.scanOne(r.sql.QueryRow(ctx, sqlinline.QGetDonation, id))
}

func (r *DonationRepositoryPG) DeleteAvailable(ctx context.Context, id, donorID string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QDeleteAvailableDonation, id, donorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *DonationRepositoryPG) MarkAccepted(ctx context.Context, id, orgID string) (*domain.Donation, error) {
	return r.scanOne(r.sql.QueryRow(ctx, sqlinline.QAcceptDonation, id, orgID))
}

func (r *DonationRepositoryPG) AssignVolunteer(ctx context.Context, id, volunteerID string) (*domain.Donation, error) {
	return r.scanOne(r.sql.QueryRow(ctx, sqlinline.QAssignVolunteer, id, volunteerID))
}

func (r *DonationRepositoryPG) MarkExpired(ctx context.Context, id string) (*domain.Donation, error) {
	return r.scanOne(r.sql.QueryRow(ctx, sqlinline.QExpireDonation, id))
}

func (r *DonationRepositoryPG) Confirm(ctx context.Context, id string) (*domain.Donation, error) {
	return r.scanOne(r.sql.QueryRow(ctx, sqlinline.QConfirmDonation, id))
}

func (r *DonationRepositoryPG) MarkRecycled(ctx context.Context, id, agentID string) (*domain.Donation, error) {
	return r.scanOne(r.sql.QueryRow(ctx, sqlinline.QRecycleDonation, id, agentID))
}

func (r *DonationRepositoryPG) ListAvailable(ctx context.Context, f domain.AvailableFilter) ([]domain.Donation, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListAvailableDonations, f.LocationCode, string(f.Category))
	if err != nil {
		return nil, err
	}
	return r.scanAll(rows)
}

func (r *DonationRepositoryPG) ListForRecovery(ctx context.Context) ([]domain.Donation, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListRecoveryDonations)
	if err != nil {
		return nil, err
	}
	return r.scanAll(rows)
}

func (r *DonationRepositoryPG) ListByDonor(ctx context.Context, donorID string) ([]domain.Donation, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListDonationsByDonor, donorID)
	if err != nil {
		return nil, err
	}
	return r.scanAll(rows)
}

func (r *DonationRepositoryPG) ListByParticipant(ctx context.Context, actorID string) ([]domain.Donation, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListDonationsByParticipant, actorID)
	if err != nil {
		return nil, err
	}
	return r.scanAll(rows)
}

func (r *DonationRepositoryPG) scanOne(row pgx.Row) (*domain.Donation, error) {
	var d domain.Donation
	err := row.Scan(&d.ID, &d.DonorID, &d.Title, &d.Quantity, &d.Category, &d.Labels, &d.ImageKey,
		&d.MadeAt, &d.ExpiresAt, &d.LocationCode, &d.Zone, &d.Status,
		&d.AcceptedBy, &d.VolunteerID, &d.RecycledBy, &d.PossessionToken,
		&d.Freshness, &d.IsUrgent, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *DonationRepositoryPG) scanAll(rows pgx.Rows) ([]domain.Donation, error) {
	defer rows.Close()

	var items []domain.Donation
	for rows.Next() {
		var d domain.Donation
		if err := rows.Scan(&d.ID, &d.DonorID, &d.Title, &d.Quantity, &d.Category, &d.Labels, &d.ImageKey,
			&d.MadeAt, &d.ExpiresAt, &d.LocationCode, &d.Zone, &d.Status,
			&d.AcceptedBy, &d.VolunteerID, &d.RecycledBy, &d.PossessionToken,
			&d.Freshness, &d.IsUrgent, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

var _ domain.DonationRepository = (*DonationRepositoryPG)(nil)
