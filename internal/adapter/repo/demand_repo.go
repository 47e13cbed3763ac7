package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// DemandRepositoryPG implements domain.DemandRepository on PostgreSQL.
type DemandRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewDemandRepository creates a new demand repository backed by PostgreSQL.
func NewDemandRepository(pool *pgxpool.Pool) *DemandRepositoryPG {
	return &DemandRepositoryPG{pool: pool}
}

// Upsert inserts a demand or, when the email already exists, overwrites the
// previous submission. Returns whether an existing row was updated.
func (r *DemandRepositoryPG) Upsert(ctx context.Context, d *domain.Demand) (bool, error) {
	query := `
INSERT INTO demands (id, name, email, challenges, video_types, benefits, budget, interest_in_trial, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
ON CONFLICT (email) DO UPDATE SET
    name = EXCLUDED.name,
    challenges = EXCLUDED.challenges,
    video_types = EXCLUDED.video_types,
    benefits = EXCLUDED.benefits,
    budget = EXCLUDED.budget,
    interest_in_trial = EXCLUDED.interest_in_trial,
    updated_at = NOW()
RETURNING (xmax <> 0);
`
	var updated bool
	err := r.pool.QueryRow(ctx, query,
		d.ID,
		d.Name,
		d.Email,
		d.Challenges,
		d.VideoTypes,
		d.Benefits,
		d.Budget,
		d.InterestInTrial,
	).Scan(&updated)
	return updated, err
}

var _ domain.DemandRepository = (*DemandRepositoryPG)(nil)
