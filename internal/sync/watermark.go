package syncjob

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WatermarkRepo persists one last-success instant per (tenant,
// resource), overwritten on every successful walk.
type WatermarkRepo struct {
	db *pgxpool.Pool
}

func NewWatermarkRepo(db *pgxpool.Pool) *WatermarkRepo {
	return &WatermarkRepo{db: db}
}

func (r *WatermarkRepo) Get(ctx context.Context, tenantID, resource string) (*time.Time, error) {
	const q = `
select synced_at
from sync_watermarks
where tenant_id = $1 and resource = $2;
`
	var at time.Time
	err := r.db.QueryRow(ctx, q, tenantID, resource).Scan(&at)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &at, nil
}

func (r *WatermarkRepo) Set(ctx context.Context, tenantID, resource string, at time.Time) error {
	const q = `
insert into sync_watermarks (tenant_id, resource, synced_at)
values ($1, $2, $3)
on conflict (tenant_id, resource) do update
set synced_at = excluded.synced_at;
`
	_, err := r.db.Exec(ctx, q, tenantID, resource, at)
	return err
}
