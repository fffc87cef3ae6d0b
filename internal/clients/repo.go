package clients

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

type Client struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Name      string    `json:"name"`
	HarvestID *int64    `json:"harvest_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Repo) Create(ctx context.Context, tenantID, name string) (*Client, error) {
	if name == "" {
		return nil, fmt.Errorf("name required")
	}

	const q = `
insert into clients (id, tenant_id, name)
values ($1, $2, $3)
returning id, tenant_id, name, harvest_id, created_at, updated_at;
`
	var cl Client
	err := r.db.QueryRow(ctx, q, uuid.New().String(), tenantID, name).
		Scan(&cl.ID, &cl.TenantID, &cl.Name, &cl.HarvestID, &cl.CreatedAt, &cl.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &cl, nil
}

func (r *Repo) List(ctx context.Context, tenantID string) ([]Client, error) {
	const q = `
select id, tenant_id, name, harvest_id, created_at, updated_at
from clients
where tenant_id = $1
order by name asc;
`
	rows, err := r.db.Query(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Client, 0, 16)
	for rows.Next() {
		var cl Client
		if err := rows.Scan(&cl.ID, &cl.TenantID, &cl.Name, &cl.HarvestID, &cl.CreatedAt, &cl.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, cl)
	}
	return out, rows.Err()
}

// UpsertHarvest matches on the external id and keeps the name current.
func (r *Repo) UpsertHarvest(ctx context.Context, tenantID string, harvestID int64, name string) error {
	const q = `
insert into clients (id, tenant_id, name, harvest_id)
values ($1, $2, $3, $4)
on conflict (tenant_id, harvest_id) do update
set name = excluded.name, updated_at = now();
`
	_, err := r.db.Exec(ctx, q, uuid.New().String(), tenantID, name, harvestID)
	return err
}

// EnsurePlaceholder creates a client for an external id nothing local
// matches yet. An existing row keeps its name.
func (r *Repo) EnsurePlaceholder(ctx context.Context, tenantID string, harvestID int64, name string) (string, error) {
	const q = `
insert into clients (id, tenant_id, name, harvest_id)
values ($1, $2, $3, $4)
on conflict (tenant_id, harvest_id) do update
set updated_at = now()
returning id;
`
	var id string
	err := r.db.QueryRow(ctx, q, uuid.New().String(), tenantID, name, harvestID).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

// MapByHarvestID indexes local client ids by their external id.
func (r *Repo) MapByHarvestID(ctx context.Context, tenantID string) (map[int64]string, error) {
	const q = `
select id, harvest_id
from clients
where tenant_id = $1 and harvest_id is not null;
`
	rows, err := r.db.Query(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]string)
	for rows.Next() {
		var id string
		var hid int64
		if err := rows.Scan(&id, &hid); err != nil {
			return nil, err
		}
		out[hid] = id
	}
	return out, rows.Err()
}

func (r *Repo) Count(ctx context.Context, tenantID string) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `select count(*) from clients where tenant_id = $1;`, tenantID).Scan(&n)
	return n, err
}
