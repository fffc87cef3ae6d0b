package projects

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

type Project struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	ClientID    *string   `json:"client_id,omitempty"`
	ClientName  *string   `json:"client_name,omitempty"`
	Name        *string   `json:"name,omitempty"`
	HarvestName *string   `json:"harvest_name,omitempty"`
	HarvestID   *int64    `json:"harvest_id,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (r *Repo) Create(ctx context.Context, tenantID, name string, clientID *string) (*Project, error) {
	if name == "" {
		return nil, fmt.Errorf("name required")
	}

	const q = `
insert into projects (id, tenant_id, name, client_id)
values ($1, $2, $3, $4)
returning id, tenant_id, client_id, name, harvest_name, harvest_id, is_active, created_at, updated_at;
`
	var p Project
	err := r.db.QueryRow(ctx, q, uuid.New().String(), tenantID, name, clientID).
		Scan(&p.ID, &p.TenantID, &p.ClientID, &p.Name, &p.HarvestName, &p.HarvestID, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns every project of the tenant with its client's name,
// newest first.
func (r *Repo) List(ctx context.Context, tenantID string) ([]Project, error) {
	const q = `
select p.id, p.tenant_id, p.client_id, c.name, p.name, p.harvest_name, p.harvest_id, p.is_active, p.created_at, p.updated_at
from projects p
left join clients c on c.id = p.client_id
where p.tenant_id = $1
order by p.created_at desc;
`
	rows, err := r.db.Query(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Project, 0, 16)
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.TenantID, &p.ClientID, &p.ClientName, &p.Name, &p.HarvestName, &p.HarvestID, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ExistsInTenant reports whether the project id is addressable within
// the tenant.
func (r *Repo) ExistsInTenant(ctx context.Context, tenantID, projectID string) (bool, error) {
	const q = `select exists(select 1 from projects where id = $1 and tenant_id = $2);`
	var ok bool
	err := r.db.QueryRow(ctx, q, projectID, tenantID).Scan(&ok)
	return ok, err
}

// UpsertHarvest matches on the external id, mirroring the external name
// and keeping the resolved client reference and active flag current.
func (r *Repo) UpsertHarvest(ctx context.Context, tenantID string, harvestID int64, name string, clientID *string, active bool) error {
	const q = `
insert into projects (id, tenant_id, name, harvest_name, harvest_id, client_id, is_active)
values ($1, $2, $3, $3, $4, $5, $6)
on conflict (tenant_id, harvest_id) do update
set name = excluded.name,
    harvest_name = excluded.harvest_name,
    client_id = excluded.client_id,
    is_active = excluded.is_active,
    updated_at = now();
`
	_, err := r.db.Exec(ctx, q, uuid.New().String(), tenantID, name, harvestID, clientID, active)
	return err
}

func (r *Repo) Count(ctx context.Context, tenantID string) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `select count(*) from projects where tenant_id = $1;`, tenantID).Scan(&n)
	return n, err
}
