package people

import (
	"context"
	"strings"
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

type Person struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     *string   `json:"email,omitempty"`
	HarvestID *int64    `json:"harvest_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName is "First Last", falling back to the email and then a
// placeholder, the same way the calendar renders people.
func (p Person) DisplayName() string {
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name != "" {
		return name
	}
	if p.Email != nil && *p.Email != "" {
		return *p.Email
	}
	return "(no name)"
}

func (r *Repo) List(ctx context.Context, tenantID string) ([]Person, error) {
	const q = `
select id, tenant_id, first_name, last_name, email, harvest_id, created_at, updated_at
from people
where tenant_id = $1
order by first_name asc, last_name asc;
`
	rows, err := r.db.Query(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Person, 0, 16)
	for rows.Next() {
		var p Person
		if err := rows.Scan(&p.ID, &p.TenantID, &p.FirstName, &p.LastName, &p.Email, &p.HarvestID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpsertHarvest reconciles one external user with local people. The
// email is the governing key when present; a record previously stored
// under the external id alone picks up its email here instead of
// becoming a duplicate. Without an email the external id governs.
func (r *Repo) UpsertHarvest(ctx context.Context, tenantID string, harvestID int64, firstName, lastName string, email *string) error {
	if email != nil {
		const byEmail = `
update people
set first_name = $3, last_name = $4, harvest_id = $5, updated_at = now()
where tenant_id = $1 and email = $2;
`
		ct, err := r.db.Exec(ctx, byEmail, tenantID, *email, firstName, lastName, harvestID)
		if err != nil {
			return err
		}
		if ct.RowsAffected() > 0 {
			return nil
		}

		const byHarvestID = `
update people
set first_name = $3, last_name = $4, email = $5, updated_at = now()
where tenant_id = $1 and harvest_id = $2;
`
		ct, err = r.db.Exec(ctx, byHarvestID, tenantID, harvestID, firstName, lastName, *email)
		if err != nil {
			return err
		}
		if ct.RowsAffected() > 0 {
			return nil
		}

		const insert = `
insert into people (id, tenant_id, first_name, last_name, email, harvest_id)
values ($1, $2, $3, $4, $5, $6);
`
		_, err = r.db.Exec(ctx, insert, uuid.New().String(), tenantID, firstName, lastName, *email, harvestID)
		return err
	}

	const byHarvestID = `
update people
set first_name = $3, last_name = $4, updated_at = now()
where tenant_id = $1 and harvest_id = $2;
`
	ct, err := r.db.Exec(ctx, byHarvestID, tenantID, harvestID, firstName, lastName)
	if err != nil {
		return err
	}
	if ct.RowsAffected() > 0 {
		return nil
	}

	const insert = `
insert into people (id, tenant_id, first_name, last_name, harvest_id)
values ($1, $2, $3, $4, $5);
`
	_, err = r.db.Exec(ctx, insert, uuid.New().String(), tenantID, firstName, lastName, harvestID)
	return err
}

func (r *Repo) Count(ctx context.Context, tenantID string) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `select count(*) from people where tenant_id = $1;`, tenantID).Scan(&n)
	return n, err
}
