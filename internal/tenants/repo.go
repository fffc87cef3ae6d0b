package tenants

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Ensure creates the tenant row if it does not exist yet. An existing
// row is left untouched.
func (r *Repo) Ensure(ctx context.Context, id, name string) error {
	const q = `
insert into tenants (id, name)
values ($1, $2)
on conflict (id) do nothing;
`
	_, err := r.db.Exec(ctx, q, id, name)
	return err
}

func (r *Repo) List(ctx context.Context) ([]Tenant, error) {
	const q = `
select id, name, created_at
from tenants
order by created_at desc;
`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Tenant, 0, 4)
	for rows.Next() {
		var t Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
