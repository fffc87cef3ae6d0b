package roleplans

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

const rolePlanColumns = `id, project_id, person_id, role_name, allocation_pct, billable, expected_rate_cents, notes, start_date, end_date, created_at, updated_at`

func scanRolePlan(row pgx.Row, rp *RolePlan) error {
	return row.Scan(&rp.ID, &rp.ProjectID, &rp.PersonID, &rp.RoleName, &rp.AllocationPct, &rp.Billable,
		&rp.ExpectedRateCents, &rp.Notes, &rp.StartDate, &rp.EndDate, &rp.CreatedAt, &rp.UpdatedAt)
}

func (r *Repo) Create(ctx context.Context, rp *RolePlan) (*RolePlan, error) {
	const q = `
insert into role_plans (id, project_id, person_id, role_name, allocation_pct, billable, expected_rate_cents, notes, start_date, end_date)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
returning ` + rolePlanColumns + `;`

	var out RolePlan
	row := r.db.QueryRow(ctx, q, uuid.New().String(), rp.ProjectID, rp.PersonID, rp.RoleName,
		rp.AllocationPct, rp.Billable, rp.ExpectedRateCents, rp.Notes, rp.StartDate, rp.EndDate)
	if err := scanRolePlan(row, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetInTenant loads a role plan only when its project belongs to the
// tenant; anything else is ErrNotFound.
func (r *Repo) GetInTenant(ctx context.Context, tenantID, id string) (*RolePlan, error) {
	const q = `
select rp.id, rp.project_id, rp.person_id, rp.role_name, rp.allocation_pct, rp.billable, rp.expected_rate_cents, rp.notes, rp.start_date, rp.end_date, rp.created_at, rp.updated_at
from role_plans rp
join projects p on p.id = rp.project_id
where rp.id = $1 and p.tenant_id = $2;
`
	var rp RolePlan
	if err := scanRolePlan(r.db.QueryRow(ctx, q, id, tenantID), &rp); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rp, nil
}

// Update writes the full merged record; the handler applies partial
// input onto the loaded row first.
func (r *Repo) Update(ctx context.Context, rp *RolePlan) (*RolePlan, error) {
	const q = `
update role_plans
set person_id = $2, role_name = $3, allocation_pct = $4, billable = $5,
    expected_rate_cents = $6, notes = $7, start_date = $8, end_date = $9,
    updated_at = now()
where id = $1
returning ` + rolePlanColumns + `;`

	var out RolePlan
	row := r.db.QueryRow(ctx, q, rp.ID, rp.PersonID, rp.RoleName, rp.AllocationPct, rp.Billable,
		rp.ExpectedRateCents, rp.Notes, rp.StartDate, rp.EndDate)
	if err := scanRolePlan(row, &out); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	ct, err := r.db.Exec(ctx, `delete from role_plans where id = $1;`, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *Repo) ListByProject(ctx context.Context, tenantID, projectID string) ([]RolePlan, error) {
	const q = `
select rp.id, rp.project_id, rp.person_id, rp.role_name, rp.allocation_pct, rp.billable, rp.expected_rate_cents, rp.notes, rp.start_date, rp.end_date, rp.created_at, rp.updated_at
from role_plans rp
join projects p on p.id = rp.project_id
where rp.project_id = $1 and p.tenant_id = $2
order by rp.created_at asc;
`
	rows, err := r.db.Query(ctx, q, projectID, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]RolePlan, 0, 8)
	for rows.Next() {
		var rp RolePlan
		if err := scanRolePlan(rows, &rp); err != nil {
			return nil, err
		}
		out = append(out, rp)
	}
	return out, rows.Err()
}

// AssignedRole is one assigned role plan plus the project fields the
// calendar needs for labels and filtering.
type AssignedRole struct {
	Role               RolePlan `json:"role"`
	ProjectName        *string  `json:"project_name,omitempty"`
	ProjectHarvestName *string  `json:"project_harvest_name,omitempty"`
	ProjectClientID    *string  `json:"project_client_id,omitempty"`
}

// ListAssignedByTenant returns every role plan with an assignee in the
// tenant, with no date filtering; window overlap is the caller's job.
func (r *Repo) ListAssignedByTenant(ctx context.Context, tenantID string) ([]AssignedRole, error) {
	const q = `
select rp.id, rp.project_id, rp.person_id, rp.role_name, rp.allocation_pct, rp.billable, rp.expected_rate_cents, rp.notes, rp.start_date, rp.end_date, rp.created_at, rp.updated_at,
       p.name, p.harvest_name, p.client_id
from role_plans rp
join projects p on p.id = rp.project_id
where p.tenant_id = $1 and rp.person_id is not null
order by rp.created_at asc;
`
	rows, err := r.db.Query(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]AssignedRole, 0, 32)
	for rows.Next() {
		var ar AssignedRole
		rp := &ar.Role
		if err := rows.Scan(&rp.ID, &rp.ProjectID, &rp.PersonID, &rp.RoleName, &rp.AllocationPct, &rp.Billable,
			&rp.ExpectedRateCents, &rp.Notes, &rp.StartDate, &rp.EndDate, &rp.CreatedAt, &rp.UpdatedAt,
			&ar.ProjectName, &ar.ProjectHarvestName, &ar.ProjectClientID); err != nil {
			return nil, err
		}
		out = append(out, ar)
	}
	return out, rows.Err()
}
