package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
create table if not exists tenants (
    id         text primary key,
    name       text not null,
    created_at timestamptz not null default now()
);

create table if not exists clients (
    id         text primary key,
    tenant_id  text not null references tenants(id),
    name       text not null,
    harvest_id bigint,
    created_at timestamptz not null default now(),
    updated_at timestamptz not null default now(),
    unique (tenant_id, harvest_id)
);

create table if not exists projects (
    id           text primary key,
    tenant_id    text not null references tenants(id),
    client_id    text references clients(id),
    name         text,
    harvest_name text,
    harvest_id   bigint,
    is_active    boolean not null default true,
    created_at   timestamptz not null default now(),
    updated_at   timestamptz not null default now(),
    unique (tenant_id, harvest_id)
);

create table if not exists people (
    id         text primary key,
    tenant_id  text not null references tenants(id),
    first_name text not null default '',
    last_name  text not null default '',
    email      text unique,
    harvest_id bigint,
    created_at timestamptz not null default now(),
    updated_at timestamptz not null default now(),
    unique (tenant_id, harvest_id)
);

create table if not exists role_plans (
    id                  text primary key,
    project_id          text not null references projects(id) on delete cascade,
    person_id           text references people(id) on delete set null,
    role_name           text not null,
    allocation_pct      integer not null default 100,
    billable            boolean not null default false,
    expected_rate_cents bigint,
    notes               text,
    start_date          date,
    end_date            date,
    created_at          timestamptz not null default now(),
    updated_at          timestamptz not null default now()
);

create index if not exists role_plans_project_idx on role_plans(project_id);
create index if not exists role_plans_person_idx on role_plans(person_id);

create table if not exists sync_watermarks (
    tenant_id text not null references tenants(id),
    resource  text not null,
    synced_at timestamptz not null,
    primary key (tenant_id, resource)
);
`

// Migrate applies the schema idempotently at startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
