// Package syncjob reconciles local clients, projects and people with
// the external time-tracking service, full or incrementally bounded by
// a per-resource watermark.
package syncjob

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ms-planner/planner-backend/internal/harvest"
)

const (
	ResourceClients  = "clients"
	ResourceProjects = "projects"
	ResourceUsers    = "users"
)

// ErrInProgress means another run holds the tenant's sync lease.
var ErrInProgress = errors.New("sync already in progress")

// Source is the external collection boundary; *harvest.API satisfies it.
type Source interface {
	FetchClients(ctx context.Context, since *time.Time) ([]harvest.Client, error)
	FetchProjects(ctx context.Context, since *time.Time) ([]harvest.Project, error)
	FetchUsers(ctx context.Context, since *time.Time) ([]harvest.User, error)
}

type TenantStore interface {
	Ensure(ctx context.Context, id, name string) error
}

type ClientStore interface {
	UpsertHarvest(ctx context.Context, tenantID string, harvestID int64, name string) error
	EnsurePlaceholder(ctx context.Context, tenantID string, harvestID int64, name string) (string, error)
	MapByHarvestID(ctx context.Context, tenantID string) (map[int64]string, error)
	Count(ctx context.Context, tenantID string) (int64, error)
}

type ProjectStore interface {
	UpsertHarvest(ctx context.Context, tenantID string, harvestID int64, name string, clientID *string, active bool) error
	Count(ctx context.Context, tenantID string) (int64, error)
}

type PersonStore interface {
	UpsertHarvest(ctx context.Context, tenantID string, harvestID int64, firstName, lastName string, email *string) error
	Count(ctx context.Context, tenantID string) (int64, error)
}

// WatermarkStore keeps the last successful sync instant per resource
// type. Get returns nil on a resource never synced before.
type WatermarkStore interface {
	Get(ctx context.Context, tenantID, resource string) (*time.Time, error)
	Set(ctx context.Context, tenantID, resource string, at time.Time) error
}

// Locker guards against two concurrent runs for the same tenant. A nil
// Locker disables the guard.
type Locker interface {
	Acquire(ctx context.Context, tenantID string) (release func(), err error)
}

type Summary struct {
	TenantID string        `json:"tenant_id"`
	Full     bool          `json:"full"`
	Imported ImportCounts  `json:"imported"`
	Totals   EntityTotals  `json:"totals"`
	Duration time.Duration `json:"duration_ms"`
}

type ImportCounts struct {
	Clients  int `json:"clients"`
	Projects int `json:"projects"`
	Users    int `json:"users"`
}

type EntityTotals struct {
	Clients  int64 `json:"clients"`
	Projects int64 `json:"projects"`
	People   int64 `json:"people"`
}

type Service struct {
	source     Source
	tenants    TenantStore
	clients    ClientStore
	projects   ProjectStore
	people     PersonStore
	watermarks WatermarkStore
	lock       Locker

	tenantID   string
	tenantName string
}

func NewService(source Source, tenants TenantStore, clients ClientStore, projects ProjectStore,
	people PersonStore, watermarks WatermarkStore, lock Locker, tenantID, tenantName string) *Service {
	return &Service{
		source:     source,
		tenants:    tenants,
		clients:    clients,
		projects:   projects,
		people:     people,
		watermarks: watermarks,
		lock:       lock,
		tenantID:   tenantID,
		tenantName: tenantName,
	}
}

// Run walks the three resource types in dependency order (projects need
// resolved client ids). Each type's watermark advances to the run start
// only once its page walk and upserts complete; a failure aborts the
// run, keeping progress already committed and leaving the failing
// type's watermark untouched so the next run retries it.
func (s *Service) Run(ctx context.Context, full bool) (*Summary, error) {
	started := time.Now().UTC()

	if s.lock != nil {
		release, err := s.lock.Acquire(ctx, s.tenantID)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	if err := s.tenants.Ensure(ctx, s.tenantID, s.tenantName); err != nil {
		return nil, fmt.Errorf("ensure tenant: %w", err)
	}

	summary := &Summary{TenantID: s.tenantID, Full: full}

	n, err := s.syncClients(ctx, full, started)
	if err != nil {
		return nil, err
	}
	summary.Imported.Clients = n

	n, err = s.syncProjects(ctx, full, started)
	if err != nil {
		return nil, err
	}
	summary.Imported.Projects = n

	n, err = s.syncUsers(ctx, full, started)
	if err != nil {
		return nil, err
	}
	summary.Imported.Users = n

	if summary.Totals.Clients, err = s.clients.Count(ctx, s.tenantID); err != nil {
		return nil, fmt.Errorf("count clients: %w", err)
	}
	if summary.Totals.Projects, err = s.projects.Count(ctx, s.tenantID); err != nil {
		return nil, fmt.Errorf("count projects: %w", err)
	}
	if summary.Totals.People, err = s.people.Count(ctx, s.tenantID); err != nil {
		return nil, fmt.Errorf("count people: %w", err)
	}

	summary.Duration = time.Since(started)
	log.Printf("sync done tenant=%s full=%t clients=%d projects=%d users=%d in %s",
		s.tenantID, full, summary.Imported.Clients, summary.Imported.Projects, summary.Imported.Users, summary.Duration)
	return summary, nil
}

func (s *Service) syncClients(ctx context.Context, full bool, started time.Time) (int, error) {
	since, err := s.since(ctx, full, ResourceClients)
	if err != nil {
		return 0, err
	}

	items, err := s.source.FetchClients(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("fetch clients: %w", err)
	}

	for _, c := range items {
		name := c.Name
		if name == "" {
			name = "(no name)"
		}
		if err := s.clients.UpsertHarvest(ctx, s.tenantID, c.ID, name); err != nil {
			return 0, fmt.Errorf("upsert client %d: %w", c.ID, err)
		}
	}

	if err := s.watermarks.Set(ctx, s.tenantID, ResourceClients, started); err != nil {
		return 0, fmt.Errorf("advance clients watermark: %w", err)
	}
	return len(items), nil
}

func (s *Service) syncProjects(ctx context.Context, full bool, started time.Time) (int, error) {
	since, err := s.since(ctx, full, ResourceProjects)
	if err != nil {
		return 0, err
	}

	items, err := s.source.FetchProjects(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("fetch projects: %w", err)
	}

	clientByHarvestID, err := s.clients.MapByHarvestID(ctx, s.tenantID)
	if err != nil {
		return 0, fmt.Errorf("map clients: %w", err)
	}

	for _, p := range items {
		var clientID *string
		if ref := p.ClientRef(); ref != 0 {
			id, ok := clientByHarvestID[ref]
			if !ok {
				// The referenced client never came through a client sync;
				// a placeholder keeps the project attached locally.
				id, err = s.clients.EnsurePlaceholder(ctx, s.tenantID, ref, fmt.Sprintf("Client %d", ref))
				if err != nil {
					return 0, fmt.Errorf("placeholder client %d: %w", ref, err)
				}
				clientByHarvestID[ref] = id
			}
			clientID = &id
		}

		if err := s.projects.UpsertHarvest(ctx, s.tenantID, p.ID, p.Name, clientID, p.IsActive); err != nil {
			return 0, fmt.Errorf("upsert project %d: %w", p.ID, err)
		}
	}

	if err := s.watermarks.Set(ctx, s.tenantID, ResourceProjects, started); err != nil {
		return 0, fmt.Errorf("advance projects watermark: %w", err)
	}
	return len(items), nil
}

func (s *Service) syncUsers(ctx context.Context, full bool, started time.Time) (int, error) {
	since, err := s.since(ctx, full, ResourceUsers)
	if err != nil {
		return 0, err
	}

	items, err := s.source.FetchUsers(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("fetch users: %w", err)
	}

	for _, u := range items {
		first, last := u.FirstName, u.LastName
		var email *string
		if u.Email != "" {
			e := u.Email
			email = &e
		}
		if first == "" && email != nil {
			first = *email
		}

		if err := s.people.UpsertHarvest(ctx, s.tenantID, u.ID, first, last, email); err != nil {
			return 0, fmt.Errorf("upsert person %d: %w", u.ID, err)
		}
	}

	if err := s.watermarks.Set(ctx, s.tenantID, ResourceUsers, started); err != nil {
		return 0, fmt.Errorf("advance users watermark: %w", err)
	}
	return len(items), nil
}

// since resolves the incremental bound: nil for a full run, else the
// stored watermark, which is itself nil the first time a resource syncs.
func (s *Service) since(ctx context.Context, full bool, resource string) (*time.Time, error) {
	if full {
		return nil, nil
	}
	wm, err := s.watermarks.Get(ctx, s.tenantID, resource)
	if err != nil {
		return nil, fmt.Errorf("read %s watermark: %w", resource, err)
	}
	return wm, nil
}
