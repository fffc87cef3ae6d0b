// Package calendar assembles the assignments calendar: one row per
// person with their visible role plans laid out over a month- or
// week-bucketed window, plus per-person utilization totals.
package calendar

import (
	"context"
	"time"

	"github.com/ms-planner/planner-backend/internal/people"
	"github.com/ms-planner/planner-backend/internal/roleplans"
	"github.com/ms-planner/planner-backend/internal/utilization"
)

type PersonDirectory interface {
	List(ctx context.Context, tenantID string) ([]people.Person, error)
}

type RoleSource interface {
	ListAssignedByTenant(ctx context.Context, tenantID string) ([]roleplans.AssignedRole, error)
}

// Filters narrow the visible role plans. Zero values mean "all".
// Billable is "billable", "nonbillable" or empty/"all".
type Filters struct {
	ClientID  string
	ProjectID string
	PersonID  string
	Billable  string
}

type BucketLabel struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Label string    `json:"label"`
}

// RoleBar is one visible role plan with its grid placement at the
// requested zoom.
type RoleBar struct {
	Role         roleplans.RolePlan `json:"role"`
	ProjectLabel string             `json:"project_label"`
	Bar          utilization.Bar    `json:"bar"`
}

type Row struct {
	PersonID   string    `json:"person_id"`
	PersonName string    `json:"person_name"`
	Roles      []RoleBar `json:"roles"`
	AvgPct     float64   `json:"avg_pct"`
	MaxPct     int       `json:"max_pct"`
	Overbooked bool      `json:"overbooked"`
}

type View struct {
	WindowStart time.Time               `json:"window_start"`
	WindowEnd   time.Time               `json:"window_end"`
	Zoom        utilization.Granularity `json:"zoom"`
	Buckets     []BucketLabel           `json:"buckets"`
	Rows        []Row                   `json:"rows"`
}

type Service struct {
	people PersonDirectory
	roles  RoleSource

	monthsPast   int
	monthsFuture int
}

func NewService(people PersonDirectory, roles RoleSource, monthsPast, monthsFuture int) *Service {
	return &Service{people: people, roles: roles, monthsPast: monthsPast, monthsFuture: monthsFuture}
}

// View builds the calendar for one tenant. Bars are laid out at the
// requested zoom, but utilization totals are always computed over week
// buckets so a weekly peak above capacity flags the row as overbooked
// even in month zoom.
func (s *Service) View(ctx context.Context, tenantID string, zoom utilization.Granularity, f Filters, now time.Time) (*View, error) {
	win := utilization.WindowAround(now, s.monthsPast, s.monthsFuture)

	persons, err := s.people.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	assigned, err := s.roles.ListAssignedByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	byPerson := make(map[string][]roleplans.AssignedRole, len(persons))
	for _, ar := range assigned {
		if !matches(ar, f) {
			continue
		}
		if !utilization.Overlaps(ar.Role.StartDate, ar.Role.EndDate, win.Start, win.End) {
			continue
		}
		pid := *ar.Role.PersonID
		byPerson[pid] = append(byPerson[pid], ar)
	}

	view := &View{
		WindowStart: win.Start,
		WindowEnd:   win.End,
		Zoom:        zoom,
		Buckets:     labels(win, zoom),
		Rows:        make([]Row, 0, len(persons)),
	}

	for _, p := range persons {
		if f.PersonID != "" && p.ID != f.PersonID {
			continue
		}

		visible := byPerson[p.ID]
		row := Row{
			PersonID:   p.ID,
			PersonName: p.DisplayName(),
			Roles:      make([]RoleBar, 0, len(visible)),
		}

		intervals := make([]utilization.Interval, 0, len(visible))
		for _, ar := range visible {
			iv := utilization.Interval{
				Start:         ar.Role.StartDate,
				End:           ar.Role.EndDate,
				AllocationPct: ar.Role.AllocationPct,
			}
			intervals = append(intervals, iv)
			row.Roles = append(row.Roles, RoleBar{
				Role:         ar.Role,
				ProjectLabel: projectLabel(ar),
				Bar:          win.Layout(zoom, iv),
			})
		}

		totals := utilization.Compute(win, utilization.Week, intervals)
		row.AvgPct = totals.AvgPct
		row.MaxPct = totals.MaxPct
		row.Overbooked = totals.Overbooked()

		view.Rows = append(view.Rows, row)
	}

	return view, nil
}

func matches(ar roleplans.AssignedRole, f Filters) bool {
	if f.ProjectID != "" && ar.Role.ProjectID != f.ProjectID {
		return false
	}
	if f.ClientID != "" && (ar.ProjectClientID == nil || *ar.ProjectClientID != f.ClientID) {
		return false
	}
	switch f.Billable {
	case "billable":
		if !ar.Role.Billable {
			return false
		}
	case "nonbillable":
		if ar.Role.Billable {
			return false
		}
	}
	return true
}

func projectLabel(ar roleplans.AssignedRole) string {
	if ar.ProjectName != nil && *ar.ProjectName != "" {
		return *ar.ProjectName
	}
	if ar.ProjectHarvestName != nil && *ar.ProjectHarvestName != "" {
		return *ar.ProjectHarvestName
	}
	return "Unnamed Project"
}

func labels(win utilization.Window, zoom utilization.Granularity) []BucketLabel {
	buckets := win.Buckets(zoom)
	out := make([]BucketLabel, 0, len(buckets))
	for _, b := range buckets {
		format := "Jan 2006"
		if zoom == utilization.Week {
			format = "Jan 2"
		}
		out = append(out, BucketLabel{Start: b.Start, End: b.End, Label: b.Start.Format(format)})
	}
	return out
}
