package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ms-planner/planner-backend/internal/people"
	"github.com/ms-planner/planner-backend/internal/roleplans"
	"github.com/ms-planner/planner-backend/internal/utilization"
)

type fakeDirectory struct{ persons []people.Person }

func (f *fakeDirectory) List(context.Context, string) ([]people.Person, error) {
	return f.persons, nil
}

type fakeRoles struct{ assigned []roleplans.AssignedRole }

func (f *fakeRoles) ListAssignedByTenant(context.Context, string) ([]roleplans.AssignedRole, error) {
	return f.assigned, nil
}

func strPtr(s string) *string { return &s }

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// now is mid-June 2025, so the 6/6 window runs Dec 2024 through Dec 2025.
var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func assigned(personID, projectID string, start, end *time.Time, alloc int, billable bool) roleplans.AssignedRole {
	return roleplans.AssignedRole{
		Role: roleplans.RolePlan{
			ID:            "role-" + projectID,
			ProjectID:     projectID,
			PersonID:      &personID,
			RoleName:      "Engineer",
			AllocationPct: alloc,
			Billable:      billable,
			StartDate:     start,
			EndDate:       end,
		},
		ProjectName: strPtr("Project " + projectID),
	}
}

func newTestService(persons []people.Person, assigned []roleplans.AssignedRole) *Service {
	return NewService(&fakeDirectory{persons: persons}, &fakeRoles{assigned: assigned}, 6, 6)
}

func TestView_BarPlacementMonthZoom(t *testing.T) {
	ada := people.Person{ID: "p1", FirstName: "Ada", LastName: "Lovelace"}
	svc := newTestService(
		[]people.Person{ada},
		[]roleplans.AssignedRole{
			assigned("p1", "web", datePtr(2025, time.January, 1), datePtr(2025, time.March, 31), 50, true),
		},
	)

	view, err := svc.View(context.Background(), "t", utilization.Month, Filters{}, testNow)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), view.WindowStart)
	require.Len(t, view.Buckets, 13)
	assert.Equal(t, "Dec 2024", view.Buckets[0].Label)

	require.Len(t, view.Rows, 1)
	row := view.Rows[0]
	assert.Equal(t, "Ada Lovelace", row.PersonName)

	require.Len(t, row.Roles, 1)
	bar := row.Roles[0]
	assert.Equal(t, "Project web", bar.ProjectLabel)
	assert.Equal(t, 1, bar.Bar.Col) // Jan 2025 is one month after window start
	assert.Equal(t, 3, bar.Bar.Span)

	assert.Equal(t, 50, row.MaxPct)
	assert.False(t, row.Overbooked)
}

func TestView_WeeklyPeakFlagsOverbookingInMonthZoom(t *testing.T) {
	svc := newTestService(
		[]people.Person{{ID: "p1", FirstName: "Ada"}},
		[]roleplans.AssignedRole{
			assigned("p1", "a", datePtr(2025, time.January, 1), datePtr(2025, time.February, 28), 70, true),
			assigned("p1", "b", datePtr(2025, time.February, 1), datePtr(2025, time.March, 31), 50, true),
		},
	)

	view, err := svc.View(context.Background(), "t", utilization.Month, Filters{}, testNow)
	require.NoError(t, err)

	require.Len(t, view.Rows, 1)
	assert.Equal(t, 120, view.Rows[0].MaxPct)
	assert.True(t, view.Rows[0].Overbooked)
}

func TestView_RoleOutsideWindowHidden(t *testing.T) {
	svc := newTestService(
		[]people.Person{{ID: "p1", Email: strPtr("ada@example.com")}},
		[]roleplans.AssignedRole{
			assigned("p1", "old", datePtr(2020, time.January, 1), datePtr(2020, time.June, 30), 80, true),
		},
	)

	view, err := svc.View(context.Background(), "t", utilization.Month, Filters{}, testNow)
	require.NoError(t, err)

	// The person row survives with empty roles and zero totals; the
	// display name falls back to the email.
	require.Len(t, view.Rows, 1)
	row := view.Rows[0]
	assert.Equal(t, "ada@example.com", row.PersonName)
	assert.Empty(t, row.Roles)
	assert.Equal(t, 0, row.MaxPct)
	assert.Equal(t, 0.0, row.AvgPct)
}

func TestView_OpenEndedRoleIsVisible(t *testing.T) {
	svc := newTestService(
		[]people.Person{{ID: "p1", FirstName: "Ada"}},
		[]roleplans.AssignedRole{
			assigned("p1", "forever", nil, nil, 40, true),
		},
	)

	view, err := svc.View(context.Background(), "t", utilization.Week, Filters{}, testNow)
	require.NoError(t, err)

	require.Len(t, view.Rows, 1)
	require.Len(t, view.Rows[0].Roles, 1)
	bar := view.Rows[0].Roles[0].Bar
	assert.Equal(t, 0, bar.Col)
	assert.Equal(t, len(view.Buckets), bar.Span)
}

func TestView_Filters(t *testing.T) {
	clientA := strPtr("client-a")
	roleA := assigned("p1", "a", datePtr(2025, time.January, 1), datePtr(2025, time.March, 31), 50, true)
	roleA.ProjectClientID = clientA
	roleB := assigned("p1", "b", datePtr(2025, time.January, 1), datePtr(2025, time.March, 31), 30, false)

	persons := []people.Person{{ID: "p1", FirstName: "Ada"}, {ID: "p2", FirstName: "Grace"}}
	svc := newTestService(persons, []roleplans.AssignedRole{roleA, roleB})

	ctx := context.Background()

	t.Run("project", func(t *testing.T) {
		view, err := svc.View(ctx, "t", utilization.Month, Filters{ProjectID: "a"}, testNow)
		require.NoError(t, err)
		require.Len(t, view.Rows[0].Roles, 1)
		assert.Equal(t, "role-a", view.Rows[0].Roles[0].Role.ID)
	})

	t.Run("client", func(t *testing.T) {
		view, err := svc.View(ctx, "t", utilization.Month, Filters{ClientID: "client-a"}, testNow)
		require.NoError(t, err)
		require.Len(t, view.Rows[0].Roles, 1)
		assert.Equal(t, "role-a", view.Rows[0].Roles[0].Role.ID)
	})

	t.Run("billable only", func(t *testing.T) {
		view, err := svc.View(ctx, "t", utilization.Month, Filters{Billable: "billable"}, testNow)
		require.NoError(t, err)
		require.Len(t, view.Rows[0].Roles, 1)
		assert.Equal(t, 50, view.Rows[0].MaxPct)
	})

	t.Run("nonbillable only", func(t *testing.T) {
		view, err := svc.View(ctx, "t", utilization.Month, Filters{Billable: "nonbillable"}, testNow)
		require.NoError(t, err)
		require.Len(t, view.Rows[0].Roles, 1)
		assert.Equal(t, 30, view.Rows[0].MaxPct)
	})

	t.Run("person narrows the rows", func(t *testing.T) {
		view, err := svc.View(ctx, "t", utilization.Month, Filters{PersonID: "p2"}, testNow)
		require.NoError(t, err)
		require.Len(t, view.Rows, 1)
		assert.Equal(t, "p2", view.Rows[0].PersonID)
		assert.Empty(t, view.Rows[0].Roles)
	})
}

func TestView_ProjectLabelFallbacks(t *testing.T) {
	mk := func(name, harvestName *string) roleplans.AssignedRole {
		ar := assigned("p1", "x", datePtr(2025, time.January, 1), datePtr(2025, time.January, 31), 10, true)
		ar.ProjectName = name
		ar.ProjectHarvestName = harvestName
		return ar
	}

	cases := []struct {
		name string
		ar   roleplans.AssignedRole
		want string
	}{
		{"local name wins", mk(strPtr("Website"), strPtr("HRV Website")), "Website"},
		{"harvest name fallback", mk(nil, strPtr("HRV Website")), "HRV Website"},
		{"empty local name skipped", mk(strPtr(""), strPtr("HRV Website")), "HRV Website"},
		{"placeholder", mk(nil, nil), "Unnamed Project"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, projectLabel(tc.ar))
		})
	}
}
