package roleplans

import (
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("role plan not found")

// RolePlan is a time-bounded, percentage-allocated assignment of at
// most one person to one project. Nil start/end dates mean unbounded on
// that side.
type RolePlan struct {
	ID                string     `json:"id"`
	ProjectID         string     `json:"project_id"`
	PersonID          *string    `json:"person_id,omitempty"`
	RoleName          string     `json:"role_name"`
	AllocationPct     int        `json:"allocation_pct"`
	Billable          bool       `json:"billable"`
	ExpectedRateCents *int64     `json:"expected_rate_cents,omitempty"`
	Notes             *string    `json:"notes,omitempty"`
	StartDate         *time.Time `json:"start_date,omitempty"`
	EndDate           *time.Time `json:"end_date,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// ValidationError names the input field that failed and why.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Validate enforces the write-time invariants shared by the create and
// update paths: allocation within [0, 100], ordered dates, non-negative
// rate.
func (rp *RolePlan) Validate() error {
	if rp.RoleName == "" {
		return &ValidationError{Field: "role_name", Reason: "required"}
	}
	if rp.AllocationPct < 0 || rp.AllocationPct > 100 {
		return &ValidationError{Field: "allocation_pct", Reason: "must be between 0 and 100"}
	}
	if rp.ExpectedRateCents != nil && *rp.ExpectedRateCents < 0 {
		return &ValidationError{Field: "expected_rate_cents", Reason: "must not be negative"}
	}
	if rp.StartDate != nil && rp.EndDate != nil && rp.StartDate.After(*rp.EndDate) {
		return &ValidationError{Field: "end_date", Reason: "must not be before start_date"}
	}
	return nil
}
