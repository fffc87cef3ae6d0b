package roleplans

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPlan() *RolePlan {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC)
	rate := int64(15000)
	return &RolePlan{
		ProjectID:         "p-1",
		RoleName:          "Backend Engineer",
		AllocationPct:     80,
		Billable:          true,
		ExpectedRateCents: &rate,
		StartDate:         &start,
		EndDate:           &end,
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid plan passes", func(t *testing.T) {
		require.NoError(t, validPlan().Validate())
	})

	t.Run("open-ended dates pass", func(t *testing.T) {
		rp := validPlan()
		rp.StartDate = nil
		rp.EndDate = nil
		require.NoError(t, rp.Validate())
	})

	t.Run("allocation bounds", func(t *testing.T) {
		for _, pct := range []int{0, 100} {
			rp := validPlan()
			rp.AllocationPct = pct
			assert.NoError(t, rp.Validate())
		}
		for _, pct := range []int{-1, 101, 250} {
			rp := validPlan()
			rp.AllocationPct = pct
			err := rp.Validate()
			require.Error(t, err)
			ve := err.(*ValidationError)
			assert.Equal(t, "allocation_pct", ve.Field)
		}
	})

	t.Run("end before start rejected", func(t *testing.T) {
		rp := validPlan()
		rp.StartDate, rp.EndDate = rp.EndDate, rp.StartDate
		err := rp.Validate()
		require.Error(t, err)
		assert.Equal(t, "end_date", err.(*ValidationError).Field)
	})

	t.Run("equal start and end allowed", func(t *testing.T) {
		rp := validPlan()
		rp.EndDate = rp.StartDate
		assert.NoError(t, rp.Validate())
	})

	t.Run("negative rate rejected", func(t *testing.T) {
		rp := validPlan()
		rate := int64(-1)
		rp.ExpectedRateCents = &rate
		err := rp.Validate()
		require.Error(t, err)
		assert.Equal(t, "expected_rate_cents", err.(*ValidationError).Field)
	})

	t.Run("missing role name rejected", func(t *testing.T) {
		rp := validPlan()
		rp.RoleName = ""
		err := rp.Validate()
		require.Error(t, err)
		assert.Equal(t, "role_name", err.(*ValidationError).Field)
	})
}

func TestParseDate(t *testing.T) {
	t.Run("nil and empty mean unbounded", func(t *testing.T) {
		d, err := parseDate("start_date", nil)
		require.NoError(t, err)
		assert.Nil(t, d)

		empty := ""
		d, err = parseDate("start_date", &empty)
		require.NoError(t, err)
		assert.Nil(t, d)
	})

	t.Run("parses ISO dates", func(t *testing.T) {
		v := "2025-02-14"
		d, err := parseDate("start_date", &v)
		require.NoError(t, err)
		require.NotNil(t, d)
		assert.Equal(t, time.Date(2025, time.February, 14, 0, 0, 0, 0, time.UTC), *d)
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		v := "14/02/2025"
		_, err := parseDate("end_date", &v)
		require.Error(t, err)
		assert.Equal(t, "end_date", err.(*ValidationError).Field)
	})
}
