package utilization

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func janToMarch() Window {
	return Window{Start: date(2025, time.January, 1), End: EndOfMonth(date(2025, time.March, 1))}
}

func TestWindowAround(t *testing.T) {
	now := date(2025, time.June, 17)
	w := WindowAround(now, 6, 6)

	assert.Equal(t, date(2024, time.December, 1), w.Start)
	assert.Equal(t, date(2025, time.December, 1).AddDate(0, 1, 0).Add(-time.Nanosecond), w.End)
	assert.Equal(t, 13, w.BucketCount(Month))
}

func TestBuckets_Month(t *testing.T) {
	w := janToMarch()
	buckets := w.Buckets(Month)

	require.Len(t, buckets, 3)
	assert.Equal(t, date(2025, time.January, 1), buckets[0].Start)
	assert.Equal(t, date(2025, time.February, 1), buckets[1].Start)
	assert.Equal(t, date(2025, time.March, 1), buckets[2].Start)
	assert.Equal(t, EndOfMonth(buckets[2].Start), buckets[2].End)
	assert.Equal(t, len(buckets), w.BucketCount(Month))
}

func TestBuckets_Week(t *testing.T) {
	// Window starting on a Wednesday: the first bucket must begin on the
	// Monday before it.
	w := Window{Start: date(2025, time.January, 1), End: EndOfISOWeek(date(2025, time.January, 26))}
	buckets := w.Buckets(Week)

	require.NotEmpty(t, buckets)
	assert.Equal(t, date(2024, time.December, 30), buckets[0].Start)
	assert.Equal(t, time.Monday, buckets[0].Start.Weekday())
	for _, b := range buckets {
		assert.Equal(t, time.Monday, b.Start.Weekday())
		assert.Equal(t, time.Sunday, b.End.Weekday())
	}
	assert.Equal(t, len(buckets), w.BucketCount(Week))
}

func TestOverlaps(t *testing.T) {
	from := date(2025, time.January, 1)
	to := date(2025, time.March, 31)

	t.Run("open-ended both sides spans everything", func(t *testing.T) {
		assert.True(t, Overlaps(nil, nil, from, to))
	})

	t.Run("entirely before window", func(t *testing.T) {
		assert.False(t, Overlaps(datePtr(2024, time.May, 1), datePtr(2024, time.June, 1), from, to))
	})

	t.Run("entirely after window", func(t *testing.T) {
		assert.False(t, Overlaps(datePtr(2025, time.April, 1), nil, from, to))
	})

	t.Run("touching the boundary counts", func(t *testing.T) {
		assert.True(t, Overlaps(datePtr(2024, time.May, 1), datePtr(2025, time.January, 1), from, to))
		assert.True(t, Overlaps(datePtr(2025, time.March, 31), nil, from, to))
	})
}

func TestCompute_SingleRole(t *testing.T) {
	w := janToMarch()
	s := Compute(w, Month, []Interval{
		{Start: datePtr(2025, time.January, 15), End: datePtr(2025, time.February, 10), AllocationPct: 50},
	})

	assert.Equal(t, []int{50, 50, 0}, s.PerBucket)
	assert.InDelta(t, 33.3, s.AvgPct, 0.001)
	assert.Equal(t, 50, s.MaxPct)
	assert.False(t, s.Overbooked())
}

func TestCompute_OverlappingRoles(t *testing.T) {
	w := janToMarch()
	s := Compute(w, Month, []Interval{
		{Start: datePtr(2025, time.January, 1), End: datePtr(2025, time.March, 31), AllocationPct: 70},
		{Start: datePtr(2025, time.February, 1), End: datePtr(2025, time.February, 28), AllocationPct: 50},
	})

	assert.Equal(t, []int{70, 120, 70}, s.PerBucket)
	assert.Equal(t, 120, s.MaxPct)
	assert.True(t, s.Overbooked())
}

func TestCompute_OpenEndedRoleFillsWindow(t *testing.T) {
	w := janToMarch()
	s := Compute(w, Month, []Interval{{AllocationPct: 80}})

	assert.Equal(t, []int{80, 80, 80}, s.PerBucket)
	assert.InDelta(t, 80.0, s.AvgPct, 0.001)
}

func TestCompute_IntervalOutsideWindow(t *testing.T) {
	w := janToMarch()

	t.Run("before", func(t *testing.T) {
		s := Compute(w, Month, []Interval{
			{Start: datePtr(2024, time.June, 1), End: datePtr(2024, time.July, 1), AllocationPct: 100},
		})
		assert.Equal(t, []int{0, 0, 0}, s.PerBucket)
		assert.Equal(t, 0, s.MaxPct)
	})

	t.Run("after", func(t *testing.T) {
		s := Compute(w, Month, []Interval{
			{Start: datePtr(2025, time.June, 1), End: nil, AllocationPct: 100},
		})
		assert.Equal(t, []int{0, 0, 0}, s.PerBucket)
	})

	t.Run("mixed with a visible interval", func(t *testing.T) {
		// The outside intervals must not leak onto the boundary buckets.
		s := Compute(w, Month, []Interval{
			{Start: datePtr(2024, time.June, 1), End: datePtr(2024, time.July, 1), AllocationPct: 100},
			{Start: datePtr(2025, time.February, 1), End: datePtr(2025, time.February, 28), AllocationPct: 40},
			{Start: datePtr(2025, time.June, 1), End: nil, AllocationPct: 100},
		})
		assert.Equal(t, []int{0, 40, 0}, s.PerBucket)
		assert.Equal(t, 40, s.MaxPct)
	})
}

func TestCompute_ContainedIntervalHitsExactBuckets(t *testing.T) {
	w := janToMarch()
	// Fully inside February only.
	s := Compute(w, Month, []Interval{
		{Start: datePtr(2025, time.February, 3), End: datePtr(2025, time.February, 20), AllocationPct: 40},
	})

	assert.Equal(t, []int{0, 40, 0}, s.PerBucket)
}

func TestCompute_NegativeAllocationCountsAsZero(t *testing.T) {
	w := janToMarch()
	s := Compute(w, Month, []Interval{{AllocationPct: -25}})

	assert.Equal(t, []int{0, 0, 0}, s.PerBucket)
	assert.Equal(t, 0.0, s.AvgPct)
}

func TestCompute_EmptyInputs(t *testing.T) {
	w := janToMarch()

	s := Compute(w, Month, nil)
	assert.Equal(t, []int{0, 0, 0}, s.PerBucket)
	assert.Equal(t, 0.0, s.AvgPct)
	assert.Equal(t, 0, s.MaxPct)
	assert.False(t, s.Overbooked())
}

func TestCompute_WeekGranularity(t *testing.T) {
	// Two full ISO weeks: Mon Jan 6 .. Sun Jan 19 2025.
	w := Window{Start: date(2025, time.January, 6), End: EndOfISOWeek(date(2025, time.January, 13))}
	require.Equal(t, 2, w.BucketCount(Week))

	s := Compute(w, Week, []Interval{
		{Start: datePtr(2025, time.January, 6), End: datePtr(2025, time.January, 10), AllocationPct: 60},
		{Start: datePtr(2025, time.January, 9), End: datePtr(2025, time.January, 15), AllocationPct: 50},
	})

	assert.Equal(t, []int{110, 50}, s.PerBucket)
	assert.Equal(t, 110, s.MaxPct)
	assert.InDelta(t, 80.0, s.AvgPct, 0.001)
	assert.True(t, s.Overbooked())
}

func TestCompute_AvgRounding(t *testing.T) {
	w := janToMarch()
	// Sum 100 over 3 buckets = 33.333... -> 33.3
	s := Compute(w, Month, []Interval{
		{Start: datePtr(2025, time.January, 1), End: datePtr(2025, time.January, 31), AllocationPct: 100},
	})
	assert.Equal(t, 33.3, s.AvgPct)
}
