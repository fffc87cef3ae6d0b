// Package utilization is the pure computation core behind the
// assignments calendar: it slices a display window into month or week
// buckets, aggregates role-plan allocation percentages per bucket, and
// lays out each role plan as a column span for grid rendering. It
// performs no I/O and only reads its inputs, so it is safe to call from
// any number of requests at once.
package utilization

import (
	"math"
	"time"
)

// Interval is one role plan as the engine sees it: an optionally
// open-ended date range carrying an allocation percentage.
type Interval struct {
	Start         *time.Time
	End           *time.Time
	AllocationPct int
}

// Summary aggregates one person's intervals over a window.
type Summary struct {
	PerBucket []int   `json:"per_bucket"`
	AvgPct    float64 `json:"avg_pct"`
	MaxPct    int     `json:"max_pct"`
}

// Overbooked reports whether the peak bucket allocation exceeds a full
// capacity, strictly.
func (s Summary) Overbooked() bool {
	return s.MaxPct > 100
}

// Compute sums allocation percentages per bucket for every interval
// overlapping that bucket. Intervals with no overlap against the window
// contribute nothing; the rest have their bounds clamped into the
// window. Clamping decides which buckets an interval touches, never the
// amount added, which is always the full allocation. Negative
// allocations count as zero.
func Compute(w Window, g Granularity, intervals []Interval) Summary {
	buckets := w.Buckets(g)
	per := make([]int, len(buckets))

	for _, iv := range intervals {
		if !Overlaps(iv.Start, iv.End, w.Start, w.End) {
			continue
		}

		s := w.Start
		if iv.Start != nil {
			s = *iv.Start
		}
		e := w.End
		if iv.End != nil {
			e = *iv.End
		}
		rs := clampDate(s, w.Start, w.End)
		re := clampDate(e, w.Start, w.End)

		alloc := iv.AllocationPct
		if alloc < 0 {
			alloc = 0
		}

		for i, b := range buckets {
			if !rs.After(b.End) && !re.Before(b.Start) {
				per[i] += alloc
			}
		}
	}

	sum := 0
	max := 0
	for _, v := range per {
		sum += v
		if v > max {
			max = v
		}
	}

	avg := 0.0
	if len(per) > 0 {
		avg = math.Round(float64(sum)/float64(len(per))*10) / 10
	}

	return Summary{PerBucket: per, AvgPct: avg, MaxPct: max}
}
