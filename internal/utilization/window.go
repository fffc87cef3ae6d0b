package utilization

import "time"

// Granularity selects the bucket size of the planning window.
type Granularity string

const (
	Month Granularity = "month"
	Week  Granularity = "week"
)

// Sentinels for open-ended intervals. A nil start date means "since
// forever", a nil end date means "until forever".
var (
	farPast   = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	farFuture = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)
)

// Window is the inclusive date range utilization is computed over.
type Window struct {
	Start time.Time
	End   time.Time
}

// Bucket is one calendar-month or one ISO-week slice of a window.
type Bucket struct {
	Start time.Time
	End   time.Time
}

// WindowAround builds the display window: the start of the month
// monthsPast before now, through the end of the month monthsFuture
// after now.
func WindowAround(now time.Time, monthsPast, monthsFuture int) Window {
	return Window{
		Start: StartOfMonth(AddMonths(now, -monthsPast)),
		End:   EndOfMonth(AddMonths(now, monthsFuture)),
	}
}

// Buckets returns the ordered bucket sequence covering the window.
// Month mode yields one bucket per calendar month from the window-start
// month through the window-end month. Week mode yields one bucket per
// ISO week (Monday-start) whose Monday falls on or before a day of the
// window.
func (w Window) Buckets(g Granularity) []Bucket {
	var out []Bucket
	if g == Week {
		cursor := StartOfISOWeek(w.Start)
		last := EndOfISOWeek(w.End)
		for !cursor.After(last) {
			out = append(out, Bucket{Start: cursor, End: EndOfISOWeek(cursor)})
			cursor = cursor.AddDate(0, 0, 7)
		}
		return out
	}

	cursor := StartOfMonth(w.Start)
	last := StartOfMonth(w.End)
	for !cursor.After(last) {
		out = append(out, Bucket{Start: cursor, End: EndOfMonth(cursor)})
		cursor = cursor.AddDate(0, 1, 0)
	}
	return out
}

// BucketCount reports how many buckets the window spans at the given
// granularity without materializing them.
func (w Window) BucketCount(g Granularity) int {
	if g == Week {
		return weekDiff(StartOfISOWeek(w.Start), StartOfISOWeek(w.End)) + 1
	}
	return monthDiff(StartOfMonth(w.Start), StartOfMonth(w.End)) + 1
}

// StartOfMonth truncates to midnight on the first of the month, UTC.
func StartOfMonth(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// EndOfMonth is the last representable instant of d's month.
func EndOfMonth(d time.Time) time.Time {
	return StartOfMonth(d).AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// AddMonths shifts d by m calendar months.
func AddMonths(d time.Time, m int) time.Time {
	return d.AddDate(0, m, 0)
}

// StartOfISOWeek truncates to midnight on the Monday on or before d.
func StartOfISOWeek(d time.Time) time.Time {
	day := (int(d.Weekday()) + 6) % 7 // 0=Mon .. 6=Sun
	midnight := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.AddDate(0, 0, -day)
}

// EndOfISOWeek is the last instant of the Sunday closing d's ISO week.
func EndOfISOWeek(d time.Time) time.Time {
	return StartOfISOWeek(d).AddDate(0, 0, 7).Add(-time.Nanosecond)
}

func monthDiff(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

// weekDiff counts whole weeks between two ISO-week starts.
func weekDiff(aStart, bStart time.Time) int {
	return int(bStart.Sub(aStart) / (7 * 24 * time.Hour))
}

func clampDate(d, min, max time.Time) time.Time {
	if d.Before(min) {
		return min
	}
	if d.After(max) {
		return max
	}
	return d
}

// Overlaps reports whether the possibly open-ended interval [start, end]
// intersects [from, to]. A nil bound is treated as unbounded on that side.
func Overlaps(start, end *time.Time, from, to time.Time) bool {
	s := farPast
	if start != nil {
		s = *start
	}
	e := farFuture
	if end != nil {
		e = *end
	}
	return !s.After(to) && !e.Before(from)
}
