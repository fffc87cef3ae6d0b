package utilization

// Bar is the horizontal grid placement of one role plan: a zero-based
// bucket column plus the number of buckets it covers. Col+Span-1 never
// exceeds the last bucket index and Span is at least 1.
type Bar struct {
	Col  int `json:"col"`
	Span int `json:"span"`
}

// Layout clamps the interval into the window and maps its bounds onto
// bucket indices at the given granularity. Overlapping bars for the same
// person are returned as-is; stacking them is the renderer's problem.
func (w Window) Layout(g Granularity, iv Interval) Bar {
	n := w.BucketCount(g)

	start := w.Start
	if iv.Start != nil {
		start = *iv.Start
	}
	end := w.End
	if iv.End != nil {
		end = *iv.End
	}
	start = clampDate(start, w.Start, w.End)
	end = clampDate(end, w.Start, w.End)

	var startIdx, endIdx int
	if g == Week {
		base := StartOfISOWeek(w.Start)
		startIdx = weekDiff(base, StartOfISOWeek(start))
		endIdx = weekDiff(base, StartOfISOWeek(end))
	} else {
		base := StartOfMonth(w.Start)
		startIdx = monthDiff(base, start)
		endIdx = monthDiff(base, end)
	}

	startIdx = clampIndex(startIdx, n)
	endIdx = clampIndex(endIdx, n)

	span := endIdx - startIdx + 1
	if span < 1 {
		span = 1
	}
	return Bar{Col: startIdx, Span: span}
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}
