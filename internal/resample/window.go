package resample

import (
	"slices"
	"time"
)

// Window is the half-open range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls in [Start, End).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Windows returns the data-anchored grid: the first window starts at first, each next one size later,
// until a window would start after last.
func Windows(first, last time.Time, size time.Duration) []Window {
	if size <= 0 {
		return nil
	}
	n := 1
	if last.After(first) {
		n = int(last.Sub(first)/size) + 1
	}
	windows := make([]Window, 0, n)
	for start := first; !start.After(last); start = start.Add(size) {
		windows = append(windows, Window{Start: start, End: start.Add(size)})
	}
	if len(windows) == 0 {
		windows = append(windows, Window{Start: first, End: first.Add(size)})
	}
	return windows
}

// AnchoredWindows returns a grid phase-locked to the maximum anchor timestamp. The first window is the
// earliest grid boundary at or after first; the terminal window ends at or before the anchor.
// Windows starting after last are skipped since they can hold no bars.
// When the anchor leaves no room for a full window, the single window at the first boundary is returned.
func AnchoredWindows(first, last time.Time, size time.Duration, anchor []time.Time) []Window {
	if size <= 0 {
		return nil
	}
	if len(anchor) == 0 {
		return Windows(first, last, size)
	}
	a := slices.MaxFunc(anchor, func(x, y time.Time) int { return x.Compare(y) })

	offset := a.Sub(first) % size
	if offset < 0 {
		offset += size
	}
	start := first.Add(offset)

	end := a.Add(-size)
	if last.Before(end) {
		end = last
	}

	var windows []Window
	for s := start; !s.After(end); s = s.Add(size) {
		windows = append(windows, Window{Start: s, End: s.Add(size)})
	}
	if len(windows) == 0 {
		windows = append(windows, Window{Start: start, End: start.Add(size)})
	}
	return windows
}
