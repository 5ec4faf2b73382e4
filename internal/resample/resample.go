// Package resample aggregates fixed-interval OHLCV bars into coarser fixed-width windows.
//
// Windows are phase-locked either to the first input bar or, when an anchor series is given,
// to the latest anchor timestamp. Windows without bars produce no output row.
// The package does no I/O and keeps no state between calls.
package resample

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"us-resample/internal/interval"
	"us-resample/internal/model"
)

var (
	ErrInvalidIntervalFormat = interval.ErrInvalidFormat
	ErrNonDivisibleInterval  = interval.ErrNonDivisible
	ErrEmptyInput            = errors.New("no input bars")
)

// Resample converts bars sampled every source into bars of target width, e.g. Resample(bars, "1m", "5m").
// When anchor is non-empty, window boundaries are aligned so that the last window ends at or before the
// latest anchor timestamp. The input slice is never modified.
func Resample(bars []model.Bar, source, target string, anchor ...time.Time) ([]model.Bar, error) {
	s, err := interval.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("source interval: %w", err)
	}
	t, err := interval.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("target interval: %w", err)
	}
	return ResampleDuration(bars, s, t, anchor...)
}

// ResampleDuration is Resample with already parsed intervals.
func ResampleDuration(bars []model.Bar, source, target time.Duration, anchor ...time.Time) ([]model.Bar, error) {
	if len(bars) == 0 {
		return nil, ErrEmptyInput
	}
	sorted := slices.Clone(bars)
	slices.SortStableFunc(sorted, func(a, b model.Bar) int { return cmp.Compare(a.Timestamp, b.Timestamp) })
	if source == target {
		return sorted, nil
	}

	k, err := interval.Factor(source, target)
	if err != nil {
		return nil, err
	}

	first, last := sorted[0].Time(), sorted[len(sorted)-1].Time()
	var windows []Window
	if len(anchor) > 0 {
		windows = AnchoredWindows(first, last, target, anchor)
	} else {
		windows = Windows(first, last, target)
	}

	out := make([]model.Bar, 0, min(len(windows), len(sorted)/int(k)+1))
	i := 0
	for _, w := range windows {
		from, to := model.Millis(w.Start), model.Millis(w.End)
		for i < len(sorted) && sorted[i].Timestamp < from {
			i++
		}
		j := i
		for j < len(sorted) && sorted[j].Timestamp < to {
			j++
		}
		if j > i {
			out = append(out, combine(sorted[i:j], from))
		}
		i = j
	}
	return out, nil
}
