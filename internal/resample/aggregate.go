package resample

import (
	"time"

	"us-resample/internal/model"
)

// AggregateWindow combines the bars whose timestamp lies in [start, end) into one bar stamped start.
// ok is false when no bar falls in the window.
func AggregateWindow(bars []model.Bar, start, end time.Time) (bar model.Bar, ok bool) {
	from, to := model.Millis(start), model.Millis(end)
	var block []model.Bar
	for _, b := range bars {
		if b.Timestamp >= from && b.Timestamp < to {
			block = append(block, b)
		}
	}
	if len(block) == 0 {
		return model.Bar{}, false
	}
	return combine(block, from), true
}

// combine reduces a non-empty, time-ordered block: first open, max high, min low, last close,
// summed volume and transactions, last adjusted close, volume weighted VWAP.
func combine(block []model.Bar, ts int64) model.Bar {
	first, last := block[0], block[len(block)-1]
	out := model.Bar{
		Timestamp: ts,
		Open:      first.Open,
		High:      first.High,
		Low:       first.Low,
		Close:     last.Close,
		AdjClose:  last.AdjClose,
	}
	var notional float64
	for _, b := range block {
		out.High = max(out.High, b.High)
		out.Low = min(out.Low, b.Low)
		out.Volume += b.Volume
		out.Transactions += b.Transactions
		notional += b.VWAP * float64(b.Volume)
	}
	if out.Volume > 0 {
		out.VWAP = notional / float64(out.Volume)
	}
	return out
}
