package model

import "time"

// Bar represents one OHLCV bar (minute, 5-minute, daily etc.).
// Shared by the loaders, the resampler and the savers (json, csv, parquet).
type Bar struct {
	Timestamp    int64   `json:"t" parquet:"t"` // Unix timestamp in milliseconds, UTC
	Open         float64 `json:"o" parquet:"o"`
	High         float64 `json:"h" parquet:"h"`
	Low          float64 `json:"l" parquet:"l"`
	Close        float64 `json:"c" parquet:"c"`
	Volume       int64   `json:"v" parquet:"v"`
	VWAP         float64 `json:"vw,omitempty" parquet:"vw,optional"` // Volume weighted average price
	Transactions int64   `json:"n,omitempty" parquet:"n,optional"`   // Number of transactions
	AdjClose     float64 `json:"ac,omitempty" parquet:"ac,optional"` // Adjusted close, zero when the source has none
}

// Time returns the bar timestamp as a UTC time.
func (b Bar) Time() time.Time {
	return time.UnixMilli(b.Timestamp).UTC()
}

// Millis converts t to the Bar timestamp representation.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}
