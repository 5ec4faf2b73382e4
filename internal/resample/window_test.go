package resample

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func starts(ws []Window) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.Start.Format("15:04")
	}
	return out
}

func TestWindows(t *testing.T) {
	ws := Windows(at("09:30"), at("09:39"), 5*time.Minute)
	assert.Equal(t, []string{"09:30", "09:35"}, starts(ws))
	for _, w := range ws {
		assert.Equal(t, 5*time.Minute, w.End.Sub(w.Start))
	}

	// A bar exactly on the next boundary opens a new window.
	ws = Windows(at("09:30"), at("09:40"), 5*time.Minute)
	assert.Equal(t, []string{"09:30", "09:35", "09:40"}, starts(ws))

	ws = Windows(at("09:30"), at("09:30"), time.Hour)
	assert.Equal(t, []string{"09:30"}, starts(ws))

	assert.Nil(t, Windows(at("09:30"), at("09:40"), 0))
}

func TestWindowsAreContiguous(t *testing.T) {
	ws := Windows(at("09:30"), at("15:59"), 15*time.Minute)
	require.NotEmpty(t, ws)
	for i := 1; i < len(ws); i++ {
		assert.Equal(t, ws[i-1].End, ws[i].Start)
	}
	assert.True(t, ws[len(ws)-1].Contains(at("15:59")))
}

func TestAnchoredWindows(t *testing.T) {
	size := 5 * time.Minute
	tests := []struct {
		name   string
		anchor time.Time
		last   time.Time
		want   []string
	}{
		{"anchor on last bar", at("09:39"), at("09:39"), []string{"09:34"}},
		{"anchor on grid", at("09:40"), at("09:39"), []string{"09:30", "09:35"}},
		{"anchor far ahead stops at last bar", at("12:02"), at("09:49"), []string{"09:32", "09:37", "09:42", "09:47"}},
		{"anchor before data", at("09:00"), at("09:39"), []string{"09:30"}},
		{"anchor inside first window", at("09:32"), at("09:39"), []string{"09:32"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := AnchoredWindows(at("09:30"), tt.last, size, []time.Time{tt.anchor})
			assert.Equal(t, tt.want, starts(ws))
		})
	}
}

func TestAnchoredWindowsWithoutAnchor(t *testing.T) {
	assert.Equal(t,
		Windows(at("09:30"), at("09:39"), 5*time.Minute),
		AnchoredWindows(at("09:30"), at("09:39"), 5*time.Minute, nil))
}

func TestWindowContains(t *testing.T) {
	w := Window{Start: at("09:30"), End: at("09:35")}
	assert.True(t, w.Contains(at("09:30")))
	assert.True(t, w.Contains(at("09:34")))
	assert.False(t, w.Contains(at("09:35")))
	assert.False(t, w.Contains(at("09:29")))
}
