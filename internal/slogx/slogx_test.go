package slogx

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChanWriterSplitsLines(t *testing.T) {
	ch := make(chan string, 4)
	w := &ChanWriter{Ch: ch}

	n, err := w.Write([]byte("first\nsec"))
	require.NoError(t, err)
	assert.Equal(t, 9, n)
	assert.Equal(t, "first", <-ch)
	assert.Empty(t, ch)

	_, _ = w.Write([]byte("ond\n"))
	assert.Equal(t, "second", <-ch)
	assert.Empty(t, w.Buf)
}

func TestChanWriterDropsWhenFull(t *testing.T) {
	ch := make(chan string, 1)
	w := &ChanWriter{Ch: ch}

	_, _ = w.Write([]byte("a\nb\nc\n"))
	assert.Equal(t, "a", <-ch)
	assert.Equal(t, 2, w.Dropped)
}

func TestNewChanLogger(t *testing.T) {
	ch := make(chan string, 4)
	logger := NewChanLogger(ch, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("job ok", "ticker", "AAPL")

	line := <-ch
	assert.Contains(t, line, "msg=\"job ok\"")
	assert.Contains(t, line, "ticker=AAPL")
	assert.Empty(t, ch)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel(" DEBUG "))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, slog.LevelWarn).Info("skip")
	assert.Zero(t, buf.Len())
	New(&buf, slog.LevelWarn).Warn("keep")
	assert.Contains(t, buf.String(), "level=WARN")
}
