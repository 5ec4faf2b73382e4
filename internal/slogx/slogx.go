// Package slogx holds the slog setup shared by the command and the batch workers.
package slogx

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ChanWriter buffers writes and sends complete lines to a channel.
// Paired with slog.TextHandler it lets many workers log through one writer goroutine.
type ChanWriter struct {
	Ch      chan<- string
	Buf     []byte
	Dropped int // lines discarded because the channel was full
}

func (w *ChanWriter) Write(p []byte) (n int, err error) {
	w.Buf = append(w.Buf, p...)
	for {
		i := bytes.IndexByte(w.Buf, '\n')
		if i < 0 {
			break
		}
		line := string(w.Buf[:i])
		w.Buf = w.Buf[i+1:]
		select {
		case w.Ch <- line:
		default:
			w.Dropped++
		}
	}
	return len(p), nil
}

// NewChanLogger creates a text logger at level that writes complete lines to ch.
func NewChanLogger(ch chan<- string, level slog.Level) *slog.Logger {
	return New(&ChanWriter{Ch: ch}, level)
}

// New creates a text logger writing to w.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// Discard is a logger that drops everything (tests).
var Discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// ParseLevel converts string (debug|info|warn|error) to slog.Level. Unknown → info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewDefault creates a logger writing to stderr with the given level string.
func NewDefault(level string) *slog.Logger {
	return New(os.Stderr, ParseLevel(level))
}
