package batch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

func runLogWriter(w io.Writer, lines <-chan string) {
	for s := range lines {
		fmt.Fprintln(w, s)
	}
}

type errorEntry struct {
	Ticker string
	File   string
	Err    error
}

func runErrorHandler(errors <-chan errorEntry, logger *slog.Logger) {
	for e := range errors {
		logger.Error("resample error", "ticker", e.Ticker, "file", e.File, "error", e.Err)
	}
}

// tally accumulates job results; guarded by mu since the heartbeat reads it concurrently.
type tally struct {
	mu            sync.Mutex
	success       int
	failed        int
	barsPerTicker map[string]int
	successList   []string
	failedList    []failedEntry
}

func newTally() *tally {
	return &tally{barsPerTicker: make(map[string]int)}
}

func (t *tally) add(r JobResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if r.Ok {
		t.success++
		t.successList = appendSuccess(t.successList, r.Ticker)
		t.barsPerTicker[r.Ticker] += r.BarsOut
		return
	}
	t.failed++
	t.failedList = append(t.failedList, failedEntry{Ticker: r.Ticker, File: r.File, Reason: r.Reason})
}

func (t *tally) snapshot() (success, failed, bars int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, n := range t.barsPerTicker {
		bars += n
	}
	return t.success, t.failed, bars
}

func runJobResultCollector(results <-chan JobResult, t *tally) {
	for r := range results {
		t.add(r)
	}
}

func runHeartbeat(ctx context.Context, interval time.Duration, totalJobs int, t *tally, logger *slog.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s, f, bars := t.snapshot()
			logger.Info("heartbeat", "done", s+f, "total", totalJobs, "success", s, "failed", f, "bars", bars)
		}
	}
}
