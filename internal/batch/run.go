// Package batch resamples every crawled bar packet under a data directory with a bounded worker group.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"us-resample/internal/interval"
	"us-resample/internal/model"
	"us-resample/internal/resample"
	"us-resample/internal/saver"
	"us-resample/internal/slogx"
)

var errNoData = errors.New("no data")

// Options configures a Runner.
type Options struct {
	SourceRoot   string
	OutputRoot   string
	ProgressPath string
	Source       time.Duration
	Target       time.Duration
	AnchorMode   string
	Anchor       []time.Time
	Workers      int
	LogLevel     slog.Level
	Heartbeat    time.Duration // 0 disables heartbeat logs
	LogOutput    io.Writer     // fan-in log destination, stdout when nil
}

// Runner loads packets, resamples them and saves the result.
type Runner struct {
	Loader saver.PacketLoader
	Saver  saver.PacketSaver
	Opts   Options
}

// NewRunner creates a Runner. Workers below 1 are raised to 1.
func NewRunner(loader saver.PacketLoader, s saver.PacketSaver, opts Options) *Runner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.AnchorMode == "" {
		opts.AnchorMode = AnchorNone
	}
	return &Runner{Loader: loader, Saver: s, Opts: opts}
}

// Summary is the outcome of one RunParallel call.
type Summary struct {
	RunID       string
	Success     int
	Failed      int
	Bars        int
	SuccessList []string
	FailedList  []failedEntry
}

// RunOnce runs one batch cycle, sends done when finished.
func (r *Runner) RunOnce(progressUpdates chan<- ProgressUpdate, done chan<- Done, shutdown <-chan struct{}) {
	defer func() { done <- Done{} }()

	jobs, err := FilterJobs(r.Opts.SourceRoot, r.Opts.OutputRoot, r.Loader.Extension(), r.Saver.Extension(), r.Opts.ProgressPath)
	if err != nil {
		slog.Error("list packets", "error", err)
		return
	}
	if len(jobs) == 0 {
		slog.Info("no packets to resample, skip")
		return
	}
	from, to := interval.Format(r.Opts.Source), interval.Format(r.Opts.Target)
	ratio := "?"
	if ri, err := interval.Ratio(from, to); err == nil {
		ratio = ri.Label
	}
	slog.Info("packets to resample", "jobs", len(jobs), "from", from, "to", to, "ratio", ratio, "anchor", r.Opts.AnchorMode)

	sum := r.RunParallel(jobs, progressUpdates, shutdown)
	if len(sum.SuccessList) > 0 || len(sum.FailedList) > 0 {
		if err := writeRunReport(r.Opts.OutputRoot, sum.RunID, sum.SuccessList, sum.FailedList); err != nil {
			slog.Warn("could not write run report", "error", err)
		} else {
			slog.Info("run report saved", "success", len(sum.SuccessList), "failed", len(sum.FailedList))
		}
	}
	slog.Info("resample done", "run_id", sum.RunID, "success", sum.Success, "failed", sum.Failed, "bars", sum.Bars)
}

// RunParallel processes jobs with at most Opts.Workers in flight. Closing shutdown stops
// dispatching new jobs; jobs already running finish.
func (r *Runner) RunParallel(jobs []Job, progressUpdates chan<- ProgressUpdate, shutdown <-chan struct{}) Summary {
	runID := uuid.NewString()
	out := r.Opts.LogOutput
	if out == nil {
		out = os.Stdout
	}

	logs := make(chan string, 2048)
	logger := slogx.NewChanLogger(logs, r.Opts.LogLevel).With("run_id", runID)
	errs := make(chan errorEntry, 64)
	logDone := make(chan struct{})
	go func() {
		defer close(logDone)
		runLogWriter(out, logs)
	}()
	errDone := make(chan struct{})
	go func() {
		defer close(errDone)
		runErrorHandler(errs, logger)
	}()

	t := newTally()
	results := make(chan JobResult, len(jobs)+64)
	resDone := make(chan struct{})
	go func() {
		defer close(resDone)
		runJobResultCollector(results, t)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	hbDone := make(chan struct{})
	go func() {
		defer close(hbDone)
		runHeartbeat(ctx, r.Opts.Heartbeat, len(jobs), t, logger)
	}()

	var g errgroup.Group
	g.SetLimit(r.Opts.Workers)
dispatch:
	for i, job := range jobs {
		select {
		case <-shutdown:
			logger.Info("shutdown, stop dispatching", "pending", len(jobs)-i)
			break dispatch
		default:
		}
		job := job
		g.Go(func() error {
			res := r.runJob(job, logger)
			if !res.Ok {
				select {
				case errs <- errorEntry{Ticker: job.Ticker, File: job.Key, Err: errors.New(res.Reason)}:
				default:
				}
			} else if progressUpdates != nil {
				select {
				case progressUpdates <- ProgressUpdate{Key: job.Key, ModTime: job.ModTime}:
				default:
					logger.Warn("progress channel full, skip update", "file", job.Key)
				}
			}
			results <- res
			return nil
		})
	}
	_ = g.Wait()
	close(results)
	<-resDone
	cancel()
	<-hbDone

	success, failed, bars := t.snapshot()
	logger.Info("summary", "total_bars", bars, "success", success, "failed", failed)
	tickers := make([]string, 0, len(t.barsPerTicker))
	for tk := range t.barsPerTicker {
		tickers = append(tickers, tk)
	}
	sort.Strings(tickers)
	for _, tk := range tickers {
		logger.Debug("summary ticker", "ticker", tk, "bars", t.barsPerTicker[tk])
	}
	if len(t.failedList) > 0 {
		logger.Info("summary failed", "count", len(t.failedList), "reasons", joinFailedReasons(t.failedList))
	}

	close(errs)
	<-errDone
	close(logs)
	<-logDone

	return Summary{
		RunID:       runID,
		Success:     success,
		Failed:      failed,
		Bars:        bars,
		SuccessList: t.successList,
		FailedList:  t.failedList,
	}
}

func (r *Runner) runJob(job Job, logger *slog.Logger) JobResult {
	res := JobResult{Ticker: job.Ticker, File: job.Key}
	in, out, err := r.process(job)
	res.BarsIn, res.BarsOut = in, out
	if err != nil {
		res.Reason = err.Error()
		logger.Error("resample fail", "ticker", job.Ticker, "file", job.Key, "reason", res.Reason)
		return res
	}
	res.Ok = true
	logger.Info("resample ok", "ticker", job.Ticker, "file", job.Key, "bars_in", in, "bars_out", out)
	return res
}

func (r *Runner) process(job Job) (int, int, error) {
	bars, err := r.Loader.Load(job.Source)
	if err != nil {
		return 0, 0, fmt.Errorf("load: %w", err)
	}
	if len(bars) == 0 {
		return 0, 0, errNoData
	}
	out, err := resample.ResampleDuration(bars, r.Opts.Source, r.Opts.Target, r.anchorFor(bars)...)
	if err != nil {
		return len(bars), 0, fmt.Errorf("resample: %w", err)
	}
	if len(out) == 0 {
		return len(bars), 0, errNoData
	}
	if err := os.MkdirAll(filepath.Dir(job.Target), 0755); err != nil {
		return len(bars), 0, fmt.Errorf("create folder: %w", err)
	}
	if err := r.Saver.Save(out, job.Target); err != nil {
		return len(bars), 0, fmt.Errorf("save: %w", err)
	}
	return len(bars), len(out), nil
}

func (r *Runner) anchorFor(bars []model.Bar) []time.Time {
	switch r.Opts.AnchorMode {
	case AnchorFixed:
		return r.Opts.Anchor
	case AnchorPacket:
		last := bars[0].Timestamp
		for _, b := range bars[1:] {
			last = max(last, b.Timestamp)
		}
		return []time.Time{time.UnixMilli(last).UTC()}
	default:
		return nil
	}
}
