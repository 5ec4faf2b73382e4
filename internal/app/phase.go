package app

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"us-resample/internal/batch"
)

// RunFlow orchestrates the resample loop: trigger → run → done → (daily: wait → trigger).
func RunFlow(cfg *Config, runner *batch.Runner) {
	progressUpdates := make(chan batch.ProgressUpdate, 256)
	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)
		batch.RunProgressWriter(cfg.ProgressPath(), progressUpdates)
	}()

	shutdown := make(chan struct{})
	trigger := make(chan batch.Cmd, 1)
	done := make(chan batch.Done, 1)

	go func() {
		for range trigger {
			runner.RunOnce(progressUpdates, done, shutdown)
		}
	}()
	defer func() {
		close(trigger)
		close(progressUpdates)
		<-progressDone
	}()

	trigger <- batch.Cmd{}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	for {
		select {
		case <-done:
			if !cfg.Daily {
				return
			}
			slog.Info("done, wait until next run")
			nextRun := nextRunTime(cfg, time.Now().UTC())
			waitDur := time.Until(nextRun)
			if waitDur <= 0 {
				slog.Info("next run passed, running now", "next_run", nextRun.Format("2006-01-02 15:04"))
			} else {
				slog.Info("timer waiting", "hours", waitDur.Hours(), "until", nextRun.Format("2006-01-02 15:04"))
				timer := time.NewTimer(waitDur)
				select {
				case <-timer.C:
				case sig := <-signals:
					slog.Info("received signal, stopping", "sig", sig, "restart_at", nextRun.Format("2006-01-02 15:04"))
					timer.Stop()
					return
				}
			}
			trigger <- batch.Cmd{}
		case sig := <-signals:
			slog.Info("received signal, graceful shutdown", "sig", sig)
			close(shutdown)
			<-done
			return
		}
	}
}

func nextRunTime(cfg *Config, now time.Time) time.Time {
	hour, minute := cfg.RunHour, cfg.RunMinute
	targetToday := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, time.UTC)
	if now.Before(targetToday) {
		return targetToday
	}
	tomorrow := now.AddDate(0, 0, 1)
	return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), hour, minute, 0, 0, time.UTC)
}
