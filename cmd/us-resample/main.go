package main

import (
	"log/slog"
	"os"

	"us-resample/internal/app"
	"us-resample/internal/slogx"
)

func init() {
	slog.SetDefault(slogx.NewDefault("info"))
}

func main() {
	a, err := InitializeApp()
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		os.Exit(1)
	}
	cfg := a.Config

	slog.SetDefault(slogx.NewDefault(cfg.LogLevel))
	if _, err := os.Stat(cfg.SourceRoot()); err != nil {
		slog.Error("source dir not found", "dir", cfg.SourceRoot(), "error", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(cfg.OutputRoot(), 0755); err != nil {
		slog.Error("failed to create output dir", "error", err)
		os.Exit(1)
	}
	slog.Info("resample",
		"source_dir", cfg.SourceRoot(), "input_format", cfg.InputFormat,
		"output_dir", cfg.OutputRoot(), "save_format", cfg.SaveFormat,
		"from", cfg.SourceInterval, "to", cfg.TargetInterval,
		"anchor", cfg.AnchorMode, "workers", cfg.Workers, "daily", cfg.Daily)

	app.RunFlow(cfg, a.Runner)
}
