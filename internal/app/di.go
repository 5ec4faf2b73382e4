package app

import (
	"fmt"
	"time"

	"us-resample/internal/batch"
	"us-resample/internal/saver"
	"us-resample/internal/slogx"
)

const heartbeatInterval = 30 * time.Second

// ProvideConfig loads config from environment (for Wire).
func ProvideConfig() (*Config, error) {
	return LoadConfig()
}

// ProvidePacketLoader creates the reader for INPUT_FORMAT (for Wire).
func ProvidePacketLoader(cfg *Config) (saver.PacketLoader, error) {
	l := saver.NewPacketLoader(cfg.InputFormat)
	if l == nil {
		return nil, fmt.Errorf("unsupported INPUT_FORMAT %q (use: csv, parquet, json)", cfg.InputFormat)
	}
	return l, nil
}

// ProvidePacketSaver creates PacketSaver from config (for Wire).
// Returns error if SaveFormat is not supported.
func ProvidePacketSaver(cfg *Config) (saver.PacketSaver, error) {
	ps := saver.NewPacketSaver(cfg.SaveFormat)
	if ps == nil {
		return nil, fmt.Errorf("unsupported SAVE_FORMAT %q (use: csv, parquet, json)", cfg.SaveFormat)
	}
	return ps, nil
}

// ProvideRunner wires the batch runner with the configured intervals and anchor (for Wire).
func ProvideRunner(cfg *Config, loader saver.PacketLoader, ps saver.PacketSaver) *batch.Runner {
	return batch.NewRunner(loader, ps, batch.Options{
		SourceRoot:   cfg.SourceRoot(),
		OutputRoot:   cfg.OutputRoot(),
		ProgressPath: cfg.ProgressPath(),
		Source:       cfg.Source,
		Target:       cfg.Target,
		AnchorMode:   cfg.AnchorMode,
		Anchor:       cfg.AnchorTimes,
		Workers:      cfg.Workers,
		LogLevel:     slogx.ParseLevel(cfg.LogLevel),
		Heartbeat:    heartbeatInterval,
	})
}
