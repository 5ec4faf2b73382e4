package batch

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
)

// ProgressUpdate is sent when a packet was resampled and saved
type ProgressUpdate struct {
	Key     string
	ModTime string
}

func loadProgress(path string) map[string]string {
	data, err := os.ReadFile(path)
	if err != nil {
		return make(map[string]string)
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return make(map[string]string)
	}
	return m
}

// RunProgressWriter receives updates and persists to file until updates is closed (run as goroutine)
func RunProgressWriter(path string, updates <-chan ProgressUpdate) {
	m := loadProgress(path)
	for u := range updates {
		m[u.Key] = u.ModTime
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			slog.Warn("progress marshal error", "error", err)
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			slog.Warn("progress dir error", "error", err)
			continue
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			slog.Warn("progress write error", "error", err)
		}
	}
}
