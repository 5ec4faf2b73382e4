package batch

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type failedEntry struct {
	Ticker string `json:"ticker"`
	File   string `json:"file"`
	Reason string `json:"reason"`
}

type successReport struct {
	RunID      string    `json:"run_id"`
	FinishedAt time.Time `json:"finished_at"`
	Tickers    []string  `json:"tickers"`
}

type failedReport struct {
	RunID      string        `json:"run_id"`
	FinishedAt time.Time     `json:"finished_at"`
	Failed     []failedEntry `json:"failed"`
}

func writeRunReport(outputRoot, runID string, successList []string, failedList []failedEntry) error {
	if err := os.MkdirAll(outputRoot, 0755); err != nil {
		return err
	}
	now := time.Now().UTC()
	if len(successList) > 0 {
		p := filepath.Join(outputRoot, ".lastrun.success.json")
		if err := writeJSON(p, successReport{RunID: runID, FinishedAt: now, Tickers: successList}); err != nil {
			return err
		}
		slog.Info("report wrote success", "path", p, "tickers", len(successList))
	}
	if len(failedList) > 0 {
		p := filepath.Join(outputRoot, ".lastrun.failed.json")
		if err := writeJSON(p, failedReport{RunID: runID, FinishedAt: now, Failed: failedList}); err != nil {
			return err
		}
		slog.Info("report wrote failed", "path", p, "count", len(failedList))
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func appendSuccess(list []string, ticker string) []string {
	for _, t := range list {
		if t == ticker {
			return list
		}
	}
	return append(list, ticker)
}

func joinFailedReasons(failedList []failedEntry) string {
	if len(failedList) == 0 {
		return ""
	}
	var b strings.Builder
	for i, f := range failedList {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(f.Ticker)
		b.WriteString(": ")
		b.WriteString(f.Reason)
		if i >= 4 && len(failedList) > 6 {
			b.WriteString(fmt.Sprintf(" (+%d more)", len(failedList)-5))
			break
		}
	}
	return b.String()
}
