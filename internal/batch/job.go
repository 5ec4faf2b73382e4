package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Anchor modes.
const (
	AnchorNone   = "none"   // windows start at each packet's first bar
	AnchorFixed  = "fixed"  // windows aligned to the configured anchor timestamps
	AnchorPacket = "packet" // windows aligned to each packet's own last bar
)

// Job represents one resample unit (one source packet file)
type Job struct {
	Ticker  string
	Key     string // {TICKER}/{file}, progress key
	Source  string
	Target  string
	ModTime string
}

// JobResult is sent by workers for fan-in
type JobResult struct {
	Ok      bool
	Ticker  string
	File    string
	Reason  string
	BarsIn  int
	BarsOut int
}

// Cmd triggers a batch run
type Cmd struct{}

// Done signals run completion
type Done struct{}

// FilterJobs lists {sourceRoot}/{TICKER}/*.{inExt} packets and maps each to
// {outputRoot}/{TICKER}/{name}.{outExt}. Packets whose mod time matches the progress file and
// whose output exists are skipped.
func FilterJobs(sourceRoot, outputRoot, inExt, outExt, progressPath string) ([]Job, error) {
	entries, err := os.ReadDir(sourceRoot)
	if err != nil {
		return nil, fmt.Errorf("read source dir %s: %w", sourceRoot, err)
	}
	done := loadProgress(progressPath)
	suffix := "." + inExt

	var jobs []Job
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		ticker := e.Name()
		files, err := os.ReadDir(filepath.Join(sourceRoot, ticker))
		if err != nil {
			return nil, fmt.Errorf("read ticker dir %s: %w", ticker, err)
		}
		for _, f := range files {
			if f.IsDir() || !strings.HasSuffix(f.Name(), suffix) {
				continue
			}
			info, err := f.Info()
			if err != nil {
				continue
			}
			job := Job{
				Ticker:  ticker,
				Key:     ticker + "/" + f.Name(),
				Source:  filepath.Join(sourceRoot, ticker, f.Name()),
				Target:  filepath.Join(outputRoot, ticker, strings.TrimSuffix(f.Name(), suffix)+"."+outExt),
				ModTime: info.ModTime().UTC().Format(time.RFC3339Nano),
			}
			if done[job.Key] == job.ModTime && fileExists(job.Target) {
				continue
			}
			jobs = append(jobs, job)
		}
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Key < jobs[j].Key })
	return jobs, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
