package batch

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"us-resample/internal/model"
	"us-resample/internal/saver"
)

var open0930 = time.Date(2025, 1, 2, 9, 30, 0, 0, time.UTC)

func minuteBars(n int) []model.Bar {
	bars := make([]model.Bar, n)
	for i := range bars {
		p := float64(100 + i)
		bars[i] = model.Bar{
			Timestamp: open0930.Add(time.Duration(i) * time.Minute).UnixMilli(),
			Open:      p, High: p + 1, Low: p - 1, Close: p + 0.5, Volume: 10,
		}
	}
	return bars
}

type fixture struct {
	root   string
	source string
	output string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	root := t.TempDir()
	f := fixture{
		root:   root,
		source: filepath.Join(root, "Polygon"),
		output: filepath.Join(root, "Resampled", "5m"),
	}
	store := saver.JSONSaver{}
	write := func(ticker, name string, bars []model.Bar) {
		dir := filepath.Join(f.source, ticker)
		require.NoError(t, os.MkdirAll(dir, 0755))
		require.NoError(t, store.Save(bars, filepath.Join(dir, name)))
	}
	write("AAPL", "AAPL_2025-01-02.json", minuteBars(10))
	write("MSFT", "MSFT_2025-01-02.json", minuteBars(7))
	write("TSLA", "TSLA_2025-01-02.json", []model.Bar{})
	require.NoError(t, os.WriteFile(filepath.Join(f.source, "AAPL", "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(f.source, ".cache"), 0755))
	return f
}

func (f fixture) runner(mode string, anchor ...time.Time) *Runner {
	return NewRunner(saver.JSONSaver{}, saver.CSVSaver{}, Options{
		SourceRoot:   f.source,
		OutputRoot:   f.output,
		ProgressPath: filepath.Join(f.output, ".progress.json"),
		Source:       time.Minute,
		Target:       5 * time.Minute,
		AnchorMode:   mode,
		Anchor:       anchor,
		Workers:      2,
		LogOutput:    io.Discard,
	})
}

func TestFilterJobs(t *testing.T) {
	f := newFixture(t)

	jobs, err := FilterJobs(f.source, f.output, "json", "csv", filepath.Join(f.output, ".progress.json"))
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, "AAPL/AAPL_2025-01-02.json", jobs[0].Key)
	assert.Equal(t, "AAPL", jobs[0].Ticker)
	assert.Equal(t, filepath.Join(f.output, "AAPL", "AAPL_2025-01-02.csv"), jobs[0].Target)
	assert.NotEmpty(t, jobs[0].ModTime)

	_, err = FilterJobs(filepath.Join(f.root, "missing"), f.output, "json", "csv", "")
	assert.Error(t, err)
}

func TestRunParallel(t *testing.T) {
	f := newFixture(t)
	r := f.runner(AnchorNone)
	jobs, err := FilterJobs(f.source, f.output, "json", "csv", r.Opts.ProgressPath)
	require.NoError(t, err)

	updates := make(chan ProgressUpdate, len(jobs))
	sum := r.RunParallel(jobs, updates, nil)
	close(updates)

	assert.NotEmpty(t, sum.RunID)
	assert.Equal(t, 2, sum.Success)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 4, sum.Bars)
	assert.ElementsMatch(t, []string{"AAPL", "MSFT"}, sum.SuccessList)
	require.Len(t, sum.FailedList, 1)
	assert.Equal(t, "TSLA", sum.FailedList[0].Ticker)
	assert.Equal(t, "no data", sum.FailedList[0].Reason)

	var keys []string
	for u := range updates {
		keys = append(keys, u.Key)
	}
	assert.ElementsMatch(t, []string{"AAPL/AAPL_2025-01-02.json", "MSFT/MSFT_2025-01-02.json"}, keys)

	got, err := saver.CSVSaver{}.Load(filepath.Join(f.output, "AAPL", "AAPL_2025-01-02.csv"))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, open0930, got[0].Time())
	assert.Equal(t, int64(50), got[0].Volume)
	assert.Equal(t, 104.5, got[0].Close)
	assert.Equal(t, open0930.Add(5*time.Minute), got[1].Time())
}

func TestRunParallelPacketAnchor(t *testing.T) {
	f := newFixture(t)
	r := f.runner(AnchorPacket)
	jobs, err := FilterJobs(f.source, f.output, "json", "csv", "")
	require.NoError(t, err)

	sum := r.RunParallel(jobs[:1], nil, nil)
	require.Equal(t, 1, sum.Success)

	got, err := saver.CSVSaver{}.Load(jobs[0].Target)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, open0930.Add(4*time.Minute), got[0].Time())
	assert.Equal(t, 108.5, got[0].Close)
}

func TestRunParallelFixedAnchor(t *testing.T) {
	f := newFixture(t)
	r := f.runner(AnchorFixed, open0930.Add(17*time.Minute))
	jobs, err := FilterJobs(f.source, f.output, "json", "csv", "")
	require.NoError(t, err)

	sum := r.RunParallel(jobs[:1], nil, nil)
	require.Equal(t, 1, sum.Success)

	got, err := saver.CSVSaver{}.Load(jobs[0].Target)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, open0930.Add(2*time.Minute), got[0].Time())
	assert.Equal(t, open0930.Add(7*time.Minute), got[1].Time())
	assert.Equal(t, int64(30), got[1].Volume)
}

func TestRunParallelShutdown(t *testing.T) {
	f := newFixture(t)
	r := f.runner(AnchorNone)
	jobs, err := FilterJobs(f.source, f.output, "json", "csv", "")
	require.NoError(t, err)

	shutdown := make(chan struct{})
	close(shutdown)
	sum := r.RunParallel(jobs, nil, shutdown)
	assert.Zero(t, sum.Success+sum.Failed)
}

func TestRunOnceWritesReportAndProgress(t *testing.T) {
	f := newFixture(t)
	r := f.runner(AnchorNone)

	updates := make(chan ProgressUpdate, 16)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		RunProgressWriter(r.Opts.ProgressPath, updates)
	}()
	done := make(chan Done, 1)
	r.RunOnce(updates, done, make(chan struct{}))
	<-done
	close(updates)
	<-writerDone

	var success successReport
	data, err := os.ReadFile(filepath.Join(f.output, ".lastrun.success.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &success))
	assert.NotEmpty(t, success.RunID)
	assert.ElementsMatch(t, []string{"AAPL", "MSFT"}, success.Tickers)

	var failed failedReport
	data, err = os.ReadFile(filepath.Join(f.output, ".lastrun.failed.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &failed))
	assert.Equal(t, success.RunID, failed.RunID)
	require.Len(t, failed.Failed, 1)
	assert.Equal(t, "TSLA/TSLA_2025-01-02.json", failed.Failed[0].File)

	// Second pass only retries the failed packet.
	jobs, err := FilterJobs(f.source, f.output, "json", "csv", r.Opts.ProgressPath)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "TSLA", jobs[0].Ticker)
}

func TestJoinFailedReasons(t *testing.T) {
	assert.Empty(t, joinFailedReasons(nil))

	var list []failedEntry
	for _, tk := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		list = append(list, failedEntry{Ticker: tk, Reason: "no data"})
	}
	s := joinFailedReasons(list)
	assert.Contains(t, s, "A: no data; B: no data")
	assert.Contains(t, s, "(+2 more)")
	assert.NotContains(t, s, "F:")
}

func TestAppendSuccessDedupes(t *testing.T) {
	list := appendSuccess(nil, "AAPL")
	list = appendSuccess(list, "AAPL")
	list = appendSuccess(list, "MSFT")
	assert.Equal(t, []string{"AAPL", "MSFT"}, list)
}
