package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MimeLyc/batch-transcriber/internal/batch"
	"github.com/MimeLyc/batch-transcriber/internal/config"
	"github.com/MimeLyc/batch-transcriber/internal/engine"
	"github.com/MimeLyc/batch-transcriber/internal/history"
	"github.com/MimeLyc/batch-transcriber/internal/persistence"
	"github.com/MimeLyc/batch-transcriber/internal/transcript"
)

type staticEngine struct{}

func (staticEngine) Transcribe(_ context.Context, _ string) (engine.Result, error) {
	return engine.Result{
		Language: "en",
		Duration: 3,
		Segments: []engine.Segment{{Start: 0, End: 3, Text: "hello"}},
	}, nil
}

func newTestService(t *testing.T) (batchService, *persistence.RunLog, string) {
	t.Helper()
	dir := t.TempDir()
	inputDir := filepath.Join(dir, "in")
	require.NoError(t, os.MkdirAll(inputDir, 0o755))

	cfg := config.Config{
		Media: config.MediaConfig{
			InputDir:    inputDir,
			OutputDir:   filepath.Join(dir, "out"),
			HistoryFile: filepath.Join(dir, "out", "history.json"),
			RunLogDB:    filepath.Join(dir, "out", "runlog.db"),
		},
		Batch: config.BatchConfig{Workers: 1, CronExpr: "@hourly"},
	}

	store := history.Load(cfg.Media.HistoryFile)
	writer := transcript.NewWriter(cfg.Media.TranscriptsDir())
	orchestrator := batch.New(store, staticEngine{}, writer)

	runLog, err := persistence.NewRunLog(cfg.Media.RunLogDB)
	require.NoError(t, err)
	t.Cleanup(func() { _ = runLog.Close() })

	return NewRunnableBatchService(cfg, orchestrator, runLog, cron.New()), runLog, inputDir
}

func TestRunOnce_EmptyInputDir(t *testing.T) {
	svc, runLog, _ := newTestService(t)

	report, err := svc.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Results)

	runs, err := runLog.LoadRuns(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, runs, "empty scans are not recorded")
}

func TestRunOnce_ProcessesAndRecordsRun(t *testing.T) {
	svc, runLog, inputDir := newTestService(t)
	require.NoError(t, os.WriteFile(filepath.Join(inputDir, "a.mp3"), []byte("bytes"), 0o644))

	report, err := svc.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, 1, report.Completed())

	runs, err := runLog.LoadRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 1, runs[0].Completed)

	// A second invocation skips everything via the history store.
	report, err = svc.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Skipped())
}

func TestSchedule_RegistersCronEntry(t *testing.T) {
	svc, _, _ := newTestService(t)
	require.NoError(t, svc.Schedule(context.Background()))
}
