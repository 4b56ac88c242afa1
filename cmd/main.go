package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/MimeLyc/batch-transcriber/internal/batch"
	"github.com/MimeLyc/batch-transcriber/internal/config"
	"github.com/MimeLyc/batch-transcriber/internal/engine"
	"github.com/MimeLyc/batch-transcriber/internal/history"
	"github.com/MimeLyc/batch-transcriber/internal/persistence"
	"github.com/MimeLyc/batch-transcriber/internal/service"
	"github.com/MimeLyc/batch-transcriber/internal/transcript"
	"github.com/MimeLyc/batch-transcriber/pkg/log"
)

func main() {
	watch := flag.Bool("watch", false, "keep running and process the input directory on the configured schedule")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatal("Failed to load configuration: %v", err)
	}

	if err := setupDirectories(*cfg); err != nil {
		log.Fatal("Failed to prepare directories: %v", err)
	}

	store := history.Load(cfg.Media.HistoryFile)
	log.Info("History store loaded with %d record(s)", store.Len())

	runLog, err := persistence.NewRunLog(cfg.Media.RunLogDB)
	if err != nil {
		log.Fatal("Failed to open run log: %v", err)
	}
	defer runLog.Close()

	whisper := engine.NewWhisperEngine(engine.Config{
		WhisperCmd: cfg.Engine.WhisperCmd,
		ModelPath:  cfg.Engine.ModelPath,
		FfmpegCmd:  cfg.Engine.FfmpegCmd,
		FfprobeCmd: cfg.Engine.FfprobeCmd,
	})
	writer := transcript.NewWriter(cfg.Media.TranscriptsDir())

	orchestrator := batch.New(store, whisper, writer,
		batch.WithWorkers(cfg.Batch.Workers),
		batch.WithFileTimeout(time.Duration(cfg.Engine.TimeoutSecs)*time.Second),
	)

	cronRunner := cron.New()
	svc := service.NewRunnableBatchService(*cfg, orchestrator, runLog, cronRunner)
	ctx := context.Background()

	if *watch {
		if err := svc.Schedule(ctx); err != nil {
			log.Fatal("Failed to schedule batch runs: %v", err)
		}
		cronRunner.Start()
		select {}
	}

	report, err := svc.RunOnce(ctx)
	if err != nil {
		log.Fatal("Batch run failed: %v", err)
	}
	if report.Failed() > 0 {
		os.Exit(1)
	}
}

func setupDirectories(cfg config.Config) error {
	dirs := []string{
		cfg.Media.InputDir,
		cfg.Media.OutputDir,
		cfg.Media.TranscriptsDir(),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}
