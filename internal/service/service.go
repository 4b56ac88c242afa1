package service

import (
	"context"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/MimeLyc/batch-transcriber/internal/batch"
	"github.com/MimeLyc/batch-transcriber/internal/config"
	"github.com/MimeLyc/batch-transcriber/internal/library"
	"github.com/MimeLyc/batch-transcriber/internal/persistence"
	"github.com/MimeLyc/batch-transcriber/pkg/log"
	"github.com/robfig/cron/v3"
)

type batchService struct {
	cfg          config.Config
	orchestrator *batch.Orchestrator
	runLog       *persistence.RunLog
	cronExpr     string
	cron         *cron.Cron
}

func NewRunnableBatchService(
	cfg config.Config,
	orchestrator *batch.Orchestrator,
	runLog *persistence.RunLog,
	cron *cron.Cron,
) batchService {
	return batchService{
		cfg:          cfg,
		orchestrator: orchestrator,
		runLog:       runLog,
		cronExpr:     cfg.Batch.CronExpr,
		cron:         cron,
	}
}

var singleflightGroup singleflight.Group

// Schedule registers repeated batch runs on the cron. Overlapping triggers
// collapse into the in-flight run.
func (s batchService) Schedule(ctx context.Context) error {
	log.Info("Run BatchService on schedule %q", s.cronExpr)

	runFunc := func() {
		_, _, _ = singleflightGroup.Do("run", func() (any, error) {
			if _, err := s.RunOnce(ctx); err != nil {
				log.Error("Scheduled batch run failed: %v", err)
			}
			return nil, nil
		})
	}
	_, err := s.cron.AddFunc(s.cronExpr, runFunc)
	return err
}

// RunOnce scans the input directory and drives one batch over everything
// found there.
func (s batchService) RunOnce(ctx context.Context) (*batch.Report, error) {
	files, err := library.Scan(ctx, s.cfg.Media.InputDir)
	if err != nil {
		log.Error("Failed to scan %s: %v", s.cfg.Media.InputDir, err)
		return nil, err
	}
	if len(files) == 0 {
		log.Warn("No supported media files found in %s", s.cfg.Media.InputDir)
		log.Warn("Supported formats: %s", strings.Join(library.SupportedExtensions(), ", "))
		return &batch.Report{}, nil
	}

	log.Info("Found %d file(s) to process in %s", len(files), s.cfg.Media.InputDir)
	report, err := s.orchestrator.Run(ctx, files)
	log.Info("Batch finished: %d completed, %d skipped, %d failed, %d total",
		report.Completed(), report.Skipped(), report.Failed(), len(report.Results))

	if s.runLog != nil {
		if _, saveErr := s.runLog.SaveRun(ctx, report); saveErr != nil {
			log.Error("Failed to record batch run: %v", saveErr)
		}
	}
	return report, err
}
