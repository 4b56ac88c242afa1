package batch

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/MimeLyc/batch-transcriber/internal/engine"
	"github.com/MimeLyc/batch-transcriber/internal/fingerprint"
	"github.com/MimeLyc/batch-transcriber/internal/history"
	"github.com/MimeLyc/batch-transcriber/internal/library"
	"github.com/MimeLyc/batch-transcriber/internal/transcript"
	"github.com/MimeLyc/batch-transcriber/pkg/log"
)

// Orchestrator drives one batch over a set of media files: fingerprint,
// consult history, transcribe misses, write artifacts, update history. Each
// file is an isolated unit of work; one file's failure never aborts the
// batch. The only fatal condition is a history store that cannot be written
// at all.
type Orchestrator struct {
	store  *history.Store
	engine engine.Engine
	writer *transcript.Writer

	workers     int
	fileTimeout time.Duration
	now         func() time.Time

	flight singleflight.Group
}

// Option is a function type for configuring the Orchestrator
type Option func(*Orchestrator)

// WithWorkers sets how many files are processed concurrently.
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithFileTimeout bounds a single file's engine call. Zero means no timeout.
func WithFileTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.fileTimeout = d
	}
}

func New(store *history.Store, eng engine.Engine, writer *transcript.Writer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:   store,
		engine:  eng,
		writer:  writer,
		workers: 1,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run attempts every file and returns the full report. The returned error is
// non-nil only for store-level failure; per-file errors live in the report.
func (o *Orchestrator) Run(ctx context.Context, files []library.MediaFile) (*Report, error) {
	report := &Report{
		StartedAt: o.now(),
		Results:   make([]FileResult, len(files)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i := range files {
		i := i
		g.Go(func() error {
			result := o.processFile(gctx, files[i])
			report.Results[i] = result
			if IsErrorType(result.Err, ErrStore) {
				return result.Err
			}
			return nil
		})
	}
	err := g.Wait()
	report.FinishedAt = o.now()

	if err != nil {
		// Files never attempted before the abort carry no state.
		attempted := make([]FileResult, 0, len(report.Results))
		for _, result := range report.Results {
			if result.State != "" {
				attempted = append(attempted, result)
			}
		}
		report.Results = attempted
	}
	return report, err
}

// fpOutcome is the shared result of processing one fingerprint. Waiters that
// piggyback on another file's in-flight processing observe it as a cache hit.
type fpOutcome struct {
	state        State
	artifactPath string
	language     string
	duration     float64
	err          error
	ownerPath    string
}

func (o *Orchestrator) processFile(ctx context.Context, mediaFile library.MediaFile) FileResult {
	ret := FileResult{
		Path: mediaFile.Path,
		Name: mediaFile.Name,
	}

	fp, err := fingerprint.FromFile(mediaFile.Path)
	if err != nil {
		// Unreadable input: excluded from the batch, no history record.
		log.Warn("Cannot read %s, excluding from batch: %v", mediaFile.Path, err)
		ret.State = StateFailed
		ret.Err = WrapError(err, ErrIO, fmt.Sprintf("cannot read %s", mediaFile.Name))
		return ret
	}
	ret.Fingerprint = fp

	// At most one in-flight processing attempt per fingerprint; true
	// duplicates within the batch block here and share the result.
	v, _, _ := o.flight.Do(fp.String(), func() (any, error) {
		return o.processFingerprint(ctx, fp, mediaFile), nil
	})
	outcome := v.(fpOutcome)

	ret.State = outcome.state
	ret.ArtifactPath = outcome.artifactPath
	ret.Language = outcome.language
	ret.Duration = outcome.duration
	ret.Err = outcome.err
	if outcome.state == StateCompleted && outcome.ownerPath != mediaFile.Path {
		ret.State = StateSkipped
	}
	return ret
}

func (o *Orchestrator) processFingerprint(ctx context.Context, fp fingerprint.Fingerprint, mediaFile library.MediaFile) fpOutcome {
	if rec, ok := o.store.Lookup(fp); ok && rec.Status == history.StatusCompleted {
		if rec.OutputFile == "" || fileExists(rec.OutputFile) {
			log.Info("Skipping %s (already transcribed on %s)", mediaFile.Name, rec.Date.Format("2006-01-02"))
			return fpOutcome{
				state:        StateSkipped,
				artifactPath: rec.OutputFile,
				language:     rec.Language,
				duration:     rec.Duration,
			}
		}
		// Completed record with a vanished artifact is a hard
		// inconsistency; reprocess instead of trusting the record.
		log.Warn("Artifact %s missing for completed fingerprint %s, reprocessing", rec.OutputFile, fp)
	}

	engineCtx := ctx
	if o.fileTimeout > 0 {
		var cancel context.CancelFunc
		engineCtx, cancel = context.WithTimeout(ctx, o.fileTimeout)
		defer cancel()
	}

	log.Info("Transcribing %s", mediaFile.Name)
	result, err := o.engine.Transcribe(engineCtx, mediaFile.Path)
	now := o.now()
	if err != nil {
		log.Error("Failed to transcribe %s: %v", mediaFile.Name, err)
		return o.recordFailure(fp, mediaFile, now, WrapError(err, ErrEngine, fmt.Sprintf("transcribe %s", mediaFile.Name)))
	}

	content := transcript.Format(transcript.Metadata{
		Name:     mediaFile.Name,
		Date:     now,
		Language: result.Language,
	}, result.Segments)

	// Artifact first, history second: a crash in between costs at worst one
	// redundant reprocessing, never a completed record without an artifact.
	artifactPath, err := o.writer.Write(mediaFile.Name, content)
	if err != nil {
		log.Error("Failed to write transcript for %s: %v", mediaFile.Name, err)
		return o.recordFailure(fp, mediaFile, now, WrapError(err, ErrArtifactWrite, fmt.Sprintf("write transcript for %s", mediaFile.Name)))
	}

	rec := history.Record{
		Filename:   mediaFile.Name,
		Language:   result.Language,
		Date:       now,
		Duration:   result.Duration,
		Status:     history.StatusCompleted,
		OutputFile: artifactPath,
	}
	if err := o.store.Upsert(fp, rec); err != nil {
		return fpOutcome{
			state:     StateFailed,
			ownerPath: mediaFile.Path,
			err:       WrapError(err, ErrStore, "persist history"),
		}
	}

	log.Info("Saved transcript for %s to %s", mediaFile.Name, artifactPath)
	return fpOutcome{
		state:        StateCompleted,
		artifactPath: artifactPath,
		language:     result.Language,
		duration:     result.Duration,
		ownerPath:    mediaFile.Path,
	}
}

// recordFailure upserts a failed record so the fingerprint is retried on the
// next run, unlike completed ones.
func (o *Orchestrator) recordFailure(fp fingerprint.Fingerprint, mediaFile library.MediaFile, now time.Time, cause *BatchError) fpOutcome {
	rec := history.Record{
		Filename: mediaFile.Name,
		Date:     now,
		Status:   history.StatusFailed,
		Error:    cause.Error(),
	}
	if err := o.store.Upsert(fp, rec); err != nil {
		return fpOutcome{
			state:     StateFailed,
			ownerPath: mediaFile.Path,
			err:       WrapError(err, ErrStore, "persist history"),
		}
	}
	return fpOutcome{
		state:     StateFailed,
		ownerPath: mediaFile.Path,
		err:       cause,
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
