package batch

import (
	"time"

	"github.com/MimeLyc/batch-transcriber/internal/fingerprint"
)

// State is the terminal state of one file in a batch.
type State string

const (
	StateSkipped   State = "skipped"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// FileResult is the outcome of one file's processing.
type FileResult struct {
	Path         string
	Name         string
	Fingerprint  fingerprint.Fingerprint
	State        State
	ArtifactPath string
	Language     string
	Duration     float64
	Err          error
}

// Report aggregates a full batch run. It is only returned once every file
// has been attempted.
type Report struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []FileResult
}

// Completed counts files transcribed in this run.
func (r *Report) Completed() int { return r.count(StateCompleted) }

// Skipped counts cache hits.
func (r *Report) Skipped() int { return r.count(StateSkipped) }

// Failed counts files that ended in failure, including unreadable inputs.
func (r *Report) Failed() int { return r.count(StateFailed) }

func (r *Report) count(state State) int {
	n := 0
	for _, res := range r.Results {
		if res.State == state {
			n++
		}
	}
	return n
}
