package persistence

import "time"

// RunSummary is one recorded batch run.
type RunSummary struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt time.Time
	Completed  int
	Skipped    int
	Failed     int
}

// RunFile is the recorded outcome of one file within a run.
type RunFile struct {
	RunID       int64
	Path        string
	Name        string
	Fingerprint string
	State       string
	Language    string
	Duration    float64
	Artifact    string
	Error       string
}
