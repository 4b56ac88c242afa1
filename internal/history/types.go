package history

import "time"

type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Record is the persisted outcome of processing one fingerprint. The filename
// is informational only and never used for identity.
type Record struct {
	Filename   string    `json:"filename"`
	Language   string    `json:"language"`
	Date       time.Time `json:"date"`
	Duration   float64   `json:"duration"`
	Status     Status    `json:"status"`
	Error      string    `json:"error,omitempty"`
	OutputFile string    `json:"output_file,omitempty"`
}
