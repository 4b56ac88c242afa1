package engine

import (
	"context"
	"fmt"
)

// Segment is one timed span of recognized speech.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Result is the full output of one transcription call.
type Result struct {
	Language string    `json:"language"`
	Duration float64   `json:"duration"`
	Segments []Segment `json:"segments"`
}

// Engine is the transcription boundary consumed by the orchestrator. Calls
// are synchronous and may be slow; implementations must honor ctx
// cancellation so a timeout can be layered around a single file.
type Engine interface {
	Transcribe(ctx context.Context, mediaPath string) (Result, error)
}

// EngineError is a stage-aware transcription failure (unsupported format,
// corrupt media, tool missing, timeout).
type EngineError struct {
	Stage   string
	Message string
	Err     error
}

func (e *EngineError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}

func (e *EngineError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
