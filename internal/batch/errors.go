package batch

import (
	"errors"
	"fmt"
)

type ErrorType int

const (
	// ErrIO: source file unreadable or gone; excluded from the batch.
	ErrIO ErrorType = iota
	// ErrEngine: transcription failed; eligible for retry on the next run.
	ErrEngine
	// ErrArtifactWrite: transcript could not be persisted; the file counts
	// as failed even though the engine succeeded.
	ErrArtifactWrite
	// ErrStore: the history store could not be written; fatal for the run.
	ErrStore
	ErrUnknown
)

func (t ErrorType) String() string {
	switch t {
	case ErrIO:
		return "IO"
	case ErrEngine:
		return "Engine"
	case ErrArtifactWrite:
		return "ArtifactWrite"
	case ErrStore:
		return "Store"
	default:
		return "Unknown"
	}
}

// BatchError classifies a per-file (or store-level) failure.
type BatchError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func NewError(errorType ErrorType, message string) *BatchError {
	return &BatchError{
		Type:    errorType,
		Message: message,
	}
}

func WrapError(err error, errorType ErrorType, message string) *BatchError {
	return &BatchError{
		Type:    errorType,
		Message: message,
		Cause:   err,
	}
}

func (e *BatchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s | cause: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *BatchError) Unwrap() error {
	return e.Cause
}

func IsErrorType(err error, errorType ErrorType) bool {
	var batchErr *BatchError
	if errors.As(err, &batchErr) {
		return batchErr.Type == errorType
	}
	return false
}
