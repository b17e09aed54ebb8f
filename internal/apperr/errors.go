// Package apperr defines the error taxonomy shared across service layers.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrConflict            = errors.New("conflict")
	ErrValidation          = errors.New("validation failed")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrExtractionFailure   = errors.New("text extraction failed")
)

// StageError wraps a pipeline stage failure with the name of the stage that
// failed. The essay is left in ERROR status when one of these surfaces.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError wraps err with the failing stage name.
func NewStageError(stage string, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}
