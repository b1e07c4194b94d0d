package dataprocessing

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is matched by every EmptyInputError.
	ErrEmptyInput = errors.New("empty input")

	// ErrUnknownColumn is returned for column names outside the dataset schema
	// or of the wrong kind for the requested operation.
	ErrUnknownColumn = errors.New("unknown column")
)

// LoadError reports that the source could not be turned into a dataset.
type LoadError struct {
	Source string
	Reason string
	Err    error
}

// Error implements the error interface
func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load %s: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("load %s: %s", e.Source, e.Reason)
}

// Unwrap allows errors.Is and errors.As to reach the cause
func (e *LoadError) Unwrap() error {
	return e.Err
}

func newLoadError(source, reason string, err error) *LoadError {
	return &LoadError{Source: source, Reason: reason, Err: err}
}

// EmptyInputError reports that an aggregate needing at least one row was
// invoked on an empty subset.
type EmptyInputError struct {
	Operation string
}

// Error implements the error interface
func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("%s: %v", e.Operation, ErrEmptyInput)
}

// Is makes errors.Is(err, ErrEmptyInput) hold
func (e *EmptyInputError) Is(target error) bool {
	return target == ErrEmptyInput
}
