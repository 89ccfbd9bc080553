package port

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownBucket = errors.New("bucket is unknown")
	ErrNotFound      = errors.New("resource not found")
	ErrConflict      = errors.New("rev doesn't match for update")
	ErrViewNotFound  = errors.New("view not found")

	ErrMapExecution     = errors.New("map function failed")
	ErrReduceExecution  = errors.New("reduce function failed")
	ErrInvalidQuerySpec = errors.New("invalid query")
	ErrIndexUnavailable = errors.New("index unavailable")
)

// MapExecutionError is reported if the map function failed for a
// document. The document contributes no rows to the view.
type MapExecutionError struct {
	View  string
	DocID string
	Err   error
}

func (e *MapExecutionError) Error() string {
	return fmt.Sprintf("map function of view %q failed for document %q: %v", e.View, e.DocID, e.Err)
}

func (e *MapExecutionError) Unwrap() []error {
	return []error{ErrMapExecution, e.Err}
}

// ReduceExecutionError aborts a query if the reduce function failed.
type ReduceExecutionError struct {
	View string
	Err  error
}

func (e *ReduceExecutionError) Error() string {
	return fmt.Sprintf("reduce function of view %q failed: %v", e.View, e.Err)
}

func (e *ReduceExecutionError) Unwrap() []error {
	return []error{ErrReduceExecution, e.Err}
}

// InvalidQuerySpecError rejects a query before the index is scanned.
type InvalidQuerySpecError struct {
	Param  string
	Reason string
}

func (e *InvalidQuerySpecError) Error() string {
	return fmt.Sprintf("invalid query parameter %q: %s", e.Param, e.Reason)
}

func (e *InvalidQuerySpecError) Unwrap() error {
	return ErrInvalidQuerySpec
}

// IndexUnavailableError is returned if a view has no built index and
// building it failed.
type IndexUnavailableError struct {
	View string
	Err  error
}

func (e *IndexUnavailableError) Error() string {
	return fmt.Sprintf("index of view %q unavailable: %v", e.View, e.Err)
}

func (e *IndexUnavailableError) Unwrap() []error {
	return []error{ErrIndexUnavailable, e.Err}
}
