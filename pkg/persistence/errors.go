package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrWorkflowNotFound indicates a workflow was not found by the given identifier.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrRunReportNotFound indicates a run report was not found by the given identifier.
	ErrRunReportNotFound = errors.New("run report not found")

	// ErrInvalidWorkflow indicates a workflow failed validation before saving.
	ErrInvalidWorkflow = errors.New("invalid workflow")
)

// StorageError wraps storage failures with the operation and target that
// produced them.
type StorageError struct {
	Op  string // Operation being performed (e.g., "WorkflowByID", "SaveRunReport")
	Key string // Identifier of the affected record, if applicable
	Err error  // Underlying error
}

func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s failed for %s: %v", e.Op, e.Key, e.Err)
	}

	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError creates a StorageError with the given context.
func NewStorageError(op, key string, err error) *StorageError {
	return &StorageError{Op: op, Key: key, Err: err}
}

// IsNotFoundError returns true when err is one of the not-found sentinels.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound) || errors.Is(err, ErrRunReportNotFound)
}
