package taskdoc

import (
	"errors"
	"fmt"

	"github.com/hay-kot/criterio"
)

// ErrInvalidParams indicates that a caller supplied a missing or invalid
// argument. The document is left untouched when this error is returned.
type ErrInvalidParams struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ErrInvalidParams) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ErrIndexOutOfRange indicates that a checklist index does not address an
// existing item (or, for insert targets, a valid insertion point).
type ErrIndexOutOfRange struct {
	Field string
	Index int
	Len   int

	// Inclusive is true when Len itself is a valid value (insert and
	// reorder targets).
	Inclusive bool
}

// Error implements the error interface.
func (e *ErrIndexOutOfRange) Error() string {
	upper := fmt.Sprintf("%d)", e.Len)
	if e.Inclusive {
		upper = fmt.Sprintf("%d]", e.Len)
	}
	return fmt.Sprintf("%s %d is out of range [0, %s", e.Field, e.Index, upper)
}

// ErrStorage indicates that the document could not be persisted.
type ErrStorage struct {
	Op    string
	Path  string
	Cause error
}

// Error implements the error interface.
func (e *ErrStorage) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("storage %s failed: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("storage %s %s failed: %v", e.Op, e.Path, e.Cause)
}

// Unwrap implements the unwrap interface for error chains.
func (e *ErrStorage) Unwrap() error {
	return e.Cause
}

// IsInvalidParams reports whether err is a caller error: a missing or empty
// required field, or an index out of range.
func IsInvalidParams(err error) bool {
	var invalid *ErrInvalidParams
	if errors.As(err, &invalid) {
		return true
	}
	var outOfRange *ErrIndexOutOfRange
	return errors.As(err, &outOfRange)
}

// IsStorageError reports whether err is a persistence failure.
func IsStorageError(err error) bool {
	var storage *ErrStorage
	return errors.As(err, &storage)
}

// invalidParams converts criterio field errors into an ErrInvalidParams
// naming the first offending field. Other errors pass through unchanged.
func invalidParams(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return &ErrInvalidParams{
			Field:  fieldErrs[0].Field,
			Reason: fieldErrs[0].Err.Error(),
		}
	}
	return err
}
