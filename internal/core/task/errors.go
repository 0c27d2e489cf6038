package task

import (
	"errors"
	"fmt"

	"github.com/hay-kot/criterio"
)

var (
	// ErrNotFound is returned when a task or one of its updates does not exist.
	ErrNotFound = errors.New("task not found")
	// ErrValidation is returned for malformed input such as empty remarks or
	// an unknown status. The wrapped criterio.FieldErrors names the fields.
	ErrValidation = errors.New("validation failed")
	// ErrForbidden is returned when the actor's role, department, or
	// relationship to the task does not permit the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidState is returned when the task is not in a state that
	// allows the operation, e.g. director approval before HOD approval.
	ErrInvalidState = errors.New("invalid state")
)

func forbidden(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

func invalidState(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

// validation wraps field errors so callers can match both ErrValidation and
// criterio.FieldErrors.
func validation(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

// FieldErrors extracts the per-field messages from a validation error.
// Returns nil for any other error.
func FieldErrors(err error) criterio.FieldErrors {
	var fe criterio.FieldErrors
	if errors.As(err, &fe) {
		return fe
	}
	return nil
}
