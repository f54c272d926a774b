package provision

import (
	"errors"
	"fmt"
)

var (
	// ErrInternal marks an unexpected failure recovered at the engine boundary.
	ErrInternal = errors.New("internal error")
	// ErrCompanyNotFound is returned when the requested companyId does not exist.
	ErrCompanyNotFound = errors.New("company not found")
)

// ValidationError reports the first violated request rule. No store has been
// touched when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// StoreError wraps a failed read or write against a collaborator store.
// State written before the failure is left in place; the next call reconciles it.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeError(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
