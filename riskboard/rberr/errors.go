package rberr

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that no record exists for the given id.
var ErrNotFound = errors.New("not found")

// ValidationError is a malformed field on a direct create or update.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{
		Field:  field,
		Reason: fmt.Sprintf(format, args...),
	}
}

// StoreError is a failure of the backing store itself (unavailable, locked, I/O). Callers should surface it.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store failure during %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// AuditWriteError means the activity log could not be written; the paired mutation was not applied.
type AuditWriteError struct {
	EntityType string
	EntityID   string
	Err        error
}

func (e *AuditWriteError) Error() string {
	return fmt.Sprintf("unable to record activity for %s %q (change rolled back): %v", e.EntityType, e.EntityID, e.Err)
}

func (e *AuditWriteError) Unwrap() error {
	return e.Err
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsAuditWrite(err error) bool {
	var a *AuditWriteError
	return errors.As(err, &a)
}

func IsStore(err error) bool {
	var s *StoreError
	return errors.As(err, &s)
}
