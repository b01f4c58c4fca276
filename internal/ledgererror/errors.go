// Package ledgererror defines the error taxonomy shared by all ledger
// operations: authorization, not-found, validation, conflict and
// persistence failures.
package ledgererror

import (
	"errors"
	"fmt"
)

// AuthorizationError means the acting user lacks admin or manager rights
// for the attempted operation. It is always raised before any write.
type AuthorizationError struct {
	UserID    string
	Operation string
}

func (e *AuthorizationError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("user %s is not authorized for %s", e.UserID, e.Operation)
	}
	return fmt.Sprintf("user %s is not authorized", e.UserID)
}

// NotFoundError means a referenced entity does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// ValidationError means the input itself is unusable: a missing required
// field, an empty participant list, zero total weights.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

// ConflictError means a uniqueness constraint was violated, e.g. assigning
// a member as manager of an account they already manage.
type ConflictError struct {
	Entity string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Entity, e.Reason)
}

// PersistenceError wraps a failure of the underlying store. The original
// error is preserved for unwrapping.
type PersistenceError struct {
	Operation string
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("store failure during %s: %v", e.Operation, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsAuthorization reports whether err is (or wraps) an AuthorizationError.
func IsAuthorization(err error) bool {
	var target *AuthorizationError
	return errors.As(err, &target)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}
