package util

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrAlreadyVoted     = errors.New("vote already recorded")
	ErrLockHeld         = errors.New("recompute already in progress")
)

// ValidationError rejects a single save or submit. It may carry several
// messages; prior persisted state is left untouched by the caller.
type ValidationError struct {
	Entity string
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: %s", e.Entity, strings.Join(e.Errors, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func (e *ValidationError) AddError(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

func NewValidationError(entity string, format string, args ...any) *ValidationError {
	return &ValidationError{Entity: entity, Errors: []string{fmt.Sprintf(format, args...)}}
}

// NotFoundError reports a referenced Question, Project, Response or Tension
// that does not exist. It is fatal for the containing operation.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.Key)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func NewNotFoundError(entity, key string) *NotFoundError {
	return &NotFoundError{Entity: entity, Key: key}
}
