// Package domain defines core types, interfaces, and errors for the directory engine.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// NotFoundError indicates a resource was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// AccessDeniedError indicates insufficient permissions.
type AccessDeniedError struct {
	Message string
}

func (e *AccessDeniedError) Error() string { return e.Message }

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError indicates a duplicate name or conflicting resource.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// InvalidHierarchyError indicates an OU mutation that would break the tree:
// a missing parent or a parent assignment that closes a cycle.
type InvalidHierarchyError struct {
	Message string
}

func (e *InvalidHierarchyError) Error() string { return e.Message }

// NotEmptyError indicates a non-cascade delete of an OU that still has
// child OUs or assigned computers.
type NotEmptyError struct {
	Message string
}

func (e *NotEmptyError) Error() string { return e.Message }

// InvalidTransitionError indicates a computer status change that is not
// permitted from the current status.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}

// PolicyViolationError carries every password rule the candidate failed.
type PolicyViolationError struct {
	Violations []string
}

func (e *PolicyViolationError) Error() string {
	return "password policy violation: " + strings.Join(e.Violations, ", ")
}

// BadCredentialError indicates a login attempt with a wrong username or password.
type BadCredentialError struct{}

func (e *BadCredentialError) Error() string { return "invalid username or password" }

// LockedError indicates a login attempt against a locked account. Until is
// when the lock expires.
type LockedError struct {
	Until time.Time
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("account locked until %s", e.Until.UTC().Format(time.RFC3339))
}

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrAccessDenied creates an AccessDeniedError with a formatted message.
func ErrAccessDenied(format string, args ...interface{}) *AccessDeniedError {
	return &AccessDeniedError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrConflict creates a ConflictError with a formatted message.
func ErrConflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// ErrInvalidHierarchy creates an InvalidHierarchyError with a formatted message.
func ErrInvalidHierarchy(format string, args ...interface{}) *InvalidHierarchyError {
	return &InvalidHierarchyError{Message: fmt.Sprintf(format, args...)}
}

// ErrNotEmpty creates a NotEmptyError with a formatted message.
func ErrNotEmpty(format string, args ...interface{}) *NotEmptyError {
	return &NotEmptyError{Message: fmt.Sprintf(format, args...)}
}
