// Package errs defines the typed error taxonomy of the workflow engine.
// Domain errors carry enough context (entity id, attempted transition,
// current state) for callers to render an actionable message; they are
// never retried by the engine itself.
package errs

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed input to a create or update
// operation. Surfaced synchronously, never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// NewValidation builds a ValidationError for a named field.
func NewValidation(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a reference to an entity id that does not exist.
type NotFoundError struct {
	EntityType string
	ID         string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.EntityType, e.ID)
}

// NewNotFound builds a NotFoundError.
func NewNotFound(entityType, id string) error {
	return &NotFoundError{EntityType: entityType, ID: id}
}

// InvalidStateError reports a transition attempted from a state that does
// not permit it. The caller must re-fetch current state before retrying.
type InvalidStateError struct {
	EntityType string
	ID         string
	State      string
	Attempted  string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s %s: cannot %s in state %s", e.EntityType, e.ID, e.Attempted, e.State)
}

// NewInvalidState builds an InvalidStateError.
func NewInvalidState(entityType, id, state, attempted string) error {
	return &InvalidStateError{EntityType: entityType, ID: id, State: state, Attempted: attempted}
}

// ApproverNotFoundError reports a decision submitted by a party with no
// approval entry on the target document.
type ApproverNotFoundError struct {
	EntityType string
	EntityID   string
	ApproverID string
}

func (e *ApproverNotFoundError) Error() string {
	return fmt.Sprintf("approver %s has no approval entry on %s %s", e.ApproverID, e.EntityType, e.EntityID)
}

// NewApproverNotFound builds an ApproverNotFoundError.
func NewApproverNotFound(entityType, entityID, approverID string) error {
	return &ApproverNotFoundError{EntityType: entityType, EntityID: entityID, ApproverID: approverID}
}

// ConflictError reports a write that targeted a stale version.
type ConflictError struct {
	EntityType      string
	ID              string
	ExpectedVersion int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s: stale write, expected version %d", e.EntityType, e.ID, e.ExpectedVersion)
}

// NewConflict builds a ConflictError.
func NewConflict(entityType, id string, expectedVersion int64) error {
	return &ConflictError{EntityType: entityType, ID: id, ExpectedVersion: expectedVersion}
}

// PermissionError reports a caller lacking the permission an operation is
// gated on.
type PermissionError struct {
	UserID     string
	Permission string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s lacks permission %s", e.UserID, e.Permission)
}

// NewPermission builds a PermissionError.
func NewPermission(userID, permission string) error {
	return &PermissionError{UserID: userID, Permission: permission}
}

// StorageError wraps a collaborator (store) failure. Distinguished from
// domain errors so callers can treat it as retriable infrastructure
// trouble rather than a rule violation.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorage wraps err as a StorageError, or returns nil when err is nil.
func NewStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsInvalidState reports whether err is an InvalidStateError.
func IsInvalidState(err error) bool {
	var target *InvalidStateError
	return errors.As(err, &target)
}

// IsApproverNotFound reports whether err is an ApproverNotFoundError.
func IsApproverNotFound(err error) bool {
	var target *ApproverNotFoundError
	return errors.As(err, &target)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

// IsPermission reports whether err is a PermissionError.
func IsPermission(err error) bool {
	var target *PermissionError
	return errors.As(err, &target)
}

// IsStorage reports whether err is a StorageError.
func IsStorage(err error) bool {
	var target *StorageError
	return errors.As(err, &target)
}
