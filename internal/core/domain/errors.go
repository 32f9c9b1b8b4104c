// Package domain defines the core domain models for the leaderboard registry.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business domain error with a structured
// error code. Codes follow the LB-<AREA>-<NNNN> convention: 4xxx codes
// are expected, recoverable outcomes reported to the caller as normal
// results; 5xxx codes abort the current operation.
type DomainError struct {
	Code    string // Error code (e.g., "LB-REG-4090")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support; two DomainErrors match when their
// codes match, regardless of details or cause.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks that the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Registry Errors (REG)
// ============================================================================

var (
	// ErrUsernameTaken indicates a register request for a username that
	// already exists (case-sensitive exact match).
	ErrUsernameTaken = NewDomainError("LB-REG-4090", "username already registered")

	// ErrUserNotFound indicates the requested user record was not found.
	ErrUserNotFound = NewDomainError("LB-REG-4040", "user not found")

	// ErrInvalidRecord indicates a user record failed validation.
	ErrInvalidRecord = NewDomainError("LB-REG-4000", "invalid user record")
)

// ============================================================================
// Snapshot Errors (SNAP)
// ============================================================================

var (
	// ErrSnapshotMalformed indicates a snapshot blob could not be decoded.
	ErrSnapshotMalformed = NewDomainError("LB-SNAP-4000", "malformed snapshot blob")

	// ErrPointerUnset indicates no snapshot has been pushed yet, so there
	// is nothing to pull. Callers treat this as "no backup exists".
	ErrPointerUnset = NewDomainError("LB-SNAP-4040", "snapshot pointer not set")
)

// ============================================================================
// Channel Errors (CHAN)
// ============================================================================

var (
	// ErrChannelUnavailable indicates an external channel fetch or push
	// failed. The operation is not retried by the core.
	ErrChannelUnavailable = NewDomainError("LB-CHAN-5020", "channel request failed")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrStorageError indicates a storage layer error.
	ErrStorageError = NewDomainError("LB-SYS-5001", "storage error")

	// ErrInternal indicates an unexpected internal error.
	ErrInternal = NewDomainError("LB-SYS-5000", "internal error")
)
