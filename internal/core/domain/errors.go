// Package domain defines the core domain models for Savecore.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a persistence-layer error with a structured
// error code. Structural validation findings are never raised as
// errors; they are collected in schema.Result. Everything that can
// abort a save, load, or sync operation goes through this type.
type DomainError struct {
	Code    string // Error code (e.g., "SV-CHK-4090")
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

// Is implements errors.Is() support for error comparison by code.
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

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Integrity Errors (CHK / REC / MIG)
// ============================================================================

var (
	// ErrChecksumMismatch indicates the stored checksum disagrees with
	// the recomputed value. Treated like a structural failure on load,
	// never a benign state.
	ErrChecksumMismatch = NewDomainError("SV-CHK-4090", "save checksum mismatch")

	// ErrRecoveryFailed indicates no applicable repair strategy existed
	// for a corrupted field. The load is rejected and the live state
	// stays untouched.
	ErrRecoveryFailed = NewDomainError("SV-REC-5000", "this save appears damaged and could not be repaired")

	// ErrMigrationPath indicates no transform path exists from the
	// stored schema version to the current one.
	ErrMigrationPath = NewDomainError("SV-MIG-4040", "no migration path from stored save version")

	// ErrMigrationApply indicates a version transform failed mid-run.
	ErrMigrationApply = NewDomainError("SV-MIG-5000", "save migration failed")
)

// ============================================================================
// Slot Errors (SLOT)
// ============================================================================

var (
	// ErrSlotEmpty indicates the requested slot holds no record.
	ErrSlotEmpty = NewDomainError("SV-SLOT-4040", "save slot is empty")

	// ErrSlotIndex indicates the slot index is outside the fixed slot set.
	ErrSlotIndex = NewDomainError("SV-SLOT-4000", "save slot index out of range")

	// ErrPayloadMalformed indicates the stored payload is not decodable JSON.
	ErrPayloadMalformed = NewDomainError("SV-SLOT-4001", "save payload is not decodable")
)

// ============================================================================
// Cloud Sync Errors (NET / STOR)
// ============================================================================

var (
	// ErrQuotaExceeded indicates local or remote storage is full.
	// On a cloud write this triggers the local-only fallback.
	ErrQuotaExceeded = NewDomainError("SV-STOR-5070", "storage quota exceeded")

	// ErrNetworkUnavailable indicates the remote call could not be
	// attempted. The caller degrades to offline mode and queues a
	// deferred sync.
	ErrNetworkUnavailable = NewDomainError("SV-NET-5030", "cloud storage unreachable")

	// ErrCloudCorrupted indicates the remote copy failed integrity checks.
	ErrCloudCorrupted = NewDomainError("SV-NET-4220", "cloud save data corrupted")

	// ErrCloudNotFound indicates no remote record exists for the slot.
	ErrCloudNotFound = NewDomainError("SV-NET-4040", "no cloud save for slot")

	// ErrSyncConflict indicates local and cloud copies diverged and the
	// caller must choose which one wins.
	ErrSyncConflict = NewDomainError("SV-NET-4091", "local and cloud saves conflict")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrStorage indicates a slot store failure.
	ErrStorage = NewDomainError("SV-SYS-5001", "slot storage error")

	// ErrInternal indicates an unexpected internal error.
	ErrInternal = NewDomainError("SV-SYS-5000", "internal error")
)
