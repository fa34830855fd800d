// Package errors defines stable error codes for all failure modes of the
// analysis pipeline. Unresolvable field references are NOT errors in this
// system; they flow into audit lists and event details instead.
package errors

import (
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// InputDirMissing indicates an expected input directory does not exist
	InputDirMissing ErrorCode = "INPUT_DIR_MISSING"
	// ArtifactUnreadable indicates a single artifact file could not be read or parsed
	ArtifactUnreadable ErrorCode = "ARTIFACT_UNREADABLE"
	// MetadataEmpty indicates the field metadata directory produced no identities
	MetadataEmpty ErrorCode = "METADATA_EMPTY"
	// FieldNotFound indicates a resolver lookup found no identity
	FieldNotFound ErrorCode = "FIELD_NOT_FOUND"
	// InvalidLookupKey indicates a resolver lookup key carried zero or multiple key parts
	InvalidLookupKey ErrorCode = "INVALID_LOOKUP_KEY"
	// ExportFailed indicates a snapshot export could not be written
	ExportFailed ErrorCode = "EXPORT_FAILED"
	// SnapshotStoreFailed indicates the SQLite snapshot store rejected a write
	SnapshotStoreFailed ErrorCode = "SNAPSHOT_STORE_FAILED"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FlsError represents a fieldlens error with a stable code and message
type FlsError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error       // Underlying error (not exported to JSON)
}

// New creates a new FlsError
func New(code ErrorCode, message string, cause error) *FlsError {
	return &FlsError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Error implements the error interface
func (e *FlsError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *FlsError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *FlsError) WithDetails(details interface{}) *FlsError {
	e.Details = details
	return e
}

// CodeOf returns the stable code of err if it is an FlsError,
// or InternalError otherwise.
func CodeOf(err error) ErrorCode {
	if fe, ok := err.(*FlsError); ok {
		return fe.Code
	}
	return InternalError
}
