// Package fault defines the error taxonomy shared by all pipeline stages.
//
// Kinds:
//   - ValidationError: malformed or out-of-range input. Fatal, never retried.
//   - CapabilityTimeoutError / CapabilityUnavailableError: inference or
//     embedding backend failure. Retryable up to the configured bound.
//   - SchemaMismatchError: generated output failed structural validation.
//     Retried once with corrective context, then the stage falls back to a
//     documented minimal artifact.
//   - SubstitutionNotice: a default value stood in for missing optional data.
//     Recorded, never blocks progress.
package fault

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// ERROR KINDS
// =============================================================================

// Kind names an error category for logging and state records.
type Kind string

const (
	KindValidation            Kind = "validation_error"
	KindCapabilityTimeout     Kind = "capability_timeout"
	KindCapabilityUnavailable Kind = "capability_unavailable"
	KindSchemaMismatch        Kind = "schema_mismatch"
	KindSubstitution          Kind = "substitution_notice"
	KindCancelled             Kind = "cancelled"
)

// ValidationError is raised on malformed or out-of-range input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// NewValidationError creates a ValidationError for a named field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// CapabilityTimeoutError is raised when a capability call exceeds its deadline.
type CapabilityTimeoutError struct {
	Capability string
	Timeout    time.Duration
}

func (e *CapabilityTimeoutError) Error() string {
	return fmt.Sprintf("%s call timed out after %s", e.Capability, e.Timeout)
}

// CapabilityUnavailableError is raised when a capability backend fails.
type CapabilityUnavailableError struct {
	Capability string
	Cause      error
}

func (e *CapabilityUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s capability unavailable: %v", e.Capability, e.Cause)
	}
	return fmt.Sprintf("%s capability unavailable", e.Capability)
}

func (e *CapabilityUnavailableError) Unwrap() error {
	return e.Cause
}

// SchemaMismatchError is raised when generated output fails structural
// validation against the expected shape.
type SchemaMismatchError struct {
	Schema   string
	Problems []string
}

func (e *SchemaMismatchError) Error() string {
	if len(e.Problems) == 0 {
		return fmt.Sprintf("output does not match %s schema", e.Schema)
	}
	return fmt.Sprintf("output does not match %s schema: %v", e.Schema, e.Problems)
}

// NewSchemaMismatchError creates a SchemaMismatchError with the validation problems.
func NewSchemaMismatchError(schema string, problems ...string) *SchemaMismatchError {
	return &SchemaMismatchError{Schema: schema, Problems: problems}
}

// =============================================================================
// CLASSIFICATION
// =============================================================================

// KindOf maps an error to its taxonomy kind. Unrecognized errors are
// classified as capability failures so the retry policy errs on the side of
// retrying transient conditions.
func KindOf(err error) Kind {
	var ve *ValidationError
	var te *CapabilityTimeoutError
	var ue *CapabilityUnavailableError
	var se *SchemaMismatchError

	switch {
	case errors.As(err, &ve):
		return KindValidation
	case errors.As(err, &te):
		return KindCapabilityTimeout
	case errors.As(err, &ue):
		return KindCapabilityUnavailable
	case errors.As(err, &se):
		return KindSchemaMismatch
	default:
		return KindCapabilityUnavailable
	}
}

// Retryable reports whether the error kind is eligible for a bounded retry.
// Validation and schema mismatches are deterministic and never retried by the
// orchestrator (schema mismatches get one stage-internal corrective retry).
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindCapabilityTimeout, KindCapabilityUnavailable:
		return true
	default:
		return false
	}
}
