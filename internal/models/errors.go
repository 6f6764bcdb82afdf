package models

import (
	"errors"
	"fmt"
)

// History related errors
var (
	ErrAnalysisNotFound  = errors.New("analysis not found")
	ErrAnalysisExists    = errors.New("analysis already recorded")
	ErrHistoryDisabled   = errors.New("analysis history is not configured")
	ErrCredentialMissing = errors.New("reasoning service credential is not configured")
)

// ErrorClass classifies a failed call to the reasoning service.
type ErrorClass string

const (
	ClassRateLimited  ErrorClass = "rate_limited"
	ClassUnauthorized ErrorClass = "unauthorized"
	ClassTransient    ErrorClass = "transient"
	ClassFatal        ErrorClass = "fatal"
)

// RemoteError is a failed remote call. It is never partially populated:
// Class is always set.
type RemoteError struct {
	Class ErrorClass
	Err   error
}

func (e *RemoteError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("reasoning service: %s", e.Class)
	}
	return fmt.Sprintf("reasoning service (%s): %v", e.Class, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// IsRateLimited reports whether err is a rate-limited remote failure.
func IsRateLimited(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Class == ClassRateLimited
}

// DataIntegrityError means no structured value could be recovered from the
// upstream text. Raw is kept for diagnostics and must not reach end users.
type DataIntegrityError struct {
	Raw string
	Err error
}

func (e *DataIntegrityError) Error() string {
	return "data integrity error: the engine returned an unreadable report"
}

func (e *DataIntegrityError) Unwrap() error { return e.Err }

// ValidationError is bad or missing input, detected before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ErrorKind groups caller-facing analysis failures.
type ErrorKind string

const (
	KindValidationFailure    ErrorKind = "validation"
	KindConfigurationFailure ErrorKind = "configuration"
	KindRateLimitFailure     ErrorKind = "rate_limited"
	KindDataIntegrityFailure ErrorKind = "data_integrity"
	KindUpstreamFailure      ErrorKind = "upstream"
)

// User-facing messages for AnalysisError.
const (
	MsgConfiguration = "Security Key Missing. Please set your GEMINI_API_KEY."
	MsgRateLimited   = "Truth Engine connection lost. The project may have reached its hourly limit. Please try again in a few minutes."
	MsgDataIntegrity = "Data Integrity Error: The engine returned an unreadable report."
	MsgUpstream      = "Truth Engine connection lost. Please try again shortly."
	MsgUnauthorized  = "Truth Engine rejected the configured credential. Please check your GEMINI_API_KEY."
)

// AnalysisError is the only error type the analysis path returns. Error()
// yields the human-readable message; the cause stays reachable via Unwrap.
type AnalysisError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AnalysisError) Error() string {
	return e.Message
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// AsAnalysisError extracts the AnalysisError from err, if any.
func AsAnalysisError(err error) (*AnalysisError, bool) {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
