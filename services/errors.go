package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies pipeline failures. Kinds are string-based so they
// serialize naturally into JSON error payloads and logs.
type ErrorKind string

const (
	// KindValidation indicates malformed input (bad decision type, missing id).
	KindValidation ErrorKind = "VALIDATION"

	// KindAuthorization indicates the actor lacks the required capability.
	KindAuthorization ErrorKind = "AUTHORIZATION"

	// KindNotFound indicates a referenced submission/article/issue is absent.
	KindNotFound ErrorKind = "NOT_FOUND"

	// KindConflict indicates a duplicate key: an article already published
	// for the submission, or an issue with the same (volume, number, year).
	KindConflict ErrorKind = "CONFLICT"

	// KindInvalidState indicates an operation attempted against a submission
	// whose status does not allow it.
	KindInvalidState ErrorKind = "INVALID_STATE"

	// KindExternalService indicates the registration agency call failed or
	// timed out. Non-terminal for the publish flow as a whole.
	KindExternalService ErrorKind = "EXTERNAL_SERVICE"

	// KindInternal indicates an unexpected database or system failure.
	KindInternal ErrorKind = "INTERNAL"
)

// PipelineError is the structured error returned by every pipeline stage.
// Details carries stage-specific payloads such as the raw agency response.
type PipelineError struct {
	Kind    ErrorKind              `json:"kind"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	cause   error
}

func (e *PipelineError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.cause
}

// NewPipelineError builds a PipelineError without a wrapped cause.
func NewPipelineError(kind ErrorKind, message string) *PipelineError {
	return &PipelineError{Kind: kind, Message: message}
}

// WrapPipelineError builds a PipelineError around an underlying cause.
func WrapPipelineError(kind ErrorKind, message string, cause error) *PipelineError {
	return &PipelineError{Kind: kind, Message: message, cause: cause}
}

// WithDetail attaches one key/value to the error payload and returns the
// error for chaining.
func (e *PipelineError) WithDetail(key string, value interface{}) *PipelineError {
	if e.Details == nil {
		e.Details = map[string]interface{}{}
	}
	e.Details[key] = value
	return e
}

// KindOf extracts the ErrorKind from err, unwrapping as needed. Unclassified
// errors report KindInternal.
func KindOf(err error) ErrorKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindInternal
}
