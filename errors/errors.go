package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an AppError with the same code, so that
// stderrors.Is(err, &AppError{Code: ErrCodeCancelled}) matches any cancellation.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !stderrors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// --- Pipeline error constructors ---

// DocumentRead creates a new AppError for an input document that cannot be opened or decoded.
func DocumentRead(uri string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeDocumentRead, Message: fmt.Sprintf("unable to read document %q", uri),
		Details: map[string]any{"document": uri}, Cause: cause,
	}
}

// Transform creates a new AppError for a transform step that rejected an event.
func Transform(step string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeTransform, Message: fmt.Sprintf("step %q failed to transform event", step),
		Details: map[string]any{"step": step}, Cause: cause,
	}
}

// SinkWrite creates a new AppError for a destination that cannot be written or flushed.
func SinkWrite(destination string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeSinkWrite, Message: fmt.Sprintf("unable to write output %q", destination),
		Details: map[string]any{"destination": destination}, Cause: cause,
	}
}

// Cancelled creates a new AppError for a run aborted by the caller.
func Cancelled(cause error) *AppError {
	return &AppError{
		Code: ErrCodeCancelled, Message: "pipeline run cancelled", Cause: cause,
	}
}

// InvalidPipeline creates a new AppError for a step layout that breaks the pipeline invariants.
func InvalidPipeline(reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidPipeline, Message: fmt.Sprintf("invalid pipeline: %s", reason),
	}
}

// InvalidState creates a new AppError for an operation attempted in the wrong lifecycle state.
func InvalidState(operation, state string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidState, Message: fmt.Sprintf("cannot %s while pipeline is %s", operation, state),
		Details: map[string]any{"operation": operation, "state": state},
	}
}

// Release creates a new AppError for a step whose release hook failed.
func Release(step string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeRelease, Message: fmt.Sprintf("step %q failed to release resources", step),
		Details: map[string]any{"step": step}, Cause: cause,
	}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
	}
}

// MissingField creates a new AppError for a missing required field.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("Missing required field: %s", field),
		Details: map[string]any{"field": field},
	}
}

// Internal creates a new AppError for an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		Cause: cause,
	}
}

// --- Inspection helpers ---

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether any AppError in err's tree carries code. Joined
// errors are searched branch by branch.
func HasCode(err error, code ErrorCode) bool {
	switch e := err.(type) {
	case nil:
		return false
	case *AppError:
		return e != nil && (e.Code == code || HasCode(e.Cause, code))
	case interface{ Unwrap() []error }:
		for _, inner := range e.Unwrap() {
			if HasCode(inner, code) {
				return true
			}
		}
		return false
	case interface{ Unwrap() error }:
		return HasCode(e.Unwrap(), code)
	}
	return false
}

// CodeOf returns the code of the outermost AppError in err's chain, or
// ErrCodeInternal for a plain error and "" for nil.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}

// Wrap converts any error into an AppError. AppErrors anywhere in the chain
// are returned as-is; other errors become Internal.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return Internal(err)
}
