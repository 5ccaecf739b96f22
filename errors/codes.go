package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Pipeline run failures
const (
	// ErrCodeDocumentRead indicates the input document could not be located or decoded.
	ErrCodeDocumentRead ErrorCode = "DOCUMENT_READ_ERROR"
	// ErrCodeTransform indicates a transform step received a malformed event.
	ErrCodeTransform ErrorCode = "TRANSFORM_ERROR"
	// ErrCodeSinkWrite indicates the output destination could not be written or flushed.
	ErrCodeSinkWrite ErrorCode = "SINK_WRITE_ERROR"
	// ErrCodeCancelled indicates the caller cancelled the run.
	ErrCodeCancelled ErrorCode = "CANCELLED"
)

// Pipeline construction and lifecycle errors
const (
	// ErrCodeInvalidPipeline indicates the step layout violates the pipeline invariants.
	ErrCodeInvalidPipeline ErrorCode = "INVALID_PIPELINE"
	// ErrCodeInvalidState indicates an operation is not allowed in the current state.
	ErrCodeInvalidState ErrorCode = "INVALID_STATE"
	// ErrCodeRelease indicates a step failed to release its resources.
	ErrCodeRelease ErrorCode = "RELEASE_ERROR"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// The core never retries on its own; a caller may re-run with a fresh pipeline.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeDocumentRead:    false,
	ErrCodeTransform:       false,
	ErrCodeSinkWrite:       false,
	ErrCodeCancelled:       false,
	ErrCodeInvalidPipeline: false,
	ErrCodeInvalidState:    false,
	ErrCodeRelease:         false,
	ErrCodeInternal:        false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
