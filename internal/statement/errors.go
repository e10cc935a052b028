package statement

import "fmt"

// PipelineErrorCode represents specific ingestion failure types.
type PipelineErrorCode string

const (
	ErrNoHeaderFound       PipelineErrorCode = "NO_HEADER_FOUND"
	ErrNoUsableRows        PipelineErrorCode = "NO_USABLE_ROWS"
	ErrUnsupportedFileType PipelineErrorCode = "UNSUPPORTED_FILE_TYPE"
	ErrMalformedPayload    PipelineErrorCode = "MALFORMED_PAYLOAD"
	ErrFallbackUnavailable PipelineErrorCode = "FALLBACK_UNAVAILABLE"
	ErrFallbackRateLimited PipelineErrorCode = "FALLBACK_RATE_LIMITED"
)

// PipelineError is a structured error for ingestion failures.
type PipelineError struct {
	Code      PipelineErrorCode
	Message   string
	Stage     string // e.g. "locate", "parse", "clean"
	Retryable bool
	Cause     error
}

func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// IsRetryable returns whether this error is retryable.
func (e *PipelineError) IsRetryable() bool {
	return e.Retryable
}
