package jobs

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrMissingRequiredField = errors.New("required data item not covered")
	ErrStaleOperation       = errors.New("job status changed since read")
)

const (
	ErrorCodeValidation       = "VALIDATION_ERROR"
	ErrorCodeAITimeout        = "AI_TIMEOUT"
	ErrorCodeAISchemaMismatch = "AI_SCHEMA_MISMATCH"
	ErrorCodeStorage          = "STORAGE_ERROR"
	ErrorCodeInternal         = "INTERNAL_ERROR"
)

// RetryableCode reports whether a failure with this code is worth
// relaunching unchanged. Timeouts and storage hiccups are transient;
// validation and schema failures will fail the same way again.
func RetryableCode(code string) bool {
	switch code {
	case ErrorCodeAITimeout, ErrorCodeStorage:
		return true
	default:
		return false
	}
}
