package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidProfile      = errors.New("invalid profile")
	ErrCacheMiss           = errors.New("cache miss")
	ErrProviderUnavailable = errors.New("model provider unavailable")
	ErrUnsupportedProvider = errors.New("unsupported model provider")
	ErrEmptyResponse       = errors.New("model returned no usable insights")
)

// AIServiceError is the single error surfaced to callers when the insight
// pipeline cannot produce a result. It wraps the underlying cause.
type AIServiceError struct {
	Stage string
	Cause error
}

func (e *AIServiceError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("insight generation failed at %s", e.Stage)
	}
	return fmt.Sprintf("insight generation failed at %s: %v", e.Stage, e.Cause)
}

func (e *AIServiceError) Unwrap() error {
	return e.Cause
}

// NewAIServiceError wraps cause as a pipeline failure at the named stage.
func NewAIServiceError(stage string, cause error) *AIServiceError {
	return &AIServiceError{Stage: stage, Cause: cause}
}
