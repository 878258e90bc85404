package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sashabaranov/go-openai"
)

func TestError_Error_WithContext(t *testing.T) {
	err := &Error{
		Type:       ErrorTypeRateLimit,
		Message:    "rate limited",
		StatusCode: 429,
		Provider:   ProviderGroq,
		Model:      "llama-3.1-70b-versatile",
	}

	expected := "rate_limit provider=groq HTTP 429 model=llama-3.1-70b-versatile rate limited"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}

func TestError_Error_WithCause(t *testing.T) {
	err := NewError(ErrorTypeTimeout, "request timeout", true, errors.New("i/o timeout"))

	expected := "timeout request timeout: i/o timeout"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}

func TestClassifyError_RetryableKinds(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantType      ErrorType
		wantRetryable bool
		wantStatus    int
	}{
		{
			name:          "openai api error 429",
			err:           &openai.APIError{HTTPStatusCode: 429, Message: "Rate limit reached"},
			wantType:      ErrorTypeRateLimit,
			wantRetryable: true,
			wantStatus:    429,
		},
		{
			name:          "openai request error 504",
			err:           &openai.RequestError{HTTPStatusCode: 504, Err: errors.New("gateway timeout")},
			wantType:      ErrorTypeTimeout,
			wantRetryable: true,
			wantStatus:    504,
		},
		{
			name:          "rate limit text",
			err:           errors.New("Rate limit exceeded for model"),
			wantType:      ErrorTypeRateLimit,
			wantRetryable: true,
		},
		{
			name:          "anthropic rate limit error type",
			err:           errors.New("anthropic api error type: rate_limit_error, message: slow down"),
			wantType:      ErrorTypeRateLimit,
			wantRetryable: true,
		},
		{
			name:          "client timeout",
			err:           errors.New(`Post "https://api.groq.com": context deadline exceeded (Client.Timeout exceeded while awaiting headers)`),
			wantType:      ErrorTypeTimeout,
			wantRetryable: true,
		},
		{
			name:          "openai api error 401",
			err:           &openai.APIError{HTTPStatusCode: 401, Message: "Invalid API Key"},
			wantType:      ErrorTypeAuth,
			wantRetryable: false,
			wantStatus:    401,
		},
		{
			name:          "server error is not retried",
			err:           &openai.APIError{HTTPStatusCode: 503, Message: "Service Unavailable"},
			wantType:      ErrorTypeServer,
			wantRetryable: false,
			wantStatus:    503,
		},
		{
			name:          "model not found text",
			err:           errors.New("The model `llama-9` does not exist"),
			wantType:      ErrorTypeModel,
			wantRetryable: false,
		},
		{
			name:          "unknown failure",
			err:           errors.New("unexpected end of JSON input"),
			wantType:      ErrorTypeUnknown,
			wantRetryable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(tt.err)
			if got.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", got.Type, tt.wantType)
			}
			if got.Retryable != tt.wantRetryable {
				t.Errorf("Retryable = %v, want %v", got.Retryable, tt.wantRetryable)
			}
			if got.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", got.StatusCode, tt.wantStatus)
			}
			if !errors.Is(got, tt.err) {
				t.Error("classified error should wrap the original")
			}
		})
	}
}

func TestClassifyError_ContextCanceledNotRetryable(t *testing.T) {
	err := ClassifyError(fmt.Errorf("request failed: %w", context.Canceled))
	if err.Retryable {
		t.Error("canceled requests must not be retried")
	}
	if err.Type != ErrorTypeCanceled {
		t.Errorf("Type = %q, want %q", err.Type, ErrorTypeCanceled)
	}
	if !errors.Is(err, context.Canceled) {
		t.Error("errors.Is(context.Canceled) should hold")
	}
}

func TestClassifyError_PreservesExistingError(t *testing.T) {
	original := NewError(ErrorTypeAuth, "authentication failed", false, nil)
	wrapped := fmt.Errorf("call failed: %w", original)

	if got := ClassifyError(wrapped); got != original {
		t.Errorf("expected the existing *Error to be returned, got %v", got)
	}
	if ClassifyError(nil) != nil {
		t.Error("ClassifyError(nil) should be nil")
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(fmt.Errorf("wrap: %w", NewError(ErrorTypeRateLimit, "rate limited", true, nil))) {
		t.Error("wrapped retryable error should be retryable")
	}
	if IsRetryable(errors.New("rate limit")) {
		t.Error("unclassified errors are not retryable")
	}
	if GetErrorType(errors.New("plain")) != ErrorTypeUnknown {
		t.Error("GetErrorType of a plain error should be unknown")
	}
}
