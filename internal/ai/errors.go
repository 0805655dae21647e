package ai

import (
	"errors"
	"net/http"

	"jobhunt-backend/internal/llm"
	"jobhunt-backend/internal/usage"
)

var (
	ErrUnknownKind    = errors.New("unknown ai kind")
	ErrJobNotFound    = errors.New("job not found")
	ErrResumeNotFound = errors.New("resume not found")
)

const (
	CodeFailed          = "ai_failed"
	CodeInvalidResponse = "ai_invalid_response"
	CodeTimeout         = "ai_timeout"
	CodeNotConfigured   = "ai_not_configured"
)

// GenerationError is a failed model call. The analysis row records the same
// code.
type GenerationError struct {
	Code       string
	AnalysisID string
	Err        error
}

func (e *GenerationError) Error() string { return e.Code + ": " + e.Err.Error() }

func (e *GenerationError) Unwrap() error { return e.Err }

// Status maps the code to an HTTP status.
func (e *GenerationError) Status() int {
	switch e.Code {
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeNotConfigured:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

// Message is safe to show to users.
func (e *GenerationError) Message() string {
	switch e.Code {
	case CodeTimeout:
		return "AI provider timed out"
	case CodeNotConfigured:
		return "AI provider is not configured"
	case CodeInvalidResponse:
		return "AI provider returned an invalid response"
	default:
		return "AI generation failed"
	}
}

// LimitError is returned when the caller's quota is used up.
type LimitError struct {
	Usage usage.Usage
}

func (e *LimitError) Error() string { return usage.ErrLimitReached.Error() }

func (e *LimitError) Unwrap() error { return usage.ErrLimitReached }

func classify(err error) string {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return CodeInvalidResponse
	case errors.Is(err, llm.ErrNotConfigured):
		return CodeNotConfigured
	case llm.IsTimeout(err):
		return CodeTimeout
	default:
		return CodeFailed
	}
}
