package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Client is a text completion provider.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// Request is a single-turn completion.
type Request struct {
	System      string
	Prompt      string
	JSON        bool
	Temperature float64
}

// Response is the raw provider output.
type Response struct {
	Text     string
	Provider string
	Model    string
}

// ErrNotConfigured is returned when no provider credentials are set.
var ErrNotConfigured = errors.New("llm provider not configured")

// Placeholder is used when no provider is configured. It never produces
// output.
type Placeholder struct{}

func (Placeholder) Complete(ctx context.Context, req Request) (Response, error) {
	return Response{}, ErrNotConfigured
}

// StatusError is a provider error carrying the upstream HTTP status.
type StatusError struct {
	Provider string
	Status   int
	Err      error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %v", e.Provider, e.Status, e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }

// IsTimeout reports whether err is a deadline or network timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// IsTransient reports whether a retry may succeed: timeouts, 429 and 5xx.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, ErrNotConfigured) || errors.Is(err, context.Canceled) {
		return false
	}
	if IsTimeout(err) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status == 429 || se.Status >= 500
	}
	return false
}
