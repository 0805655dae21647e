package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"jobhunt-backend/internal/llm"
	"jobhunt-backend/internal/shared/telemetry"
)

const providerName = "gemini"

// Client implements llm.Client on Google Gemini through langchaingo.
type Client struct {
	model   llms.Model
	name    string
	timeout time.Duration
}

// NewClient builds a Gemini-backed client.
func NewClient(ctx context.Context, apiKey, model string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY is required", llm.ErrNotConfigured)
	}
	m, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return NewWithModel(m, model, timeout), nil
}

// NewWithModel wraps any langchaingo model.
func NewWithModel(m llms.Model, name string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{model: m, name: name, timeout: timeout}
}

func (c *Client) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	prompt := req.Prompt
	if strings.TrimSpace(req.System) != "" {
		prompt = req.System + "\n\n" + req.Prompt
	}
	opts := []llms.CallOption{llms.WithTemperature(req.Temperature)}
	if req.JSON {
		opts = append(opts, llms.WithJSONMode())
	}

	start := time.Now()
	text, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt, opts...)
	if err != nil {
		return llm.Response{}, classify(err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return llm.Response{}, errors.New("gemini response empty content")
	}
	telemetry.Info("llm.response", map[string]any{
		"provider":    providerName,
		"model":       c.name,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return llm.Response{Text: text, Provider: providerName, Model: c.name}, nil
}

// classify maps Gemini API error text onto an HTTP status.
func classify(err error) error {
	if llm.IsTimeout(err) || errors.Is(err, context.Canceled) {
		return err
	}
	msg := err.Error()
	status := 0
	switch {
	case strings.Contains(msg, "RESOURCE_EXHAUSTED") || strings.Contains(msg, "Error 429"):
		status = 429
	case strings.Contains(msg, "UNAVAILABLE") || strings.Contains(msg, "Error 503"):
		status = 503
	case strings.Contains(msg, "INTERNAL") || strings.Contains(msg, "Error 500"):
		status = 500
	case strings.Contains(msg, "INVALID_ARGUMENT") || strings.Contains(msg, "Error 400"):
		status = 400
	}
	if status == 0 {
		return fmt.Errorf("gemini request: %w", err)
	}
	return &llm.StatusError{Provider: providerName, Status: status, Err: err}
}

var _ llm.Client = (*Client)(nil)
