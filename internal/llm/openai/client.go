package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"jobhunt-backend/internal/llm"
	"jobhunt-backend/internal/shared/telemetry"
)

const (
	providerName   = "openai"
	defaultTimeout = 60 * time.Second
)

// Client implements llm.Client using OpenAI Chat Completions.
type Client struct {
	client  openai.Client
	model   string
	timeout time.Duration
}

// NewClient constructs a new OpenAI client. Retries are left to the caller.
func NewClient(apiKey, model string, timeout time.Duration, opts ...option.RequestOption) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY is required", llm.ErrNotConfigured)
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("OPENAI_MODEL is required")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	base := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	return &Client{
		client:  openai.NewClient(append(base, opts...)...),
		model:   model,
		timeout: timeout,
	}, nil
}

func (c *Client) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if strings.TrimSpace(req.System) != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(c.model),
		Messages: messages,
	}
	if supportsTemperature(c.model) {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.JSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{Type: "json_object"},
		}
	}

	start := time.Now()
	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return llm.Response{}, classify(err)
	}
	if len(completion.Choices) == 0 {
		return llm.Response{}, errors.New("openai response missing choices")
	}
	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return llm.Response{}, errors.New("openai response empty content")
	}

	telemetry.Info("llm.response", map[string]any{
		"provider":          providerName,
		"model":             c.model,
		"prompt_tokens":     completion.Usage.PromptTokens,
		"completion_tokens": completion.Usage.CompletionTokens,
		"duration_ms":       time.Since(start).Milliseconds(),
	})
	return llm.Response{Text: content, Provider: providerName, Model: c.model}, nil
}

func classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &llm.StatusError{Provider: providerName, Status: apiErr.StatusCode, Err: err}
	}
	return fmt.Errorf("openai request: %w", err)
}

// supportsTemperature is false for reasoning models, which only accept the
// default temperature.
func supportsTemperature(model string) bool {
	m := strings.ToLower(strings.TrimSpace(model))
	for _, prefix := range []string{"gpt-5", "o1", "o3", "o4"} {
		if strings.HasPrefix(m, prefix) {
			return false
		}
	}
	return true
}

var _ llm.Client = (*Client)(nil)
