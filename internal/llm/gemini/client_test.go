package gemini

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tmc/langchaingo/llms"

	"jobhunt-backend/internal/llm"
)

type fakeModel struct {
	text    string
	err     error
	prompt  string
	options llms.CallOptions
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, opt := range options {
		opt(&f.options)
	}
	if len(messages) > 0 && len(messages[0].Parts) > 0 {
		if tp, ok := messages[0].Parts[0].(llms.TextContent); ok {
			f.prompt = tp.Text
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.text}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestCompletePassesJSONModeAndSystemPrompt(t *testing.T) {
	m := &fakeModel{text: ` {"ok":true} `}
	c := NewWithModel(m, "gemini-1.5-flash", time.Second)

	resp, err := c.Complete(context.Background(), llm.Request{System: "be terse", Prompt: "hello", JSON: true, Temperature: 0.2})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Text != `{"ok":true}` || resp.Provider != "gemini" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if !m.options.JSONMode || m.options.Temperature != 0.2 {
		t.Fatalf("expected json mode and temperature, got %+v", m.options)
	}
	if m.prompt != "be terse\n\nhello" {
		t.Fatalf("unexpected prompt %q", m.prompt)
	}
}

func TestCompleteClassifiesQuotaErrors(t *testing.T) {
	m := &fakeModel{err: errors.New("googleapi: Error 429: RESOURCE_EXHAUSTED")}
	c := NewWithModel(m, "gemini-1.5-flash", time.Second)

	_, err := c.Complete(context.Background(), llm.Request{Prompt: "hello"})
	if !llm.IsTransient(err) {
		t.Fatalf("expected transient error, got %v", err)
	}

	m.err = errors.New("googleapi: Error 400: INVALID_ARGUMENT")
	_, err = c.Complete(context.Background(), llm.Request{Prompt: "hello"})
	if err == nil || llm.IsTransient(err) {
		t.Fatalf("expected permanent error, got %v", err)
	}
}
