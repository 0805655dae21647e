package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/openai/openai-go/v3/option"

	"jobhunt-backend/internal/llm"
)

func TestSupportsTemperature(t *testing.T) {
	tests := []struct {
		name  string
		model string
		want  bool
	}{
		{name: "gpt5", model: "gpt-5", want: false},
		{name: "gpt5 variant", model: "gpt-5-mini", want: false},
		{name: "gpt5 uppercase", model: " GPT-5o ", want: false},
		{name: "o-series", model: "o3-mini", want: false},
		{name: "gpt4", model: "gpt-4o", want: true},
		{name: "empty", model: "", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := supportsTemperature(tt.model); got != tt.want {
				t.Fatalf("supportsTemperature(%q) = %v, want %v", tt.model, got, tt.want)
			}
		})
	}
}

func newServer(t *testing.T, status int, body string) (*httptest.Server, func() map[string]any) {
	t.Helper()
	var mu sync.Mutex
	var last map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		mu.Lock()
		last = payload
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, func() map[string]any {
		mu.Lock()
		defer mu.Unlock()
		return last
	}
}

const okBody = `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"{\"ok\":true}"}}],
"usage":{"prompt_tokens":10,"completion_tokens":3,"total_tokens":13}}`

func TestCompleteSendsJSONModeAndTemperature(t *testing.T) {
	server, lastBody := newServer(t, http.StatusOK, okBody)

	client, err := NewClient("test-key", "gpt-4o-mini", time.Second, option.WithBaseURL(server.URL+"/"))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	resp, err := client.Complete(context.Background(), llm.Request{System: "sys", Prompt: "hi", JSON: true, Temperature: 0.2})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Text != `{"ok":true}` || resp.Provider != "openai" || resp.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	body := lastBody()
	if body["temperature"] != 0.2 {
		t.Fatalf("expected temperature 0.2, got %v", body["temperature"])
	}
	format, _ := body["response_format"].(map[string]any)
	if format["type"] != "json_object" {
		t.Fatalf("expected json_object response format, got %v", body["response_format"])
	}
	if msgs, _ := body["messages"].([]any); len(msgs) != 2 {
		t.Fatalf("expected system and user messages, got %v", body["messages"])
	}
}

func TestCompleteOmitsTemperatureForReasoningModels(t *testing.T) {
	server, lastBody := newServer(t, http.StatusOK, okBody)

	client, err := NewClient("test-key", "gpt-5-mini", time.Second, option.WithBaseURL(server.URL+"/"))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.Complete(context.Background(), llm.Request{Prompt: "hi", Temperature: 0.2}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if _, ok := lastBody()["temperature"]; ok {
		t.Fatalf("expected temperature to be omitted")
	}
}

func TestCompleteClassifiesRateLimit(t *testing.T) {
	server, _ := newServer(t, http.StatusTooManyRequests, `{"error":{"message":"slow down","type":"rate_limit_error"}}`)

	client, err := NewClient("test-key", "gpt-4o-mini", time.Second, option.WithBaseURL(server.URL+"/"))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = client.Complete(context.Background(), llm.Request{Prompt: "hi"})
	if !llm.IsTransient(err) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient("", "gpt-4o-mini", 0); err == nil {
		t.Fatalf("expected error without api key")
	}
}
