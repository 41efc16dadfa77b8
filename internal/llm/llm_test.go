package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type stubProvider struct {
	name  string
	resp  *LLMResponse
	err   error
	calls int
	last  *ChatRequest
}

func (s *stubProvider) Name() string         { return s.name }
func (s *stubProvider) DefaultModel() string { return s.name + "-model" }
func (s *stubProvider) Chat(ctx context.Context, req *ChatRequest) (*LLMResponse, error) {
	s.calls++
	s.last = req
	return s.resp, s.err
}

func TestFallbackUsesSecondProviderOnServerError(t *testing.T) {
	primary := &stubProvider{name: "a", err: &LLMError{Type: ErrorServerError, Message: "boom"}}
	secondary := &stubProvider{name: "b", resp: &LLMResponse{Content: "ok"}}
	f := NewFallbackProvider(nil, primary, secondary)

	resp, err := f.Chat(context.Background(), &ChatRequest{Model: "primary-only"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content != "ok" {
		t.Fatalf("expected ok, got %q", resp.Content)
	}
	if secondary.last.Model != "" {
		t.Fatalf("secondary should use its own default model, got %q", secondary.last.Model)
	}
	if f.Name() != "a+fallback" {
		t.Fatalf("unexpected name %s", f.Name())
	}
}

func TestFallbackStopsOnAuthError(t *testing.T) {
	primary := &stubProvider{name: "a", err: &LLMError{Type: ErrorAuth, Message: "bad key"}}
	secondary := &stubProvider{name: "b", resp: &LLMResponse{Content: "ok"}}
	f := NewFallbackProvider(nil, primary, secondary)

	_, err := f.Chat(context.Background(), &ChatRequest{})
	if err == nil {
		t.Fatal("expected auth error")
	}
	if secondary.calls != 0 {
		t.Fatal("secondary provider should not be called after auth error")
	}
}

func TestClassifyByStatus(t *testing.T) {
	base := errors.New("x")
	cases := map[int]ErrorType{
		401: ErrorAuth,
		403: ErrorAuth,
		429: ErrorRateLimit,
		400: ErrorInvalidInput,
		503: ErrorServerError,
	}
	for status, want := range cases {
		if got := classify("openai", base, status).Type; got != want {
			t.Fatalf("status %d: expected %v, got %v", status, want, got)
		}
	}
}

func TestClassifyByMessage(t *testing.T) {
	if got := classify("openai", context.DeadlineExceeded, 0).Type; got != ErrorTimeout {
		t.Fatalf("expected timeout, got %v", got)
	}
	if got := classify("openai", errors.New("dial tcp: connection refused"), 0).Type; got != ErrorNetwork {
		t.Fatalf("expected network, got %v", got)
	}
	if got := classify("openai", errors.New("weird"), 0).Type; got != ErrorUnknown {
		t.Fatalf("expected unknown, got %v", got)
	}
}

func TestOpenAIProviderChat(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &body)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "gpt-test",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "{\"tools_to_use\": []}"}}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 5, "total_tokens": 17}
		}`)
	}))
	defer srv.Close()

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "k", BaseURL: srv.URL + "/", Model: "gpt-test"})
	resp, err := p.Chat(context.Background(), &ChatRequest{
		Messages: []Message{
			{Role: "system", Content: "plan"},
			{Role: "user", Content: "hi"},
		},
		Temperature: 0.1,
		JSONMode:    true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content != `{"tools_to_use": []}` {
		t.Fatalf("unexpected content %q", resp.Content)
	}
	if resp.Usage.InputTokens != 12 || resp.Usage.OutputTokens != 5 {
		t.Fatalf("unexpected usage %+v", resp.Usage)
	}

	msgs, _ := body["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected system+user messages, got %d", len(msgs))
	}
	rf, _ := body["response_format"].(map[string]any)
	if rf["type"] != "json_object" {
		t.Fatalf("expected json_object response format, got %v", body["response_format"])
	}
}

func TestOpenAIProviderAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error": {"message": "bad key", "type": "invalid_request_error"}}`)
	}))
	defer srv.Close()

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "k", BaseURL: srv.URL + "/"})
	_, err := p.Chat(context.Background(), &ChatRequest{Messages: []Message{{Role: "user", Content: "hi"}}})

	var llmErr *LLMError
	if !errors.As(err, &llmErr) {
		t.Fatalf("expected LLMError, got %v", err)
	}
	if llmErr.Type != ErrorAuth {
		t.Fatalf("expected auth error, got %v", llmErr.Type)
	}
}

func TestAnthropicProviderChat(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/messages") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &body)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-test",
			"content": [{"type": "text", "text": "summary"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 3, "output_tokens": 4}
		}`)
	}))
	defer srv.Close()

	p := NewAnthropicProvider(AnthropicConfig{APIKey: "k", BaseURL: srv.URL + "/", Model: "claude-test"})
	resp, err := p.Chat(context.Background(), &ChatRequest{
		Messages: []Message{
			{Role: "system", Content: "be brief"},
			{Role: "user", Content: "hi"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content != "summary" {
		t.Fatalf("unexpected content %q", resp.Content)
	}
	if resp.StopReason != "end_turn" {
		t.Fatalf("unexpected stop reason %q", resp.StopReason)
	}

	msgs, _ := body["messages"].([]any)
	if len(msgs) != 1 {
		t.Fatalf("system message should be folded out of messages, got %d", len(msgs))
	}
	if body["system"] == nil {
		t.Fatal("expected system prompt in request")
	}
	if body["max_tokens"].(float64) != anthropicDefaultMaxTokens {
		t.Fatalf("expected default max tokens, got %v", body["max_tokens"])
	}
}

func TestProvidersSendZeroTemperature(t *testing.T) {
	var raw string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		raw = string(data)
		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(r.URL.Path, "/messages") {
			io.WriteString(w, `{"id": "msg_1", "type": "message", "role": "assistant", "model": "claude-test",
				"content": [{"type": "text", "text": "ok"}], "stop_reason": "end_turn",
				"usage": {"input_tokens": 1, "output_tokens": 1}}`)
			return
		}
		io.WriteString(w, `{"id": "chatcmpl-1", "object": "chat.completion", "created": 1, "model": "gpt-test",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "ok"}}],
			"usage": {"prompt_tokens": 1, "completion_tokens": 1, "total_tokens": 2}}`)
	}))
	defer srv.Close()

	providers := []Provider{
		NewOpenAIProvider(OpenAIConfig{APIKey: "k", BaseURL: srv.URL + "/", Model: "gpt-test"}),
		NewAnthropicProvider(AnthropicConfig{APIKey: "k", BaseURL: srv.URL + "/", Model: "claude-test"}),
	}
	for _, p := range providers {
		raw = ""
		_, err := p.Chat(context.Background(), &ChatRequest{
			Messages:    []Message{{Role: "user", Content: "hi"}},
			Temperature: 0,
		})
		if err != nil {
			t.Fatalf("%s: %v", p.Name(), err)
		}
		var body map[string]any
		if err := json.Unmarshal([]byte(raw), &body); err != nil {
			t.Fatalf("%s: %v", p.Name(), err)
		}
		temp, ok := body["temperature"]
		if !ok {
			t.Fatalf("%s: temperature missing from request: %s", p.Name(), raw)
		}
		if temp.(float64) != 0 {
			t.Fatalf("%s: expected temperature 0, got %v", p.Name(), temp)
		}
	}
}
