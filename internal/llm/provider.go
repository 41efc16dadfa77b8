package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
)

// Provider is the interface all LLM backends must implement.
type Provider interface {
	// Chat sends a chat completion request and returns the full response.
	Chat(ctx context.Context, req *ChatRequest) (*LLMResponse, error)

	// Name returns the provider name (e.g. "openai", "anthropic").
	Name() string

	// DefaultModel returns the default model for this provider.
	DefaultModel() string
}

// LLMError wraps an error with a classification for fallback logic.
type LLMError struct {
	Type     ErrorType
	Provider string
	Message  string
	Err      error
}

func (e *LLMError) Error() string {
	prefix := e.Provider
	if prefix == "" {
		prefix = "llm"
	}
	return prefix + " " + e.Type.String() + ": " + e.Message
}

func (e *LLMError) Unwrap() error {
	return e.Err
}

// classify builds an LLMError from a provider error. status is the HTTP
// status reported by the SDK's typed error, or 0 when none was available.
func classify(provider string, err error, status int) *LLMError {
	llmErr := &LLMError{Provider: provider, Err: err, Message: err.Error()}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		llmErr.Type = ErrorAuth
	case status == http.StatusTooManyRequests:
		llmErr.Type = ErrorRateLimit
	case status >= 400 && status < 500:
		llmErr.Type = ErrorInvalidInput
	case status >= 500:
		llmErr.Type = ErrorServerError
	case errors.Is(err, context.DeadlineExceeded):
		llmErr.Type = ErrorTimeout
	default:
		llmErr.Type = classifyMessage(err)
	}
	return llmErr
}

func classifyMessage(err error) ErrorType {
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrorTimeout
		}
		return ErrorNetwork
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline"):
		return ErrorTimeout
	case strings.Contains(lower, "connection") || strings.Contains(lower, "dns") || strings.Contains(lower, "refused"):
		return ErrorNetwork
	case strings.Contains(lower, "overloaded"):
		return ErrorServerError
	case strings.Contains(lower, "rate limit") || strings.Contains(lower, "rate_limit"):
		return ErrorRateLimit
	default:
		return ErrorUnknown
	}
}
