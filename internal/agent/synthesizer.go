package agent

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"repolens/internal/config"
	"repolens/internal/gateway"
	"repolens/internal/llm"
	"repolens/internal/security"
)

const synthesisFailurePrefix = "I gathered repository data but could not summarize it: "

// Synthesizer turns tool results into a user-facing answer.
type Synthesizer struct {
	provider    llm.Provider
	redactor    *security.Redactor
	temperature float64
	maxTokens   int
	logger      *zap.Logger
}

// NewSynthesizer creates a synthesizer. A nil redactor sends tool output
// unmodified.
func NewSynthesizer(provider llm.Provider, redactor *security.Redactor, cfg config.AgentConfig, logger *zap.Logger) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthesizer{
		provider:    provider,
		redactor:    redactor,
		temperature: cfg.SynthesizerTemperature,
		maxTokens:   cfg.MaxTokens,
		logger:      logger.Named("synthesizer"),
	}
}

// Synthesize always returns an answer. A provider fault produces a fixed
// fallback message that includes the error.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, plan Plan, results []gateway.Result) string {
	redaction := s.redactor.Begin()
	toolResults := redaction.Sanitize(buildContext(plan.Invocations, results))
	if n := redaction.Count(); n > 0 {
		s.logger.Debug("redacted tool output", zap.Int("values", n))
	}

	req := &llm.ChatRequest{
		Messages: []llm.Message{
			{Role: "system", Content: buildSynthesizerPrompt(plan, toolResults)},
			{Role: "user", Content: query},
		},
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	}

	resp, err := s.provider.Chat(ctx, req)
	if err != nil {
		s.logger.Warn("completion failed", zap.Error(err))
		return fmt.Sprintf("%s%v", synthesisFailurePrefix, err)
	}
	return redaction.Restore(resp.Content)
}
