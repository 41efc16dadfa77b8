package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"repolens/internal/config"
	"repolens/internal/llm"
	"repolens/internal/tool"
)

// StrategyError marks a degraded plan produced when planning failed.
const StrategyError = "error"

// Plan is the planner's decision for one query. It is not modified after
// Planner.Plan returns.
type Plan struct {
	Invocations []tool.Invocation `json:"tools_to_use"`
	Strategy    string            `json:"processing_strategy"`
	FormatHint  string            `json:"response_format"`
}

// Degraded reports whether the plan is the planning-failure short circuit.
func (p Plan) Degraded() bool {
	return len(p.Invocations) == 0 && p.Strategy == StrategyError
}

func degradedPlan(err error) Plan {
	return Plan{Strategy: StrategyError, FormatHint: err.Error()}
}

// Planner asks the completion endpoint which tools to call.
type Planner struct {
	provider    llm.Provider
	prompt      string
	temperature float64
	maxTokens   int
	logger      *zap.Logger
}

// NewPlanner builds a planner whose system prompt embeds specs.
func NewPlanner(provider llm.Provider, specs []tool.Spec, cfg config.AgentConfig, logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{
		provider:    provider,
		prompt:      buildPlannerPrompt(specs),
		temperature: cfg.PlannerTemperature,
		maxTokens:   cfg.MaxTokens,
		logger:      logger.Named("planner"),
	}
}

// Plan never fails: a provider fault or unparseable reply yields a
// degraded plan carrying the error message in FormatHint.
func (p *Planner) Plan(ctx context.Context, query string) Plan {
	req := &llm.ChatRequest{
		Messages: []llm.Message{
			{Role: "system", Content: p.prompt},
			{Role: "user", Content: query},
		},
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
		JSONMode:    true,
	}

	resp, err := p.provider.Chat(ctx, req)
	if err != nil {
		p.logger.Warn("completion failed", zap.Error(err))
		return degradedPlan(fmt.Errorf("planning failed: %w", err))
	}

	plan, err := ParsePlan(resp.Content)
	if err != nil {
		p.logger.Warn("unparseable plan", zap.Error(err), zap.String("raw", truncate(resp.Content, 500)))
		return degradedPlan(err)
	}

	p.logger.Debug("plan created",
		zap.Int("invocations", len(plan.Invocations)),
		zap.String("strategy", plan.Strategy),
	)
	return plan
}

// ParsePlan decodes a completion reply into a Plan. The reply must be a
// single JSON object with a tools_to_use array; one surrounding markdown
// code fence is tolerated. Nothing is guessed from malformed replies.
func ParsePlan(text string) (Plan, error) {
	var raw struct {
		ToolsToUse *[]tool.Invocation `json:"tools_to_use"`
		Strategy   string             `json:"processing_strategy"`
		FormatHint string             `json:"response_format"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &raw); err != nil {
		return Plan{}, fmt.Errorf("invalid plan JSON: %w", err)
	}
	if raw.ToolsToUse == nil {
		return Plan{}, errors.New("invalid plan: missing tools_to_use")
	}

	invocations := *raw.ToolsToUse
	for i, inv := range invocations {
		if strings.TrimSpace(inv.Tool) == "" {
			return Plan{}, fmt.Errorf("invalid plan: tools_to_use[%d] has no tool name", i)
		}
	}
	if invocations == nil {
		invocations = []tool.Invocation{}
	}

	return Plan{
		Invocations: invocations,
		Strategy:    raw.Strategy,
		FormatHint:  raw.FormatHint,
	}, nil
}

func stripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	// Drop a language tag such as "json" on the opening fence line.
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "{[") {
		s = s[nl+1:]
	}
	return strings.TrimSpace(s)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
