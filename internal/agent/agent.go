// Package agent answers repository questions in three stages: a planner
// chooses tool invocations, an executor runs them against the gateway and
// a synthesizer turns the results into prose.
package agent

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"repolens/internal/eventbus"
	"repolens/internal/gateway"
)

// Outcome is everything produced while answering one query.
type Outcome struct {
	QueryID string
	// Query is the question with sensitive values masked. It is what gets
	// logged and stored; the planner and synthesizer see the original.
	Query    string
	Plan     Plan
	Results  []gateway.Result
	Answer   string
	Degraded bool
	Elapsed  time.Duration
}

// AnswerReady is the payload of the answer_ready topic.
type AnswerReady struct {
	QueryID  string
	Degraded bool
	Elapsed  time.Duration
}

// PlanCreated is the payload of the plan_created topic.
type PlanCreated struct {
	QueryID string
	Plan    Plan
}

// Agent wires the three stages together. It keeps no per-query state, so
// one Agent may serve concurrent queries.
type Agent struct {
	planner     *Planner
	executor    *Executor
	synthesizer *Synthesizer
	bus         *eventbus.Bus
	logger      *zap.Logger
}

// New creates an Agent.
func New(planner *Planner, executor *Executor, synthesizer *Synthesizer, bus *eventbus.Bus, logger *zap.Logger) *Agent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{
		planner:     planner,
		executor:    executor,
		synthesizer: synthesizer,
		bus:         bus,
		logger:      logger.Named("agent"),
	}
}

// Answer returns the final answer text for query. It never fails.
func (a *Agent) Answer(ctx context.Context, query string) string {
	return a.Run(ctx, query).Answer
}

// Run answers query and reports the intermediate plan and results. When
// planning fails the plan's format hint is returned as the answer and no
// tool or synthesis call is made.
func (a *Agent) Run(ctx context.Context, query string) *Outcome {
	start := time.Now()
	out := &Outcome{
		QueryID: QueryIDFrom(ctx),
		Query:   a.synthesizer.redactor.Begin().Sanitize(query),
	}
	if out.QueryID == "" {
		out.QueryID = uuid.NewString()
		ctx = WithQueryID(ctx, out.QueryID)
	}
	log := a.logger.With(zap.String("query_id", out.QueryID))
	log.Info("query received", zap.String("query", truncate(out.Query, 100)))

	out.Plan = a.planner.Plan(ctx, query)
	a.bus.Publish(eventbus.TopicPlanCreated, PlanCreated{QueryID: out.QueryID, Plan: out.Plan})

	if out.Plan.Degraded() {
		log.Warn("planning degraded", zap.String("reason", out.Plan.FormatHint))
		a.bus.Publish(eventbus.TopicError, out.Plan.FormatHint)
		out.Answer = out.Plan.FormatHint
		out.Degraded = true
		return a.finish(out, start)
	}

	out.Results = a.executor.Execute(ctx, out.Plan.Invocations)
	out.Answer = a.synthesizer.Synthesize(ctx, query, out.Plan, out.Results)
	return a.finish(out, start)
}

func (a *Agent) finish(out *Outcome, start time.Time) *Outcome {
	out.Elapsed = time.Since(start)
	a.bus.Publish(eventbus.TopicAnswerReady, AnswerReady{
		QueryID:  out.QueryID,
		Degraded: out.Degraded,
		Elapsed:  out.Elapsed,
	})
	a.logger.Info("query answered",
		zap.String("query_id", out.QueryID),
		zap.Int("tools", len(out.Plan.Invocations)),
		zap.Bool("degraded", out.Degraded),
		zap.Duration("elapsed", out.Elapsed),
	)
	return out
}
