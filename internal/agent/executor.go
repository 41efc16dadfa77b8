package agent

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"repolens/internal/eventbus"
	"repolens/internal/gateway"
	"repolens/internal/tool"
)

// Invoker performs one remote tool call. *gateway.Client satisfies it.
type Invoker interface {
	Invoke(ctx context.Context, name string, args map[string]any) gateway.Result
}

// Executor runs a plan's invocations against the gateway and returns one
// Result per invocation, in plan order.
type Executor struct {
	invoker     Invoker
	registry    *tool.Registry
	bus         *eventbus.Bus
	concurrency int
	logger      *zap.Logger
}

// NewExecutor creates an executor. A nil registry disables local
// validation and forwards every invocation as-is. concurrency <= 1 runs
// invocations one after another.
func NewExecutor(invoker Invoker, registry *tool.Registry, bus *eventbus.Bus, concurrency int, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		invoker:     invoker,
		registry:    registry,
		bus:         bus,
		concurrency: concurrency,
		logger:      logger.Named("executor"),
	}
}

// Execute never fails as a whole. A failed invocation is recorded as an
// unsuccessful Result in its slot and the remaining invocations still run.
func (e *Executor) Execute(ctx context.Context, invocations []tool.Invocation) []gateway.Result {
	results := make([]gateway.Result, len(invocations))
	if len(invocations) == 0 {
		return results
	}

	if e.concurrency <= 1 {
		for i, inv := range invocations {
			results[i] = e.run(ctx, i, inv)
		}
		return results
	}

	// Each goroutine owns exactly one slot of results.
	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i, inv := range invocations {
		g.Go(func() error {
			results[i] = e.run(ctx, i, inv)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (e *Executor) run(ctx context.Context, index int, inv tool.Invocation) gateway.Result {
	progress := eventbus.ToolProgress{QueryID: QueryIDFrom(ctx), Index: index, Tool: inv.Tool}
	log := e.logger.With(zap.String("query_id", progress.QueryID), zap.Int("index", index), zap.String("tool", inv.Tool))

	if e.registry != nil {
		if err := e.registry.Validate(inv); err != nil {
			log.Warn("invocation rejected", zap.Error(err))
			progress.Error = err.Error()
			e.bus.Publish(eventbus.TopicToolFailed, progress)
			return gateway.Failure("%s", err.Error())
		}
	}

	e.bus.Publish(eventbus.TopicToolStarting, progress)
	log.Debug("invoking tool")

	res := e.invoker.Invoke(ctx, inv.Tool, inv.Arguments)
	if !res.Success {
		log.Warn("tool failed", zap.String("error", res.Error))
		progress.Error = res.Error
		e.bus.Publish(eventbus.TopicToolFailed, progress)
		return res
	}

	e.bus.Publish(eventbus.TopicToolSucceeded, progress)
	return res
}
