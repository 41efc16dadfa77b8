// Package history records answered queries in SQLite so the shell can list
// and replay them. The agent itself never reads from it.
package history

import (
	"context"
	"errors"
	"time"

	"repolens/internal/gateway"
	"repolens/internal/tool"
)

// ErrNotFound is returned by Get for an unknown record ID.
var ErrNotFound = errors.New("history record not found")

// Record is one answered query.
type Record struct {
	ID          string            `json:"id" yaml:"id"`
	Query       string            `json:"query" yaml:"query"`
	Strategy    string            `json:"strategy" yaml:"strategy"`
	Invocations []tool.Invocation `json:"invocations" yaml:"invocations"`
	Results     []gateway.Result  `json:"results" yaml:"-"`
	Answer      string            `json:"answer" yaml:"answer"`
	Degraded    bool              `json:"degraded" yaml:"degraded"`
	CreatedAt   time.Time         `json:"created_at" yaml:"created_at"`
}

// Store persists records.
type Store interface {
	Save(ctx context.Context, rec Record) error
	List(ctx context.Context, limit int) ([]Record, error)
	Get(ctx context.Context, id string) (*Record, error)
	Close() error
}
