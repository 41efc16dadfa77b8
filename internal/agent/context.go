package agent

import "context"

type queryIDKey struct{}

// WithQueryID returns a context carrying the identifier of the query
// being answered.
func WithQueryID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, queryIDKey{}, id)
}

// QueryIDFrom returns the query identifier stored in ctx, or "".
func QueryIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(queryIDKey{}).(string)
	return id
}
