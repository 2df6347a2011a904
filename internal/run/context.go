package run

import (
	"context"
)

type contextKey struct{}

var passKey contextKey

// WithContext tags a context with the owning pass id, so nested layers
// can attribute their log lines and metrics to the batch.
func WithContext(ctx context.Context, passID string) context.Context {
	return context.WithValue(ctx, passKey, passID)
}

// FromContext extracts the pass id set by WithContext.
func FromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}

	value := ctx.Value(passKey)
	if value == nil {
		return "", false
	}

	id, ok := value.(string)
	return id, ok
}
