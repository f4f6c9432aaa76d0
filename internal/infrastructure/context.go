package infrastructure

import (
	"context"

	"github.com/google/uuid"
)

// ContextWithTraceID returns a context carrying a freshly generated
// trace ID. Batch entry points use it so their log lines correlate the
// same way request-scoped ones do.
func ContextWithTraceID(ctx context.Context) context.Context {
	return WithTraceID(ctx, uuid.New().String())
}

// EnsureTraceID adds a trace ID to the context unless one is already set.
func EnsureTraceID(ctx context.Context) context.Context {
	if GetTraceID(ctx) == "" {
		return ContextWithTraceID(ctx)
	}
	return ctx
}
