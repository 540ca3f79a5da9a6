package common

import (
	"context"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRunID contextKey = "run_id"
	ContextKeyFile  contextKey = "file"
)

// WithRunID adds a batch run ID to the context
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, ContextKeyRunID, runID)
}

// RunIDFromContext extracts the batch run ID from context
func RunIDFromContext(ctx context.Context) string {
	if runID, ok := ctx.Value(ContextKeyRunID).(string); ok {
		return runID
	}
	return ""
}

// WithFile adds the file currently being processed to the context
func WithFile(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ContextKeyFile, name)
}

// FileFromContext extracts the file name from context
func FileFromContext(ctx context.Context) string {
	if name, ok := ctx.Value(ContextKeyFile).(string); ok {
		return name
	}
	return ""
}
