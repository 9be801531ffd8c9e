// Package ctxutil provides context utilities that can be safely imported anywhere.
// This package has no internal dependencies to avoid import cycles.
package ctxutil

import "context"

// Action sources recorded in the activity history.
const (
	SourceCLI          = "cli"
	SourceHTTP         = "http"
	SourceNotification = "notification"
	SourceDispatcher   = "dispatcher"
)

// SourceKey is the context key for the action source.
// Exported so it can be used consistently across packages.
type SourceKey struct{}

// WithSource returns a context with the action source embedded.
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, SourceKey{}, source)
}

// SourceFromContext returns the action source from context, or empty string if not set.
func SourceFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(SourceKey{}).(string); ok {
		return v
	}
	return ""
}
