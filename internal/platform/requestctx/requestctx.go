// Package requestctx carries per-request identity through context.
package requestctx

import "context"

type clientIDContextKey struct{}

type requestIDContextKey struct{}

// WithClientID stores the browser-context identifier in ctx.
func WithClientID(ctx context.Context, clientID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, clientIDContextKey{}, clientID)
}

// ClientIDFromContext returns the browser-context identifier stored in ctx.
func ClientIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(clientIDContextKey{}).(string)
	return value
}

// WithRequestID stores the correlation id of the current request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestIDContextKey{}, requestID)
}

// RequestIDFromContext returns the correlation id, or "" outside a request.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDContextKey{}).(string)
	return value
}
