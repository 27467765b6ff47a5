package transport

import "context"

type valueKey struct{}

// WithValue returns a context carrying the per-request context value
// handed to resolvers.
func WithValue(ctx context.Context, value interface{}) context.Context {
	return context.WithValue(ctx, valueKey{}, value)
}

// Value returns the per-request context value carried by ctx.
func Value(ctx context.Context) interface{} {
	if ctx == nil {
		return nil
	}
	return ctx.Value(valueKey{})
}
