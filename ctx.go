package gradauth

import "context"

type contextKey struct{}

var authContextKey contextKey

// WithContext attaches a resolved auth context to a standard context.
func WithContext(ctx context.Context, authCtx Context) context.Context {
	return context.WithValue(ctx, authContextKey, authCtx)
}

// FromContext retrieves the auth context attached by WithContext. Absence is
// treated the same as an anonymous request.
func FromContext(ctx context.Context) Context {
	if authCtx, ok := ctx.Value(authContextKey).(Context); ok {
		return authCtx
	}
	return AnonymousContext()
}
