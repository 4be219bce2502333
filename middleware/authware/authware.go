// Package authware provides go-router middleware over the graduated auth
// engine: a resolution middleware that attaches the auth context to every
// request, and guard middlewares that enforce level and role requirements.
package authware

import (
	"github.com/goliatone/go-router"
	gradauth "github.com/gradauth/go-gradauth"
)

// DefaultContextKey is the router locals key holding the resolved context.
const DefaultContextKey = "auth"

type Config struct {
	// Filter defines a function to skip the middleware
	Filter func(router.Context) bool

	// Resolver is required for the resolution middleware
	Resolver *gradauth.Resolver

	// ContextKey is the router locals key for the resolved context
	// (default: "auth")
	ContextKey string

	// SuccessHandler runs after resolution (default: ctx.Next)
	SuccessHandler router.HandlerFunc
}

func getDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = DefaultContextKey
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(ctx router.Context) error {
			return ctx.Next()
		}
	}

	if cfg.Resolver == nil {
		panic("AUTH: authware configuration: Resolver is required.")
	}

	return cfg
}

// New returns the resolution middleware. It never rejects a request: broken
// or missing credentials resolve to the anonymous context, and enforcement is
// left to RequireLevel guards downstream. The resolved context is stored in
// router locals and propagated to the standard context for non-HTTP code.
func New(config ...Config) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		cfg := getDefaultConfig(config...)
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			authCtx := cfg.Resolver.Resolve(ctx.Context(), RequestFromRouter(ctx))

			ctx.Locals(cfg.ContextKey, authCtx)
			ctx.SetContext(gradauth.WithContext(ctx.Context(), authCtx))

			return cfg.SuccessHandler(ctx)
		}
	}
}

// GuardConfig configures a RequireLevel middleware.
type GuardConfig struct {
	// ContextKey must match the resolution middleware's (default: "auth")
	ContextKey string

	// Guard supplies recovery URLs; a zero-config guard is used when nil
	Guard *gradauth.Guard

	// ErrorHandler overrides the default JSON denial response
	ErrorHandler func(ctx router.Context, denial *gradauth.Denial) error
}

// RequireLevel returns a guard middleware enforcing a minimum auth level and,
// optionally, roles. It expects the resolution middleware to have run; a
// request without a resolved context is treated as anonymous.
func RequireLevel(level gradauth.AuthLevel, roles ...string) router.MiddlewareFunc {
	return RequireLevelWithConfig(GuardConfig{}, level, roles...)
}

// RequireLevelWithConfig is RequireLevel with explicit configuration.
func RequireLevelWithConfig(cfg GuardConfig, level gradauth.AuthLevel, roles ...string) router.MiddlewareFunc {
	if cfg.ContextKey == "" {
		cfg.ContextKey = DefaultContextKey
	}
	if cfg.Guard == nil {
		cfg.Guard = gradauth.NewGuard(nil)
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(ctx router.Context, denial *gradauth.Denial) error {
			return ctx.JSON(denial.Status, denial.Body())
		}
	}

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			authCtx := ContextFromRouter(ctx, cfg.ContextKey)

			if denial := cfg.Guard.Check(authCtx, level, roles...); denial != nil {
				return cfg.ErrorHandler(ctx, denial)
			}

			return ctx.Next()
		}
	}
}

// ContextFromRouter retrieves the resolved auth context from router locals,
// falling back to the standard context and finally to anonymous.
func ContextFromRouter(ctx router.Context, contextKey string) gradauth.Context {
	if contextKey == "" {
		contextKey = DefaultContextKey
	}

	if authCtx, ok := ctx.Locals(contextKey).(gradauth.Context); ok {
		return authCtx
	}

	return gradauth.FromContext(ctx.Context())
}

type routerRequest struct {
	ctx router.Context
}

func (r routerRequest) Header(name string) string {
	return r.ctx.GetString(name, "")
}

func (r routerRequest) Cookie(name string) string {
	return r.ctx.Cookies(name)
}

// RequestFromRouter adapts a go-router context to the resolver's request
// view.
func RequestFromRouter(ctx router.Context) gradauth.Request {
	return routerRequest{ctx: ctx}
}
