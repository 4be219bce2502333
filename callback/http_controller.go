package callback

import (
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-router"
	gradauth "github.com/gradauth/go-gradauth"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// HTTPConfig configures the HTTP controller.
type HTTPConfig struct {
	// SessionCookieName overrides the cookie carrying the credential
	// (default: the engine default session cookie)
	SessionCookieName string

	// CookieInsecure drops the Secure attribute from cookies. Cookies are
	// secure unless this is set; only local non-TLS development should set it
	CookieInsecure bool

	// SuccessRedirect is the default redirect after a callback that
	// graduated directly into a durable session
	SuccessRedirect string

	// PendingRedirect is the default redirect after a callback that left
	// the identity in a lightweight session awaiting graduation
	PendingRedirect string

	// ErrorRedirect is the redirect for auth errors
	ErrorRedirect string

	// ErrorHandler handles errors (optional)
	ErrorHandler func(ctx router.Context, err error) error
}

// HTTPController handles the OAuth begin/callback HTTP routes.
type HTTPController struct {
	flow   *Flow
	config HTTPConfig
}

// NewHTTPController creates the OAuth HTTP controller.
func NewHTTPController(flow *Flow, cfg HTTPConfig) *HTTPController {
	if cfg.SessionCookieName == "" {
		cfg.SessionCookieName = gradauth.DefaultSessionCookieName
	}
	if cfg.SuccessRedirect == "" {
		cfg.SuccessRedirect = "/"
	}
	if cfg.PendingRedirect == "" {
		cfg.PendingRedirect = "/account/graduate"
	}
	if cfg.ErrorRedirect == "" {
		cfg.ErrorRedirect = "/login?error=auth_failed"
	}

	return &HTTPController{
		flow:   flow,
		config: cfg,
	}
}

// RegisterRoutes registers the OAuth routes, typically under /auth/oauth.
func (c *HTTPController) RegisterRoutes(group RouteRegistrar) {
	group.Get("/providers", c.ListProviders)
	group.Get("/:provider/callback", c.Callback)
	group.Get("/:provider", c.BeginAuth)
}

// ListProviders returns the configured providers.
func (c *HTTPController) ListProviders(ctx router.Context) error {
	return ctx.JSON(router.StatusOK, map[string]any{
		"providers": c.flow.ListProviders(),
	})
}

// BeginAuth starts the OAuth flow.
func (c *HTTPController) BeginAuth(ctx router.Context) error {
	providerName := ctx.Param("provider")

	redirectURL := ctx.Query("redirect_url")
	if redirectURL == "" {
		redirectURL = c.config.SuccessRedirect
	}

	begin, err := c.flow.Begin(ctx.Context(), providerName, redirectURL)
	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.Redirect(begin.URL, router.StatusTemporaryRedirect)
}

// Callback handles the provider redirect back.
func (c *HTTPController) Callback(ctx router.Context) error {
	providerName := ctx.Param("provider")
	code := ctx.Query("code")
	state := ctx.Query("state")

	if errCode := ctx.Query("error"); errCode != "" {
		errDesc := ctx.Query("error_description")
		redirectURL := appendQueryParam(c.config.ErrorRedirect, "oauth_error", errCode)
		if errDesc != "" {
			redirectURL = appendQueryParam(redirectURL, "desc", errDesc)
		}
		return ctx.Redirect(redirectURL, router.StatusTemporaryRedirect)
	}

	if code == "" {
		redirectURL := appendQueryParam(c.config.ErrorRedirect, "error", "missing_params")
		return ctx.Redirect(redirectURL, router.StatusTemporaryRedirect)
	}

	result, err := c.flow.Complete(ctx.Context(), providerName, code, state)
	if err != nil {
		return c.handleError(ctx, err)
	}

	if result.Graduation != nil {
		ctx.Cookie(c.sessionCookie(result.Graduation.SessionToken, maxAgeUntil(result.Graduation.ExpiresAt)))

		redirectURL := result.RedirectURL
		if redirectURL == "" {
			redirectURL = c.config.SuccessRedirect
		}
		if result.Graduation.IsNewAccount {
			redirectURL = appendQueryParam(redirectURL, "new_account", "true")
		}
		return ctx.Redirect(redirectURL, router.StatusTemporaryRedirect)
	}

	// Identity parked in a lightweight session; the credential cookie holds
	// the session id and resolves to the oauth level until graduation.
	ctx.Cookie(c.sessionCookie(result.OAuthSessionID, maxAgeUntil(result.OAuthExpiresAt)))

	return ctx.Redirect(c.config.PendingRedirect, router.StatusTemporaryRedirect)
}

func (c *HTTPController) sessionCookie(value string, maxAge int) *router.Cookie {
	return &router.Cookie{
		Name:     c.config.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   !c.config.CookieInsecure,
		HTTPOnly: true,
		SameSite: "Lax",
	}
}

// maxAgeUntil converts an absolute expiry into a cookie max-age, clamping
// already-expired timestamps to zero.
func maxAgeUntil(expiresAt time.Time) int {
	seconds := int(time.Until(expiresAt).Seconds())
	if seconds < 0 {
		return 0
	}
	return seconds
}

func (c *HTTPController) handleError(ctx router.Context, err error) error {
	if c.config.ErrorHandler != nil {
		return c.config.ErrorHandler(ctx, err)
	}

	redirectURL := appendQueryParam(c.config.ErrorRedirect, "error", err.Error())
	return ctx.Redirect(redirectURL, router.StatusTemporaryRedirect)
}

func appendQueryParam(rawURL, key, value string) string {
	if rawURL == "" {
		return ""
	}

	parsed, err := url.Parse(rawURL)
	if err == nil {
		query := parsed.Query()
		query.Set(key, value)
		parsed.RawQuery = query.Encode()
		return parsed.String()
	}

	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + url.QueryEscape(key) + "=" + url.QueryEscape(value)
}
