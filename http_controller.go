package gradauth

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// HTTPConfig configures the HTTP controller.
type HTTPConfig struct {
	// CookieInsecure drops the Secure attribute from issued cookies. Cookies
	// are secure unless this is set; only local non-TLS development should
	// set it
	CookieInsecure bool

	// ErrorHandler handles errors (optional)
	ErrorHandler func(ctx router.Context, err error) error
}

// HTTPController exposes the engine over HTTP: preview session issuance,
// graduation, and a whoami endpoint. Resolution and guarding are left to the
// authware middleware; these routes are themselves public.
type HTTPController struct {
	sessions  *Sessions
	graduator *Graduator
	cfg       Config
	config    HTTPConfig
	logger    Logger
}

// NewHTTPController creates the engine's HTTP controller.
func NewHTTPController(sessions *Sessions, graduator *Graduator, cfg Config, httpCfg HTTPConfig) *HTTPController {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &HTTPController{
		sessions:  sessions,
		graduator: graduator,
		cfg:       cfg,
		config:    httpCfg,
		logger:    defLogger{},
	}
}

// RegisterRoutes registers the engine routes on a group, typically mounted
// at /auth.
func (c *HTTPController) RegisterRoutes(group RouteRegistrar) {
	group.Post("/preview", c.CreatePreview)
	group.Delete("/preview", c.DeletePreview)
	group.Post("/graduate", c.Graduate)
	group.Post("/graduate/token", c.GraduateToken)
	group.Get("/me", c.WhoAmI)
}

// PreviewRequest is the preview issuance payload.
type PreviewRequest struct {
	Email string `form:"email" json:"email"`
}

// Validate will validate the payload
func (r PreviewRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// CreatePreview issues a preview session for a claimed, unverified email and
// sets the preview cookie.
func (c *HTTPController) CreatePreview(ctx router.Context) error {
	payload := new(PreviewRequest)

	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "failed to parse payload",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}

	sess, err := c.sessions.CreatePreview(ctx.Context(), payload.Email)
	if err != nil {
		return c.handleError(ctx, err)
	}

	c.setCookie(ctx, c.cfg.GetPreviewCookieName(), sess.ID, int(c.sessions.PreviewTTL().Seconds()))

	return ctx.JSON(router.StatusOK, map[string]any{
		"session_id": sess.ID,
		"email":      sess.Email,
		"expires_at": sess.ExpiresAt,
	})
}

// DeletePreview removes the caller's preview session and clears the cookie.
func (c *HTTPController) DeletePreview(ctx router.Context) error {
	id := ctx.Cookies(c.cfg.GetPreviewCookieName())
	if id != "" {
		if err := c.sessions.DeletePreview(ctx.Context(), id); err != nil {
			c.logger.Error("failed to delete preview session %s: %v", id, err)
		}
	}

	c.clearCookie(ctx, c.cfg.GetPreviewCookieName())

	return ctx.JSON(router.StatusOK, map[string]string{
		"status": "deleted",
	})
}

// GraduateRequest is the session graduation payload. The session id may also
// come from the session cookie when the OAuth flow stored it there.
type GraduateRequest struct {
	SessionID string `form:"session_id" json:"session_id"`
}

// Graduate converts a lightweight OAuth session into a durable account and
// session, then swaps the client's cookies over.
func (c *HTTPController) Graduate(ctx router.Context) error {
	payload := new(GraduateRequest)
	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "failed to parse payload",
		})
	}

	sessionID := payload.SessionID
	if sessionID == "" {
		sessionID = ctx.Cookies(c.cfg.GetSessionCookieName())
	}
	if sessionID == "" {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "missing session_id",
		})
	}

	result, err := c.graduator.GraduateFromSession(ctx.Context(), sessionID)
	if err != nil {
		return c.handleError(ctx, err)
	}

	return c.finishGraduation(ctx, result)
}

// GraduateTokenRequest is the token graduation payload. The token may also
// come from the Authorization header.
type GraduateTokenRequest struct {
	Token string `form:"token" json:"token"`
}

// GraduateToken graduates directly from a provider-signed identity token.
func (c *HTTPController) GraduateToken(ctx router.Context) error {
	payload := new(GraduateTokenRequest)
	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "failed to parse payload",
		})
	}

	token := payload.Token
	if token == "" {
		token = bearerFromHeader(ctx.GetString(router.HeaderAuthorization, ""), c.cfg.GetAuthScheme())
	}
	if token == "" {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "missing token",
		})
	}

	result, err := c.graduator.GraduateFromToken(ctx.Context(), token)
	if err != nil {
		return c.handleError(ctx, err)
	}

	return c.finishGraduation(ctx, result)
}

// WhoAmI reports the caller's resolved auth state. It expects the authware
// resolution middleware to have run.
func (c *HTTPController) WhoAmI(ctx router.Context) error {
	authCtx := FromContext(ctx.Context())

	body := map[string]any{
		"level": authCtx.Level().String(),
	}
	if email := authCtx.Email(); email != "" {
		body["email"] = email
	}
	if userID := authCtx.UserID(); userID != "" {
		body["user_id"] = userID
	}
	if full, ok := authCtx.State().(Full); ok {
		body["roles"] = full.Roles
		body["tenant_id"] = full.TenantID
		body["tenant_role"] = full.TenantRole
	}

	return ctx.JSON(router.StatusOK, body)
}

func (c *HTTPController) finishGraduation(ctx router.Context, result *GraduationResult) error {
	c.setCookie(ctx, c.cfg.GetSessionCookieName(), result.SessionToken, int(c.cfg.GetSessionTTL().Seconds()))
	c.clearCookie(ctx, c.cfg.GetPreviewCookieName())

	return ctx.JSON(router.StatusOK, map[string]any{
		"user_id":        result.UserID,
		"is_new_account": result.IsNewAccount,
		"expires_at":     result.ExpiresAt,
	})
}

func (c *HTTPController) setCookie(ctx router.Context, name, value string, maxAge int) {
	ctx.Cookie(c.cookie(name, value, maxAge))
}

func (c *HTTPController) clearCookie(ctx router.Context, name string) {
	ctx.Cookie(c.cookie(name, "", -1))
}

func (c *HTTPController) cookie(name, value string, maxAge int) *router.Cookie {
	return &router.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   !c.config.CookieInsecure,
		HTTPOnly: true,
		SameSite: "Lax",
	}
}

func (c *HTTPController) handleError(ctx router.Context, err error) error {
	if c.config.ErrorHandler != nil {
		return c.config.ErrorHandler(ctx, err)
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Code != 0 {
		return ctx.JSON(richErr.Code, map[string]string{
			"error":   richErr.TextCode,
			"message": richErr.Message,
		})
	}

	c.logger.Error("unhandled auth controller error: %v", err)
	return ctx.JSON(router.StatusInternalServerError, map[string]string{
		"error": "internal_error",
	})
}

func bearerFromHeader(header, scheme string) string {
	if header == "" {
		return ""
	}
	if scheme == "" {
		scheme = DefaultAuthScheme
	}
	l := len(scheme)
	if len(header) > l+1 && strings.EqualFold(header[:l], scheme) {
		return strings.TrimSpace(header[l:])
	}
	return ""
}
