package gradauth

import (
	"context"
	"net/http"
	"time"
)

// Request is the minimal view of an inbound request the resolver needs.
// Adapters exist for net/http and for go-router contexts (middleware/authware).
type Request interface {
	Header(name string) string
	Cookie(name string) string
}

type httpRequest struct {
	r *http.Request
}

func (h httpRequest) Header(name string) string {
	return h.r.Header.Get(name)
}

func (h httpRequest) Cookie(name string) string {
	c, err := h.r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

// RequestFromHTTP adapts a net/http request.
func RequestFromHTTP(r *http.Request) Request {
	return httpRequest{r: r}
}

// RequestFunc builds a Request from header and cookie accessors.
func RequestFunc(header, cookie func(name string) string) Request {
	return funcRequest{header: header, cookie: cookie}
}

type funcRequest struct {
	header func(string) string
	cookie func(string) string
}

func (f funcRequest) Header(name string) string {
	if f.header == nil {
		return ""
	}
	return f.header(name)
}

func (f funcRequest) Cookie(name string) string {
	if f.cookie == nil {
		return ""
	}
	return f.cookie(name)
}

// Resolver turns a raw request into one of the four auth states. Sources are
// tried in fixed order — bearer token, session cookie, preview cookie — and
// the first success wins. Every sub-check swallows its own errors and falls
// through; only the final fallback to Anonymous is guaranteed to succeed.
// Resolution performs store reads only, so identical request headers plus
// identical store contents always produce the same state.
type Resolver struct {
	authority Authority
	sessions  *Sessions
	verifier  *IDTokenVerifier
	cfg       Config
	logger    Logger
}

// ResolverOption configures the resolver.
type ResolverOption func(*Resolver)

// WithVerifier enables identity-provider token verification as a credential
// source. Without it, bearer and cookie checks consult the session authority
// and the lightweight store only.
func WithVerifier(v *IDTokenVerifier) ResolverOption {
	return func(r *Resolver) {
		r.verifier = v
	}
}

// WithResolverConfig overrides the default configuration.
func WithResolverConfig(cfg Config) ResolverOption {
	return func(r *Resolver) {
		if cfg != nil {
			r.cfg = cfg
		}
	}
}

// WithResolverLogger sets the logger.
func WithResolverLogger(l Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver creates a resolver over the session authority and the
// lightweight session store.
func NewResolver(authority Authority, sessions *Sessions, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		authority: authority,
		sessions:  sessions,
		cfg:       DefaultConfig(),
		logger:    defLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Resolve produces the auth context for a request. It never fails: the worst
// outcome of any broken credential is a lower level than the caller hoped.
func (r *Resolver) Resolve(ctx context.Context, req Request) Context {
	if token := r.bearerToken(req); token != "" {
		if state, ok := r.resolveCredential(ctx, token); ok {
			return NewContext(state)
		}
	}

	if cookie := req.Cookie(r.cfg.GetSessionCookieName()); cookie != "" {
		if state, ok := r.resolveCredential(ctx, cookie); ok {
			return NewContext(state)
		}
	}

	if preview := req.Cookie(r.cfg.GetPreviewCookieName()); preview != "" {
		if sess, err := r.sessions.GetPreview(ctx, preview); err == nil {
			return NewContext(Preview{
				Email:     sess.Email,
				SessionID: sess.ID,
			})
		}
	}

	return AnonymousContext()
}

// resolveCredential interprets one opaque credential, in order: a durable
// session token, a provider-signed identity token, a lightweight OAuth
// session id. Failures are swallowed so the caller can fall through to the
// next source.
func (r *Resolver) resolveCredential(ctx context.Context, credential string) (AuthState, bool) {
	if state, ok := r.resolveAuthoritySession(ctx, credential); ok {
		return state, true
	}

	if r.verifier != nil {
		if claims, err := r.verifier.Verify(credential); err == nil {
			return OAuth{
				Provider:      providerFromIssuer(claims.Issuer),
				ProviderID:    claims.Subject,
				Email:         claims.Email,
				EmailVerified: claims.EmailVerified,
				Name:          claims.Name,
				Picture:       claims.Picture,
			}, true
		}
	}

	if sess, err := r.sessions.GetOAuth(ctx, credential); err == nil {
		return OAuth{
			Provider:      sess.Provider,
			ProviderID:    sess.ProviderID,
			Email:         sess.Email,
			EmailVerified: sess.EmailVerified,
			Name:          sess.Name,
			Picture:       sess.Picture,
		}, true
	}

	return nil, false
}

func (r *Resolver) resolveAuthoritySession(ctx context.Context, token string) (AuthState, bool) {
	rec, err := r.authority.GetSession(ctx, token)
	if err != nil || rec == nil {
		return nil, false
	}
	if !rec.ExpiresAt.IsZero() && time.Now().After(rec.ExpiresAt) {
		return nil, false
	}

	roles, err := r.authority.GetUserRoles(ctx, rec.UserID, rec.TenantID)
	if err != nil {
		r.logger.Debug("role lookup failed during resolution for user %s, falling through", rec.UserID)
		return nil, false
	}

	return Full{
		UserID:     rec.UserID,
		SessionID:  rec.ID,
		Email:      rec.Email,
		Roles:      roles,
		TenantID:   rec.TenantID,
		TenantRole: rec.TenantRole,
	}, true
}

func (r *Resolver) bearerToken(req Request) string {
	return bearerFromHeader(req.Header("Authorization"), r.cfg.GetAuthScheme())
}

func providerFromIssuer(issuer string) string {
	switch issuer {
	case "accounts.google.com", "https://accounts.google.com":
		return "google"
	default:
		return issuer
	}
}
