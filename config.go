package gradauth

import (
	"time"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
)

// Default cookie names and lifetimes. Cookie names are configurable; the
// attributes written with them (HTTP-only, Secure, SameSite=Lax, path /)
// are not.
const (
	DefaultSessionCookieName = "gradauth_session"
	DefaultPreviewCookieName = "gradauth_preview"
	DefaultAuthScheme        = "Bearer"

	DefaultSessionTTL        = 7 * 24 * time.Hour
	DefaultPreviewSessionTTL = 30 * 24 * time.Hour
	DefaultOAuthSessionTTL   = 24 * time.Hour

	DefaultTenantRole = "member"
	DefaultLoginURL   = "/login"
	DefaultUpgradeURL = "/account/upgrade"
)

// EnvConfig is an environment-backed Config implementation.
type EnvConfig struct {
	SessionCookieName string        `env:"AUTH_SESSION_COOKIE" envDefault:"gradauth_session"`
	PreviewCookieName string        `env:"AUTH_PREVIEW_COOKIE" envDefault:"gradauth_preview"`
	AuthScheme        string        `env:"AUTH_SCHEME" envDefault:"Bearer"`
	Audience          string        `env:"AUTH_PROVIDER_AUDIENCE"`
	Issuers           []string      `env:"AUTH_PROVIDER_ISSUERS" envSeparator:","`
	JWKSEndpoint      string        `env:"AUTH_PROVIDER_JWKS_URL"`
	DefaultTenantID   string        `env:"AUTH_DEFAULT_TENANT"`
	TenantRole        string        `env:"AUTH_DEFAULT_TENANT_ROLE" envDefault:"member"`
	SessionTTL        time.Duration `env:"AUTH_SESSION_TTL" envDefault:"168h"`
	PreviewSessionTTL time.Duration `env:"AUTH_PREVIEW_SESSION_TTL" envDefault:"720h"`
	OAuthSessionTTL   time.Duration `env:"AUTH_OAUTH_SESSION_TTL" envDefault:"24h"`
	LoginURL          string        `env:"AUTH_LOGIN_URL" envDefault:"/login"`
	UpgradeURL        string        `env:"AUTH_UPGRADE_URL" envDefault:"/account/upgrade"`
}

// Verify interface compliance
var _ Config = (*EnvConfig)(nil)

// LoadEnvConfig parses and validates configuration from the environment.
func LoadEnvConfig() (*EnvConfig, error) {
	cfg := &EnvConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to parse auth environment")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "invalid auth configuration")
	}

	return cfg, nil
}

// Validate will run validation rules
func (c EnvConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.SessionCookieName, validation.Required),
		validation.Field(&c.PreviewCookieName, validation.Required),
		validation.Field(&c.JWKSEndpoint, is.URL),
		validation.Field(&c.SessionTTL, validation.Min(time.Minute)),
		validation.Field(&c.PreviewSessionTTL, validation.Min(time.Minute)),
		validation.Field(&c.OAuthSessionTTL, validation.Min(time.Minute)),
	)
}

func (c *EnvConfig) GetSessionCookieName() string { return c.SessionCookieName }
func (c *EnvConfig) GetPreviewCookieName() string { return c.PreviewCookieName }
func (c *EnvConfig) GetAuthScheme() string        { return c.AuthScheme }
func (c *EnvConfig) GetAudience() string          { return c.Audience }
func (c *EnvConfig) GetIssuers() []string         { return c.Issuers }
func (c *EnvConfig) GetJWKSEndpoint() string      { return c.JWKSEndpoint }
func (c *EnvConfig) GetDefaultTenantID() string   { return c.DefaultTenantID }
func (c *EnvConfig) GetDefaultTenantRole() string { return c.TenantRole }

func (c *EnvConfig) GetSessionTTL() time.Duration        { return c.SessionTTL }
func (c *EnvConfig) GetPreviewSessionTTL() time.Duration { return c.PreviewSessionTTL }
func (c *EnvConfig) GetOAuthSessionTTL() time.Duration   { return c.OAuthSessionTTL }

func (c *EnvConfig) GetLoginURL() string   { return c.LoginURL }
func (c *EnvConfig) GetUpgradeURL() string { return c.UpgradeURL }

// DefaultConfig returns a Config populated with package defaults, useful for
// tests and single-tenant deployments.
func DefaultConfig() *EnvConfig {
	return &EnvConfig{
		SessionCookieName: DefaultSessionCookieName,
		PreviewCookieName: DefaultPreviewCookieName,
		AuthScheme:        DefaultAuthScheme,
		TenantRole:        DefaultTenantRole,
		SessionTTL:        DefaultSessionTTL,
		PreviewSessionTTL: DefaultPreviewSessionTTL,
		OAuthSessionTTL:   DefaultOAuthSessionTTL,
		LoginURL:          DefaultLoginURL,
		UpgradeURL:        DefaultUpgradeURL,
	}
}
