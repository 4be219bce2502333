package gradauth

import (
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// IdentityClaims are the provider-issued token claims the engine consumes.
type IdentityClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	Name          string `json:"name,omitempty"`
	Picture       string `json:"picture,omitempty"`
}

// VerifierConfig configures an IDTokenVerifier.
type VerifierConfig struct {
	// JWKSEndpoint is the provider's rotating public key set.
	JWKSEndpoint string

	// Audience the token must carry, typically the OAuth client id.
	Audience string

	// Issuers the token may carry. Google issues both the bare and the
	// https-prefixed form.
	Issuers []string

	// GivenKeys bypasses the remote key set; used for tests and offline
	// verification.
	GivenKeys map[string]keyfunc.GivenKey

	RefreshInterval  time.Duration
	RefreshRateLimit time.Duration
	RefreshTimeout   time.Duration

	Logger Logger
}

// IDTokenVerifier validates provider-issued identity tokens against a
// self-refreshing key cache. The cache is shared across concurrent requests;
// key-set snapshots are replaced atomically on refresh and a token carrying
// an unknown key id triggers one rate-limited refetch before failing, which
// covers provider key rotation.
type IDTokenVerifier struct {
	jwks     *keyfunc.JWKS
	audience string
	issuers  map[string]struct{}
	logger   Logger
}

// NewIDTokenVerifier creates a verifier. When GivenKeys is set, no remote
// fetch ever happens; otherwise JWKSEndpoint is required and the key set is
// fetched eagerly so misconfiguration fails at startup, not per request.
func NewIDTokenVerifier(cfg VerifierConfig) (*IDTokenVerifier, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = defLogger{}
	}

	issuers := make(map[string]struct{}, len(cfg.Issuers))
	for _, iss := range cfg.Issuers {
		if iss != "" {
			issuers[iss] = struct{}{}
		}
	}

	v := &IDTokenVerifier{
		audience: cfg.Audience,
		issuers:  issuers,
		logger:   logger,
	}

	if len(cfg.GivenKeys) > 0 {
		v.jwks = keyfunc.NewGiven(cfg.GivenKeys)
		return v, nil
	}

	if cfg.JWKSEndpoint == "" {
		return nil, errors.New("verifier requires a JWKS endpoint or given keys", errors.CategoryValidation)
	}

	refreshInterval := cfg.RefreshInterval
	if refreshInterval == 0 {
		refreshInterval = time.Hour
	}
	refreshRateLimit := cfg.RefreshRateLimit
	if refreshRateLimit == 0 {
		refreshRateLimit = 5 * time.Minute
	}
	refreshTimeout := cfg.RefreshTimeout
	if refreshTimeout == 0 {
		refreshTimeout = 10 * time.Second
	}

	jwks, err := keyfunc.Get(cfg.JWKSEndpoint, keyfunc.Options{
		RefreshErrorHandler: func(err error) {
			logger.Error("Background JWK set refresh failed: %s", err)
		},
		RefreshInterval:   refreshInterval,
		RefreshRateLimit:  refreshRateLimit,
		RefreshTimeout:    refreshTimeout,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "failed to fetch JWK set")
	}

	v.jwks = jwks
	return v, nil
}

// Verify validates signature, expiry, audience and issuer, returning the
// decoded claims. Untrusted input never panics or surfaces transport detail;
// everything maps to ErrTokenInvalid or ErrTokenExpired.
func (v *IDTokenVerifier) Verify(tokenString string) (*IdentityClaims, error) {
	if tokenString == "" {
		return nil, ErrTokenInvalid
	}

	opts := []jwt.ParserOption{
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{"RS256", "ES256"}),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := &IdentityClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, v.jwks.Keyfunc, opts...)
	if err != nil {
		return nil, normalizeTokenError(err)
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	if len(v.issuers) > 0 {
		if _, ok := v.issuers[claims.Issuer]; !ok {
			return nil, tokenInvalid("unexpected issuer", claims.Issuer)
		}
	}

	return claims, nil
}

// Close stops the key cache's background refresh.
func (v *IDTokenVerifier) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}

func normalizeTokenError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		clone := ErrTokenExpired.Clone()
		clone.Source = err
		return clone
	}

	clone := ErrTokenInvalid.Clone()
	clone.Source = err
	return clone
}

func tokenInvalid(reason, value string) error {
	clone := ErrTokenInvalid.Clone()
	clone.Source = ErrTokenInvalid
	return clone.WithMetadata(map[string]any{
		"reason": reason,
		"value":  value,
	})
}
