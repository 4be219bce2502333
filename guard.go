package gradauth

// Denial explains why a guarded request was refused and where the client can
// go to recover. Status is 401 for anonymous callers and 403 for
// authenticated callers below the requirement.
type Denial struct {
	Status      int
	TextCode    string
	Message     string
	Required    AuthLevel
	RecoveryURL string
}

// Body is the JSON-friendly denial payload.
func (d *Denial) Body() map[string]any {
	return map[string]any{
		"error":        d.TextCode,
		"message":      d.Message,
		"required":     d.Required.String(),
		"recovery_url": d.RecoveryURL,
	}
}

// Guard makes pure allow/deny decisions from an already resolved context.
// It performs no I/O, so a decision is fully determined by the context, the
// required level and the required roles.
type Guard struct {
	loginURL   string
	upgradeURL string
}

// GuardOption configures the guard.
type GuardOption func(*Guard)

// WithRecoveryURLs overrides where denials point anonymous callers (login)
// and under-leveled callers (upgrade).
func WithRecoveryURLs(login, upgrade string) GuardOption {
	return func(g *Guard) {
		if login != "" {
			g.loginURL = login
		}
		if upgrade != "" {
			g.upgradeURL = upgrade
		}
	}
}

// NewGuard creates a guard with the given configuration's recovery URLs.
func NewGuard(cfg Config, opts ...GuardOption) *Guard {
	g := &Guard{
		loginURL:   DefaultLoginURL,
		upgradeURL: DefaultUpgradeURL,
	}
	if cfg != nil {
		if u := cfg.GetLoginURL(); u != "" {
			g.loginURL = u
		}
		if u := cfg.GetUpgradeURL(); u != "" {
			g.upgradeURL = u
		}
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Check evaluates a resolved context against a required level and an optional
// set of roles. A nil return means the request may proceed. Role checks only
// make sense at the full level; requiring roles implies requiring at least
// LevelFull regardless of the level argument.
func (g *Guard) Check(authCtx Context, required AuthLevel, roles ...string) *Denial {
	if len(roles) > 0 && required < LevelFull {
		required = LevelFull
	}

	if !authCtx.HasLevel(required) {
		if authCtx.Level() == LevelAnonymous {
			return &Denial{
				Status:      401,
				TextCode:    TextCodeAuthRequired,
				Message:     ErrAuthenticationRequired.Message,
				Required:    required,
				RecoveryURL: g.loginURL,
			}
		}
		return &Denial{
			Status:      403,
			TextCode:    TextCodeInsufficientLevel,
			Message:     ErrInsufficientLevel.Message,
			Required:    required,
			RecoveryURL: g.upgradeURL,
		}
	}

	if len(roles) > 0 && !hasAnyRole(authCtx, roles) {
		return &Denial{
			Status:      403,
			TextCode:    TextCodeInsufficientRole,
			Message:     ErrInsufficientRole.Message,
			Required:    required,
			RecoveryURL: g.upgradeURL,
		}
	}

	return nil
}

func hasAnyRole(authCtx Context, roles []string) bool {
	for _, role := range roles {
		if authCtx.HasRole(role) {
			return true
		}
	}
	return false
}
