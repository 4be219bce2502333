package gradauth

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
)

// VerifiedProfile is a provider-verified identity ready for graduation. Both
// entry points normalize their input into this shape before touching the
// session authority.
type VerifiedProfile struct {
	Provider      string
	ProviderID    string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// ProfileFromClaims builds a profile from verified identity token claims.
func ProfileFromClaims(claims *IdentityClaims) VerifiedProfile {
	return VerifiedProfile{
		Provider:      providerFromIssuer(claims.Issuer),
		ProviderID:    claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
		Picture:       claims.Picture,
	}
}

// ProfileFromOAuthSession builds a profile from a stored lightweight session.
func ProfileFromOAuthSession(sess *OAuthSession) VerifiedProfile {
	return VerifiedProfile{
		Provider:      sess.Provider,
		ProviderID:    sess.ProviderID,
		Email:         sess.Email,
		EmailVerified: sess.EmailVerified,
		Name:          sess.Name,
		Picture:       sess.Picture,
	}
}

// GraduationResult reports a completed graduation. SessionToken is the
// durable credential to hand back to the client; IsNewAccount tells the
// caller whether onboarding side effects apply.
type GraduationResult struct {
	UserID       string
	SessionToken string
	ExpiresAt    time.Time
	IsNewAccount bool
	State        Full
}

// Graduator converts verified external identities into durable accounts and
// sessions. It is the only component that writes through the Authority
// interface; the resolver and guard only read.
type Graduator struct {
	authority Authority
	sessions  *Sessions
	verifier  *IDTokenVerifier
	cfg       Config
	logger    Logger
	activity  ActivitySink
}

// GraduatorOption configures the graduator.
type GraduatorOption func(*Graduator)

// WithGraduatorVerifier enables the token entry point.
func WithGraduatorVerifier(v *IDTokenVerifier) GraduatorOption {
	return func(g *Graduator) {
		g.verifier = v
	}
}

// WithGraduatorConfig overrides the default configuration.
func WithGraduatorConfig(cfg Config) GraduatorOption {
	return func(g *Graduator) {
		if cfg != nil {
			g.cfg = cfg
		}
	}
}

// WithGraduatorLogger sets the logger.
func WithGraduatorLogger(l Logger) GraduatorOption {
	return func(g *Graduator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithGraduatorActivitySink sets the audit sink.
func WithGraduatorActivitySink(sink ActivitySink) GraduatorOption {
	return func(g *Graduator) {
		g.activity = sink
	}
}

// NewGraduator creates a graduator over the session authority and the
// lightweight session store.
func NewGraduator(authority Authority, sessions *Sessions, opts ...GraduatorOption) *Graduator {
	g := &Graduator{
		authority: authority,
		sessions:  sessions,
		cfg:       DefaultConfig(),
		logger:    defLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	g.activity = normalizeActivitySink(g.activity)
	return g
}

// GraduateFromToken graduates directly from a provider-signed identity token.
// The email must be verified by the provider, and no account may already
// exist for it: an external token is never auto-linked to an existing account
// on email match alone, that path goes through sign-in-then-link instead.
func (g *Graduator) GraduateFromToken(ctx context.Context, rawToken string) (*GraduationResult, error) {
	if g.verifier == nil {
		return nil, errors.New("no identity token verifier configured", errors.CategoryInternal).
			WithCode(errors.CodeInternal)
	}

	claims, err := g.verifier.Verify(rawToken)
	if err != nil {
		return nil, err
	}
	profile := ProfileFromClaims(claims)

	if !profile.EmailVerified {
		g.recordDenied(ctx, profile, TextCodeEmailNotVerified)
		return nil, withProfileMeta(ErrEmailNotVerified.Clone(), profile)
	}

	if err := ctx.Err(); err != nil {
		return nil, canceled(err)
	}

	existing, err := g.authority.FindUserByEmail(ctx, profile.Email)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "account lookup failed")
	}
	if existing != nil {
		g.recordDenied(ctx, profile, TextCodeAccountConflict)
		return nil, withProfileMeta(ErrAccountConflict.Clone(), profile)
	}

	return g.establish(ctx, profile, nil)
}

// GraduateFromSession graduates a previously stored lightweight OAuth
// session. The provider verified this identity when the session was created,
// so there is no further email gate: if an account for the email exists, the
// provider identity is linked to it; otherwise an account is created. The
// lightweight session is deleted once the durable session is authoritative.
func (g *Graduator) GraduateFromSession(ctx context.Context, sessionID string) (*GraduationResult, error) {
	sess, err := g.sessions.GetOAuth(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	result, err := g.GraduateProfile(ctx, ProfileFromOAuthSession(sess))
	if err != nil {
		return nil, err
	}

	if err := g.sessions.DeleteOAuth(ctx, sessionID); err != nil {
		g.logger.Error("failed to delete graduated oauth session %s: %v", sessionID, err)
	}

	return result, nil
}

// GraduateProfile graduates a verified profile, linking to an existing
// account by email or creating a new one. Linking is idempotent: graduating
// the same identity twice converges on the same account.
func (g *Graduator) GraduateProfile(ctx context.Context, profile VerifiedProfile) (*GraduationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, canceled(err)
	}

	existing, err := g.authority.FindUserByEmail(ctx, profile.Email)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "account lookup failed")
	}

	return g.establish(ctx, profile, existing)
}

// establish performs the write sequence: create account if needed, link the
// provider identity, grant default tenant membership for new accounts, then
// issue the durable session last so a failure part way through never leaves a
// live credential behind.
func (g *Graduator) establish(ctx context.Context, profile VerifiedProfile, existing *User) (*GraduationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, canceled(err)
	}

	user := existing
	isNew := existing == nil

	if isNew {
		created, err := g.authority.CreateUser(ctx, CreateUserInput{
			Email:         profile.Email,
			Name:          profile.Name,
			Image:         profile.Picture,
			EmailVerified: profile.EmailVerified,
		})
		if err != nil {
			// A concurrent graduation for the same email loses the race here
			// and surfaces the authority's uniqueness violation.
			if IsAccountConflict(err) {
				g.recordDenied(ctx, profile, TextCodeAccountConflict)
			}
			return nil, err
		}
		user = created
	}

	if err := g.authority.LinkAccount(ctx, LinkAccountInput{
		UserID:            user.ID,
		Provider:          profile.Provider,
		ProviderAccountID: profile.ProviderID,
	}); err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "failed to link provider account")
	}

	tenantID := g.cfg.GetDefaultTenantID()

	if isNew {
		if err := g.authority.AddTenantMember(ctx, AddTenantMemberInput{
			UserID:   user.ID,
			TenantID: tenantID,
			Role:     g.cfg.GetDefaultTenantRole(),
		}); err != nil {
			return nil, errors.Wrap(err, errors.CategoryOperation, "failed to grant tenant membership")
		}
	}

	roles, err := g.authority.GetUserRoles(ctx, user.ID, tenantID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "role lookup failed")
	}

	if err := ctx.Err(); err != nil {
		return nil, canceled(err)
	}

	rec, err := g.authority.CreateSession(ctx, CreateSessionInput{
		UserID:    user.ID,
		TenantID:  tenantID,
		ExpiresAt: time.Now().Add(g.cfg.GetSessionTTL()),
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "failed to create session")
	}

	email := rec.Email
	if email == "" {
		email = profile.Email
	}

	state := Full{
		UserID:     user.ID,
		SessionID:  rec.ID,
		Email:      email,
		Roles:      roles,
		TenantID:   rec.TenantID,
		TenantRole: rec.TenantRole,
	}

	_ = g.activity.Record(ctx, ActivityEvent{
		EventType:  ActivityEventGraduation,
		UserID:     user.ID,
		Provider:   profile.Provider,
		OccurredAt: time.Now(),
		Metadata: map[string]any{
			"is_new_account": isNew,
		},
	})

	return &GraduationResult{
		UserID:       user.ID,
		SessionToken: rec.Token,
		ExpiresAt:    rec.ExpiresAt,
		IsNewAccount: isNew,
		State:        state,
	}, nil
}

func (g *Graduator) recordDenied(ctx context.Context, profile VerifiedProfile, reason string) {
	_ = g.activity.Record(ctx, ActivityEvent{
		EventType:  ActivityEventGraduationDenied,
		Provider:   profile.Provider,
		OccurredAt: time.Now(),
		Metadata: map[string]any{
			"reason": reason,
		},
	})
}

func withProfileMeta(err *errors.Error, profile VerifiedProfile) *errors.Error {
	return err.WithMetadata(map[string]any{
		"provider":    profile.Provider,
		"provider_id": profile.ProviderID,
	})
}

func canceled(err error) error {
	return errors.Wrap(err, errors.CategoryOperation, "graduation canceled")
}
