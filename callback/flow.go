package callback

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	gradauth "github.com/gradauth/go-gradauth"
	"golang.org/x/oauth2"
)

// Flow drives the OAuth authorization-code state machine: Begin issues the
// provider redirect with an encrypted anti-forgery state and a PKCE
// verifier; Complete validates the round-trip and lands the verified
// identity either in a durable session (account already exists) or in a
// lightweight OAuth session awaiting graduation.
type Flow struct {
	providers map[string]Provider
	states    StateManager
	sessions  *gradauth.Sessions
	graduator *gradauth.Graduator
	authority gradauth.Authority

	requireVerifiedEmail bool
}

// FlowOption configures the flow.
type FlowOption func(*Flow)

// WithProvider registers an identity provider.
func WithProvider(p Provider) FlowOption {
	return func(f *Flow) {
		if p != nil {
			f.providers[p.Name()] = p
		}
	}
}

// WithRequireVerifiedEmail controls whether unverified provider emails are
// rejected at the callback. Defaults to true; disable only for providers
// that have no email verification concept.
func WithRequireVerifiedEmail(require bool) FlowOption {
	return func(f *Flow) {
		f.requireVerifiedEmail = require
	}
}

// NewFlow creates an OAuth callback flow.
func NewFlow(
	states StateManager,
	sessions *gradauth.Sessions,
	graduator *gradauth.Graduator,
	authority gradauth.Authority,
	opts ...FlowOption,
) *Flow {
	f := &Flow{
		providers:            map[string]Provider{},
		states:               states,
		sessions:             sessions,
		graduator:            graduator,
		authority:            authority,
		requireVerifiedEmail: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// ListProviders returns the names of the registered providers.
func (f *Flow) ListProviders() []string {
	names := make([]string, 0, len(f.providers))
	for name := range f.providers {
		names = append(names, name)
	}
	return names
}

// BeginResult is the provider redirect for an initiated flow.
type BeginResult struct {
	URL string
}

// Begin initiates the flow for a provider, returning the authorization URL
// to redirect the user to.
func (f *Flow) Begin(ctx context.Context, providerName, redirectURL string) (*BeginResult, error) {
	provider, ok := f.providers[providerName]
	if !ok {
		return nil, ErrProviderNotFound
	}

	verifier := oauth2.GenerateVerifier()

	stateToken, err := f.states.Encode(&OAuthState{
		Provider:     providerName,
		CodeVerifier: verifier,
		RedirectURL:  redirectURL,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to encode oauth state")
	}

	url := provider.AuthCodeURL(stateToken, oauth2.S256ChallengeOption(verifier))

	return &BeginResult{URL: url}, nil
}

// CompleteResult reports a finished callback. Exactly one of Graduation and
// OAuthSessionID is set: Graduation when an account for the email already
// existed and the identity was linked into a durable session, OAuthSessionID
// when the identity now waits in a lightweight session for explicit
// graduation.
type CompleteResult struct {
	Profile        gradauth.VerifiedProfile
	Graduation     *gradauth.GraduationResult
	OAuthSessionID string
	OAuthExpiresAt time.Time
	RedirectURL    string
}

// Complete validates the provider round-trip. A missing, tampered or
// mismatched state is fatal for the flow in progress; the client must start
// over with Begin.
func (f *Flow) Complete(ctx context.Context, providerName, code, stateToken string) (*CompleteResult, error) {
	if stateToken == "" {
		return nil, gradauth.ErrStateMismatch
	}

	state, err := f.states.Decode(stateToken)
	if err != nil {
		return nil, err
	}

	if state.Provider != providerName {
		return nil, gradauth.ErrStateMismatch
	}

	provider, ok := f.providers[providerName]
	if !ok {
		return nil, ErrProviderNotFound
	}

	token, err := provider.Exchange(ctx, code, oauth2.VerifierOption(state.CodeVerifier))
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryAuth, ErrTokenExchangeFailed.Message).
			WithTextCode(TextCodeTokenExchangeFail).
			WithCode(errors.CodeUnauthorized)
	}

	profile, err := provider.Profile(ctx, token)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryAuth, ErrUserInfoFailed.Message).
			WithTextCode(TextCodeUserInfoFail).
			WithCode(errors.CodeUnauthorized)
	}

	if f.requireVerifiedEmail && !profile.EmailVerified {
		return nil, gradauth.ErrEmailNotVerified
	}

	result := &CompleteResult{
		Profile:     *profile,
		RedirectURL: state.RedirectURL,
	}

	existing, err := f.authority.FindUserByEmail(ctx, profile.Email)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "account lookup failed")
	}

	if existing != nil {
		graduation, err := f.graduator.GraduateProfile(ctx, *profile)
		if err != nil {
			return nil, err
		}
		result.Graduation = graduation
		return result, nil
	}

	sess, err := f.sessions.CreateOAuth(ctx, *profile)
	if err != nil {
		return nil, err
	}
	result.OAuthSessionID = sess.ID
	result.OAuthExpiresAt = sess.ExpiresAt

	return result, nil
}
