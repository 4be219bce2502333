package callback

import (
	"context"

	gradauth "github.com/gradauth/go-gradauth"
	"golang.org/x/oauth2"
)

// Provider defines the interface for OAuth2 identity providers. The flow
// only needs the authorization redirect, the code exchange and a normalized
// profile; everything else is provider internals.
type Provider interface {
	// Name returns the provider identifier (e.g., "github", "google").
	Name() string

	// AuthCodeURL returns the URL to redirect users for authorization.
	// The state parameter should be included for CSRF protection.
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string

	// Exchange trades an authorization code for a token.
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)

	// Profile fetches the user's profile using the access token.
	Profile(ctx context.Context, token *oauth2.Token) (*gradauth.VerifiedProfile, error)
}
