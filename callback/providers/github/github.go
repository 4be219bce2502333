// Package github implements the GitHub identity provider. GitHub reports
// email verification through its emails API, so the provider fetches the
// primary email alongside the user record.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	gradauth "github.com/gradauth/go-gradauth"
	"github.com/gradauth/go-gradauth/callback"
	"golang.org/x/oauth2"
)

const (
	defaultAuthURL   = "https://github.com/login/oauth/authorize"
	defaultTokenURL  = "https://github.com/login/oauth/access_token"
	defaultUserURL   = "https://api.github.com/user"
	defaultEmailsURL = "https://api.github.com/user/emails"
)

// Config holds GitHub OAuth configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
	Scopes       []string

	AuthURL   string
	TokenURL  string
	UserURL   string
	EmailsURL string

	HTTPClient *http.Client
}

// DefaultScopes returns the default GitHub scopes.
func DefaultScopes() []string {
	return []string{"read:user", "user:email"}
}

// Provider implements callback.Provider for GitHub.
type Provider struct {
	oauth      oauth2.Config
	userURL    string
	emailsURL  string
	httpClient *http.Client
}

var _ callback.Provider = (*Provider)(nil)

// New creates a new GitHub provider.
func New(cfg Config) *Provider {
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = DefaultScopes()
	}
	if cfg.AuthURL == "" {
		cfg.AuthURL = defaultAuthURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = defaultTokenURL
	}
	if cfg.UserURL == "" {
		cfg.UserURL = defaultUserURL
	}
	if cfg.EmailsURL == "" {
		cfg.EmailsURL = defaultEmailsURL
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &Provider{
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
		userURL:    cfg.UserURL,
		emailsURL:  cfg.EmailsURL,
		httpClient: client,
	}
}

// Name implements callback.Provider.
func (p *Provider) Name() string {
	return "github"
}

// AuthCodeURL implements callback.Provider.
func (p *Provider) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	return p.oauth.AuthCodeURL(state, opts...)
}

// Exchange implements callback.Provider.
func (p *Provider) Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	return p.oauth.Exchange(ctx, code, opts...)
}

// Profile implements callback.Provider. The user record's public email can
// be empty or unconfirmed, so the primary email comes from the emails API
// when the scope allows it.
func (p *Provider) Profile(ctx context.Context, token *oauth2.Token) (*gradauth.VerifiedProfile, error) {
	user, err := p.fetchUser(ctx, token)
	if err != nil {
		return nil, err
	}

	email, emailVerified, err := p.fetchPrimaryEmail(ctx, token)
	if err != nil {
		email = user.Email
		emailVerified = false
	}

	return mapProfile(user, email, emailVerified), nil
}

func (p *Provider) fetchUser(ctx context.Context, token *oauth2.Token) (*githubUser, error) {
	body, err := p.apiGet(ctx, token, p.userURL)
	if err != nil {
		return nil, err
	}

	var user githubUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("github: failed to decode user: %w", err)
	}
	return &user, nil
}

func (p *Provider) fetchPrimaryEmail(ctx context.Context, token *oauth2.Token) (string, bool, error) {
	body, err := p.apiGet(ctx, token, p.emailsURL)
	if err != nil {
		return "", false, err
	}

	var emails []githubEmail
	if err := json.Unmarshal(body, &emails); err != nil {
		return "", false, fmt.Errorf("github: failed to decode emails: %w", err)
	}

	for _, e := range emails {
		if e.Primary {
			return e.Email, e.Verified, nil
		}
	}
	for _, e := range emails {
		if e.Verified {
			return e.Email, true, nil
		}
	}

	return "", false, fmt.Errorf("github: no primary email")
}

func (p *Provider) apiGet(ctx context.Context, token *oauth2.Token, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	token.SetAuthHeader(req)
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github: %s returned status %d", url, resp.StatusCode)
	}

	return body, nil
}
