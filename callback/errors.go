package callback

import "github.com/goliatone/go-errors"

const (
	TextCodeProviderNotFound  = "oauth_provider_not_found"
	TextCodeStateExpired      = "oauth_state_expired"
	TextCodeTokenExchangeFail = "oauth_token_exchange_failed"
	TextCodeUserInfoFail      = "oauth_user_info_failed"
)

// ErrProviderNotFound is returned when a requested provider is not configured.
var ErrProviderNotFound = errors.New("oauth provider not found", errors.CategoryNotFound).
	WithTextCode(TextCodeProviderNotFound).
	WithCode(errors.CodeNotFound)

// ErrStateExpired is returned when the round-tripped state has expired. Like
// a mismatch it is fatal for the flow in progress; the user starts over.
var ErrStateExpired = errors.New("oauth state expired", errors.CategoryBadInput).
	WithTextCode(TextCodeStateExpired).
	WithCode(errors.CodeBadRequest)

// ErrTokenExchangeFailed is returned when the provider rejects the
// authorization code.
var ErrTokenExchangeFailed = errors.New("token exchange failed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExchangeFail).
	WithCode(errors.CodeUnauthorized)

// ErrUserInfoFailed is returned when fetching the provider profile fails.
var ErrUserInfoFailed = errors.New("failed to fetch user info", errors.CategoryAuth).
	WithTextCode(TextCodeUserInfoFail).
	WithCode(errors.CodeUnauthorized)
