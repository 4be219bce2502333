package gradauth

import (
	"github.com/goliatone/go-errors"
)

const (
	TextCodeTokenInvalid      = "auth_token_invalid"
	TextCodeTokenExpired      = "auth_token_expired"
	TextCodeStoreMiss         = "auth_session_not_found"
	TextCodeEmailNotVerified  = "auth_email_not_verified"
	TextCodeAccountConflict   = "auth_account_conflict"
	TextCodeAuthRequired      = "auth_required"
	TextCodeInsufficientLevel = "auth_insufficient_level"
	TextCodeInsufficientRole  = "auth_insufficient_role"
	TextCodeStateMismatch     = "auth_state_mismatch"
)

// ErrTokenInvalid is returned for malformed tokens or signature mismatches.
// The resolver recovers from it locally by trying the next source.
var ErrTokenInvalid = errors.New("invalid identity token", errors.CategoryAuth).
	WithTextCode(TextCodeTokenInvalid).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned when an otherwise valid token has expired.
var ErrTokenExpired = errors.New("identity token expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrStoreMiss is returned when a session id is not found or has expired.
// Resolution treats it as absence, never as a failure.
var ErrStoreMiss = errors.New("session not found", errors.CategoryNotFound).
	WithTextCode(TextCodeStoreMiss).
	WithCode(errors.CodeNotFound)

// ErrEmailNotVerified is returned when graduating from an external token
// whose email the provider has not verified.
var ErrEmailNotVerified = errors.New("email not verified", errors.CategoryAuth).
	WithTextCode(TextCodeEmailNotVerified).
	WithCode(errors.CodeForbidden)

// ErrAccountConflict is returned when graduation would collide with an
// existing account for the same email. The engine never auto-links on email
// match from an external token; callers must route the user through an
// explicit sign-in-then-link flow.
var ErrAccountConflict = errors.New("account already exists for email", errors.CategoryConflict).
	WithTextCode(TextCodeAccountConflict).
	WithCode(errors.CodeConflict)

// ErrAuthenticationRequired is the guard decision for anonymous callers
// hitting a protected route (401 semantics).
var ErrAuthenticationRequired = errors.New("authentication required", errors.CategoryAuth).
	WithTextCode(TextCodeAuthRequired).
	WithCode(errors.CodeUnauthorized)

// ErrInsufficientLevel is the guard decision for authenticated callers below
// the required level (403 semantics).
var ErrInsufficientLevel = errors.New("insufficient authentication level", errors.CategoryAuthz).
	WithTextCode(TextCodeInsufficientLevel).
	WithCode(errors.CodeForbidden)

// ErrInsufficientRole is the guard decision for callers missing a required
// role (403 semantics).
var ErrInsufficientRole = errors.New("insufficient role", errors.CategoryAuthz).
	WithTextCode(TextCodeInsufficientRole).
	WithCode(errors.CodeForbidden)

// ErrStateMismatch is fatal for the OAuth callback in progress: the
// round-tripped anti-forgery state did not match the one issued.
var ErrStateMismatch = errors.New("oauth state mismatch", errors.CategoryBadInput).
	WithTextCode(TextCodeStateMismatch).
	WithCode(errors.CodeBadRequest)

// IsTokenError reports whether err is a token validation failure the
// resolver may swallow.
func IsTokenError(err error) bool {
	return hasTextCode(err, TextCodeTokenInvalid) || hasTextCode(err, TextCodeTokenExpired)
}

// IsStoreMiss reports whether err means a session was absent or expired.
func IsStoreMiss(err error) bool {
	return hasTextCode(err, TextCodeStoreMiss)
}

// IsAccountConflict reports whether err is the graduation conflict invariant.
func IsAccountConflict(err error) bool {
	return hasTextCode(err, TextCodeAccountConflict)
}

// IsEmailNotVerified reports whether err is the unverified-email graduation
// failure.
func IsEmailNotVerified(err error) bool {
	return hasTextCode(err, TextCodeEmailNotVerified)
}

// IsStateMismatch reports whether err is the callback anti-forgery failure.
func IsStateMismatch(err error) bool {
	return hasTextCode(err, TextCodeStateMismatch)
}

func hasTextCode(err error, code string) bool {
	var rich *errors.Error
	if errors.As(err, &rich) {
		return rich.TextCode == code
	}
	return false
}
