package gradauth

import (
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds the knobs the engine reads. Implementations stay read-only;
// the engine never writes configuration back.
type Config interface {
	GetSessionCookieName() string
	GetPreviewCookieName() string
	GetAuthScheme() string
	GetAudience() string
	GetIssuers() []string
	GetJWKSEndpoint() string
	GetDefaultTenantID() string
	GetDefaultTenantRole() string
	GetSessionTTL() time.Duration
	GetPreviewSessionTTL() time.Duration
	GetOAuthSessionTTL() time.Duration
	GetLoginURL() string
	GetUpgradeURL() string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
