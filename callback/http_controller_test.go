package callback

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionCookieAttributes(t *testing.T) {
	c := NewHTTPController(nil, HTTPConfig{})

	cookie := c.sessionCookie("session-1", 86400)
	assert.Equal(t, "gradauth_session", cookie.Name)
	assert.Equal(t, "session-1", cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, 86400, cookie.MaxAge)
	assert.True(t, cookie.Secure)
	assert.True(t, cookie.HTTPOnly)
	assert.Equal(t, "Lax", cookie.SameSite)
}

func TestSessionCookieInsecureOptOut(t *testing.T) {
	c := NewHTTPController(nil, HTTPConfig{CookieInsecure: true})

	cookie := c.sessionCookie("session-1", 86400)
	assert.False(t, cookie.Secure)
}

func TestMaxAgeUntil(t *testing.T) {
	age := maxAgeUntil(time.Now().Add(time.Hour))
	assert.InDelta(t, 3600, age, 2)

	// an already-expired timestamp never produces a negative max-age
	assert.Equal(t, 0, maxAgeUntil(time.Now().Add(-time.Minute)))
	assert.Equal(t, 0, maxAgeUntil(time.Time{}))
}
