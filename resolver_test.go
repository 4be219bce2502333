package gradauth

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(t *testing.T, authority *fakeAuthority) (*Resolver, *Sessions) {
	t.Helper()
	sessions := NewSessions(NewMemorySessionStore())
	return NewResolver(authority, sessions), sessions
}

func TestResolveAnonymousByDefault(t *testing.T) {
	resolver, _ := newTestResolver(t, newFakeAuthority())

	ctx := resolver.Resolve(context.Background(), stubRequest{})

	assert.Equal(t, LevelAnonymous, ctx.Level())
}

func TestResolveFullFromBearerToken(t *testing.T) {
	authority := newFakeAuthority()
	user := authority.seedUser("user@example.com", "admin")
	rec := authority.seedSession(user, "acme", time.Now().Add(time.Hour))

	resolver, _ := newTestResolver(t, authority)

	ctx := resolver.Resolve(context.Background(), stubRequest{
		headers: map[string]string{"Authorization": "Bearer " + rec.Token},
	})

	require.Equal(t, LevelFull, ctx.Level())
	assert.Equal(t, user.ID, ctx.UserID())
	assert.Equal(t, "user@example.com", ctx.Email())
	assert.True(t, ctx.HasRole("admin"))
}

func TestResolveFullFromSessionCookie(t *testing.T) {
	authority := newFakeAuthority()
	user := authority.seedUser("user@example.com")
	rec := authority.seedSession(user, "acme", time.Now().Add(time.Hour))

	resolver, _ := newTestResolver(t, authority)

	ctx := resolver.Resolve(context.Background(), stubRequest{
		cookies: map[string]string{DefaultSessionCookieName: rec.Token},
	})

	assert.Equal(t, LevelFull, ctx.Level())
}

func TestResolveBearerWinsOverCookies(t *testing.T) {
	authority := newFakeAuthority()
	bearerUser := authority.seedUser("bearer@example.com")
	bearerRec := authority.seedSession(bearerUser, "", time.Now().Add(time.Hour))
	cookieUser := authority.seedUser("cookie@example.com")
	cookieRec := authority.seedSession(cookieUser, "", time.Now().Add(time.Hour))

	resolver, _ := newTestResolver(t, authority)

	ctx := resolver.Resolve(context.Background(), stubRequest{
		headers: map[string]string{"Authorization": "Bearer " + bearerRec.Token},
		cookies: map[string]string{DefaultSessionCookieName: cookieRec.Token},
	})

	require.Equal(t, LevelFull, ctx.Level())
	assert.Equal(t, bearerUser.ID, ctx.UserID())
}

func TestResolveOAuthSessionCredential(t *testing.T) {
	authority := newFakeAuthority()
	resolver, sessions := newTestResolver(t, authority)

	sess, err := sessions.CreateOAuth(context.Background(), VerifiedProfile{
		Provider:      "google",
		ProviderID:    "g-1",
		Email:         "oauth@example.com",
		EmailVerified: true,
	})
	require.NoError(t, err)

	ctx := resolver.Resolve(context.Background(), stubRequest{
		cookies: map[string]string{DefaultSessionCookieName: sess.ID},
	})

	require.Equal(t, LevelOAuth, ctx.Level())
	assert.Equal(t, "oauth@example.com", ctx.Email())
}

func TestResolvePreviewCookie(t *testing.T) {
	resolver, sessions := newTestResolver(t, newFakeAuthority())

	sess, err := sessions.CreatePreview(context.Background(), "claimed@example.com")
	require.NoError(t, err)

	ctx := resolver.Resolve(context.Background(), stubRequest{
		cookies: map[string]string{DefaultPreviewCookieName: sess.ID},
	})

	require.Equal(t, LevelPreview, ctx.Level())
	assert.Equal(t, "claimed@example.com", ctx.Email())
}

func TestResolveInvalidBearerFallsThrough(t *testing.T) {
	resolver, sessions := newTestResolver(t, newFakeAuthority())

	preview, err := sessions.CreatePreview(context.Background(), "claimed@example.com")
	require.NoError(t, err)

	// broken bearer token never fails the request; the preview cookie wins
	ctx := resolver.Resolve(context.Background(), stubRequest{
		headers: map[string]string{"Authorization": "Bearer bogus"},
		cookies: map[string]string{DefaultPreviewCookieName: preview.ID},
	})

	assert.Equal(t, LevelPreview, ctx.Level())
}

func TestResolveMalformedAuthorizationHeader(t *testing.T) {
	resolver, _ := newTestResolver(t, newFakeAuthority())

	for _, header := range []string{"Basic abc123", "Bearer", "Bearer ", "token-1"} {
		ctx := resolver.Resolve(context.Background(), stubRequest{
			headers: map[string]string{"Authorization": header},
		})
		assert.Equal(t, LevelAnonymous, ctx.Level(), "header %q", header)
	}
}

func TestResolveExpiredDurableSession(t *testing.T) {
	authority := newFakeAuthority()
	user := authority.seedUser("user@example.com")
	rec := authority.seedSession(user, "", time.Now().Add(-time.Minute))

	resolver, _ := newTestResolver(t, authority)

	ctx := resolver.Resolve(context.Background(), stubRequest{
		headers: map[string]string{"Authorization": "Bearer " + rec.Token},
	})

	assert.Equal(t, LevelAnonymous, ctx.Level())
}

func TestResolveRoleLookupFailureFallsThrough(t *testing.T) {
	authority := newFakeAuthority()
	user := authority.seedUser("user@example.com")
	rec := authority.seedSession(user, "", time.Now().Add(time.Hour))
	authority.rolesErr = errors.New("roles unavailable", errors.CategoryOperation)

	resolver, _ := newTestResolver(t, authority)

	ctx := resolver.Resolve(context.Background(), stubRequest{
		headers: map[string]string{"Authorization": "Bearer " + rec.Token},
	})

	assert.Equal(t, LevelAnonymous, ctx.Level())
}

func TestResolveIsDeterministic(t *testing.T) {
	authority := newFakeAuthority()
	user := authority.seedUser("user@example.com", "admin")
	rec := authority.seedSession(user, "acme", time.Now().Add(time.Hour))

	resolver, _ := newTestResolver(t, authority)
	req := stubRequest{
		headers: map[string]string{"Authorization": "Bearer " + rec.Token},
	}

	first := resolver.Resolve(context.Background(), req)
	for i := 0; i < 5; i++ {
		again := resolver.Resolve(context.Background(), req)
		assert.Equal(t, first.Level(), again.Level())
		assert.Equal(t, first.UserID(), again.UserID())
	}
}
