package gradauth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextLevels(t *testing.T) {
	tests := []struct {
		name  string
		state AuthState
		level AuthLevel
	}{
		{"anonymous", Anonymous{}, LevelAnonymous},
		{"preview", Preview{Email: "p@example.com", SessionID: "ps-1"}, LevelPreview},
		{"oauth", OAuth{Provider: "google", ProviderID: "g-1", Email: "o@example.com"}, LevelOAuth},
		{"full", Full{UserID: "u-1", Email: "f@example.com"}, LevelFull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := NewContext(tt.state)
			assert.Equal(t, tt.level, ctx.Level())
			assert.True(t, ctx.HasLevel(tt.level))
			assert.True(t, ctx.HasLevel(LevelAnonymous))
			if tt.level < LevelFull {
				assert.False(t, ctx.HasLevel(tt.level+1))
			}
		})
	}
}

func TestNewContextNilState(t *testing.T) {
	ctx := NewContext(nil)
	assert.Equal(t, LevelAnonymous, ctx.Level())
}

func TestContextHasRole(t *testing.T) {
	full := NewContext(Full{
		UserID: "u-1",
		Roles:  []string{"admin", "editor"},
	})

	assert.True(t, full.HasRole("admin"))
	assert.True(t, full.HasRole("editor"))
	assert.False(t, full.HasRole("owner"))

	// role checks only ever succeed at the full level
	oauth := NewContext(OAuth{Provider: "google", ProviderID: "g-1"})
	assert.False(t, oauth.HasRole("admin"))
	assert.False(t, AnonymousContext().HasRole("admin"))
}

func TestContextTenantID(t *testing.T) {
	full := NewContext(Full{UserID: "u-1", TenantID: "acme"})
	assert.Equal(t, "acme", full.TenantID())

	assert.Equal(t, "", AnonymousContext().TenantID())
	assert.Equal(t, "", NewContext(Preview{Email: "p@example.com"}).TenantID())
}

func TestContextIdentityAccessors(t *testing.T) {
	assert.Equal(t, "", AnonymousContext().Email())
	assert.Equal(t, "", AnonymousContext().UserID())

	preview := NewContext(Preview{Email: "p@example.com", SessionID: "ps-1"})
	assert.Equal(t, "p@example.com", preview.Email())
	assert.Equal(t, "", preview.UserID())

	oauth := NewContext(OAuth{Provider: "github", ProviderID: "gh-9", Email: "o@example.com"})
	assert.Equal(t, "o@example.com", oauth.Email())
	assert.Equal(t, "", oauth.UserID())

	full := NewContext(Full{UserID: "u-1", Email: "f@example.com"})
	assert.Equal(t, "f@example.com", full.Email())
	assert.Equal(t, "u-1", full.UserID())
}
