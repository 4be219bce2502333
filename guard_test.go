package gradauth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardLevelMatrix(t *testing.T) {
	guard := NewGuard(DefaultConfig())

	states := map[AuthLevel]AuthState{
		LevelAnonymous: Anonymous{},
		LevelPreview:   Preview{Email: "p@example.com"},
		LevelOAuth:     OAuth{Provider: "google", ProviderID: "g-1"},
		LevelFull:      Full{UserID: "u-1"},
	}

	for have, state := range states {
		for _, required := range AllLevels() {
			denial := guard.Check(NewContext(state), required)
			if have >= required {
				assert.Nil(t, denial, "have %s require %s", have, required)
			} else {
				require.NotNil(t, denial, "have %s require %s", have, required)
				if have == LevelAnonymous {
					assert.Equal(t, 401, denial.Status)
					assert.Equal(t, TextCodeAuthRequired, denial.TextCode)
					assert.Equal(t, DefaultLoginURL, denial.RecoveryURL)
				} else {
					assert.Equal(t, 403, denial.Status)
					assert.Equal(t, TextCodeInsufficientLevel, denial.TextCode)
					assert.Equal(t, DefaultUpgradeURL, denial.RecoveryURL)
				}
				assert.Equal(t, required, denial.Required)
			}
		}
	}
}

func TestGuardRoleChecks(t *testing.T) {
	guard := NewGuard(DefaultConfig())
	admin := NewContext(Full{UserID: "u-1", Roles: []string{"admin"}})
	member := NewContext(Full{UserID: "u-2", Roles: []string{"member"}})

	assert.Nil(t, guard.Check(admin, LevelFull, "admin"))
	// any listed role suffices
	assert.Nil(t, guard.Check(member, LevelFull, "admin", "member"))

	denial := guard.Check(member, LevelFull, "admin")
	require.NotNil(t, denial)
	assert.Equal(t, 403, denial.Status)
	assert.Equal(t, TextCodeInsufficientRole, denial.TextCode)
}

func TestGuardRolesImplyFullLevel(t *testing.T) {
	guard := NewGuard(DefaultConfig())
	oauth := NewContext(OAuth{Provider: "google", ProviderID: "g-1"})

	denial := guard.Check(oauth, LevelOAuth, "admin")
	require.NotNil(t, denial)
	assert.Equal(t, LevelFull, denial.Required)
	assert.Equal(t, TextCodeInsufficientLevel, denial.TextCode)
}

func TestGuardDenialBody(t *testing.T) {
	guard := NewGuard(DefaultConfig())

	denial := guard.Check(AnonymousContext(), LevelFull)
	require.NotNil(t, denial)

	body := denial.Body()
	assert.Equal(t, TextCodeAuthRequired, body["error"])
	assert.Equal(t, "full", body["required"])
	assert.Equal(t, DefaultLoginURL, body["recovery_url"])
}

func TestGuardRecoveryURLOverrides(t *testing.T) {
	guard := NewGuard(nil, WithRecoveryURLs("/signin", "/upgrade-me"))

	denial := guard.Check(AnonymousContext(), LevelPreview)
	require.NotNil(t, denial)
	assert.Equal(t, "/signin", denial.RecoveryURL)

	denial = guard.Check(NewContext(Preview{Email: "p@example.com"}), LevelFull)
	require.NotNil(t, denial)
	assert.Equal(t, "/upgrade-me", denial.RecoveryURL)
}
