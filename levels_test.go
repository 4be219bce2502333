package gradauth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthLevelOrdering(t *testing.T) {
	tests := []struct {
		level    AuthLevel
		min      AuthLevel
		expected bool
	}{
		{LevelAnonymous, LevelAnonymous, true},
		{LevelAnonymous, LevelPreview, false},
		{LevelAnonymous, LevelFull, false},
		{LevelPreview, LevelAnonymous, true},
		{LevelPreview, LevelPreview, true},
		{LevelPreview, LevelOAuth, false},
		{LevelOAuth, LevelPreview, true},
		{LevelOAuth, LevelOAuth, true},
		{LevelOAuth, LevelFull, false},
		{LevelFull, LevelAnonymous, true},
		{LevelFull, LevelOAuth, true},
		{LevelFull, LevelFull, true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.level.AtLeast(tt.min),
			"%s.AtLeast(%s)", tt.level, tt.min)
	}
}

func TestAuthLevelString(t *testing.T) {
	assert.Equal(t, "anonymous", LevelAnonymous.String())
	assert.Equal(t, "preview", LevelPreview.String())
	assert.Equal(t, "oauth", LevelOAuth.String())
	assert.Equal(t, "full", LevelFull.String())
}

func TestParseLevel(t *testing.T) {
	for _, level := range AllLevels() {
		parsed, ok := ParseLevel(level.String())
		assert.True(t, ok)
		assert.Equal(t, level, parsed)
	}

	_, ok := ParseLevel("superuser")
	assert.False(t, ok)
}

func TestAuthLevelIsValid(t *testing.T) {
	for _, level := range AllLevels() {
		assert.True(t, level.IsValid())
	}
	assert.False(t, AuthLevel(-1).IsValid())
	assert.False(t, AuthLevel(4).IsValid())
}
