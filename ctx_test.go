package gradauth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextRoundTrip(t *testing.T) {
	authCtx := NewContext(Full{UserID: "u-1", Roles: []string{"admin"}})

	ctx := WithContext(context.Background(), authCtx)
	got := FromContext(ctx)

	assert.Equal(t, LevelFull, got.Level())
	assert.Equal(t, "u-1", got.UserID())
	assert.True(t, got.HasRole("admin"))
}

func TestFromContextDefaultsToAnonymous(t *testing.T) {
	got := FromContext(context.Background())
	assert.Equal(t, LevelAnonymous, got.Level())
}
