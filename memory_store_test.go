package gradauth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "k", "v", time.Minute))

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	require.NoError(t, store.Delete(ctx, "k"))

	_, err = store.Get(ctx, "k")
	assert.True(t, IsStoreMiss(err))
}

func TestMemoryStoreMiss(t *testing.T) {
	store := NewMemorySessionStore()

	_, err := store.Get(context.Background(), "absent")
	assert.True(t, IsStoreMiss(err))
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "k", "v", time.Nanosecond))
	time.Sleep(2 * time.Millisecond)

	_, err := store.Get(ctx, "k")
	assert.True(t, IsStoreMiss(err))
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStoreLen(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "live", "v", time.Minute))
	require.NoError(t, store.Put(ctx, "dead", "v", time.Nanosecond))
	time.Sleep(2 * time.Millisecond)

	assert.Equal(t, 1, store.Len())
}
