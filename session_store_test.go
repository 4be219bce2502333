package gradauth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviewSessionLifecycle(t *testing.T) {
	sessions := NewSessions(NewMemorySessionStore())

	sess, err := sessions.CreatePreview(context.Background(), "claimed@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, "claimed@example.com", sess.Email)

	got, err := sessions.GetPreview(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)

	require.NoError(t, sessions.DeletePreview(context.Background(), sess.ID))

	_, err = sessions.GetPreview(context.Background(), sess.ID)
	assert.True(t, IsStoreMiss(err))
}

func TestOAuthSessionLifecycle(t *testing.T) {
	sessions := NewSessions(NewMemorySessionStore())

	profile := VerifiedProfile{
		Provider:      "github",
		ProviderID:    "gh-7",
		Email:         "dev@example.com",
		EmailVerified: true,
		Name:          "Dev",
	}

	sess, err := sessions.CreateOAuth(context.Background(), profile)
	require.NoError(t, err)

	got, err := sessions.GetOAuth(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "github", got.Provider)
	assert.Equal(t, "gh-7", got.ProviderID)
	assert.True(t, got.EmailVerified)
}

func TestSessionKindsDoNotCollide(t *testing.T) {
	sessions := NewSessions(NewMemorySessionStore())

	preview, err := sessions.CreatePreview(context.Background(), "a@example.com")
	require.NoError(t, err)

	// a preview id is not a valid oauth session id
	_, err = sessions.GetOAuth(context.Background(), preview.ID)
	assert.True(t, IsStoreMiss(err))
}

func TestGetPreviewExpiryDoubleCheck(t *testing.T) {
	store := NewMemorySessionStore()
	sessions := NewSessions(store, WithSessionTTLs(time.Nanosecond, time.Nanosecond))

	sess, err := sessions.CreatePreview(context.Background(), "claimed@example.com")
	require.NoError(t, err)

	time.Sleep(2 * time.Millisecond)

	_, err = sessions.GetPreview(context.Background(), sess.ID)
	assert.True(t, IsStoreMiss(err))
}

func TestGetDiscardsUndecodableEntry(t *testing.T) {
	store := NewMemorySessionStore()
	sessions := NewSessions(store)

	require.NoError(t, store.Put(context.Background(), previewKeyPrefix+"bad", "{not json", time.Minute))

	_, err := sessions.GetPreview(context.Background(), "bad")
	assert.True(t, IsStoreMiss(err))

	// entry was dropped, not left to poison later reads
	_, err = store.Get(context.Background(), previewKeyPrefix+"bad")
	assert.True(t, IsStoreMiss(err))
}

func TestCreatePreviewRecordsActivity(t *testing.T) {
	var events []ActivityEvent
	sink := ActivitySinkFunc(func(ctx context.Context, event ActivityEvent) error {
		events = append(events, event)
		return nil
	})

	sessions := NewSessions(NewMemorySessionStore(), WithSessionsActivitySink(sink))

	_, err := sessions.CreatePreview(context.Background(), "claimed@example.com")
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, ActivityEventPreviewCreated, events[0].EventType)
}

func TestCreateOAuthRecordsActivity(t *testing.T) {
	var events []ActivityEvent
	sink := ActivitySinkFunc(func(ctx context.Context, event ActivityEvent) error {
		events = append(events, event)
		return nil
	})

	sessions := NewSessions(NewMemorySessionStore(), WithSessionsActivitySink(sink))

	sess, err := sessions.CreateOAuth(context.Background(), VerifiedProfile{
		Provider:      "google",
		ProviderID:    "goog-1",
		Email:         "dev@example.com",
		EmailVerified: true,
	})
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, ActivityEventOAuthSessionStart, events[0].EventType)
	assert.Equal(t, "google", events[0].Provider)
	assert.Equal(t, sess.ID, events[0].Metadata["session_id"])
}
