package gradauth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// SessionStore is a key-value store with per-entry expiry backing the two
// lightweight session kinds. Eventual consistency across edge nodes is
// acceptable; the engine double-checks expiry on read.
type SessionStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Store key prefixes, one per session kind.
const (
	previewKeyPrefix = "preview:"
	oauthKeyPrefix   = "oauth:"
)

// PreviewSession identifies a visitor by claimed email only.
type PreviewSession struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// OAuthSession holds a provider-verified identity that has not yet been
// graduated into a durable account.
type OAuthSession struct {
	ID            string    `json:"id"`
	Provider      string    `json:"provider"`
	ProviderID    string    `json:"provider_id"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"email_verified"`
	Name          string    `json:"name,omitempty"`
	Picture       string    `json:"picture,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// Sessions manages lightweight session lifecycle on top of a SessionStore.
type Sessions struct {
	store      SessionStore
	previewTTL time.Duration
	oauthTTL   time.Duration
	logger     Logger
	activity   ActivitySink
}

// SessionsOption configures the session manager.
type SessionsOption func(*Sessions)

// WithSessionTTLs overrides the preview and OAuth session lifetimes.
func WithSessionTTLs(preview, oauth time.Duration) SessionsOption {
	return func(s *Sessions) {
		if preview > 0 {
			s.previewTTL = preview
		}
		if oauth > 0 {
			s.oauthTTL = oauth
		}
	}
}

// WithSessionsLogger sets the logger.
func WithSessionsLogger(l Logger) SessionsOption {
	return func(s *Sessions) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSessionsActivitySink sets the audit sink.
func WithSessionsActivitySink(sink ActivitySink) SessionsOption {
	return func(s *Sessions) {
		s.activity = sink
	}
}

// NewSessions creates a lightweight session manager.
func NewSessions(store SessionStore, opts ...SessionsOption) *Sessions {
	s := &Sessions{
		store:      store,
		previewTTL: DefaultPreviewSessionTTL,
		oauthTTL:   DefaultOAuthSessionTTL,
		logger:     defLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.activity = normalizeActivitySink(s.activity)
	return s
}

// PreviewTTL returns the configured preview session lifetime.
func (s *Sessions) PreviewTTL() time.Duration { return s.previewTTL }

// OAuthTTL returns the configured OAuth session lifetime.
func (s *Sessions) OAuthTTL() time.Duration { return s.oauthTTL }

// CreatePreview issues a preview session for a claimed email.
func (s *Sessions) CreatePreview(ctx context.Context, email string) (*PreviewSession, error) {
	now := time.Now()
	sess := &PreviewSession{
		ID:        uuid.NewString(),
		Email:     email,
		CreatedAt: now,
		ExpiresAt: now.Add(s.previewTTL),
	}

	if err := s.put(ctx, previewKeyPrefix+sess.ID, sess, s.previewTTL); err != nil {
		return nil, err
	}

	_ = s.activity.Record(ctx, ActivityEvent{
		EventType:  ActivityEventPreviewCreated,
		OccurredAt: now,
		Metadata:   map[string]any{"session_id": sess.ID},
	})

	return sess, nil
}

// GetPreview looks up a preview session by id, treating expired entries as
// absent even when the store has not evicted them yet.
func (s *Sessions) GetPreview(ctx context.Context, id string) (*PreviewSession, error) {
	sess := &PreviewSession{}
	if err := s.get(ctx, previewKeyPrefix+id, sess); err != nil {
		return nil, err
	}
	if time.Now().After(sess.ExpiresAt) {
		_ = s.store.Delete(ctx, previewKeyPrefix+id)
		return nil, ErrStoreMiss
	}
	return sess, nil
}

// DeletePreview removes a preview session.
func (s *Sessions) DeletePreview(ctx context.Context, id string) error {
	return s.store.Delete(ctx, previewKeyPrefix+id)
}

// CreateOAuth stores a provider-verified identity as a lightweight session.
func (s *Sessions) CreateOAuth(ctx context.Context, profile VerifiedProfile) (*OAuthSession, error) {
	now := time.Now()
	sess := &OAuthSession{
		ID:            uuid.NewString(),
		Provider:      profile.Provider,
		ProviderID:    profile.ProviderID,
		Email:         profile.Email,
		EmailVerified: profile.EmailVerified,
		Name:          profile.Name,
		Picture:       profile.Picture,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.oauthTTL),
	}

	if err := s.put(ctx, oauthKeyPrefix+sess.ID, sess, s.oauthTTL); err != nil {
		return nil, err
	}

	_ = s.activity.Record(ctx, ActivityEvent{
		EventType:  ActivityEventOAuthSessionStart,
		Provider:   profile.Provider,
		OccurredAt: now,
		Metadata:   map[string]any{"session_id": sess.ID},
	})

	return sess, nil
}

// GetOAuth looks up an OAuth session by id with the same expiry double-check
// as GetPreview.
func (s *Sessions) GetOAuth(ctx context.Context, id string) (*OAuthSession, error) {
	sess := &OAuthSession{}
	if err := s.get(ctx, oauthKeyPrefix+id, sess); err != nil {
		return nil, err
	}
	if time.Now().After(sess.ExpiresAt) {
		_ = s.store.Delete(ctx, oauthKeyPrefix+id)
		return nil, ErrStoreMiss
	}
	return sess, nil
}

// DeleteOAuth removes an OAuth session. Graduation calls this once the
// durable session is authoritative.
func (s *Sessions) DeleteOAuth(ctx context.Context, id string) error {
	return s.store.Delete(ctx, oauthKeyPrefix+id)
}

func (s *Sessions) put(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to marshal session")
	}
	if err := s.store.Put(ctx, key, string(data), ttl); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to write session")
	}
	return nil
}

func (s *Sessions) get(ctx context.Context, key string, v any) error {
	data, err := s.store.Get(ctx, key)
	if err != nil {
		if IsStoreMiss(err) {
			return err
		}
		return errors.Wrap(err, errors.CategoryOperation, "failed to read session")
	}
	if data == "" {
		return ErrStoreMiss
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		s.logger.Error("discarding undecodable session entry at key %s", key)
		_ = s.store.Delete(ctx, key)
		return ErrStoreMiss
	}
	return nil
}
