// Package redisstore provides a Redis-backed session store for production
// deployments, where lightweight sessions must survive process restarts and
// be visible across instances.
package redisstore

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	gradauth "github.com/gradauth/go-gradauth"
	"github.com/redis/go-redis/v9"
)

// Store implements gradauth.SessionStore on Redis. Redis owns entry expiry
// through key TTLs; the session manager still double-checks timestamps on
// read.
type Store struct {
	client redis.UniversalClient
	prefix string
}

var _ gradauth.SessionStore = (*Store)(nil)

// Option configures the store.
type Option func(*Store)

// WithPrefix overrides the key prefix (default: "gradauth:").
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// New creates a Redis-backed session store.
func New(client redis.UniversalClient, opts ...Option) *Store {
	s := &Store{
		client: client,
		prefix: "gradauth:",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Get implements gradauth.SessionStore.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", gradauth.ErrStoreMiss
	}

	data, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", gradauth.ErrStoreMiss
		}
		return "", errors.Wrap(err, errors.CategoryOperation, "redis get failed")
	}

	return data, nil
}

// Put implements gradauth.SessionStore.
func (s *Store) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("session ttl must be positive", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)
	}

	if err := s.client.Set(ctx, s.prefix+key, value, ttl).Err(); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "redis set failed")
	}

	return nil
}

// Delete implements gradauth.SessionStore.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "redis del failed")
	}
	return nil
}
