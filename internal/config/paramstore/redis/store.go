// Package redis is a parameter store backed by Redis string keys.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"idproof/pkg/platform/sentinel"
)

// DefaultPrefix namespaces parameter keys.
const DefaultPrefix = "idproof:param:"

// Store reads parameters from Redis.
type Store struct {
	client redis.Cmdable
	prefix string
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix overrides DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New constructs a Redis-backed parameter store.
func New(client redis.Cmdable, opts ...Option) *Store {
	s := &Store{client: client, prefix: DefaultPrefix}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Load returns the parameter value, or sentinel.ErrNotFound.
func (s *Store) Load(ctx context.Context, name string) (string, error) {
	v, err := s.client.Get(ctx, s.prefix+name).Result()
	if errors.Is(err, redis.Nil) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get parameter %s: %w: %w", name, sentinel.ErrUnavailable, err)
	}
	return v, nil
}

// Put stores a parameter with no expiry.
func (s *Store) Put(ctx context.Context, name, value string) error {
	if err := s.client.Set(ctx, s.prefix+name, value, 0).Err(); err != nil {
		return fmt.Errorf("set parameter %s: %w", name, err)
	}
	return nil
}
