// Package config resolves vendor secrets and settings. Each value comes from
// the process environment when present, otherwise from a parameter store by a
// fixed name. Store lookups are resolved once per process and cached.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/sync/singleflight"

	"idproof/internal/proofing"
	"idproof/pkg/platform/sentinel"
)

// Key names one setting. Name is the environment variable and the key in the
// resulting Settings; Param is the parameter-store name used when the
// environment has no value.
type Key struct {
	Name  string
	Param string
}

// Setting is a key whose environment and parameter names are the same.
func Setting(name string) Key {
	return Key{Name: name, Param: name}
}

// ParameterStore loads one named parameter. Implementations return
// sentinel.ErrNotFound when the parameter does not exist.
type ParameterStore interface {
	Load(ctx context.Context, name string) (string, error)
}

// LookupFunc reads the environment.
type LookupFunc func(name string) (string, bool)

// Resolver resolves keys against the environment and a parameter store.
// Concurrent lookups of the same parameter share one store call; successful
// results are published to a process-wide cache and never refetched.
type Resolver struct {
	store  ParameterStore
	lookup LookupFunc
	logger *slog.Logger

	group singleflight.Group
	mu    sync.RWMutex
	cache map[string]string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithLookup replaces the environment lookup, mostly for tests.
func WithLookup(lookup LookupFunc) Option {
	return func(r *Resolver) {
		r.lookup = lookup
	}
}

// NewResolver creates a resolver. store may be nil, in which case only the
// environment is consulted.
func NewResolver(store ParameterStore, opts ...Option) *Resolver {
	r := &Resolver{
		store:  store,
		lookup: os.LookupEnv,
		logger: slog.Default(),
		cache:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get resolves a single key. An empty value counts as absent. A key found
// nowhere yields a *proofing.MisconfiguredError naming key.Name.
func (r *Resolver) Get(ctx context.Context, key Key) (string, error) {
	if v, ok := r.lookup(key.Name); ok && v != "" {
		return v, nil
	}
	if key.Param == "" || r.store == nil {
		return "", &proofing.MisconfiguredError{Setting: key.Name}
	}

	if v, ok := r.cached(key.Param); ok {
		return v, nil
	}

	ch := r.group.DoChan(key.Param, func() (any, error) {
		if v, ok := r.cached(key.Param); ok {
			return v, nil
		}
		// Shared by every waiter, so it must outlive the caller that started it.
		v, err := r.store.Load(context.WithoutCancel(ctx), key.Param)
		if err != nil {
			return "", err
		}
		if v == "" {
			return "", sentinel.ErrNotFound
		}
		r.mu.Lock()
		r.cache[key.Param] = v
		r.mu.Unlock()
		r.logger.DebugContext(ctx, "parameter resolved", "param", key.Param)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			if errors.Is(res.Err, sentinel.ErrNotFound) {
				return "", &proofing.MisconfiguredError{Setting: key.Name, Underlying: res.Err}
			}
			return "", fmt.Errorf("load parameter %s: %w", key.Param, res.Err)
		}
		return res.Val.(string), nil
	}
}

// Resolve resolves every key and returns them as Settings. The first failure
// aborts resolution.
func (r *Resolver) Resolve(ctx context.Context, keys ...Key) (Settings, error) {
	values := make(map[string]string, len(keys))
	for _, key := range keys {
		v, err := r.Get(ctx, key)
		if err != nil {
			return Settings{}, err
		}
		values[key.Name] = v
	}
	settings := NewSettings(values)
	r.logger.DebugContext(ctx, "settings resolved", "names", settings.Names())
	return settings, nil
}

func (r *Resolver) cached(param string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.cache[param]
	return v, ok
}
