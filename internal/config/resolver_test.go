package config

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idproof/internal/config/paramstore/memory"
	"idproof/internal/proofing"
	"idproof/pkg/platform/sentinel"
)

const (
	timeout = time.Second
	tick    = time.Millisecond
)

// countingStore wraps a store, counting loads and optionally blocking them
// until release is closed.
type countingStore struct {
	inner   ParameterStore
	calls   atomic.Int32
	release chan struct{}
	err     error
}

func (s *countingStore) Load(ctx context.Context, name string) (string, error) {
	s.calls.Add(1)
	if s.release != nil {
		<-s.release
	}
	if s.err != nil {
		return "", s.err
	}
	return s.inner.Load(ctx, name)
}

func env(values map[string]string) LookupFunc {
	return func(name string) (string, bool) {
		v, ok := values[name]
		return v, ok
	}
}

func TestResolverGet(t *testing.T) {
	ctx := context.Background()

	t.Run("environment wins over the store", func(t *testing.T) {
		store := &countingStore{inner: memory.New(map[string]string{"token_param": "from-store"})}
		r := NewResolver(store, WithLookup(env(map[string]string{"IDP_API_AUTH_TOKEN": "from-env"})))

		v, err := r.Get(ctx, Key{Name: "IDP_API_AUTH_TOKEN", Param: "token_param"})
		require.NoError(t, err)
		assert.Equal(t, "from-env", v)
		assert.Zero(t, store.calls.Load())
	})

	t.Run("empty environment value falls through to the store", func(t *testing.T) {
		store := &countingStore{inner: memory.New(map[string]string{"token_param": "from-store"})}
		r := NewResolver(store, WithLookup(env(map[string]string{"IDP_API_AUTH_TOKEN": ""})))

		v, err := r.Get(ctx, Key{Name: "IDP_API_AUTH_TOKEN", Param: "token_param"})
		require.NoError(t, err)
		assert.Equal(t, "from-store", v)
	})

	t.Run("store values are cached after the first load", func(t *testing.T) {
		store := &countingStore{inner: memory.New(map[string]string{"lexisnexis_username": "user"})}
		r := NewResolver(store, WithLookup(env(nil)))

		for range 3 {
			v, err := r.Get(ctx, Setting("lexisnexis_username"))
			require.NoError(t, err)
			assert.Equal(t, "user", v)
		}
		assert.Equal(t, int32(1), store.calls.Load())
	})

	t.Run("missing everywhere is misconfigured", func(t *testing.T) {
		r := NewResolver(memory.New(nil), WithLookup(env(nil)))

		_, err := r.Get(ctx, Key{Name: proofing.TokenSetting, Param: "resolution_proof_result_lambda_token"})
		var misconfigured *proofing.MisconfiguredError
		require.ErrorAs(t, err, &misconfigured)
		assert.Equal(t, "IDP_API_AUTH_TOKEN is not configured", err.Error())
	})

	t.Run("empty store value is misconfigured", func(t *testing.T) {
		r := NewResolver(memory.New(map[string]string{"aamva_public_key": ""}), WithLookup(env(nil)))
		_, err := r.Get(ctx, Setting("aamva_public_key"))
		assert.Equal(t, proofing.CategoryMisconfigured, proofing.GetCategory(err))
	})

	t.Run("nil store consults only the environment", func(t *testing.T) {
		r := NewResolver(nil, WithLookup(env(nil)))
		_, err := r.Get(ctx, Setting("anything"))
		assert.Equal(t, proofing.CategoryMisconfigured, proofing.GetCategory(err))
	})

	t.Run("store failures are not cached", func(t *testing.T) {
		unavailable := &countingStore{inner: memory.New(nil), err: sentinel.ErrUnavailable}
		r := NewResolver(unavailable, WithLookup(env(nil)))

		_, err := r.Get(ctx, Setting("acuant_url"))
		assert.ErrorIs(t, err, sentinel.ErrUnavailable)
		_, err = r.Get(ctx, Setting("acuant_url"))
		assert.ErrorIs(t, err, sentinel.ErrUnavailable)
		assert.Equal(t, int32(2), unavailable.calls.Load())
	})

	t.Run("cancelled caller stops waiting", func(t *testing.T) {
		store := &countingStore{inner: memory.New(map[string]string{"slow": "v"}), release: make(chan struct{})}
		defer close(store.release)
		r := NewResolver(store, WithLookup(env(nil)))

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := r.Get(cctx, Setting("slow"))
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestResolverSingleFlight(t *testing.T) {
	store := &countingStore{
		inner:   memory.New(map[string]string{"lexisnexis_password": "secret"}),
		release: make(chan struct{}),
	}
	r := NewResolver(store, WithLookup(env(nil)))

	const callers = 16
	var wg sync.WaitGroup
	results := make([]string, callers)
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = r.Get(context.Background(), Setting("lexisnexis_password"))
		}()
	}

	// Hold the load open until it has started; late callers hit the cache.
	require.Eventually(t, func() bool { return store.calls.Load() >= 1 }, timeout, tick)
	close(store.release)
	wg.Wait()

	for i := range callers {
		require.NoError(t, errs[i])
		assert.Equal(t, "secret", results[i])
	}
	assert.Equal(t, int32(1), store.calls.Load())
}

func TestResolve(t *testing.T) {
	r := NewResolver(memory.New(map[string]string{
		"lexisnexis_account_id": "acct",
		"lexisnexis_username":   "user",
	}), WithLookup(env(map[string]string{"lexisnexis_base_url": "https://ln.example.com"})))

	settings, err := r.Resolve(context.Background(),
		Setting("lexisnexis_account_id"),
		Setting("lexisnexis_username"),
		Setting("lexisnexis_base_url"),
	)
	require.NoError(t, err)
	assert.Equal(t, "acct", settings.Get("lexisnexis_account_id"))
	assert.Equal(t, "https://ln.example.com", settings.Get("lexisnexis_base_url"))
	assert.Equal(t, []string{"lexisnexis_account_id", "lexisnexis_base_url", "lexisnexis_username"}, settings.Names())

	_, err = r.Resolve(context.Background(), Setting("lexisnexis_account_id"), Setting("lexisnexis_password"))
	var misconfigured *proofing.MisconfiguredError
	require.ErrorAs(t, err, &misconfigured)
	assert.Equal(t, "lexisnexis_password", misconfigured.Setting)
}
