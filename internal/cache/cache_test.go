// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Cache {
	t.Helper()

	mr := miniredis.RunT(t)
	rc, err := NewRedisCache(context.Background(), RedisConfig{Addr: mr.Addr(), Prefix: "test:"}, zerolog.Nop())
	require.NoError(t, err)

	bc, err := OpenBadger("")
	require.NoError(t, err)

	caches := map[string]Cache{
		"memory": NewMemoryCache(0),
		"redis":  rc,
		"badger": bc,
	}
	t.Cleanup(func() {
		for _, c := range caches {
			_ = c.Close()
		}
	})
	return caches
}

func TestCache_Contract(t *testing.T) {
	ctx := context.Background()
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := c.Get(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, c.Set(ctx, "k", []byte("v1"), time.Minute))
			got, ok, err := c.Get(ctx, "k")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, []byte("v1"), got)

			require.NoError(t, c.Delete(ctx, "k"))
			_, ok, err = c.Get(ctx, "k")
			require.NoError(t, err)
			assert.False(t, ok)
			require.NoError(t, c.Delete(ctx, "k"))

			assert.NoError(t, c.Ping(ctx))
			stats := c.Stats()
			assert.Equal(t, int64(1), stats.Hits)
			assert.Equal(t, int64(2), stats.Misses)
			assert.Equal(t, int64(1), stats.Sets)
		})
	}
}

func TestCache_JSONHelpers(t *testing.T) {
	type company struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	ctx := context.Background()
	c := NewMemoryCache(0)
	defer func() { _ = c.Close() }()

	want := []company{{ID: 1, Name: "Amazon"}, {ID: 2, Name: "Uber"}}
	require.NoError(t, SetJSON(ctx, c, "companies", want, time.Minute))

	got, ok, err := GetJSON[[]company](ctx, c, "companies")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(10 * time.Millisecond)
	defer func() { _ = c.Close() }()

	require.NoError(t, c.Set(ctx, "short", []byte("x"), 20*time.Millisecond))
	require.NoError(t, c.Set(ctx, "forever", []byte("y"), 0))

	assert.Eventually(t, func() bool {
		_, ok, _ := c.Get(ctx, "short")
		return !ok
	}, time.Second, 10*time.Millisecond)

	_, ok, _ := c.Get(ctx, "forever")
	assert.True(t, ok)
	assert.Eventually(t, func() bool { return c.Stats().Evictions >= 1 }, time.Second, 10*time.Millisecond)
}

func TestRedisCache_TTL(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	c, err := NewRedisCache(ctx, RedisConfig{Addr: mr.Addr(), Prefix: "jj:"}, zerolog.Nop())
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	require.NoError(t, c.Set(ctx, "session", []byte("data"), time.Minute))
	assert.True(t, mr.Exists("jj:session"))

	mr.FastForward(2 * time.Minute)
	_, ok, err := c.Get(ctx, "session")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisCache(context.Background(), RedisConfig{Addr: addr}, zerolog.Nop())
	assert.Error(t, err)
}
