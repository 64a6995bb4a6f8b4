package knowledge

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	Static
	lookups map[string]int
	err     error
}

func (s *countingSource) Lookup(ctx context.Context, id string) (Entry, error) {
	s.lookups[id]++
	if s.err != nil {
		return nil, s.err
	}
	return s.Static.Lookup(ctx, id)
}

func setupCache(t *testing.T) (*Cache, *countingSource, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	src := &countingSource{
		Static:  Static{"KAT-NO-SPF": {"risk": "medium", "description": "No SPF record found."}},
		lookups: map[string]int{},
	}
	cache, err := NewCache(src, CacheOptions{
		URL: fmt.Sprintf("redis://%s", mr.Addr()),
		TTL: time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache, src, mr
}

func TestCache_ReadThrough(t *testing.T) {
	cache, src, mr := setupCache(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		entry, err := cache.Lookup(ctx, "KAT-NO-SPF")
		require.NoError(t, err)
		assert.Equal(t, "medium", entry["risk"])
	}
	assert.Equal(t, 1, src.lookups["KAT-NO-SPF"])
	assert.True(t, mr.Exists("inventory:knowledge:KAT-NO-SPF"))
	assert.Equal(t, time.Minute, mr.TTL("inventory:knowledge:KAT-NO-SPF"))
}

func TestCache_CachesUnknown(t *testing.T) {
	cache, src, _ := setupCache(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		entry, err := cache.Lookup(ctx, "Hostname")
		require.NoError(t, err)
		assert.Nil(t, entry)
	}
	assert.Equal(t, 1, src.lookups["Hostname"])
}

func TestCache_Expiry(t *testing.T) {
	cache, src, mr := setupCache(t)
	ctx := context.Background()

	_, err := cache.Lookup(ctx, "KAT-NO-SPF")
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)
	_, err = cache.Lookup(ctx, "KAT-NO-SPF")
	require.NoError(t, err)

	assert.Equal(t, 2, src.lookups["KAT-NO-SPF"])
}

func TestCache_Invalidate(t *testing.T) {
	cache, src, _ := setupCache(t)
	ctx := context.Background()

	_, err := cache.Lookup(ctx, "KAT-NO-SPF")
	require.NoError(t, err)
	require.NoError(t, cache.Invalidate(ctx, "KAT-NO-SPF"))
	_, err = cache.Lookup(ctx, "KAT-NO-SPF")
	require.NoError(t, err)

	assert.Equal(t, 2, src.lookups["KAT-NO-SPF"])
}

func TestCache_FallsBackWhenRedisIsDown(t *testing.T) {
	cache, src, mr := setupCache(t)
	mr.Close()

	entry, err := cache.Lookup(context.Background(), "KAT-NO-SPF")
	require.NoError(t, err)
	assert.Equal(t, "medium", entry["risk"])
	assert.Equal(t, 1, src.lookups["KAT-NO-SPF"])
}

func TestCache_SourceError(t *testing.T) {
	cache, src, mr := setupCache(t)
	src.err = errors.New("disk on fire")

	_, err := cache.Lookup(context.Background(), "KAT-NO-SPF")
	assert.ErrorIs(t, err, src.err)
	assert.False(t, mr.Exists("inventory:knowledge:KAT-NO-SPF"))
}

func TestNewCache_Errors(t *testing.T) {
	_, err := NewCache(nil, CacheOptions{})
	assert.Error(t, err)

	_, err = NewCache(Static{}, CacheOptions{URL: "invalid://url"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse Redis URL")

	_, err = NewCache(Static{}, CacheOptions{URL: "redis://localhost:1", ConnectTimeout: 100 * time.Millisecond})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}
