package metacache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb, ttl), mr
}

func TestRedisStore_RoundTrip(t *testing.T) {
	store, _ := newTestRedisStore(t, time.Minute)
	ctx := context.Background()

	meta := map[string]any{"lesson_title": "Fractions 101", "link": "https://example.com"}
	store.Set(ctx, "c1", meta)

	got, ok := store.Get(ctx, "c1")
	require.True(t, ok)
	assert.Equal(t, meta, got)
}

func TestRedisStore_MissingKey(t *testing.T) {
	store, _ := newTestRedisStore(t, time.Minute)

	_, ok := store.Get(context.Background(), "absent")
	assert.False(t, ok)
}

func TestRedisStore_TTLExpiry(t *testing.T) {
	store, mr := newTestRedisStore(t, time.Minute)
	ctx := context.Background()

	store.Set(ctx, "c1", map[string]any{})
	mr.FastForward(2 * time.Minute)

	_, ok := store.Get(ctx, "c1")
	assert.False(t, ok)
}

func TestRedisStore_MalformedPayloadIsMiss(t *testing.T) {
	store, mr := newTestRedisStore(t, time.Minute)
	require.NoError(t, mr.Set("courseinfo:c1", "{not json"))

	_, ok := store.Get(context.Background(), "c1")
	assert.False(t, ok)
}

func TestRedisStore_ServedThroughCache(t *testing.T) {
	store, _ := newTestRedisStore(t, time.Minute)
	src := &countingSource{}
	c := New(src, store)
	ctx := context.Background()

	_, err := c.FetchCourseInfo(ctx, "c1")
	require.NoError(t, err)
	_, err = c.FetchCourseInfo(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), src.calls.Load())
}
