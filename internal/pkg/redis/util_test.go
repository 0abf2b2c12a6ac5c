package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	Rdb = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = Rdb.Close()
		mr.Close()
	})
	return mr
}

func TestGetValue_Missing(t *testing.T) {
	setupTestRedis(t)
	v, err := GetValue(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestSetWithMidnightExpiration(t *testing.T) {
	mr := setupTestRedis(t)
	ctx := context.Background()
	now := time.Date(2024, 1, 5, 23, 0, 0, 0, time.UTC)

	require.NoError(t, SetWithMidnightExpiration(ctx, "k", "v", now))
	assert.Equal(t, time.Hour, mr.TTL("k"))

	v, err := GetValue(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

func TestUntilMidnight(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	// 2024-01-06 07:30 +08:00 = 2024-01-05 23:30 UTC
	assert.Equal(t, 30*time.Minute, UntilMidnight(time.Date(2024, 1, 6, 7, 30, 0, 0, loc)))
	assert.Equal(t, 24*time.Hour, UntilMidnight(time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)))
}

func TestIncr(t *testing.T) {
	setupTestRedis(t)
	ctx := context.Background()
	n, err := Incr(ctx, "ver")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = Incr(ctx, "ver")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestSetAndRename(t *testing.T) {
	setupTestRedis(t)
	ctx := context.Background()

	ok, err := Rename(ctx, "dirty", "dirty:processing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, AddToSet(ctx, "dirty", "tiktok_posts", "metric_snapshots", "tiktok_posts"))
	ok, err = Rename(ctx, "dirty", "dirty:processing")
	require.NoError(t, err)
	assert.True(t, ok)

	members, err := GetSet(ctx, "dirty:processing")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"tiktok_posts", "metric_snapshots"}, members)

	require.NoError(t, DeleteKey(ctx, "dirty:processing"))
	members, err = GetSet(ctx, "dirty:processing")
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestTryLock(t *testing.T) {
	setupTestRedis(t)
	ctx := context.Background()

	ok, err := TryLock(ctx, "lock", "a", time.Minute, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = TryLock(ctx, "lock", "b", time.Minute, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	UnLock(ctx, "lock", "b")
	v, _ := GetValue(ctx, "lock")
	assert.Equal(t, "a", v)

	UnLock(ctx, "lock", "a")
	v, _ = GetValue(ctx, "lock")
	assert.Empty(t, v)
}
