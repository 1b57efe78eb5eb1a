package trigger

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLastRunStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryLastRunStore()

	_, ok, err := store.LastRun(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, ok)

	now := time.Now()
	require.NoError(t, store.SetLastRun(ctx, "t1", now))

	got, ok, err := store.LastRun(ctx, "t1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, now, got)
}

func TestRedisLastRunStore(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	ctx := context.Background()
	store := NewRedisLastRunStore(client, "test:lastrun:")

	_, ok, err := store.LastRun(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, ok)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.SetLastRun(ctx, "t1", now))

	got, ok, err := store.LastRun(ctx, "t1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Equal(now))

	// Other trigger ids are independent
	_, ok, err = store.LastRun(ctx, "t2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisLastRunStoreCorruptValue(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	store := NewRedisLastRunStore(client, "test:lastrun:")
	require.NoError(t, server.Set("test:lastrun:t1", "not a timestamp"))

	_, _, err := store.LastRun(context.Background(), "t1")
	assert.Error(t, err)
}
