package lock

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedis_LockAndRelease(t *testing.T) {
	client := getRedisClient(t)
	ctx := context.Background()
	client.Del(ctx, "lock:test-session")

	l := NewRedis(client, 5*time.Second)

	unlock, err := l.Lock(ctx, "test-session")
	require.NoError(t, err)

	exists, err := client.Exists(ctx, "lock:test-session").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)

	unlock()

	exists, err = client.Exists(ctx, "lock:test-session").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), exists)
}

func TestRedis_ContendedLockTimesOut(t *testing.T) {
	client := getRedisClient(t)
	ctx := context.Background()
	client.Del(ctx, "lock:test-contended")

	l := NewRedis(client, 5*time.Second)

	unlock, err := l.Lock(ctx, "test-contended")
	require.NoError(t, err)
	defer unlock()

	waitCtx, cancel := context.WithTimeout(ctx, 150*time.Millisecond)
	defer cancel()
	_, err = l.Lock(waitCtx, "test-contended")
	assert.ErrorIs(t, err, ErrNotAcquired)
}

func TestRedis_ReleaseKeepsForeignToken(t *testing.T) {
	client := getRedisClient(t)
	ctx := context.Background()
	client.Del(ctx, "lock:test-foreign")

	l := NewRedis(client, 5*time.Second)
	unlock, err := l.Lock(ctx, "test-foreign")
	require.NoError(t, err)

	// Simulate our lease expiring and another holder taking over.
	require.NoError(t, client.Set(ctx, "lock:test-foreign", "someone-else", 5*time.Second).Err())
	unlock()

	val, err := client.Get(ctx, "lock:test-foreign").Result()
	require.NoError(t, err)
	assert.Equal(t, "someone-else", val)
	client.Del(ctx, "lock:test-foreign")
}
