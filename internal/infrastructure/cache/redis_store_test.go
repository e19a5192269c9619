package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/riskibarqy/rift-scout/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRedis backs the Get, Set and Ping commands with a map. Other commands panic.
type memoryRedis struct {
	redis.Cmdable

	mu      sync.Mutex
	values  map[string]string
	ttls    map[string]time.Duration
	failGet error
}

func newMemoryRedis() *memoryRedis {
	return &memoryRedis{values: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (m *memoryRedis) Get(_ context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet != nil {
		return redis.NewStringResult("", m.failGet)
	}
	v, ok := m.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memoryRedis) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = string(value.([]byte))
	m.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (m *memoryRedis) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func TestRedisStore_UnreachableDegradesToMiss(t *testing.T) {
	t.Parallel()

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client, RedisConfig{KeyPrefix: "rift-scout:", OpTimeout: 100 * time.Millisecond}, logging.NewNop())

	store.Set(context.Background(), "history:p1:20", []byte("[]"), time.Minute)
	_, ok := store.Get(context.Background(), "history:p1:20")
	assert.False(t, ok)
	assert.Error(t, store.Ping(context.Background()))
}

func TestRedisStore_ZeroTTLIsNoop(t *testing.T) {
	t.Parallel()

	backend := newMemoryRedis()
	store := NewRedisStore(backend, RedisConfig{}, logging.NewNop())
	store.Set(context.Background(), "k", []byte("v"), 0)

	assert.Empty(t, backend.values)
}

func TestRedisStore_HitMissAndKeyPrefix(t *testing.T) {
	t.Parallel()

	backend := newMemoryRedis()
	store := NewRedisStore(backend, RedisConfig{KeyPrefix: "rift-scout:"}, logging.NewNop())
	ctx := context.Background()

	_, ok := store.Get(ctx, "history:p1:20")
	assert.False(t, ok)

	store.Set(ctx, "history:p1:20", []byte(`[{"matchId":"NA1_1"}]`), 2*time.Minute)

	raw, ok := store.Get(ctx, "history:p1:20")
	require.True(t, ok)
	assert.JSONEq(t, `[{"matchId":"NA1_1"}]`, string(raw))

	assert.Contains(t, backend.values, "rift-scout:history:p1:20")
	assert.NotContains(t, backend.values, "history:p1:20")
	assert.Equal(t, 2*time.Minute, backend.ttls["rift-scout:history:p1:20"])
	assert.NoError(t, store.Ping(ctx))
}

func TestRedisStore_CommandErrorIsMiss(t *testing.T) {
	t.Parallel()

	backend := newMemoryRedis()
	backend.values["k"] = "v"
	backend.failGet = errors.New("READONLY You can't write against a read only replica")

	store := NewRedisStore(backend, RedisConfig{}, logging.NewNop())
	_, ok := store.Get(context.Background(), "k")
	assert.False(t, ok)
}
