package usecase

import (
	"context"
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
)

// CacheStore is the best-effort key/value store shared by concurrent workers.
// A miss is never an error and writes are idempotent upserts.
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

type noopCache struct{}

func (noopCache) Get(context.Context, string) ([]byte, bool)         { return nil, false }
func (noopCache) Set(context.Context, string, []byte, time.Duration) {}

func historyCacheKey(playerID string, maxGames int) string {
	return fmt.Sprintf("history:%s:%d", playerID, maxGames)
}

func performanceCacheKey(playerID string, championID, maxGames int) string {
	return fmt.Sprintf("perf:%s:%d:%d", playerID, championID, maxGames)
}

func getCached[T any](ctx context.Context, store CacheStore, key string) (T, bool) {
	var out T
	raw, ok := store.Get(ctx, key)
	if !ok || len(raw) == 0 {
		return out, false
	}
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return out, false
	}
	return out, true
}

func putCached[T any](ctx context.Context, store CacheStore, key string, value T, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	raw, err := sonic.Marshal(value)
	if err != nil {
		return
	}
	store.Set(ctx, key, raw, ttl)
}
