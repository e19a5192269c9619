package cache

import (
	"context"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/rift-scout/internal/domain/account"
)

// ByteStore is the minimal cache contract shared by the in-memory and Redis stores.
type ByteStore interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// CachedDirectory memoizes successful account lookups by case-insensitive name.
// Misses and errors always reach the wrapped directory.
type CachedDirectory struct {
	next  account.Directory
	store ByteStore
	ttl   time.Duration
}

var _ account.Directory = (*CachedDirectory)(nil)

func NewCachedDirectory(next account.Directory, store ByteStore, ttl time.Duration) *CachedDirectory {
	return &CachedDirectory{next: next, store: store, ttl: ttl}
}

func (d *CachedDirectory) FindByName(ctx context.Context, displayName string) (account.Handle, bool, error) {
	key := "account:" + account.LookupKey(displayName)
	if raw, ok := d.store.Get(ctx, key); ok {
		var handle account.Handle
		if err := sonic.Unmarshal(raw, &handle); err == nil && handle.PlayerID != "" {
			return handle, true, nil
		}
	}

	handle, found, err := d.next.FindByName(ctx, displayName)
	if err != nil || !found {
		return handle, found, err
	}
	if d.ttl > 0 {
		if raw, err := sonic.Marshal(handle); err == nil {
			d.store.Set(ctx, key, raw, d.ttl)
		}
	}
	return handle, true, nil
}
