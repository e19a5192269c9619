package cache

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/riskibarqy/rift-scout/internal/platform/logging"
)

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	// OpTimeout bounds each cache round trip so a slow Redis never stalls a request.
	OpTimeout time.Duration
}

// RedisStore is the shared cache backend for multi-instance deployments.
// Redis errors degrade to misses and dropped writes.
type RedisStore struct {
	client    redis.Cmdable
	prefix    string
	opTimeout time.Duration
	logger    *logging.Logger
}

func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 2 * time.Second,
	})
}

func NewRedisStore(client redis.Cmdable, cfg RedisConfig, logger *logging.Logger) *RedisStore {
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.OpTimeout
	if timeout <= 0 {
		timeout = 250 * time.Millisecond
	}
	return &RedisStore{
		client:    client,
		prefix:    cfg.KeyPrefix,
		opTimeout: timeout,
		logger:    logger.Named("redis_cache"),
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		s.logger.WarnContext(ctx, "redis cache get failed", "key", key, "error", err)
		return nil, false
	}
	return raw, true
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if err := s.client.Set(ctx, s.prefix+key, value, ttl).Err(); err != nil {
		s.logger.WarnContext(ctx, "redis cache set failed", "key", key, "error", err)
	}
}

// Ping reports whether Redis is reachable. Used at startup and by the health check.
func (s *RedisStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()
	return s.client.Ping(ctx).Err()
}
