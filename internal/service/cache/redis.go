package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	errx "github.com/Chative-core-poc-v1/intent-gateway/internal/core/error"
	logx "github.com/Chative-core-poc-v1/intent-gateway/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "service-cache:"

// RedisConfig controls how entries are laid out in Redis.
type RedisConfig struct {
	KeyPrefix string        `envconfig:"CACHE_KEY_PREFIX" default:"service-cache:"`
	Retention time.Duration `envconfig:"CACHE_RETENTION" default:"168h"`
}

// RedisStore keeps entries as JSON strings. Retention is how long Redis keeps a
// key around after its last write, well beyond the freshness TTL, so stale
// entries remain available for fallback. Zero retention keeps keys forever.
type RedisStore struct {
	rdb       redis.Cmdable
	prefix    string
	retention time.Duration
}

func NewRedisStore(rdb redis.Cmdable, cfg RedisConfig) *RedisStore {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisStore{rdb: rdb, prefix: prefix, retention: cfg.Retention}
}

func (r *RedisStore) redisKey(key string) string {
	return r.prefix + key
}

func (r *RedisStore) Get(ctx context.Context, key string) (*Entry, error) {
	rk := r.redisKey(key)
	b, err := r.rdb.Get(ctx, rk).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		logx.Error().Err(err).Str("key", rk).Msg("failed to read cache entry from redis")
		return nil, errx.WrapRedis(err)
	}

	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		logx.Error().Err(err).Str("key", rk).Msg("failed to unmarshal cache entry")
		return nil, fmt.Errorf("unmarshal cache entry: %w", err)
	}
	return &e, nil
}

func (r *RedisStore) Put(ctx context.Context, entry *Entry) error {
	b, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	rk := r.redisKey(entry.Key)
	if err := r.rdb.Set(ctx, rk, b, r.retention).Err(); err != nil {
		logx.Error().Err(err).Str("key", rk).Msg("failed to write cache entry to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
