package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/storefront-poc-v1/server/internal/cart/model"
	errx "github.com/storefront-poc-v1/server/internal/core/error"
	logx "github.com/storefront-poc-v1/server/pkg/logger"
)

// RedisStorage keeps one shopper's cart under a single string key.
type RedisStorage struct {
	rdb       redis.Cmdable
	sessionID string
	ttl       time.Duration
}

func NewRedisStorage(rdb redis.Cmdable, sessionID string, ttl time.Duration) *RedisStorage {
	return &RedisStorage{rdb: rdb, sessionID: sessionID, ttl: ttl}
}

// CartKey is the Redis key a session's cart lives under.
func CartKey(sessionID string) string {
	return fmt.Sprintf("cart:%s:items", sessionID)
}

func (r *RedisStorage) Read(ctx context.Context) ([]byte, error) {
	key := CartKey(r.sessionID)

	b, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errx.WrapRedis(err)
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load cart from redis")
		return nil, errx.WrapRedis(err)
	}
	return b, nil
}

// Write replaces the key and refreshes its TTL in one SET, so a reload never
// observes a cart without expiry.
func (r *RedisStorage) Write(ctx context.Context, data []byte) error {
	key := CartKey(r.sessionID)

	ttl := r.ttl
	if ttl < 0 {
		ttl = 0
	}
	if err := r.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to save cart to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ model.StateStorage = (*RedisStorage)(nil)
