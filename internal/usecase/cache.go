package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	historyCacheTTL    = 5 * time.Minute
	activeRateCacheKey = "coin_settings:active_rate"
)

func historyCacheKey(walletID uuid.UUID, page, limit int, filter string) string {
	return fmt.Sprintf("transactions:%s:%d:%d:%s", walletID, page, limit, filter)
}

// cache wraps the optional redis client. A nil client turns every call into a miss.
type cache struct {
	client *redis.Client
	logger *logrus.Logger
}

func newCache(client *redis.Client, logger *logrus.Logger) *cache {
	return &cache{client: client, logger: logger}
}

func (c *cache) get(ctx context.Context, key string, dst interface{}) bool {
	if c.client == nil {
		return false
	}
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.WithError(err).WithField("cache_key", key).Warn("Failed to read cache")
		}
		return false
	}
	if err := json.Unmarshal([]byte(val), dst); err != nil {
		return false
	}
	c.logger.WithField("cache_key", key).Debug("Cache hit")
	return true
}

func (c *cache) set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if c.client == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("cache_key", key).Warn("Failed to write cache")
	}
}

func (c *cache) del(ctx context.Context, keys ...string) {
	if c.client == nil || len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.WithError(err).WithField("cache_keys", keys).Warn("Failed to invalidate cache")
	}
}

// invalidateHistory drops every cached history page of a wallet.
func (c *cache) invalidateHistory(ctx context.Context, walletID uuid.UUID) {
	if c.client == nil {
		return
	}
	pattern := fmt.Sprintf("transactions:%s:*", walletID)
	keys, err := c.client.Keys(ctx, pattern).Result()
	if err != nil {
		c.logger.WithError(err).Warn("Failed to fetch transaction cache keys for invalidation")
		return
	}
	c.del(ctx, keys...)
}
