package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appinv "github.com/stockledger/backend/internal/application/inventory"
)

// RedisStockLevelCache is a read-through cache for stock level lookups backed
// by Redis. Cache failures are logged and reported as misses so a Redis
// outage degrades to database reads, never to query errors.
type RedisStockLevelCache struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

// NewRedisStockLevelCache creates a RedisStockLevelCache.
func NewRedisStockLevelCache(client *redis.Client, logger *zap.Logger, ttl time.Duration) *RedisStockLevelCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisStockLevelCache{
		client: client,
		logger: logger,
		ttl:    ttl,
	}
}

// key builds the cache key for one (company, item, warehouse, bin) balance.
func (c *RedisStockLevelCache) key(companyID, itemID, warehouseID uuid.UUID, bin string) string {
	return fmt.Sprintf("stocklevel:%s:%s:%s:%s", companyID, itemID, warehouseID, bin)
}

// Get returns the cached level for a key, or nil on a miss.
func (c *RedisStockLevelCache) Get(ctx context.Context, companyID, itemID, warehouseID uuid.UUID, bin string) (*appinv.StockLevelResponse, error) {
	raw, err := c.client.Get(ctx, c.key(companyID, itemID, warehouseID, bin)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("stock level cache read failed", zap.Error(err))
		}
		return nil, nil
	}

	var resp appinv.StockLevelResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		c.logger.Warn("stock level cache entry corrupted", zap.Error(err))
		return nil, nil
	}
	return &resp, nil
}

// Set stores the level for a key with the configured TTL.
func (c *RedisStockLevelCache) Set(ctx context.Context, companyID uuid.UUID, level *appinv.StockLevelResponse) error {
	raw, err := json.Marshal(level)
	if err != nil {
		return err
	}
	key := c.key(companyID, level.ItemID, level.WarehouseID, level.Bin)
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("stock level cache write failed", zap.Error(err))
	}
	return nil
}

// Invalidate drops the cached entry for a key.
func (c *RedisStockLevelCache) Invalidate(ctx context.Context, companyID, itemID, warehouseID uuid.UUID, bin string) error {
	if err := c.client.Del(ctx, c.key(companyID, itemID, warehouseID, bin)).Err(); err != nil {
		c.logger.Warn("stock level cache invalidation failed", zap.Error(err))
	}
	return nil
}

var _ appinv.LevelCache = (*RedisStockLevelCache)(nil)
