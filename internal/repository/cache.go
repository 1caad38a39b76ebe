package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pawmart/pawmart-orders-service/internal/config"
	"github.com/pawmart/pawmart-orders-service/internal/models"
)

const (
	orderKeyPrefix  = "order:"
	defaultCacheTTL = 5 * time.Minute
)

// RedisOrderCache implements OrderCache using Redis. Cache failures are
// logged and swallowed by callers; the database stays authoritative.
type RedisOrderCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisOrderCache creates a new Redis-based order cache.
func NewRedisOrderCache(cfg config.RedisConfig, logger *zap.Logger) *RedisOrderCache {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultCacheTTL
	}

	return &RedisOrderCache{
		client: client,
		ttl:    ttl,
		logger: logger.Named("order-cache"),
	}
}

// Get retrieves an order from cache. A miss returns (nil, nil).
func (c *RedisOrderCache) Get(ctx context.Context, id string) (*models.Order, error) {
	data, err := c.client.Get(ctx, orderKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		c.logger.Error("Cache get error", zap.String("order_id", id), zap.Error(err))
		return nil, err
	}

	var order models.Order
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, err
	}

	c.logger.Debug("Cache hit", zap.String("order_id", id))
	return &order, nil
}

// Set stores an order in cache with the configured TTL.
func (c *RedisOrderCache) Set(ctx context.Context, order *models.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return err
	}

	if err := c.client.Set(ctx, orderKeyPrefix+order.ID, data, c.ttl).Err(); err != nil {
		c.logger.Error("Cache set error", zap.String("order_id", order.ID), zap.Error(err))
		return err
	}

	return nil
}

// Delete removes an order from cache.
func (c *RedisOrderCache) Delete(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, orderKeyPrefix+id).Err(); err != nil {
		c.logger.Error("Cache delete error", zap.String("order_id", id), zap.Error(err))
		return err
	}
	return nil
}
