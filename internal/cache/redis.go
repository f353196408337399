// Package cache holds the read-through cache used by the stock service.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/guttosm/stock-service/internal/domain/models"
)

const keyPrefix = "ticker_prices:"

// PriceCache stores the ticker prices computed for a window, keyed by minutes.
// Get returns ok=false on a miss.
type PriceCache interface {
	Get(ctx context.Context, minutes int) (prices models.TickerPrices, ok bool, err error)
	Set(ctx context.Context, minutes int, prices models.TickerPrices) error
}

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisPriceCache is a PriceCache backed by Redis, values stored as JSON.
type RedisPriceCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient builds a go-redis client with the pool settings used by the service.
func NewRedisClient(opts Options) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
}

func NewRedisPriceCache(client *redis.Client, ttl time.Duration) *RedisPriceCache {
	return &RedisPriceCache{client: client, ttl: ttl}
}

func key(minutes int) string {
	return fmt.Sprintf("%s%d", keyPrefix, minutes)
}

func (c *RedisPriceCache) Get(ctx context.Context, minutes int) (models.TickerPrices, bool, error) {
	raw, err := c.client.Get(ctx, key(minutes)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var prices models.TickerPrices
	if err := json.Unmarshal(raw, &prices); err != nil {
		return nil, false, fmt.Errorf("decode cached prices: %w", err)
	}
	return prices, true, nil
}

func (c *RedisPriceCache) Set(ctx context.Context, minutes int, prices models.TickerPrices) error {
	raw, err := json.Marshal(prices)
	if err != nil {
		return fmt.Errorf("encode prices: %w", err)
	}
	if err := c.client.Set(ctx, key(minutes), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Ping tests the Redis connection.
func (c *RedisPriceCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (c *RedisPriceCache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
