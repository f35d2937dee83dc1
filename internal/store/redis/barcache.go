// Package redis caches fetched bar series across runs so a re-run on the
// same day does not hammer the provider. Keys are (symbol, date) and
// writes are idempotent: recomputing and overwriting with the same value
// is always safe.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"stock-screenerv1/internal/model"
)

const defaultTTL = 36 * time.Hour

// Config configures the cache connection.
type Config struct {
	Addr     string
	Password string
	TTL      time.Duration
}

// BarCache is a read-through cache of daily bar series.
type BarCache struct {
	client *goredis.Client
	ttl    time.Duration
}

// New connects to Redis and verifies the connection with a ping.
func New(cfg Config) (*BarCache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connect: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &BarCache{client: client, ttl: ttl}, nil
}

// Client exposes the underlying client for liveness checks.
func (c *BarCache) Client() *goredis.Client { return c.client }

// key builds the cache key for a symbol as of a run date.
func key(symbol, date string) string {
	return "bars:" + symbol + ":" + date
}

// Get returns the cached series for (symbol, date), if present.
func (c *BarCache) Get(ctx context.Context, symbol, date string) (*model.Series, bool) {
	raw, err := c.client.Get(ctx, key(symbol, date)).Bytes()
	if err != nil {
		return nil, false // miss or transient error — caller fetches
	}
	var series model.Series
	if err := json.Unmarshal(raw, &series); err != nil {
		return nil, false
	}
	return &series, true
}

// Put stores a series under (symbol, date). Overwrites are idempotent.
func (c *BarCache) Put(ctx context.Context, symbol, date string, series *model.Series) error {
	if err := c.client.Set(ctx, key(symbol, date), series.JSON(), c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key(symbol, date), err)
	}
	return nil
}

// Close releases the connection.
func (c *BarCache) Close() error {
	return c.client.Close()
}
