package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/catalogo/internal/domain"
)

const DefaultStockTTL = 30 * time.Second

// missing marks a (variant, warehouse) pair without a stock row.
const missing = "-"

// StockCache is a read-through cache in front of a domain.StockRepo. A nil
// client turns it into a pass-through.
type StockCache struct {
	next   domain.StockRepo
	client *redis.Client
	ttl    time.Duration
}

func NewStockCache(next domain.StockRepo, client *redis.Client, ttl time.Duration) *StockCache {
	if ttl <= 0 {
		ttl = DefaultStockTTL
	}
	return &StockCache{next: next, client: client, ttl: ttl}
}

// NewClientFromEnv builds a client from REDIS_ADDR and REDIS_PASS. It returns
// nil when REDIS_ADDR is unset.
func NewClientFromEnv() *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASS"),
		DB:       0,
	})
}

// TTLFromEnv parses STOCK_CACHE_TTL as a Go duration.
func TTLFromEnv() time.Duration {
	raw := os.Getenv("STOCK_CACHE_TTL")
	if raw == "" {
		return DefaultStockTTL
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Warn().Err(err).Str("value", raw).Msg("invalid STOCK_CACHE_TTL, using default")
		return DefaultStockTTL
	}
	return d
}

func stockKey(variantID uuid.UUID, warehouseID string) string {
	return fmt.Sprintf("stock:%s:%s", variantID, warehouseID)
}

func (c *StockCache) Quantity(ctx context.Context, variantID uuid.UUID, warehouseID string) (int, error) {
	if c.client == nil {
		return c.next.Quantity(ctx, variantID, warehouseID)
	}
	key := stockKey(variantID, warehouseID)
	val, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		if val == missing {
			return 0, domain.ErrNotFound
		}
		if n, convErr := strconv.Atoi(val); convErr == nil {
			return n, nil
		}
	case !errors.Is(err, redis.Nil):
		log.Warn().Err(err).Str("key", key).Msg("stock cache read failed")
	}

	qty, err := c.next.Quantity(ctx, variantID, warehouseID)
	switch {
	case err == nil:
		c.store(ctx, key, strconv.Itoa(qty))
	case errors.Is(err, domain.ErrNotFound):
		c.store(ctx, key, missing)
	}
	return qty, err
}

func (c *StockCache) store(ctx context.Context, key, val string) {
	if err := c.client.Set(ctx, key, val, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("stock cache write failed")
	}
}

// Invalidate drops the cached quantity, typically after a stock write.
func (c *StockCache) Invalidate(ctx context.Context, variantID uuid.UUID, warehouseID string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, stockKey(variantID, warehouseID)).Err()
}
