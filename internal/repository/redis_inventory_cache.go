package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Tekthree/ticket-shameless-sub001/pkg/telemetry"
)

const inventoryCachePrefix = "tickets:remaining:"

// RedisInventoryCache implements InventoryCache using Redis with a short TTL
type RedisInventoryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisInventoryCache creates a new RedisInventoryCache
func NewRedisInventoryCache(client *redis.Client, ttl time.Duration) *RedisInventoryCache {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &RedisInventoryCache{client: client, ttl: ttl}
}

type cachedCounter struct {
	Remaining int  `json:"remaining"`
	SoldOut   bool `json:"sold_out"`
}

// GetRemaining returns the cached counter, or a miss
func (c *RedisInventoryCache) GetRemaining(ctx context.Context, eventID string) (int, bool, bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.inventory.get_remaining")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	data, err := c.client.Get(ctx, inventoryCachePrefix+eventID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			span.SetAttributes(attribute.Bool("cache_hit", false))
			span.SetStatus(codes.Ok, "")
			return 0, false, false, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, false, false, fmt.Errorf("failed to read inventory cache: %w", err)
	}

	var counter cachedCounter
	if err := json.Unmarshal([]byte(data), &counter); err != nil {
		// Corrupt entry, treat as a miss
		span.RecordError(err)
		span.SetStatus(codes.Ok, "")
		return 0, false, false, nil
	}

	span.SetAttributes(attribute.Bool("cache_hit", true))
	span.SetStatus(codes.Ok, "")
	return counter.Remaining, counter.SoldOut, true, nil
}

// SetRemaining caches the counter
func (c *RedisInventoryCache) SetRemaining(ctx context.Context, eventID string, remaining int, soldOut bool) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.inventory.set_remaining")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.Int("remaining", remaining),
	)

	data, err := json.Marshal(cachedCounter{Remaining: remaining, SoldOut: soldOut})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to marshal inventory cache entry: %w", err)
	}

	if err := c.client.Set(ctx, inventoryCachePrefix+eventID, string(data), c.ttl).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to write inventory cache: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Invalidate drops the cached counter after a write
func (c *RedisInventoryCache) Invalidate(ctx context.Context, eventID string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.inventory.invalidate")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	if err := c.client.Del(ctx, inventoryCachePrefix+eventID).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to invalidate inventory cache: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Ensure RedisInventoryCache implements InventoryCache
var _ InventoryCache = (*RedisInventoryCache)(nil)
