package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fleet-routing-service/internal/ports"
)

// RedisRouteCache stores provider route estimates in redis with a TTL, so
// repeated optimizations of an unchanged vehicle-day reuse the external
// provider's answer instead of a fresh API call.
type RedisRouteCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRouteCache(client *redis.Client, ttl time.Duration) *RedisRouteCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &RedisRouteCache{client: client, ttl: ttl}
}

func (c *RedisRouteCache) Get(ctx context.Context, key string) (ports.RouteEstimate, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ports.RouteEstimate{}, false, nil
	}
	if err != nil {
		return ports.RouteEstimate{}, false, fmt.Errorf("route cache get %q: %w", key, err)
	}

	var est ports.RouteEstimate
	if err := json.Unmarshal(raw, &est); err != nil {
		return ports.RouteEstimate{}, false, fmt.Errorf("route cache decode %q: %w", key, err)
	}
	return est, true, nil
}

func (c *RedisRouteCache) Put(ctx context.Context, key string, est ports.RouteEstimate) error {
	raw, err := json.Marshal(est)
	if err != nil {
		return fmt.Errorf("route cache encode %q: %w", key, err)
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("route cache put %q: %w", key, err)
	}
	return nil
}
