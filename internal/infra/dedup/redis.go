// Package dedup provides the Redis-backed webhook dedup registry used
// when several bridge instances share one storefront. Registrations
// live as SETNX keys with the window as TTL, so expiry needs no
// sweeping and instances agree on what is pending.
package dedup

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"commerce-bridge/internal/usecase/webhook"
)

const opTimeout = 500 * time.Millisecond

// RedisRegistry implements webhook.Registry on a shared Redis
// instance. On Redis errors it fails open: a lost registration costs
// one duplicate notification, which the storefront tolerates, whereas
// failing closed would silently drop updates.
type RedisRegistry struct {
	client *redis.Client
	window time.Duration
}

// NewRedisRegistry creates a registry with the given dedup window. A
// non-positive window falls back to webhook.DefaultDedupWindow.
func NewRedisRegistry(client *redis.Client, window time.Duration) *RedisRegistry {
	if window <= 0 {
		window = webhook.DefaultDedupWindow
	}
	return &RedisRegistry{client: client, window: window}
}

// IsScheduled implements webhook.Registry.
func (r *RedisRegistry) IsScheduled(productIDs []int64, op webhook.Operation) bool {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	n, err := r.client.Exists(ctx, webhook.DedupKey(productIDs, op)).Result()
	if err != nil {
		slog.Warn("dedup registry read failed, treating as not scheduled",
			slog.Any("error", err))
		return false
	}
	return n > 0
}

// MarkScheduled implements webhook.Registry.
func (r *RedisRegistry) MarkScheduled(productIDs []int64, op webhook.Operation) string {
	key := webhook.DedupKey(productIDs, op)

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := r.client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339Nano), r.window).Err(); err != nil {
		slog.Warn("dedup registry write failed",
			slog.String("key", key),
			slog.Any("error", err))
	}
	return key
}

// Release implements webhook.Registry.
func (r *RedisRegistry) Release(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := r.client.Del(ctx, key).Err(); err != nil {
		// The TTL re-arms the key shortly anyway.
		slog.Warn("dedup registry release failed",
			slog.String("key", key),
			slog.Any("error", err))
	}
}
