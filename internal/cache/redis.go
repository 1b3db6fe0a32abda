package cache

import (
	"context"
	"time"

	"smartlocations_backend/platform/logger"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "search:"

// Redis is the optional shared cache used when REDIS_URL is configured, so
// that several API instances can share search results. Expiry is handled
// server-side, so Sweep is a no-op. Every Redis error degrades silently to
// a miss or a dropped write.
type Redis struct {
	client  *redis.Client
	timeout time.Duration
	log     *logger.Logger
}

// NewRedis creates a Redis-backed cache from a parsed redis URL.
func NewRedis(client *redis.Client, log *logger.Logger) *Redis {
	return &Redis{
		client:  client,
		timeout: 2 * time.Second,
		log:     log,
	}
}

// Get implements Store.
func (r *Redis) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	payload, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		if r.log != nil {
			r.log.CacheFault("get", err)
		}
		return nil, false
	}

	return payload, true
}

// Put implements Store.
func (r *Redis) Put(key string, payload []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.client.Set(ctx, redisKeyPrefix+key, payload, ttl).Err(); err != nil && r.log != nil {
		r.log.CacheFault("put", err)
	}
}

// Sweep implements Store. Redis expires keys server-side.
func (r *Redis) Sweep() {}
