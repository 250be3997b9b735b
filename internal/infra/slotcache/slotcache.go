package slotcache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

const keyPrefix = "occupied-slots:"

// Cache keeps per-day occupied-slot sets in redis so the booking page
// does not hammer the database. A Cache with no client is a no-op, which
// keeps redis optional.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(redisURL string) *Cache {
	c := &Cache{ttl: time.Minute}

	if redisURL == "" {
		return c
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Warn().Err(err).Msg("invalid REDIS_URL, slot cache disabled")
		return c
	}

	c.client = redis.NewClient(opt)
	return c
}

// Get returns the cached slot set for a YYYY-MM-DD day key if present.
func (c *Cache) Get(ctx context.Context, day string) ([]string, bool) {
	if c.client == nil {
		return nil, false
	}

	raw, err := c.client.Get(ctx, keyPrefix+day).Result()
	if err != nil {
		return nil, false
	}

	var slots []string
	if err := json.Unmarshal([]byte(raw), &slots); err != nil {
		return nil, false
	}

	return slots, true
}

func (c *Cache) Set(ctx context.Context, day string, slots []string) {
	if c.client == nil {
		return
	}

	raw, err := json.Marshal(slots)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, keyPrefix+day, raw, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("day", day).Msg("slot cache set failed")
	}
}

// Invalidate drops the cached set for a day after anything touching that
// day's schedule writes through.
func (c *Cache) Invalidate(ctx context.Context, day string) {
	if c.client == nil {
		return
	}

	if err := c.client.Del(ctx, keyPrefix+day).Err(); err != nil {
		log.Warn().Err(err).Str("day", day).Msg("slot cache invalidate failed")
	}
}
