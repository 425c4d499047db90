// Package cache provides Redis caching utilities for the application.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"reelhub/internal/observability"

	"github.com/redis/go-redis/v9"
)

type metricsHook struct{}

func (h metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrorRate.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (h metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrorRate.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// NewRedisClient builds a client from either a bare address or a redis:// URL.
func NewRedisClient(addr string) (*redis.Client, error) {
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, err
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opts)
	client.AddHook(metricsHook{})
	return client, nil
}

// Cache is a best-effort JSON cache over Redis. A nil Cache or client disables caching.
type Cache struct {
	client *redis.Client
}

// New wraps client. client may be nil.
func New(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil
}

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if !c.enabled() {
		return false, nil
	}
	s, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if !c.enabled() {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, b, ttl).Err()
}

// generationTTL bounds how long an idle generation counter survives. It must
// outlive any fetch that reads it.
const generationTTL = 24 * time.Hour

func generationKey(key string) string {
	return key + ":gen"
}

// Aside tries Redis first, on miss it calls fetch (which must populate dest),
// then stores the result in Redis with ttl. Redis failures fall through to fetch.
// The result is only stored if no Invalidate of key ran while fetch was in flight.
func (c *Cache) Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	if found, err := c.GetJSON(ctx, key, dest); err == nil && found {
		return nil
	}
	var gen string
	var genErr error
	if c.enabled() {
		gen, genErr = c.readGeneration(ctx, c.client, key)
	}
	if err := fetch(); err != nil {
		return err
	}
	if !c.enabled() || genErr != nil {
		return nil
	}
	b, err := json.Marshal(dest)
	if err != nil {
		return nil
	}
	genKey := generationKey(key)
	_ = c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := c.readGeneration(ctx, tx, key)
		if err != nil || cur != gen {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, b, ttl)
			return nil
		})
		return err
	}, genKey)
	return nil
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (c *Cache) readGeneration(ctx context.Context, g getter, key string) (string, error) {
	gen, err := g.Get(ctx, generationKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return gen, err
}

// Invalidate removes keys and bumps their generations so in-flight Aside
// fetches do not write back stale values. Errors are ignored.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if !c.enabled() || len(keys) == 0 {
		return
	}
	_, _ = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range keys {
			genKey := generationKey(key)
			pipe.Incr(ctx, genKey)
			pipe.Expire(ctx, genKey, generationTTL)
		}
		pipe.Del(ctx, keys...)
		return nil
	})
}
