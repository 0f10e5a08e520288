// Package cache memoizes paginated list queries in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const (
	keyPrefix        = "mercato"
	versionKeyPrefix = "mercato:version:"

	// InvalidationChannel carries collection names whose entries were bumped.
	InvalidationChannel = "mercato.collection.changed"
)

// Cache wraps Redis based caching of list results with per-collection version
// counters. Keys embed the version, so bumping it orphans every entry for the
// collection at once; the orphans age out on their own TTL.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

// New instantiates the cache helper. A nil client yields a degraded cache
// where every lookup misses and runs the loader.
func New(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	return &Cache{client: client, ttl: ttl, logger: logger}
}

// Signature joins normalized filter parts into a deterministic cache key part.
func Signature(parts ...string) string {
	return strings.Join(parts, "|")
}

// Version returns the current version counter for a collection, initialising
// it when missing.
func (c *Cache) Version(ctx context.Context, collection string) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, versionKeyPrefix+collection).Int64()
	if errors.Is(err, redis.Nil) {
		// SetNX so a concurrent Invalidate INCR is never overwritten; on a
		// lost race the re-read picks up whatever won.
		created, err := c.client.SetNX(ctx, versionKeyPrefix+collection, 1, 0).Result()
		if err != nil {
			return 0, err
		}
		if created {
			return 1, nil
		}
		return c.client.Get(ctx, versionKeyPrefix+collection).Int64()
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// FetchPage loads a cached page or computes it with the loader. The loader
// reports whether its result may be cached; empty result sets must return
// false so a transiently empty listing is never pinned for the TTL window.
// Cache unavailability degrades to a miss, never to a request failure.
func (c *Cache) FetchPage(ctx context.Context, collection, signature string, dest any, loader func(context.Context) (any, bool, error)) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}
	if c == nil || c.client == nil {
		return c.loadInto(ctx, dest, loader)
	}

	key, err := c.buildKey(ctx, collection, signature)
	if err != nil {
		c.warn("cache key", err)
		return c.loadInto(ctx, dest, loader)
	}

	payload, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		uerr := json.Unmarshal(payload, dest)
		if uerr == nil {
			markHit(collection)
			return nil
		}
		// A stored payload that no longer decodes (schema drift within the
		// TTL window, a foreign write) counts as a miss; drop it so the next
		// reader skips straight to the loader.
		c.warn("cache decode", uerr)
		if derr := c.client.Del(ctx, key).Err(); derr != nil {
			c.warn("cache del", derr)
		}
	case !errors.Is(err, redis.Nil):
		c.warn("cache get", err)
		return c.loadInto(ctx, dest, loader)
	}
	markMiss(collection)

	// Collapse concurrent misses for the same key into one computation.
	result := c.group.DoChan(key, func() (any, error) {
		value, cacheable, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		if cacheable {
			if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
				c.warn("cache set", err)
			}
		}
		return raw, nil
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-result:
		if res.Err != nil {
			return res.Err
		}
		return json.Unmarshal(res.Val.([]byte), dest)
	}
}

// Invalidate bumps the collection version and announces the change so other
// processes can react, e.g. by re-warming hot pages.
func (c *Cache) Invalidate(ctx context.Context, collection string) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.Incr(ctx, versionKeyPrefix+collection).Err(); err != nil {
		return err
	}
	return c.client.Publish(ctx, InvalidationChannel, collection).Err()
}

// Subscribe invokes fn with the collection name for every invalidation event
// until the context is cancelled.
func (c *Cache) Subscribe(ctx context.Context, fn func(collection string)) error {
	if c == nil || c.client == nil {
		return nil
	}
	pubsub := c.client.Subscribe(ctx, InvalidationChannel)
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if msg.Payload != "" {
					fn(msg.Payload)
				}
			}
		}
	}()
	return nil
}

func (c *Cache) buildKey(ctx context.Context, collection, signature string) (string, error) {
	ver, err := c.Version(ctx, collection)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%s:v%d:%s", keyPrefix, collection, ver, signature), nil
}

// loadInto runs the loader and copies its result into dest through JSON so the
// degraded path returns the same shapes as a cache hit.
func (c *Cache) loadInto(ctx context.Context, dest any, loader func(context.Context) (any, bool, error)) error {
	value, _, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func (c *Cache) warn(op string, err error) {
	if c != nil && c.logger != nil {
		c.logger.Warn(op, slog.Any("error", err))
	}
}
