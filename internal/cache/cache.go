// Package cache memoizes expensive search computations under deterministic
// keys, with TTL expiry and tag-based invalidation.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// ErrNotFound is returned by a Store when a key is absent or expired.
var ErrNotFound = errors.New("cache: key not found")

// Store is the backing key/value layer. Implementations must treat Set as
// an atomic replace and associate the key with every given tag.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags []string) error
	InvalidateTag(ctx context.Context, tag string) error
}

// Result is the outcome of a cache-wrapped computation.
type Result struct {
	Payload []byte
	Cached  bool
}

// Cache wraps a Store with producer memoization. Concurrent misses for the
// same key are collapsed into a single in-flight computation; every caller
// receives the same result.
type Cache struct {
	store  Store
	logger *logrus.Logger
	group  singleflight.Group
}

func New(store Store, logger *logrus.Logger) *Cache {
	return &Cache{
		store:  store,
		logger: logger,
	}
}

// Do returns the cached payload for key, or invokes producer and stores its
// result under key with the given tags and TTL. A producer error propagates
// to every waiting caller and nothing is cached. Store failures are treated
// as cache misses; the request is never failed by its cache.
func (c *Cache) Do(ctx context.Context, key string, ttl time.Duration, tags []string, producer func(ctx context.Context) ([]byte, error)) (Result, error) {
	payload, err := c.store.Get(ctx, key)
	if err == nil {
		return Result{Payload: payload, Cached: true}, nil
	}
	if !errors.Is(err, ErrNotFound) {
		c.logger.WithError(err).WithField("key", key).Warn("Cache read failed, recomputing")
	}

	fresh, err, _ := c.group.Do(key, func() (interface{}, error) {
		// The winning caller may have stored the value while we waited.
		if payload, err := c.store.Get(ctx, key); err == nil {
			return Result{Payload: payload, Cached: true}, nil
		}

		data, err := producer(ctx)
		if err != nil {
			return nil, err
		}

		if err := c.store.Set(ctx, key, data, ttl, tags); err != nil {
			c.logger.WithError(err).WithField("key", key).Warn("Cache write failed")
		}

		return Result{Payload: data}, nil
	})
	if err != nil {
		return Result{}, err
	}

	return fresh.(Result), nil
}

// InvalidateByTag expires every entry whose tag set contains tag.
func (c *Cache) InvalidateByTag(ctx context.Context, tag string) error {
	if err := c.store.InvalidateTag(ctx, tag); err != nil {
		c.logger.WithError(err).WithField("tag", tag).Error("Tag invalidation failed")
		return err
	}

	c.logger.WithField("tag", tag).Info("Cache tag invalidated")
	return nil
}
