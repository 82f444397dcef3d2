package grpc

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/appsforbuild-cmyk/evalifyai-sub001/pkg/cache"
)

type FetchFunc[T any] func(ctx context.Context) (T, error)

const (
	defaultFetchTimeout = 15 * time.Second
	defaultSetTimeout   = 5 * time.Second
)

// cacheEntry wraps a cached value with the time it was stored so readers can
// refresh entries past half their TTL.
type cacheEntry[T any] struct {
	Value    T         `json:"value"`
	StoredAt time.Time `json:"stored_at"`
}

// addTTLJitter spreads expiry by up to ±10% of ttl.
func addTTLJitter(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return ttl
	}
	spread := int64(ttl / 5)
	if spread <= 0 {
		return ttl
	}
	return ttl + time.Duration(rand.Int63n(spread)-spread/2)
}

func storeEntry[T any](c Cacher, key string, ttl time.Duration, logger *zap.Logger, value T) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultSetTimeout)
	defer cancel()

	entry := cacheEntry[T]{Value: value, StoredAt: time.Now().UTC()}
	if err := c.Set(ctx, key, entry, addTTLJitter(ttl)); err != nil {
		logger.Warn("failed to populate cache", zap.String("key", key), zap.Error(err))
		return
	}
	logger.Debug("cache populated", zap.String("key", key))
}

func triggerBackgroundRefresh[T any](
	c Cacher,
	sf *singleflight.Group,
	key string,
	ttl time.Duration,
	logger *zap.Logger,
	fn FetchFunc[T],
) {
	go func() {
		_, _, _ = sf.Do(key+":refresh", func() (any, error) {
			ctx, cancel := context.WithTimeout(context.Background(), defaultFetchTimeout)
			defer cancel()

			value, err := fn(ctx)
			if err != nil {
				logger.Warn("background refresh failed", zap.String("key", key), zap.Error(err))
				return nil, err
			}
			storeEntry(c, key, ttl, logger, value)
			return nil, nil
		})
	}()
}

// FindAndCache is a read-through cache lookup. Concurrent misses for the same
// key share one fetch; hits older than half the TTL are refreshed in the
// background. A nil cache reads straight through.
func FindAndCache[T any](
	ctx context.Context,
	c Cacher,
	sf *singleflight.Group,
	key string,
	ttl time.Duration,
	logger *zap.Logger,
	fn FetchFunc[T],
) (T, error) {
	var zero T
	if logger == nil {
		logger = zap.NewNop()
	}
	if c == nil {
		return fn(ctx)
	}

	var entry cacheEntry[T]
	err := c.Get(ctx, key, &entry)
	switch {
	case err == nil:
		logger.Debug("cache hit", zap.String("key", key))
		if time.Since(entry.StoredAt) > ttl/2 {
			triggerBackgroundRefresh(c, sf, key, ttl, logger, fn)
		}
		return entry.Value, nil

	case errors.Is(err, cache.ErrMiss):
		logger.Debug("cache miss", zap.String("key", key))

	default:
		logger.Warn("cache get error (treating as miss)", zap.String("key", key), zap.Error(err))
	}

	v, err, shared := sf.Do(key, func() (any, error) {
		value, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		go storeEntry(c, key, ttl, logger, value)
		return value, nil
	})
	if err != nil {
		return zero, err
	}

	value, ok := v.(T)
	if !ok {
		logger.Error("singleflight type mismatch", zap.String("key", key))
		return zero, fmt.Errorf("type mismatch for key %q", key)
	}
	if shared {
		logger.Debug("singleflight shared result", zap.String("key", key))
	}
	return value, nil
}
