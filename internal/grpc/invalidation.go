package grpc

import (
	"context"
)

// CacheInvalidator drops the cached read models of one employee. It
// satisfies service.PredictionCacheInvalidator.
type CacheInvalidator struct {
	cache Cacher
}

func NewCacheInvalidator(c Cacher) *CacheInvalidator {
	if c == nil {
		panic("nil Cacher provided to NewCacheInvalidator")
	}
	return &CacheInvalidator{cache: c}
}

// PredictionCacheKeys lists every key a read of employeeID may populate.
func PredictionCacheKeys(employeeID string) []string {
	return []string{
		normalizeKey(cacheKeyPrediction, employeeID),
		normalizeKey(cacheKeyHistory, employeeID),
	}
}

func (i *CacheInvalidator) Invalidate(ctx context.Context, employeeID string) error {
	return i.cache.Delete(ctx, PredictionCacheKeys(employeeID)...)
}
