package grpc

import (
	"context"
	"time"

	"github.com/appsforbuild-cmyk/evalifyai-sub001/internal/domain"
	"github.com/appsforbuild-cmyk/evalifyai-sub001/internal/service"
)

// Cacher defines the interface for cache operations. Get must report a miss
// with cache.ErrMiss.
type Cacher interface {
	Close() error
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type BatchRunner interface {
	RunBatch(ctx context.Context) (service.RunSummary, error)
}

type PredictionReader interface {
	Current(ctx context.Context, employeeID string) (domain.Prediction, error)
	History(ctx context.Context, employeeID string, limit int) ([]domain.HistoryEntry, error)
}
