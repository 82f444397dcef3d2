package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/appsforbuild-cmyk/evalifyai-sub001/internal/service"
)

type batchRunner interface {
	RunBatch(ctx context.Context) (service.RunSummary, error)
}

// runScheduler triggers a batch every interval until ctx is done. A
// non-positive interval disables it. Ticks that arrive while a run is in
// flight are dropped by the ticker.
func runScheduler(ctx context.Context, interval time.Duration, batch batchRunner, logger *zap.Logger) {
	if interval <= 0 {
		logger.Info("batch scheduler disabled")
		return
	}
	logger = logger.Named("scheduler")
	logger.Info("batch scheduler started", zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("batch scheduler stopped")
			return
		case <-ticker.C:
			summary, err := batch.RunBatch(ctx)
			if err != nil {
				logger.Error("scheduled batch failed", zap.String("run_id", summary.RunID), zap.Error(err))
				continue
			}
			logger.Info("scheduled batch finished",
				zap.String("run_id", summary.RunID),
				zap.Int("processed", summary.Processed),
				zap.Int("failed", summary.Failed))
		}
	}
}
