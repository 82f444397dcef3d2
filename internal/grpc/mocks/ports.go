package mocks

import (
	"context"

	"github.com/appsforbuild-cmyk/evalifyai-sub001/internal/domain"
	"github.com/appsforbuild-cmyk/evalifyai-sub001/internal/service"
)

type MockBatchRunner struct {
	RunBatchFunc func(ctx context.Context) (service.RunSummary, error)
}

func (m *MockBatchRunner) RunBatch(ctx context.Context) (service.RunSummary, error) {
	if m.RunBatchFunc != nil {
		return m.RunBatchFunc(ctx)
	}
	return service.RunSummary{Success: true}, nil
}

type MockPredictionReader struct {
	CurrentFunc func(ctx context.Context, employeeID string) (domain.Prediction, error)
	HistoryFunc func(ctx context.Context, employeeID string, limit int) ([]domain.HistoryEntry, error)
}

func (m *MockPredictionReader) Current(ctx context.Context, employeeID string) (domain.Prediction, error) {
	if m.CurrentFunc != nil {
		return m.CurrentFunc(ctx, employeeID)
	}
	return domain.Prediction{}, nil
}

func (m *MockPredictionReader) History(ctx context.Context, employeeID string, limit int) ([]domain.HistoryEntry, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, employeeID, limit)
	}
	return nil, nil
}
