package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/appsforbuild-cmyk/evalifyai-sub001/internal/domain"
	"github.com/appsforbuild-cmyk/evalifyai-sub001/internal/grpc/mocks"
	"github.com/appsforbuild-cmyk/evalifyai-sub001/internal/service"
	svcmocks "github.com/appsforbuild-cmyk/evalifyai-sub001/internal/service/mocks"
	"github.com/appsforbuild-cmyk/evalifyai-sub001/pkg/cache"
)

// memoryCacher keeps JSON-encoded entries in a map, mirroring the Redis
// client's encoding.
type memoryCacher struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCacher() *memoryCacher {
	return &memoryCacher{entries: map[string][]byte{}}
}

func (m *memoryCacher) Get(_ context.Context, key string, dest any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.entries[key]
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacher) Set(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = raw
	return nil
}

func (m *memoryCacher) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

func (m *memoryCacher) Close() error { return nil }

func (m *memoryCacher) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok
}

type silentDispatcher struct{}

func (silentDispatcher) Dispatch(context.Context, domain.Employee, domain.Assessment) service.DispatchResult {
	return service.DispatchResult{}
}

func TestNewCacheInvalidator(t *testing.T) {
	t.Run("nil cache panics", func(t *testing.T) {
		assert.Panics(t, func() { NewCacheInvalidator(nil) })
	})

	t.Run("deletes current and history keys", func(t *testing.T) {
		var deleted []string
		cacher := &mocks.MockCacher{
			DeleteFunc: func(ctx context.Context, keys ...string) error {
				deleted = append(deleted, keys...)
				return nil
			},
		}

		require.NoError(t, NewCacheInvalidator(cacher).Invalidate(context.Background(), "emp-7"))
		assert.Equal(t, []string{"grpc:prediction:emp-7", "grpc:prediction_history:emp-7"}, deleted)
	})

	t.Run("propagates delete errors", func(t *testing.T) {
		cacher := &mocks.MockCacher{
			DeleteFunc: func(ctx context.Context, keys ...string) error { return errors.New("redis: connection refused") },
		}

		err := NewCacheInvalidator(cacher).Invalidate(context.Background(), "emp-7")
		assert.EqualError(t, err, "redis: connection refused")
	})
}

func TestReadsAfterBatchRunSeeNewScores(t *testing.T) {
	ctx := context.Background()
	mem := newMemoryCacher()

	var mu sync.Mutex
	stored := map[string]domain.Assessment{
		"emp-1": domain.NewAssessment(20, 60, nil, nil, domain.StrategyRuleBased),
	}
	var history []domain.HistoryEntry
	reader := &mocks.MockPredictionReader{
		CurrentFunc: func(ctx context.Context, employeeID string) (domain.Prediction, error) {
			mu.Lock()
			defer mu.Unlock()
			return domain.Prediction{EmployeeID: employeeID, Assessment: stored[employeeID]}, nil
		},
		HistoryFunc: func(ctx context.Context, employeeID string, limit int) ([]domain.HistoryEntry, error) {
			mu.Lock()
			defer mu.Unlock()
			return append([]domain.HistoryEntry(nil), history...), nil
		},
	}
	handlers := NewAttritionHandlers(&mocks.MockBatchRunner{}, reader, mem, zap.NewNop(), time.Hour)

	currentScore := func() float64 {
		resp, err := handlers.GetPrediction(ctx, employeeRequest(t, map[string]any{"employee_id": "emp-1"}))
		require.NoError(t, err)
		return resp.GetFields()["risk_score"].GetNumberValue()
	}
	historyLen := func() int {
		resp, err := handlers.GetPredictionHistory(ctx, employeeRequest(t, map[string]any{"employee_id": "emp-1", "limit": 5}))
		require.NoError(t, err)
		return len(resp.GetFields()["entries"].GetListValue().GetValues())
	}

	assert.Equal(t, float64(20), currentScore())
	assert.Equal(t, 0, historyLen())
	require.Eventually(t, func() bool {
		return mem.has("grpc:prediction:emp-1") && mem.has("grpc:prediction_history:emp-1")
	}, time.Second, 5*time.Millisecond)

	batch := service.NewBatchService(
		&svcmocks.MockDirectory{
			EligibleEmployeesFunc: func(ctx context.Context) ([]domain.Employee, error) {
				return []domain.Employee{{ID: "emp-1"}}, nil
			},
		},
		&svcmocks.MockSnapshotBuilder{
			AggregateFunc: func(ctx context.Context, employeeID string) (domain.SignalSnapshot, error) {
				return domain.SignalSnapshot{}, nil
			},
		},
		&svcmocks.MockScorer{
			ScoreFunc: func(ctx context.Context, s domain.SignalSnapshot, e domain.Employee) (domain.Assessment, error) {
				return domain.NewAssessment(95, 80, nil, nil, domain.StrategyRuleBased), nil
			},
		},
		&svcmocks.MockPredictionStore{
			SaveFunc: func(ctx context.Context, employeeID string, a domain.Assessment, at time.Time) error {
				mu.Lock()
				defer mu.Unlock()
				stored[employeeID] = a
				history = append([]domain.HistoryEntry{{ID: "h1", EmployeeID: employeeID, RiskScore: a.RiskScore, RiskLevel: a.RiskLevel}}, history...)
				return nil
			},
		},
		silentDispatcher{},
		zap.NewNop(),
		service.WithPredictionInvalidator(NewCacheInvalidator(mem)),
	)

	summary, err := batch.RunBatch(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Processed)

	assert.Equal(t, float64(95), currentScore())
	assert.Equal(t, 1, historyLen())
}
