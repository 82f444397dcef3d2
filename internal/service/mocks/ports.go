package mocks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/appsforbuild-cmyk/evalifyai-sub001/internal/domain"
)

// MockDirectory is a mock implementation of the Directory interface.
type MockDirectory struct {
	EligibleEmployeesFunc func(ctx context.Context) ([]domain.Employee, error)
	TeamManagersFunc      func(ctx context.Context, employeeID string) ([]domain.User, error)
	HRUsersFunc           func(ctx context.Context) ([]domain.User, error)
}

func (m *MockDirectory) EligibleEmployees(ctx context.Context) ([]domain.Employee, error) {
	if m.EligibleEmployeesFunc != nil {
		return m.EligibleEmployeesFunc(ctx)
	}
	return nil, errors.New("EligibleEmployeesFunc not implemented")
}

func (m *MockDirectory) TeamManagers(ctx context.Context, employeeID string) ([]domain.User, error) {
	if m.TeamManagersFunc != nil {
		return m.TeamManagersFunc(ctx, employeeID)
	}
	return nil, errors.New("TeamManagersFunc not implemented")
}

func (m *MockDirectory) HRUsers(ctx context.Context) ([]domain.User, error) {
	if m.HRUsersFunc != nil {
		return m.HRUsersFunc(ctx)
	}
	return nil, errors.New("HRUsersFunc not implemented")
}

// MockPredictionStore is a mock implementation of the PredictionStore interface.
type MockPredictionStore struct {
	SaveFunc func(ctx context.Context, employeeID string, a domain.Assessment, at time.Time) error
}

func (m *MockPredictionStore) Save(ctx context.Context, employeeID string, a domain.Assessment, at time.Time) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, employeeID, a, at)
	}
	return errors.New("SaveFunc not implemented")
}

// MockNotificationSink records every notification it accepts. SendFunc, when
// set, decides the result; accepted notifications are still recorded.
type MockNotificationSink struct {
	SendFunc func(ctx context.Context, n domain.Notification) error

	mu   sync.Mutex
	Sent []domain.Notification
}

func (m *MockNotificationSink) Send(ctx context.Context, n domain.Notification) error {
	if m.SendFunc != nil {
		if err := m.SendFunc(ctx, n); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, n)
	return nil
}

// Recipients returns the recipient ids of recorded notifications in order.
func (m *MockNotificationSink) Recipients() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Sent))
	for i, n := range m.Sent {
		out[i] = n.RecipientID
	}
	return out
}

// MockSuppressor is a mock implementation of the AlertSuppressor interface.
type MockSuppressor struct {
	ClaimFunc func(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

func (m *MockSuppressor) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if m.ClaimFunc != nil {
		return m.ClaimFunc(ctx, key, ttl)
	}
	return false, errors.New("ClaimFunc not implemented")
}

// MockTextGenerator is a mock implementation of the TextGenerator interface.
type MockTextGenerator struct {
	GenerateFunc func(ctx context.Context, prompt string) (string, error)
}

func (m *MockTextGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return "", errors.New("GenerateFunc not implemented")
}

func (m *MockTextGenerator) Name() string {
	return "mock"
}

// MockScorer is a mock implementation of the Scorer interface.
type MockScorer struct {
	ScoreFunc func(ctx context.Context, s domain.SignalSnapshot, e domain.Employee) (domain.Assessment, error)
}

func (m *MockScorer) Score(ctx context.Context, s domain.SignalSnapshot, e domain.Employee) (domain.Assessment, error) {
	if m.ScoreFunc != nil {
		return m.ScoreFunc(ctx, s, e)
	}
	return domain.Assessment{}, errors.New("ScoreFunc not implemented")
}

// MockSnapshotBuilder is a mock implementation of the SnapshotBuilder interface.
type MockSnapshotBuilder struct {
	AggregateFunc func(ctx context.Context, employeeID string) (domain.SignalSnapshot, error)
}

func (m *MockSnapshotBuilder) Aggregate(ctx context.Context, employeeID string) (domain.SignalSnapshot, error) {
	if m.AggregateFunc != nil {
		return m.AggregateFunc(ctx, employeeID)
	}
	return domain.SignalSnapshot{}, errors.New("AggregateFunc not implemented")
}

// MockPredictionCacheInvalidator is a mock implementation of the
// PredictionCacheInvalidator interface.
type MockPredictionCacheInvalidator struct {
	InvalidateFunc func(ctx context.Context, employeeID string) error
}

func (m *MockPredictionCacheInvalidator) Invalidate(ctx context.Context, employeeID string) error {
	if m.InvalidateFunc != nil {
		return m.InvalidateFunc(ctx, employeeID)
	}
	return nil
}
