package mocks

import (
	"context"
	"errors"

	"github.com/appsforbuild-cmyk/evalifyai-sub001/internal/repository/models"
)

// MockFeedbackSource is a mock implementation of the FeedbackSource interface.
type MockFeedbackSource struct {
	RecentFeedbackSessionsFunc func(ctx context.Context, employeeID string, limit int) ([]models.FeedbackSession, error)
	FeedbackEntriesFunc        func(ctx context.Context, sessionIDs []string) ([]models.FeedbackEntry, error)
}

func (m *MockFeedbackSource) RecentFeedbackSessions(ctx context.Context, employeeID string, limit int) ([]models.FeedbackSession, error) {
	if m.RecentFeedbackSessionsFunc != nil {
		return m.RecentFeedbackSessionsFunc(ctx, employeeID, limit)
	}
	return nil, errors.New("RecentFeedbackSessionsFunc not implemented")
}

func (m *MockFeedbackSource) FeedbackEntries(ctx context.Context, sessionIDs []string) ([]models.FeedbackEntry, error) {
	if m.FeedbackEntriesFunc != nil {
		return m.FeedbackEntriesFunc(ctx, sessionIDs)
	}
	return nil, errors.New("FeedbackEntriesFunc not implemented")
}

// MockGoalSource is a mock implementation of the GoalSource interface.
type MockGoalSource struct {
	GoalsFunc func(ctx context.Context, employeeID string) ([]models.Goal, error)
}

func (m *MockGoalSource) Goals(ctx context.Context, employeeID string) ([]models.Goal, error) {
	if m.GoalsFunc != nil {
		return m.GoalsFunc(ctx, employeeID)
	}
	return nil, errors.New("GoalsFunc not implemented")
}

// MockRecognitionSource is a mock implementation of the RecognitionSource interface.
type MockRecognitionSource struct {
	RecentRecognitionsFunc func(ctx context.Context, employeeID string, limit int) ([]models.Recognition, error)
}

func (m *MockRecognitionSource) RecentRecognitions(ctx context.Context, employeeID string, limit int) ([]models.Recognition, error) {
	if m.RecentRecognitionsFunc != nil {
		return m.RecentRecognitionsFunc(ctx, employeeID, limit)
	}
	return nil, errors.New("RecentRecognitionsFunc not implemented")
}

// MockMilestoneSource is a mock implementation of the MilestoneSource interface.
type MockMilestoneSource struct {
	MilestonesFunc func(ctx context.Context, employeeID string) ([]models.Milestone, error)
}

func (m *MockMilestoneSource) Milestones(ctx context.Context, employeeID string) ([]models.Milestone, error) {
	if m.MilestonesFunc != nil {
		return m.MilestonesFunc(ctx, employeeID)
	}
	return nil, errors.New("MilestonesFunc not implemented")
}
