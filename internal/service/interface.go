package service

import (
	"context"
	"time"

	"github.com/appsforbuild-cmyk/evalifyai-sub001/internal/domain"
	"github.com/appsforbuild-cmyk/evalifyai-sub001/internal/repository/models"
)

// FeedbackSource reads feedback sessions and their entries.
type FeedbackSource interface {
	RecentFeedbackSessions(ctx context.Context, employeeID string, limit int) ([]models.FeedbackSession, error)
	FeedbackEntries(ctx context.Context, sessionIDs []string) ([]models.FeedbackEntry, error)
}

// GoalSource reads goal records.
type GoalSource interface {
	Goals(ctx context.Context, employeeID string) ([]models.Goal, error)
}

// RecognitionSource reads recognition events received by an employee.
type RecognitionSource interface {
	RecentRecognitions(ctx context.Context, employeeID string, limit int) ([]models.Recognition, error)
}

// MilestoneSource reads career milestone completions.
type MilestoneSource interface {
	Milestones(ctx context.Context, employeeID string) ([]models.Milestone, error)
}

// Directory resolves the scored population and alert recipients.
type Directory interface {
	EligibleEmployees(ctx context.Context) ([]domain.Employee, error)
	TeamManagers(ctx context.Context, employeeID string) ([]domain.User, error)
	HRUsers(ctx context.Context) ([]domain.User, error)
}

// PredictionStore persists the current prediction and one history entry as
// a single unit.
type PredictionStore interface {
	Save(ctx context.Context, employeeID string, a domain.Assessment, at time.Time) error
}

// PredictionCacheInvalidator drops cached reads of an employee's
// predictions once a newer assessment is stored.
type PredictionCacheInvalidator interface {
	Invalidate(ctx context.Context, employeeID string) error
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate(context.Context, string) error { return nil }

// NotificationSink accepts alerts for delivery.
type NotificationSink interface {
	Send(ctx context.Context, n domain.Notification) error
}

// AlertSuppressor grants at most one claim per key per ttl.
type AlertSuppressor interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// TextGenerator is a single-shot, stateless text-generation call.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Scorer turns a snapshot into an assessment.
type Scorer interface {
	Score(ctx context.Context, snapshot domain.SignalSnapshot, employee domain.Employee) (domain.Assessment, error)
}

// Metrics receives batch instrumentation. pkg/metrics.Manager satisfies it.
type Metrics interface {
	RunFinished(outcome string, elapsed time.Duration)
	EmployeeScored(scorer string)
	EmployeeFailed(stage string)
	AIFallback(reason string)
	AlertResult(audience, result string)
}

type noopMetrics struct{}

func (noopMetrics) RunFinished(string, time.Duration) {}
func (noopMetrics) EmployeeScored(string)             {}
func (noopMetrics) EmployeeFailed(string)             {}
func (noopMetrics) AIFallback(string)                 {}
func (noopMetrics) AlertResult(string, string)        {}

// SnapshotBuilder aggregates one employee's signals. SignalAggregator
// satisfies it.
type SnapshotBuilder interface {
	Aggregate(ctx context.Context, employeeID string) (domain.SignalSnapshot, error)
}

// Dispatcher sends alerts for one assessment. AlertDispatcher satisfies it.
type Dispatcher interface {
	Dispatch(ctx context.Context, employee domain.Employee, a domain.Assessment) DispatchResult
}
