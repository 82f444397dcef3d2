package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/appsforbuild-cmyk/evalifyai-sub001/internal/domain"
	"github.com/appsforbuild-cmyk/evalifyai-sub001/internal/repository/models"
)

const (
	feedbackSessionLimit = 10
	recognitionLimit     = 20
	defaultSentiment     = 50

	defaultReadTimeout = 5 * time.Second
)

// SignalSources groups the four read collaborators.
type SignalSources struct {
	Feedback     FeedbackSource
	Goals        GoalSource
	Recognitions RecognitionSource
	Milestones   MilestoneSource
}

// SignalAggregator builds a SignalSnapshot from the read collaborators.
type SignalAggregator struct {
	sources SignalSources
	timeout time.Duration
	logger  *zap.Logger
}

func NewSignalAggregator(sources SignalSources, timeout time.Duration, logger *zap.Logger) *SignalAggregator {
	if sources.Feedback == nil || sources.Goals == nil || sources.Recognitions == nil || sources.Milestones == nil {
		panic("signal sources must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultReadTimeout
	}
	return &SignalAggregator{
		sources: sources,
		timeout: timeout,
		logger:  logger.Named("aggregator"),
	}
}

// Aggregate reads every signal category for the employee concurrently.
// Missing data resolves to defaults; only read errors fail the call.
func (a *SignalAggregator) Aggregate(ctx context.Context, employeeID string) (domain.SignalSnapshot, error) {
	dbCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var (
		sessions     []models.FeedbackSession
		entries      []models.FeedbackEntry
		goals        []models.Goal
		recognitions []models.Recognition
		milestones   []models.Milestone
	)

	g, gctx := errgroup.WithContext(dbCtx)
	g.Go(func() error {
		var err error
		sessions, err = a.sources.Feedback.RecentFeedbackSessions(gctx, employeeID, feedbackSessionLimit)
		if err != nil {
			return fmt.Errorf("feedback sessions: %w", err)
		}
		ids := make([]string, len(sessions))
		for i, s := range sessions {
			ids[i] = s.ID
		}
		entries, err = a.sources.Feedback.FeedbackEntries(gctx, ids)
		if err != nil {
			return fmt.Errorf("feedback entries: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if goals, err = a.sources.Goals.Goals(gctx, employeeID); err != nil {
			return fmt.Errorf("goals: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if recognitions, err = a.sources.Recognitions.RecentRecognitions(gctx, employeeID, recognitionLimit); err != nil {
			return fmt.Errorf("recognitions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if milestones, err = a.sources.Milestones.Milestones(gctx, employeeID); err != nil {
			return fmt.Errorf("milestones: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.SignalSnapshot{}, fmt.Errorf("%w: %v", ErrSignalRead, err)
	}

	snapshot := BuildSnapshot(sessions, entries, goals, recognitions, milestones)
	a.logger.Debug("aggregated signals",
		zap.String("employee_id", employeeID),
		zap.Int("feedback_sessions", snapshot.FeedbackSessionCount),
		zap.Int("goals", snapshot.GoalsTotal),
		zap.Int("recognitions", snapshot.RecognitionCount),
		zap.Int("milestones", snapshot.MilestoneCount))
	return snapshot, nil
}

// BuildSnapshot is the pure reduction from source records to a snapshot.
func BuildSnapshot(
	sessions []models.FeedbackSession,
	entries []models.FeedbackEntry,
	goals []models.Goal,
	recognitions []models.Recognition,
	milestones []models.Milestone,
) domain.SignalSnapshot {
	var s domain.SignalSnapshot

	s.FeedbackSessionCount = len(sessions)
	for _, fs := range sessions {
		s.LastFeedbackSessionAt = latest(s.LastFeedbackSessionAt, fs.CreatedAt)
	}

	s.AverageFeedbackSentiment = defaultSentiment
	var sentimentSum float64
	var sentimentN int
	for _, e := range entries {
		if e.SentimentScore.Valid {
			sentimentSum += e.SentimentScore.Float64
			sentimentN++
		}
	}
	if sentimentN > 0 {
		s.AverageFeedbackSentiment = roundPercent(sentimentSum / float64(sentimentN))
	}

	s.GoalsTotal = len(goals)
	var progressSum float64
	for _, g := range goals {
		switch g.Status {
		case models.GoalStatusCompleted:
			s.GoalsCompleted++
		case models.GoalStatusInProgress:
			s.GoalsInProgress++
		}
		progressSum += g.Progress
	}
	if len(goals) > 0 {
		s.AverageGoalProgress = roundPercent(progressSum / float64(len(goals)))
	}

	s.RecognitionCount = len(recognitions)
	for _, r := range recognitions {
		s.LastRecognitionAt = latest(s.LastRecognitionAt, r.CreatedAt)
	}

	s.MilestoneCount = len(milestones)
	for _, m := range milestones {
		s.LastMilestoneAt = latest(s.LastMilestoneAt, m.CompletedAt)
	}

	return s
}

func latest(cur *time.Time, t time.Time) *time.Time {
	if cur == nil || t.After(*cur) {
		return &t
	}
	return cur
}

// roundPercent rounds v to the nearest integer within [0,100].
func roundPercent(v float64) int {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 100:
		return 100
	}
	return int(math.Round(v))
}
