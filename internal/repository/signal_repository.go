package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/appsforbuild-cmyk/evalifyai-sub001/internal/repository/models"
)

// SignalRepository reads the per-employee activity records the aggregator
// turns into a snapshot. It never writes.
type SignalRepository struct {
	base
}

func NewSignalRepository(db *sql.DB, driver string) *SignalRepository {
	return &SignalRepository{base: base{db: db, driver: driver}}
}

// RecentFeedbackSessions returns up to limit sessions, newest first.
func (r *SignalRepository) RecentFeedbackSessions(ctx context.Context, employeeID string, limit int) ([]models.FeedbackSession, error) {
	const query = `
		SELECT id, employee_id, created_at
		FROM feedback_sessions
		WHERE employee_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, r.q(query), employeeID, limit)
	if err != nil {
		return nil, fmt.Errorf("query RecentFeedbackSessions: %w", err)
	}
	defer rows.Close()

	var results []models.FeedbackSession
	for rows.Next() {
		var s models.FeedbackSession
		if err := rows.Scan(&s.ID, &s.EmployeeID, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan RecentFeedbackSessions row: %w", err)
		}
		results = append(results, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate RecentFeedbackSessions: %w", err)
	}
	return results, nil
}

// FeedbackEntries returns every entry attached to the given sessions.
func (r *SignalRepository) FeedbackEntries(ctx context.Context, sessionIDs []string) ([]models.FeedbackEntry, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, session_id, sentiment_score
		FROM feedback_entries
		WHERE session_id IN (` + placeholders(len(sessionIDs)) + `)
		ORDER BY id
	`
	args := make([]any, len(sessionIDs))
	for i, id := range sessionIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, r.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query FeedbackEntries: %w", err)
	}
	defer rows.Close()

	var results []models.FeedbackEntry
	for rows.Next() {
		var e models.FeedbackEntry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.SentimentScore); err != nil {
			return nil, fmt.Errorf("scan FeedbackEntries row: %w", err)
		}
		results = append(results, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate FeedbackEntries: %w", err)
	}
	return results, nil
}

// Goals returns all goal records owned by the employee.
func (r *SignalRepository) Goals(ctx context.Context, employeeID string) ([]models.Goal, error) {
	const query = `
		SELECT id, employee_id, status, progress
		FROM goals
		WHERE employee_id = ?
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, r.q(query), employeeID)
	if err != nil {
		return nil, fmt.Errorf("query Goals: %w", err)
	}
	defer rows.Close()

	var results []models.Goal
	for rows.Next() {
		var g models.Goal
		if err := rows.Scan(&g.ID, &g.EmployeeID, &g.Status, &g.Progress); err != nil {
			return nil, fmt.Errorf("scan Goals row: %w", err)
		}
		results = append(results, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate Goals: %w", err)
	}
	return results, nil
}

// RecentRecognitions returns up to limit recognition events received by the
// employee, newest first.
func (r *SignalRepository) RecentRecognitions(ctx context.Context, employeeID string, limit int) ([]models.Recognition, error) {
	const query = `
		SELECT id, recipient_id, created_at
		FROM recognitions
		WHERE recipient_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, r.q(query), employeeID, limit)
	if err != nil {
		return nil, fmt.Errorf("query RecentRecognitions: %w", err)
	}
	defer rows.Close()

	var results []models.Recognition
	for rows.Next() {
		var rec models.Recognition
		if err := rows.Scan(&rec.ID, &rec.RecipientID, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan RecentRecognitions row: %w", err)
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate RecentRecognitions: %w", err)
	}
	return results, nil
}

// Milestones returns all milestone completions, newest first.
func (r *SignalRepository) Milestones(ctx context.Context, employeeID string) ([]models.Milestone, error) {
	const query = `
		SELECT id, employee_id, completed_at
		FROM milestone_completions
		WHERE employee_id = ?
		ORDER BY completed_at DESC
	`

	rows, err := r.db.QueryContext(ctx, r.q(query), employeeID)
	if err != nil {
		return nil, fmt.Errorf("query Milestones: %w", err)
	}
	defer rows.Close()

	var results []models.Milestone
	for rows.Next() {
		var m models.Milestone
		if err := rows.Scan(&m.ID, &m.EmployeeID, &m.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan Milestones row: %w", err)
		}
		results = append(results, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate Milestones: %w", err)
	}
	return results, nil
}
