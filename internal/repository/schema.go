package repository

import (
	"context"
	"database/sql"
	"errors"

	dbbuilder "github.com/appsforbuild-cmyk/evalifyai-sub001/pkg/database"
)

var ErrNotFound = errors.New("record not found")

// Schema creates every table the attrition pipeline reads or writes. The
// statements are idempotent and portable between sqlite and postgres.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL DEFAULT '',
		job_title TEXT NOT NULL DEFAULT '',
		hired_at TIMESTAMP NULL,
		attrition_opt_out BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS team_members (
		team_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		PRIMARY KEY (team_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS user_roles (
		user_id TEXT NOT NULL,
		role TEXT NOT NULL,
		PRIMARY KEY (user_id, role)
	)`,
	`CREATE TABLE IF NOT EXISTS feedback_sessions (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_feedback_sessions_employee ON feedback_sessions (employee_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS feedback_entries (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		sentiment_score REAL NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_feedback_entries_session ON feedback_entries (session_id)`,
	`CREATE TABLE IF NOT EXISTS goals (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		status TEXT NOT NULL,
		progress REAL NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS recognitions (
		id TEXT PRIMARY KEY,
		recipient_id TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS milestone_completions (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		completed_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS attrition_predictions (
		employee_id TEXT PRIMARY KEY,
		risk_score INTEGER NOT NULL,
		risk_level TEXT NOT NULL,
		predicted_timeframe TEXT NOT NULL,
		confidence INTEGER NOT NULL,
		contributing_factors TEXT NOT NULL,
		recommended_actions TEXT NOT NULL,
		scorer TEXT NOT NULL,
		last_calculated TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS attrition_prediction_history (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		risk_score INTEGER NOT NULL,
		risk_level TEXT NOT NULL,
		predicted_timeframe TEXT NOT NULL,
		confidence INTEGER NOT NULL,
		contributing_factors TEXT NOT NULL,
		scorer TEXT NOT NULL,
		calculated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_prediction_history_employee ON attrition_prediction_history (employee_id, calculated_at)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		recipient_id TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		type TEXT NOT NULL,
		action_url TEXT NOT NULL DEFAULT '',
		metadata TEXT NOT NULL DEFAULT '{}',
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL
	)`,
}

// Migrate applies Schema to db.
func Migrate(ctx context.Context, db *sql.DB) error {
	return dbbuilder.Migrate(ctx, db, Schema...)
}

type base struct {
	db     *sql.DB
	driver string
}

func (b base) q(query string) string {
	return dbbuilder.Rebind(b.driver, query)
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	out := make([]byte, 0, n*2)
	for i := 0; i < n; i++ {
		if i > 0 {
			out = append(out, ',')
		}
		out = append(out, '?')
	}
	return string(out)
}
