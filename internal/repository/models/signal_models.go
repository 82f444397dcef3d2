package models

import (
	"database/sql"
	"time"
)

type FeedbackSession struct {
	ID         string
	EmployeeID string
	CreatedAt  time.Time
}

// FeedbackEntry.SentimentScore is NULL for entries that were never analysed.
type FeedbackEntry struct {
	ID             string
	SessionID      string
	SentimentScore sql.NullFloat64
}

type Goal struct {
	ID         string
	EmployeeID string
	Status     string
	Progress   float64
}

const (
	GoalStatusCompleted  = "completed"
	GoalStatusInProgress = "in_progress"
)

type Recognition struct {
	ID          string
	RecipientID string
	CreatedAt   time.Time
}

type Milestone struct {
	ID          string
	EmployeeID  string
	CompletedAt time.Time
}
