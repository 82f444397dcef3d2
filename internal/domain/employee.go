package domain

import "time"

// Employee is an eligible subject of the attrition batch.
type Employee struct {
	ID          string     `json:"id"`
	DisplayName string     `json:"display_name"`
	TeamID      string     `json:"team_id,omitempty"`
	JobTitle    string     `json:"job_title,omitempty"`
	HiredAt     *time.Time `json:"hired_at,omitempty"`
}

// TenureMonths returns whole months between HiredAt and now, or -1 when the
// hire date is unknown.
func (e Employee) TenureMonths(now time.Time) int {
	if e.HiredAt == nil || e.HiredAt.After(now) {
		return -1
	}
	months := (now.Year()-e.HiredAt.Year())*12 + int(now.Month()-e.HiredAt.Month())
	if now.Day() < e.HiredAt.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// Name returns the display name, falling back to the id.
func (e Employee) Name() string {
	if e.DisplayName != "" {
		return e.DisplayName
	}
	return e.ID
}

// User is a notification recipient resolved from the directory.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// NotificationType values understood by the notification sink.
const (
	NotificationRetentionAlert = "retention_alert"
)

// Notification is a transient alert handed to the notification sink.
type Notification struct {
	ID          string         `json:"id"`
	RecipientID string         `json:"recipient_id"`
	Title       string         `json:"title"`
	Message     string         `json:"message"`
	Type        string         `json:"type"`
	ActionURL   string         `json:"action_url"`
	Metadata    map[string]any `json:"metadata"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Prediction is the current-state record for one employee.
type Prediction struct {
	EmployeeID string `json:"employee_id"`
	Assessment
	LastCalculated time.Time `json:"last_calculated"`
}

// HistoryEntry is an immutable per-run record used for trend analysis.
type HistoryEntry struct {
	ID                  string    `json:"id"`
	EmployeeID          string    `json:"employee_id"`
	RiskScore           int       `json:"risk_score"`
	RiskLevel           RiskLevel `json:"risk_level"`
	PredictedTimeframe  Timeframe `json:"predicted_timeframe"`
	Confidence          int       `json:"confidence"`
	ContributingFactors []Factor  `json:"contributing_factors"`
	Scorer              Strategy  `json:"scorer"`
	CalculatedAt        time.Time `json:"calculated_at"`
}
