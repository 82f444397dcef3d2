package service

import "time"

// EmployeeOutcome is the per-employee success entry of a run summary.
type EmployeeOutcome struct {
	EmployeeID string `json:"employee_id"`
	RiskScore  int    `json:"risk_score"`
	RiskLevel  string `json:"risk_level"`
	Scorer     string `json:"scorer"`
}

// EmployeeFailure marks an employee the run could not score or persist.
type EmployeeFailure struct {
	EmployeeID string `json:"employee_id"`
	Stage      string `json:"stage"`
	Error      string `json:"error"`
}

// RunSummary is the result contract of one batch run. Processed counts
// successes only.
type RunSummary struct {
	Success    bool              `json:"success"`
	Processed  int               `json:"processed"`
	Failed     int               `json:"failed"`
	Results    []EmployeeOutcome `json:"results"`
	Failures   []EmployeeFailure `json:"failures"`
	RunID      string            `json:"run_id"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Error      string            `json:"error,omitempty"`
}
