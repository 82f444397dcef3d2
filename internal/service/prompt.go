package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/appsforbuild-cmyk/evalifyai-sub001/internal/domain"
)

// DefaultPromptTemplate is the AI scorer prompt.
// Placeholders: {EMPLOYEE_NAME}, {JOB_TITLE}, {TENURE_MONTHS}, {SIGNALS}.
const DefaultPromptTemplate = `You are an HR analytics assistant estimating the attrition risk of one employee.

Employee: {EMPLOYEE_NAME}
Job title: {JOB_TITLE}
Tenure (months): {TENURE_MONTHS}

Signals:
{SIGNALS}

Scoring guide:
- risk_score is an integer from 0 (no risk) to 100 (certain to leave)
- risk_level: 0-39 low, 40-59 medium, 60-79 high, 80-100 critical
- predicted_timeframe: low "90d+", medium "60-90d", high "30-60d", critical "0-30d"
- confidence is an integer from 0 to 100
- trend is one of improving, stable, declining
- priority is one of low, medium, high

Respond with ONE JSON object and nothing else, in this shape:
{"risk_score": 0, "risk_level": "low", "predicted_timeframe": "90d+", "confidence": 0,
 "contributing_factors": [{"factor": "", "weight": 0, "trend": "stable", "description": ""}],
 "recommended_actions": [{"action": "", "priority": "medium", "rationale": ""}]}`

// RenderPrompt fills template with the employee context and snapshot.
func RenderPrompt(template string, employee domain.Employee, s domain.SignalSnapshot, now time.Time) string {
	if strings.TrimSpace(template) == "" {
		template = DefaultPromptTemplate
	}

	jobTitle := employee.JobTitle
	if jobTitle == "" {
		jobTitle = "unknown"
	}
	tenure := "unknown"
	if months := employee.TenureMonths(now); months >= 0 {
		tenure = strconv.Itoa(months)
	}

	return strings.NewReplacer(
		"{EMPLOYEE_NAME}", employee.Name(),
		"{JOB_TITLE}", jobTitle,
		"{TENURE_MONTHS}", tenure,
		"{SIGNALS}", renderSignals(s, now),
	).Replace(template)
}

func renderSignals(s domain.SignalSnapshot, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- Feedback sessions (last 10): %d, last %s\n", s.FeedbackSessionCount, daysAgo(s.LastFeedbackSessionAt, now))
	fmt.Fprintf(&b, "- Average feedback sentiment: %d/100\n", s.AverageFeedbackSentiment)
	fmt.Fprintf(&b, "- Goals: %d total, %d completed, %d in progress, average progress %d%%\n",
		s.GoalsTotal, s.GoalsCompleted, s.GoalsInProgress, s.AverageGoalProgress)
	fmt.Fprintf(&b, "- Recognitions (last 20): %d, last %s\n", s.RecognitionCount, daysAgo(s.LastRecognitionAt, now))
	fmt.Fprintf(&b, "- Career milestones: %d, last %s", s.MilestoneCount, daysAgo(s.LastMilestoneAt, now))
	return b.String()
}

func daysAgo(t *time.Time, now time.Time) string {
	if t == nil {
		return "never"
	}
	days := int(now.Sub(*t).Hours() / 24)
	if days <= 0 {
		return "today"
	}
	return fmt.Sprintf("%d days ago", days)
}
