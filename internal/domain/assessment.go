// Package domain holds the attrition-risk types shared by the scoring
// pipeline, its storage adapters and its transports.
package domain

import "time"

// Strategy names the scorer that produced an assessment.
type Strategy string

const (
	StrategyAI        Strategy = "ai"
	StrategyRuleBased Strategy = "rule_based"
)

// Factor is a single signal that contributed to a risk score.
type Factor struct {
	Factor      string `json:"factor"`
	Weight      int    `json:"weight"`
	Trend       Trend  `json:"trend"`
	Description string `json:"description"`
}

// Action is a recommended retention intervention.
type Action struct {
	Action    string   `json:"action"`
	Priority  Priority `json:"priority"`
	Rationale string   `json:"rationale"`
}

// Assessment is the output of a scorer. RiskLevel and PredictedTimeframe are
// always derived from RiskScore; build values with NewAssessment.
type Assessment struct {
	RiskScore           int       `json:"risk_score"`
	RiskLevel           RiskLevel `json:"risk_level"`
	PredictedTimeframe  Timeframe `json:"predicted_timeframe"`
	Confidence          int       `json:"confidence"`
	ContributingFactors []Factor  `json:"contributing_factors"`
	RecommendedActions  []Action  `json:"recommended_actions"`
	Scorer              Strategy  `json:"scorer"`
}

// NewAssessment clamps score and confidence to [0,100] and derives the level
// and timeframe from the shared threshold table.
func NewAssessment(score, confidence int, factors []Factor, actions []Action, scorer Strategy) Assessment {
	score = ClampPercent(score)
	level, timeframe := Classify(score)
	if factors == nil {
		factors = []Factor{}
	}
	if actions == nil {
		actions = []Action{}
	}
	return Assessment{
		RiskScore:           score,
		RiskLevel:           level,
		PredictedTimeframe:  timeframe,
		Confidence:          ClampPercent(confidence),
		ContributingFactors: factors,
		RecommendedActions:  actions,
		Scorer:              scorer,
	}
}

// SignalSnapshot is the normalized per-employee metric bundle consumed by a
// scorer. It is rebuilt from source records on every run.
type SignalSnapshot struct {
	FeedbackSessionCount     int        `json:"feedback_session_count"`
	LastFeedbackSessionAt    *time.Time `json:"last_feedback_session_at,omitempty"`
	AverageFeedbackSentiment int        `json:"average_feedback_sentiment"`
	GoalsTotal               int        `json:"goals_total"`
	GoalsCompleted           int        `json:"goals_completed"`
	GoalsInProgress          int        `json:"goals_in_progress"`
	AverageGoalProgress      int        `json:"average_goal_progress"`
	RecognitionCount         int        `json:"recognition_count"`
	LastRecognitionAt        *time.Time `json:"last_recognition_at,omitempty"`
	MilestoneCount           int        `json:"milestone_count"`
	LastMilestoneAt          *time.Time `json:"last_milestone_at,omitempty"`
}
