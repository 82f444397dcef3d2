package domain

// RiskLevel is the ordinal attrition-risk classification.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Timeframe is the predicted window in which the employee may leave.
type Timeframe string

const (
	Timeframe0To30  Timeframe = "0-30d"
	Timeframe30To60 Timeframe = "30-60d"
	Timeframe60To90 Timeframe = "60-90d"
	TimeframeOver90 Timeframe = "90d+"
)

const (
	minRiskScore = 0
	maxRiskScore = 100
)

// Trend describes the direction of a contributing factor.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

// Priority ranks a recommended action.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type threshold struct {
	min       int
	level     RiskLevel
	timeframe Timeframe
}

// thresholds is ordered from the highest band down; the first band whose
// min is <= score wins.
var thresholds = []threshold{
	{min: 80, level: RiskCritical, timeframe: Timeframe0To30},
	{min: 60, level: RiskHigh, timeframe: Timeframe30To60},
	{min: 40, level: RiskMedium, timeframe: Timeframe60To90},
	{min: minRiskScore, level: RiskLow, timeframe: TimeframeOver90},
}

// Classify maps a risk score to its level and timeframe. The score is
// clamped to [0,100] first.
func Classify(score int) (RiskLevel, Timeframe) {
	score = ClampPercent(score)
	for _, t := range thresholds {
		if score >= t.min {
			return t.level, t.timeframe
		}
	}
	return RiskLow, TimeframeOver90
}

// ClampPercent bounds v to [0,100].
func ClampPercent(v int) int {
	if v < minRiskScore {
		return minRiskScore
	}
	if v > maxRiskScore {
		return maxRiskScore
	}
	return v
}

// Valid reports whether l is one of the known levels.
func (l RiskLevel) Valid() bool {
	switch l {
	case RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return true
	}
	return false
}

// Alerting reports whether the level triggers retention alerts.
func (l RiskLevel) Alerting() bool {
	return l == RiskHigh || l == RiskCritical
}

// ParseTrend normalizes free-form trend text, defaulting to stable.
func ParseTrend(s string) Trend {
	switch Trend(s) {
	case TrendImproving, TrendStable, TrendDeclining:
		return Trend(s)
	}
	return TrendStable
}

// ParsePriority normalizes free-form priority text, defaulting to medium.
func ParsePriority(s string) Priority {
	switch Priority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return Priority(s)
	}
	return PriorityMedium
}
