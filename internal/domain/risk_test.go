package domain_test

import (
	"testing"

	"github.com/appsforbuild-cmyk/evalifyai-sub001/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestClassify_Boundaries(t *testing.T) {
	cases := []struct {
		score     int
		level     domain.RiskLevel
		timeframe domain.Timeframe
	}{
		{score: -10, level: domain.RiskLow, timeframe: domain.TimeframeOver90},
		{score: 0, level: domain.RiskLow, timeframe: domain.TimeframeOver90},
		{score: 39, level: domain.RiskLow, timeframe: domain.TimeframeOver90},
		{score: 40, level: domain.RiskMedium, timeframe: domain.Timeframe60To90},
		{score: 59, level: domain.RiskMedium, timeframe: domain.Timeframe60To90},
		{score: 60, level: domain.RiskHigh, timeframe: domain.Timeframe30To60},
		{score: 79, level: domain.RiskHigh, timeframe: domain.Timeframe30To60},
		{score: 80, level: domain.RiskCritical, timeframe: domain.Timeframe0To30},
		{score: 100, level: domain.RiskCritical, timeframe: domain.Timeframe0To30},
		{score: 250, level: domain.RiskCritical, timeframe: domain.Timeframe0To30},
	}

	for _, tc := range cases {
		level, timeframe := domain.Classify(tc.score)
		assert.Equal(t, tc.level, level, "score %d", tc.score)
		assert.Equal(t, tc.timeframe, timeframe, "score %d", tc.score)
	}
}

func TestClassify_MonotonicAcrossRange(t *testing.T) {
	rank := map[domain.RiskLevel]int{
		domain.RiskLow:      0,
		domain.RiskMedium:   1,
		domain.RiskHigh:     2,
		domain.RiskCritical: 3,
	}
	prev := -1
	for score := 0; score <= 100; score++ {
		level, _ := domain.Classify(score)
		assert.GreaterOrEqual(t, rank[level], prev, "level regressed at score %d", score)
		prev = rank[level]
	}
}

func TestNewAssessment(t *testing.T) {
	t.Run("clamps and derives", func(t *testing.T) {
		a := domain.NewAssessment(130, -5, nil, nil, domain.StrategyAI)

		assert.Equal(t, 100, a.RiskScore)
		assert.Equal(t, 0, a.Confidence)
		assert.Equal(t, domain.RiskCritical, a.RiskLevel)
		assert.Equal(t, domain.Timeframe0To30, a.PredictedTimeframe)
		assert.NotNil(t, a.ContributingFactors)
		assert.NotNil(t, a.RecommendedActions)
		assert.Equal(t, domain.StrategyAI, a.Scorer)
	})

	t.Run("alerting levels", func(t *testing.T) {
		assert.False(t, domain.RiskLow.Alerting())
		assert.False(t, domain.RiskMedium.Alerting())
		assert.True(t, domain.RiskHigh.Alerting())
		assert.True(t, domain.RiskCritical.Alerting())
	})
}

func TestParseEnums(t *testing.T) {
	assert.Equal(t, domain.TrendDeclining, domain.ParseTrend("declining"))
	assert.Equal(t, domain.TrendStable, domain.ParseTrend("sideways"))
	assert.Equal(t, domain.PriorityHigh, domain.ParsePriority("high"))
	assert.Equal(t, domain.PriorityMedium, domain.ParsePriority("urgent"))
}
