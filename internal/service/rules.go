package service

import (
	"context"
	"fmt"

	"github.com/appsforbuild-cmyk/evalifyai-sub001/internal/domain"
)

const (
	ruleBaseScore      = 50
	ruleConfidence     = 65
	lowSentimentBelow  = 40
	highSentimentAbove = 70
	minRecognitions    = 3
	stagnantProgress   = 30
)

// RuleBasedScorer is the deterministic fallback scorer. It holds no state
// and performs no I/O.
type RuleBasedScorer struct{}

func NewRuleBasedScorer() *RuleBasedScorer {
	return &RuleBasedScorer{}
}

func (r *RuleBasedScorer) Score(_ context.Context, s domain.SignalSnapshot, _ domain.Employee) (domain.Assessment, error) {
	return r.Assess(s), nil
}

// Assess applies the additive adjustments to the base score.
func (r *RuleBasedScorer) Assess(s domain.SignalSnapshot) domain.Assessment {
	score := ruleBaseScore
	var factors []domain.Factor
	var actions []domain.Action

	if s.AverageFeedbackSentiment < lowSentimentBelow {
		score += 20
		factors = append(factors, domain.Factor{
			Factor:      "Low Feedback Sentiment",
			Weight:      20,
			Trend:       domain.TrendDeclining,
			Description: fmt.Sprintf("Average feedback sentiment is %d/100 across recent sessions", s.AverageFeedbackSentiment),
		})
		actions = append(actions, domain.Action{
			Action:    "Schedule 1-on-1 to discuss concerns",
			Priority:  domain.PriorityHigh,
			Rationale: "Recent feedback sentiment is low",
		})
	} else if s.AverageFeedbackSentiment > highSentimentAbove {
		score -= 15
	}

	if s.RecognitionCount < minRecognitions {
		score += 15
		factors = append(factors, domain.Factor{
			Factor:      "Limited Recognition",
			Weight:      15,
			Trend:       domain.TrendDeclining,
			Description: fmt.Sprintf("Only %d recognitions received recently", s.RecognitionCount),
		})
		actions = append(actions, domain.Action{
			Action:    "Implement regular recognition practices",
			Priority:  domain.PriorityMedium,
			Rationale: "Recognition is infrequent",
		})
	}

	if s.GoalsTotal > 0 && s.AverageGoalProgress < stagnantProgress {
		score += 15
		factors = append(factors, domain.Factor{
			Factor:      "Goal Progress Stagnation",
			Weight:      15,
			Trend:       domain.TrendDeclining,
			Description: fmt.Sprintf("Average goal progress is %d%% across %d goals", s.AverageGoalProgress, s.GoalsTotal),
		})
		actions = append(actions, domain.Action{
			Action:    "Review and adjust goals collaboratively",
			Priority:  domain.PriorityMedium,
			Rationale: "Goals are not progressing",
		})
	}

	if s.MilestoneCount == 0 {
		score += 10
		factors = append(factors, domain.Factor{
			Factor:      "Career Stagnation",
			Weight:      10,
			Trend:       domain.TrendStable,
			Description: "No career milestones completed",
		})
		actions = append(actions, domain.Action{
			Action:    "Create career development plan",
			Priority:  domain.PriorityHigh,
			Rationale: "No visible career progression",
		})
	}

	return domain.NewAssessment(score, ruleConfidence, factors, actions, domain.StrategyRuleBased)
}
