package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/appsforbuild-cmyk/evalifyai-sub001/internal/domain"
	"github.com/appsforbuild-cmyk/evalifyai-sub001/pkg/llm"
)

const defaultAITimeout = 20 * time.Second

// Fallback reasons reported to metrics.
const (
	fallbackNoProvider   = "no_provider"
	fallbackCredential   = "missing_credential"
	fallbackTimeout      = "timeout"
	fallbackStatus       = "status"
	fallbackCallError    = "call_error"
	fallbackNoJSON       = "no_json"
	fallbackInvalidShape = "invalid_response"
)

// AIScorer asks a text generator for an assessment and falls back to the
// rule-based scorer on any failure. It never returns an error.
type AIScorer struct {
	generator TextGenerator
	fallback  *RuleBasedScorer
	template  string
	timeout   time.Duration
	metrics   Metrics
	logger    *zap.Logger
	now       func() time.Time
}

type AIScorerOption func(*AIScorer)

func WithPromptTemplate(template string) AIScorerOption {
	return func(s *AIScorer) {
		if strings.TrimSpace(template) != "" {
			s.template = template
		}
	}
}

// WithAITimeout bounds each per-employee generation call.
func WithAITimeout(d time.Duration) AIScorerOption {
	return func(s *AIScorer) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithScorerMetrics(m Metrics) AIScorerOption {
	return func(s *AIScorer) {
		if m != nil {
			s.metrics = m
		}
	}
}

func WithScorerClock(now func() time.Time) AIScorerOption {
	return func(s *AIScorer) {
		if now != nil {
			s.now = now
		}
	}
}

// NewAIScorer builds the primary scorer. A nil generator means every call
// falls back.
func NewAIScorer(generator TextGenerator, fallback *RuleBasedScorer, logger *zap.Logger, opts ...AIScorerOption) *AIScorer {
	if fallback == nil {
		panic("fallback scorer must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AIScorer{
		generator: generator,
		fallback:  fallback,
		template:  DefaultPromptTemplate,
		timeout:   defaultAITimeout,
		metrics:   noopMetrics{},
		logger:    logger.Named("ai_scorer"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AIScorer) Score(ctx context.Context, snapshot domain.SignalSnapshot, employee domain.Employee) (domain.Assessment, error) {
	if s.generator == nil {
		return s.fallBack(employee.ID, fallbackNoProvider, nil, snapshot), nil
	}

	aiCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	prompt := RenderPrompt(s.template, employee, snapshot, s.now())
	text, err := s.generator.Generate(aiCtx, prompt)
	if err != nil {
		return s.fallBack(employee.ID, callFailureReason(err), err, snapshot), nil
	}

	assessment, err := ParseAIResponse(text)
	if err != nil {
		reason := fallbackInvalidShape
		if errors.Is(err, ErrNoJSONObject) {
			reason = fallbackNoJSON
		}
		return s.fallBack(employee.ID, reason, err, snapshot), nil
	}

	s.logger.Debug("ai assessment",
		zap.String("employee_id", employee.ID),
		zap.String("provider", s.generator.Name()),
		zap.Int("risk_score", assessment.RiskScore))
	return assessment, nil
}

func (s *AIScorer) fallBack(employeeID, reason string, err error, snapshot domain.SignalSnapshot) domain.Assessment {
	s.metrics.AIFallback(reason)
	s.logger.Debug("falling back to rule-based scorer",
		zap.String("employee_id", employeeID),
		zap.String("reason", reason),
		zap.Error(err))
	return s.fallback.Assess(snapshot)
}

func callFailureReason(err error) string {
	var statusErr *llm.StatusError
	switch {
	case errors.Is(err, llm.ErrMissingCredential):
		return fallbackCredential
	case errors.Is(err, context.DeadlineExceeded):
		return fallbackTimeout
	case errors.As(err, &statusErr):
		return fallbackStatus
	default:
		return fallbackCallError
	}
}

// aiAssessment accepts both snake_case and camelCase keys. Pointers
// distinguish absent required fields from zero values.
type aiAssessment struct {
	RiskScore       *float64    `json:"risk_score"`
	RiskScoreCamel  *float64    `json:"riskScore"`
	Confidence      *float64    `json:"confidence"`
	Factors         *[]aiFactor `json:"contributing_factors"`
	FactorsCamel    *[]aiFactor `json:"contributingFactors"`
	Actions         *[]aiAction `json:"recommended_actions"`
	ActionsCamel    *[]aiAction `json:"recommendedActions"`
	RiskLevel       string      `json:"risk_level"`
	PredictedWindow string      `json:"predicted_timeframe"`
}

type aiFactor struct {
	Factor      string  `json:"factor"`
	Weight      float64 `json:"weight"`
	Trend       string  `json:"trend"`
	Description string  `json:"description"`
}

type aiAction struct {
	Action    string `json:"action"`
	Priority  string `json:"priority"`
	Rationale string `json:"rationale"`
}

// ParseAIResponse extracts the first JSON object in text that decodes and
// builds an assessment from it. The returned level and timeframe are always
// recomputed from the score.
func ParseAIResponse(text string) (domain.Assessment, error) {
	candidates := jsonObjectCandidates(text)
	if len(candidates) == 0 {
		return domain.Assessment{}, ErrNoJSONObject
	}

	var raw *aiAssessment
	for _, c := range candidates {
		var v aiAssessment
		if err := json.Unmarshal([]byte(c), &v); err == nil {
			raw = &v
			break
		}
	}
	if raw == nil {
		return domain.Assessment{}, fmt.Errorf("%w: no candidate decodes as an assessment object", ErrNoJSONObject)
	}

	score := firstNonNil(raw.RiskScore, raw.RiskScoreCamel)
	factors := firstNonNil(raw.Factors, raw.FactorsCamel)
	actions := firstNonNil(raw.Actions, raw.ActionsCamel)
	switch {
	case score == nil:
		return domain.Assessment{}, fmt.Errorf("%w: missing risk_score", ErrInvalidAIResponse)
	case raw.Confidence == nil:
		return domain.Assessment{}, fmt.Errorf("%w: missing confidence", ErrInvalidAIResponse)
	case factors == nil:
		return domain.Assessment{}, fmt.Errorf("%w: missing contributing_factors", ErrInvalidAIResponse)
	case actions == nil:
		return domain.Assessment{}, fmt.Errorf("%w: missing recommended_actions", ErrInvalidAIResponse)
	}

	outFactors := make([]domain.Factor, 0, len(*factors))
	for _, f := range *factors {
		if strings.TrimSpace(f.Factor) == "" {
			continue
		}
		outFactors = append(outFactors, domain.Factor{
			Factor:      f.Factor,
			Weight:      roundPercent(f.Weight),
			Trend:       domain.ParseTrend(strings.ToLower(f.Trend)),
			Description: f.Description,
		})
	}
	outActions := make([]domain.Action, 0, len(*actions))
	for _, a := range *actions {
		if strings.TrimSpace(a.Action) == "" {
			continue
		}
		outActions = append(outActions, domain.Action{
			Action:    a.Action,
			Priority:  domain.ParsePriority(strings.ToLower(a.Priority)),
			Rationale: a.Rationale,
		})
	}

	return domain.NewAssessment(
		roundPercent(*score),
		roundPercent(*raw.Confidence),
		outFactors,
		outActions,
		domain.StrategyAI,
	), nil
}

func firstNonNil[T any](vs ...*T) *T {
	for _, v := range vs {
		if v != nil {
			return v
		}
	}
	return nil
}
