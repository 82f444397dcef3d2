package service

import "errors"

var (
	ErrEligibleEmployees = errors.New("load eligible employees")
	ErrSignalRead        = errors.New("read employee signals")
	ErrPersist           = errors.New("persist prediction")
	ErrInvalidAIResponse = errors.New("invalid AI response")
	ErrNoJSONObject      = errors.New("no JSON object in AI response")
	ErrBatchCanceled     = errors.New("batch canceled")
)

// Failure stages reported in run summaries and metrics.
const (
	StageAggregate = "aggregate"
	StageScore     = "score"
	StagePersist   = "persist"
	StageCanceled  = "canceled"
)
