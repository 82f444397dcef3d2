package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/appsforbuild-cmyk/evalifyai-sub001/internal/domain"
)

const (
	defaultConcurrency  = 4
	defaultWriteTimeout = 5 * time.Second
	runFlightKey        = "attrition-batch"

	outcomeSuccess  = "success"
	outcomeFailed   = "failed"
	outcomeCanceled = "canceled"
)

// BatchService runs the attrition pipeline over every eligible employee.
type BatchService struct {
	directory    Directory
	aggregator   SnapshotBuilder
	scorer       Scorer
	store        PredictionStore
	dispatcher   Dispatcher
	concurrency  int
	writeTimeout time.Duration
	metrics      Metrics
	logger       *zap.Logger
	now          func() time.Time
	newRunID     func() string
	baseCtx      context.Context
	invalidator  PredictionCacheInvalidator

	flight singleflight.Group
}

type BatchOption func(*BatchService)

// WithConcurrency bounds the number of employees processed at once.
func WithConcurrency(n int) BatchOption {
	return func(s *BatchService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func WithWriteTimeout(d time.Duration) BatchOption {
	return func(s *BatchService) {
		if d > 0 {
			s.writeTimeout = d
		}
	}
}

func WithBatchMetrics(m Metrics) BatchOption {
	return func(s *BatchService) {
		if m != nil {
			s.metrics = m
		}
	}
}

func WithBatchClock(now func() time.Time) BatchOption {
	return func(s *BatchService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithBaseContext bounds every run to ctx. Runs are detached from the
// triggering caller, so only ctx (typically the process lifetime) stops one.
func WithBaseContext(ctx context.Context) BatchOption {
	return func(s *BatchService) {
		if ctx != nil {
			s.baseCtx = ctx
		}
	}
}

// WithPredictionInvalidator drops cached reads for an employee after a new
// assessment is persisted.
func WithPredictionInvalidator(inv PredictionCacheInvalidator) BatchOption {
	return func(s *BatchService) {
		if inv != nil {
			s.invalidator = inv
		}
	}
}

func NewBatchService(
	directory Directory,
	aggregator SnapshotBuilder,
	scorer Scorer,
	store PredictionStore,
	dispatcher Dispatcher,
	logger *zap.Logger,
	opts ...BatchOption,
) *BatchService {
	if directory == nil || aggregator == nil || scorer == nil || store == nil || dispatcher == nil {
		panic("batch dependencies must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	s := &BatchService{
		directory:    directory,
		aggregator:   aggregator,
		scorer:       scorer,
		store:        store,
		dispatcher:   dispatcher,
		concurrency:  defaultConcurrency,
		writeTimeout: defaultWriteTimeout,
		metrics:      noopMetrics{},
		logger:       logger.Named("batch"),
		now:          time.Now,
		newRunID:     uuid.NewString,
		baseCtx:      context.Background(),
		invalidator:  noopInvalidator{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunBatch scores every eligible employee. Concurrent callers share one
// in-flight run that only the base context can stop. A caller whose ctx ends
// first gets ErrBatchCanceled while the run carries on for the rest. The
// summary is always populated.
func (s *BatchService) RunBatch(ctx context.Context) (RunSummary, error) {
	ch := s.flight.DoChan(runFlightKey, func() (any, error) {
		return s.run(s.baseCtx)
	})

	select {
	case res := <-ch:
		if res.Shared {
			s.logger.Debug("joined in-flight batch run")
		}
		return res.Val.(RunSummary), res.Err
	case <-ctx.Done():
		err := fmt.Errorf("%w: %v", ErrBatchCanceled, ctx.Err())
		s.logger.Debug("caller left in-flight batch run", zap.Error(ctx.Err()))
		return RunSummary{Results: []EmployeeOutcome{}, Failures: []EmployeeFailure{}, Error: err.Error()}, err
	}
}

type employeeOutcome struct {
	result  EmployeeOutcome
	failure *EmployeeFailure
}

func (s *BatchService) run(ctx context.Context) (RunSummary, error) {
	summary := RunSummary{
		RunID:     s.newRunID(),
		StartedAt: s.now().UTC(),
		Results:   []EmployeeOutcome{},
		Failures:  []EmployeeFailure{},
	}
	logger := s.logger.With(zap.String("run_id", summary.RunID))

	employees, err := s.directory.EligibleEmployees(ctx)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrEligibleEmployees, err)
		summary.Error = err.Error()
		summary.FinishedAt = s.now().UTC()
		s.metrics.RunFinished(outcomeFailed, summary.FinishedAt.Sub(summary.StartedAt))
		logger.Error("batch aborted", zap.Error(err))
		return summary, err
	}
	logger.Info("batch started", zap.Int("eligible", len(employees)), zap.Int("concurrency", s.concurrency))

	outcomes := make([]employeeOutcome, len(employees))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, e := range employees {
		if ctx.Err() != nil {
			outcomes[i] = canceledOutcome(e.ID)
			continue
		}
		g.Go(func() error {
			outcomes[i] = s.processEmployee(ctx, logger, e)
			return nil
		})
	}
	_ = g.Wait()

	for _, o := range outcomes {
		if o.failure != nil {
			summary.Failures = append(summary.Failures, *o.failure)
			continue
		}
		summary.Results = append(summary.Results, o.result)
	}
	summary.Processed = len(summary.Results)
	summary.Failed = len(summary.Failures)
	summary.FinishedAt = s.now().UTC()
	elapsed := summary.FinishedAt.Sub(summary.StartedAt)

	if ctx.Err() != nil {
		err := fmt.Errorf("%w: %v", ErrBatchCanceled, ctx.Err())
		summary.Error = err.Error()
		s.metrics.RunFinished(outcomeCanceled, elapsed)
		logger.Warn("batch canceled",
			zap.Int("processed", summary.Processed),
			zap.Int("failed", summary.Failed))
		return summary, err
	}

	summary.Success = true
	s.metrics.RunFinished(outcomeSuccess, elapsed)
	logger.Info("batch finished",
		zap.Int("processed", summary.Processed),
		zap.Int("failed", summary.Failed),
		zap.Duration("elapsed", elapsed))
	return summary, nil
}

func (s *BatchService) processEmployee(ctx context.Context, logger *zap.Logger, e domain.Employee) (out employeeOutcome) {
	defer func() {
		if r := recover(); r != nil {
			out = s.fail(ctx, logger, e.ID, StageScore, fmt.Errorf("panic: %v", r))
		}
	}()

	if ctx.Err() != nil {
		return canceledOutcome(e.ID)
	}

	snapshot, err := s.aggregator.Aggregate(ctx, e.ID)
	if err != nil {
		return s.fail(ctx, logger, e.ID, StageAggregate, err)
	}

	assessment, err := s.scorer.Score(ctx, snapshot, e)
	if err != nil {
		return s.fail(ctx, logger, e.ID, StageScore, err)
	}

	if ctx.Err() != nil {
		return canceledOutcome(e.ID)
	}

	dbCtx, cancel := context.WithTimeout(ctx, s.writeTimeout)
	defer cancel()
	if err := s.store.Save(dbCtx, e.ID, assessment, s.now().UTC()); err != nil {
		return s.fail(ctx, logger, e.ID, StagePersist, fmt.Errorf("%w: %v", ErrPersist, err))
	}
	s.metrics.EmployeeScored(string(assessment.Scorer))
	if err := s.invalidator.Invalidate(ctx, e.ID); err != nil {
		logger.Warn("prediction cache invalidation failed",
			zap.String("employee_id", e.ID),
			zap.Error(err))
	}

	res := s.dispatcher.Dispatch(ctx, e, assessment)
	logger.Debug("employee scored",
		zap.String("employee_id", e.ID),
		zap.Int("risk_score", assessment.RiskScore),
		zap.String("risk_level", string(assessment.RiskLevel)),
		zap.String("scorer", string(assessment.Scorer)),
		zap.Int("alerts_sent", res.Sent))

	return employeeOutcome{result: EmployeeOutcome{
		EmployeeID: e.ID,
		RiskScore:  assessment.RiskScore,
		RiskLevel:  string(assessment.RiskLevel),
		Scorer:     string(assessment.Scorer),
	}}
}

func (s *BatchService) fail(ctx context.Context, logger *zap.Logger, employeeID, stage string, err error) employeeOutcome {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return canceledOutcome(employeeID)
	}
	s.metrics.EmployeeFailed(stage)
	logger.Error("employee skipped",
		zap.String("employee_id", employeeID),
		zap.String("stage", stage),
		zap.Error(err))
	return employeeOutcome{failure: &EmployeeFailure{EmployeeID: employeeID, Stage: stage, Error: err.Error()}}
}

func canceledOutcome(employeeID string) employeeOutcome {
	return employeeOutcome{failure: &EmployeeFailure{
		EmployeeID: employeeID,
		Stage:      StageCanceled,
		Error:      ErrBatchCanceled.Error(),
	}}
}
