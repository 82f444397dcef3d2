package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	pb "github.com/appsforbuild-cmyk/evalifyai-sub001/api/v1"
	"github.com/appsforbuild-cmyk/evalifyai-sub001/internal/domain"
	"github.com/appsforbuild-cmyk/evalifyai-sub001/internal/repository"
	"github.com/appsforbuild-cmyk/evalifyai-sub001/internal/service"
)

const (
	defaultCacheDuration = 5 * time.Minute
	defaultReadTimeout   = 10 * time.Second

	DefaultHistoryLimit = 30
	MaxHistoryLimit     = 365
)

type CacheKeyType string

const (
	cacheKeyPrediction CacheKeyType = "grpc:prediction"
	cacheKeyHistory    CacheKeyType = "grpc:prediction_history"
)

type AttritionHandlers struct {
	pb.UnimplementedAttritionServiceServer
	batch       BatchRunner
	predictions PredictionReader
	cache       Cacher
	logger      *zap.Logger
	sfGroup     singleflight.Group
	cacheTTL    time.Duration
}

// NewAttritionHandlers initializes the gRPC handlers. cache may be nil.
func NewAttritionHandlers(batch BatchRunner, predictions PredictionReader, cache Cacher, logger *zap.Logger, ttl time.Duration) *AttritionHandlers {
	if batch == nil {
		panic("nil BatchRunner provided to NewAttritionHandlers")
	}
	if predictions == nil {
		panic("nil PredictionReader provided to NewAttritionHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = defaultCacheDuration
	}
	return &AttritionHandlers{
		batch:       batch,
		predictions: predictions,
		cache:       cache,
		logger:      logger.Named("grpc-handler"),
		cacheTTL:    ttl,
	}
}

func normalizeKey(prefix CacheKeyType, parts ...any) string {
	var b strings.Builder
	b.WriteString(string(prefix))
	for _, p := range parts {
		fmt.Fprintf(&b, ":%v", p)
	}
	return b.String()
}

func (s *AttritionHandlers) handleError(ctx context.Context, op string, err error) error {
	switch ctx.Err() {
	case context.Canceled:
		s.logger.Warn("request canceled", zap.String("op", op))
		return status.Error(codes.Canceled, "request canceled")
	case context.DeadlineExceeded:
		s.logger.Warn("request timeout", zap.String("op", op))
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}

	switch {
	case errors.Is(err, repository.ErrNotFound):
		s.logger.Info("prediction not found", zap.String("op", op))
		return status.Error(codes.NotFound, "no prediction for employee")
	case errors.Is(err, service.ErrEligibleEmployees):
		s.logger.Error("employee directory unavailable", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Unavailable, "employee directory unavailable")
	case errors.Is(err, service.ErrBatchCanceled):
		s.logger.Warn("batch canceled", zap.String("op", op))
		return status.Error(codes.Canceled, "batch canceled")
	default:
		s.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed: %v", op, err)
	}
}

// RunBatch triggers a batch run. Concurrent triggers share one run.
func (s *AttritionHandlers) RunBatch(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	summary, err := s.batch.RunBatch(ctx)
	if err != nil {
		return nil, s.handleError(ctx, "RunBatch", err)
	}
	return s.toStruct("RunBatch", summary)
}

func (s *AttritionHandlers) GetPrediction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	employeeID, err := employeeIDFrom(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultReadTimeout)
	defer cancel()

	key := normalizeKey(cacheKeyPrediction, employeeID)
	prediction, err := FindAndCache(ctx, s.cache, &s.sfGroup, key, s.cacheTTL, s.logger, func(fetchCtx context.Context) (domain.Prediction, error) {
		return s.predictions.Current(fetchCtx, employeeID)
	})
	if err != nil {
		return nil, s.handleError(ctx, "GetPrediction", err)
	}
	return s.toStruct("GetPrediction", prediction)
}

func (s *AttritionHandlers) GetPredictionHistory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	employeeID, err := employeeIDFrom(req)
	if err != nil {
		return nil, err
	}
	limit, err := historyLimitFrom(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultReadTimeout)
	defer cancel()

	// One entry per employee holds the longest window; limits slice it, so
	// a single delete drops every cached view.
	key := normalizeKey(cacheKeyHistory, employeeID)
	entries, err := FindAndCache(ctx, s.cache, &s.sfGroup, key, s.cacheTTL, s.logger, func(fetchCtx context.Context) ([]domain.HistoryEntry, error) {
		return s.predictions.History(fetchCtx, employeeID, MaxHistoryLimit)
	})
	if err != nil {
		return nil, s.handleError(ctx, "GetPredictionHistory", err)
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}

	return s.toStruct("GetPredictionHistory", map[string]any{
		"employee_id": employeeID,
		"entries":     entries,
	})
}

func employeeIDFrom(req *structpb.Struct) (string, error) {
	v, ok := req.GetFields()["employee_id"]
	if !ok {
		return "", status.Error(codes.InvalidArgument, "employee_id is required")
	}
	id := strings.TrimSpace(v.GetStringValue())
	if id == "" {
		return "", status.Error(codes.InvalidArgument, "employee_id must be a non-empty string")
	}
	return id, nil
}

func historyLimitFrom(req *structpb.Struct) (int, error) {
	v, ok := req.GetFields()["limit"]
	if !ok {
		return DefaultHistoryLimit, nil
	}
	n, isNumber := v.GetKind().(*structpb.Value_NumberValue)
	if !isNumber || n.NumberValue != math.Trunc(n.NumberValue) {
		return 0, status.Error(codes.InvalidArgument, "limit must be an integer")
	}
	if n.NumberValue < 1 || n.NumberValue > MaxHistoryLimit {
		return 0, status.Errorf(codes.InvalidArgument, "limit must be between 1 and %d", MaxHistoryLimit)
	}
	return int(n.NumberValue), nil
}

// toStruct converts v to a Struct through its JSON encoding so the wire
// shape matches the HTTP surface.
func (s *AttritionHandlers) toStruct(op string, v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("encode response", zap.String("op", op), zap.Error(err))
		return nil, status.Errorf(codes.Internal, "%s failed: encode response", op)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		s.logger.Error("decode response", zap.String("op", op), zap.Error(err))
		return nil, status.Errorf(codes.Internal, "%s failed: encode response", op)
	}
	out, err := structpb.NewStruct(fields)
	if err != nil {
		s.logger.Error("build response struct", zap.String("op", op), zap.Error(err))
		return nil, status.Errorf(codes.Internal, "%s failed: encode response", op)
	}
	return out, nil
}
