package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	pb "github.com/appsforbuild-cmyk/evalifyai-sub001/api/v1"
	"github.com/appsforbuild-cmyk/evalifyai-sub001/internal/config"
	handler "github.com/appsforbuild-cmyk/evalifyai-sub001/internal/grpc"
	"github.com/appsforbuild-cmyk/evalifyai-sub001/internal/httpapi"
	"github.com/appsforbuild-cmyk/evalifyai-sub001/internal/repository"
	"github.com/appsforbuild-cmyk/evalifyai-sub001/internal/service"
	"github.com/appsforbuild-cmyk/evalifyai-sub001/pkg/cache"
	dbbuilder "github.com/appsforbuild-cmyk/evalifyai-sub001/pkg/database"
	grpcsrv "github.com/appsforbuild-cmyk/evalifyai-sub001/pkg/grpc/server"
	"github.com/appsforbuild-cmyk/evalifyai-sub001/pkg/llm"
	"github.com/appsforbuild-cmyk/evalifyai-sub001/pkg/metrics"
)

const shutdownTimeout = 10 * time.Second

type Option func(*App)

// WithGRPCListener serves gRPC on lis instead of the configured port.
func WithGRPCListener(lis net.Listener) Option {
	return func(a *App) {
		a.grpcListener = lis
	}
}

// WithHTTPListener serves HTTP on lis instead of the configured address.
func WithHTTPListener(lis net.Listener) Option {
	return func(a *App) {
		a.httpListener = lis
	}
}

type App struct {
	cfg         *config.Config
	logger      *zap.Logger
	dbPool      *sql.DB
	cache       *cache.Cache
	metrics     *metrics.Manager
	predictions *repository.PredictionRepository
	scorer      service.Scorer
	batch       *service.BatchService

	grpcListener net.Listener
	httpListener net.Listener
}

// NewApp opens storage, applies the schema and wires the scoring pipeline.
// Servers are only built by Serve.
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dbPool, err := OpenDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:     cfg,
		logger:  logger,
		dbPool:  dbPool,
		metrics: metrics.NewManager(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if cfg.RedisAddr != "" {
		cacheClient, err := cache.New(ctx, cacheOptions(cfg)...)
		if err != nil {
			_ = dbPool.Close()
			return nil, fmt.Errorf("cache init failed: %w", err)
		}
		a.cache = cacheClient
		logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr))
	} else {
		logger.Info("Redis disabled; alert suppression and read cache are off")
	}

	a.scorer, err = a.newScorer(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	signals := repository.NewSignalRepository(dbPool, cfg.DBDriver)
	directory := repository.NewDirectoryRepository(dbPool, cfg.DBDriver, cfg.ManagerRoles, cfg.HRRoles)
	a.predictions = repository.NewPredictionRepository(dbPool, cfg.DBDriver)
	notifications := repository.NewNotificationRepository(dbPool, cfg.DBDriver)

	aggregator := service.NewSignalAggregator(service.SignalSources{
		Feedback:     signals,
		Goals:        signals,
		Recognitions: signals,
		Milestones:   signals,
	}, cfg.ReadTimeout, logger)

	dispatcherOpts := []service.DispatcherOption{
		service.WithActionURLBase(cfg.ActionURLBase),
		service.WithDispatcherMetrics(a.metrics),
	}
	if a.cache != nil && cfg.AlertSuppressionWindow > 0 {
		dispatcherOpts = append(dispatcherOpts, service.WithSuppression(a.cache, cfg.AlertSuppressionWindow))
	}
	dispatcher := service.NewAlertDispatcher(directory, notifications, logger, dispatcherOpts...)

	batchOpts := []service.BatchOption{
		service.WithConcurrency(cfg.BatchConcurrency),
		service.WithBatchMetrics(a.metrics),
		service.WithBaseContext(ctx),
	}
	if a.cache != nil {
		batchOpts = append(batchOpts, service.WithPredictionInvalidator(handler.NewCacheInvalidator(a.cache)))
	}
	a.batch = service.NewBatchService(directory, aggregator, a.scorer, a.predictions, dispatcher, logger, batchOpts...)

	return a, nil
}

func cacheOptions(cfg *config.Config) []cache.Option {
	return []cache.Option{
		cache.WithAddress(cfg.RedisAddr),
		cache.WithPassword(cfg.RedisPassword),
		cache.WithDB(cfg.RedisDB),
		cache.WithKeyPrefix(cfg.RedisKeyPrefix),
	}
}

// OpenDatabase connects to the configured database and applies the schema.
func OpenDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*sql.DB, error) {
	dbPool, err := dbbuilder.New(ctx,
		dbbuilder.WithDriver(cfg.DBDriver),
		dbbuilder.WithDataSource(cfg.DBDSN),
	)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	if err := repository.Migrate(ctx, dbPool); err != nil {
		_ = dbPool.Close()
		return nil, fmt.Errorf("database migration failed: %w", err)
	}
	logger.Info("Database pool initialized", zap.String("driver", cfg.DBDriver))
	return dbPool, nil
}

// newScorer returns the AI scorer when a provider is configured, otherwise
// the rule-based scorer alone.
func (a *App) newScorer(ctx context.Context) (service.Scorer, error) {
	rules := service.NewRuleBasedScorer()

	provider, err := llm.NewProvider(ctx, llm.Config{
		Provider:      a.cfg.AIProvider,
		APIKey:        a.cfg.AIAPIKey,
		Model:         a.cfg.AIModel,
		BaseURL:       a.cfg.AIBaseURL,
		Timeout:       a.cfg.AITimeout,
		BedrockRegion: a.cfg.BedrockRegion,
	}, a.logger)
	switch {
	case errors.Is(err, llm.ErrProviderDisabled):
		a.logger.Info("AI provider disabled; scoring with rules only")
		return rules, nil
	case errors.Is(err, llm.ErrMissingCredential):
		a.logger.Warn("AI provider credential missing; scoring with rules only", zap.Error(err))
		return rules, nil
	case err != nil:
		return nil, fmt.Errorf("ai provider init failed: %w", err)
	}

	a.logger.Info("AI scoring enabled", zap.String("provider", provider.Name()))
	return service.NewAIScorer(provider, rules, a.logger,
		service.WithPromptTemplate(a.cfg.PromptTemplate),
		service.WithAITimeout(a.cfg.AITimeout),
		service.WithScorerMetrics(a.metrics),
	), nil
}

// RunOnce executes a single batch run.
func (a *App) RunOnce(ctx context.Context) (service.RunSummary, error) {
	return a.batch.RunBatch(ctx)
}

// Serve starts the gRPC and HTTP surfaces and the scheduler, and blocks
// until ctx is done. Shutdown is graceful within shutdownTimeout.
func (a *App) Serve(ctx context.Context) error {
	a.logger.Info("application starting")

	grpcOpts := []grpcsrv.Option{
		grpcsrv.WithPort(a.cfg.GRPCPort),
		grpcsrv.WithLogger(a.logger),
		grpcsrv.WithReflection(a.cfg.GRPCReflectionEnabled),
		grpcsrv.WithLogging(true),
		grpcsrv.WithAuthToken(a.cfg.AuthToken),
	}
	if a.grpcListener != nil {
		grpcOpts = append(grpcOpts, grpcsrv.WithListener(a.grpcListener))
	}
	grpcServer, err := grpcsrv.New(grpcOpts...)
	if err != nil {
		return fmt.Errorf("failed to create gRPC server: %w", err)
	}

	// A nil *cache.Cache must not reach the handlers as a non-nil interface.
	var readCache handler.Cacher
	if a.cache != nil {
		readCache = a.cache
	}
	grpcHandlers := handler.NewAttritionHandlers(a.batch, a.predictions, readCache, a.logger, a.cfg.CacheTTL)
	grpcServer.Register(&pb.AttritionService_ServiceDesc, grpcHandlers)

	httpServer := httpapi.New(a.cfg.HTTPAddr, a.batch, a.logger,
		httpapi.WithAuthToken(a.cfg.AuthToken),
		httpapi.WithMetricsHandler(a.metrics.Handler()),
	)

	grpcServed := grpcServer.Start()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := <-grpcServed; err != nil {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if a.httpListener != nil {
			return httpServer.Serve(a.httpListener)
		}
		return httpServer.ListenAndServe()
	})
	g.Go(func() error {
		runScheduler(gctx, a.cfg.BatchInterval, a.batch, a.logger)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("application shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("HTTP shutdown error", zap.Error(err))
		}
		if err := grpcServer.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("gRPC shutdown error", zap.Error(err))
		}
		return nil
	})

	err = g.Wait()
	if closeErr := a.Close(); closeErr != nil {
		a.logger.Error("resource shutdown error", zap.Error(closeErr))
	}
	if err != nil {
		return err
	}
	a.logger.Info("graceful shutdown completed successfully")
	return nil
}

// Close releases the cache client and the database pool.
func (a *App) Close() error {
	var errs []error
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("cache close: %w", err))
		}
	}
	if err := a.dbPool.Close(); err != nil {
		errs = append(errs, fmt.Errorf("database close: %w", err))
	}
	return errors.Join(errs...)
}
