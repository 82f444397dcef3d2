// Package server hosts gRPC services behind the process interceptor chain and
// reports their readiness through the standard health service.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const defaultPort = 50051

var errAlreadyStarted = errors.New("grpc server already started")

type settings struct {
	port       int
	listener   net.Listener
	logger     *zap.Logger
	reflection bool
	logCalls   bool
	authToken  string
	extra      []grpc.UnaryServerInterceptor
}

type Option func(*settings)

// WithPort is ignored when WithListener is given.
func WithPort(port int) Option {
	return func(s *settings) { s.port = port }
}

// WithListener serves on lis instead of opening the configured port.
func WithListener(lis net.Listener) Option {
	return func(s *settings) { s.listener = lis }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithReflection(enabled bool) Option {
	return func(s *settings) { s.reflection = enabled }
}

// WithLogging logs every unary call with its peer, code and latency.
func WithLogging(enabled bool) Option {
	return func(s *settings) { s.logCalls = enabled }
}

// WithAuthToken requires "authorization: Bearer <token>" metadata on every
// call except health checks and reflection. Empty disables it.
func WithAuthToken(token string) Option {
	return func(s *settings) { s.authToken = token }
}

// WithUnaryInterceptors appends interceptors after logging and auth.
func WithUnaryInterceptors(interceptors ...grpc.UnaryServerInterceptor) Option {
	return func(s *settings) { s.extra = append(s.extra, interceptors...) }
}

// interceptors orders the chain: logging sees rejected calls, auth runs
// before anything caller-supplied.
func (s settings) interceptors() []grpc.UnaryServerInterceptor {
	var chain []grpc.UnaryServerInterceptor
	if s.logCalls {
		chain = append(chain, LoggingInterceptor(s.logger))
	}
	if s.authToken != "" {
		chain = append(chain, AuthInterceptor(s.authToken))
	}
	return append(chain, s.extra...)
}

func (s settings) listen() (net.Listener, error) {
	if s.listener != nil {
		return s.listener, nil
	}
	if s.port < 1 || s.port > 65535 {
		return nil, fmt.Errorf("invalid port %d: must be between 1 and 65535", s.port)
	}
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return nil, fmt.Errorf("listen on port %d: %w", s.port, err)
	}
	return lis, nil
}

// Server owns one grpc.Server, its listener and the health service.
type Server struct {
	grpcServer   *grpc.Server
	healthServer *health.Server
	lis          net.Listener
	logger       *zap.Logger

	mu       sync.Mutex
	services []string
	served   chan error
}

func New(opts ...Option) (*Server, error) {
	cfg := settings{port: defaultPort, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	lis, err := cfg.listen()
	if err != nil {
		return nil, err
	}

	var serverOpts []grpc.ServerOption
	if chain := cfg.interceptors(); len(chain) > 0 {
		serverOpts = append(serverOpts, grpc.ChainUnaryInterceptor(chain...))
	}
	gs := grpc.NewServer(serverOpts...)
	if cfg.reflection {
		reflection.Register(gs)
	}

	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)

	return &Server{
		grpcServer:   gs,
		healthServer: hs,
		lis:          lis,
		logger:       cfg.logger.Named("grpc-server"),
	}, nil
}

// Register installs impl for desc and reports the service SERVING. It must
// be called before Start.
func (s *Server) Register(desc *grpc.ServiceDesc, impl any) {
	s.grpcServer.RegisterService(desc, impl)
	s.healthServer.SetServingStatus(desc.ServiceName, healthpb.HealthCheckResponse_SERVING)

	s.mu.Lock()
	s.services = append(s.services, desc.ServiceName)
	s.mu.Unlock()
	s.logger.Info("service registered", zap.String("service", desc.ServiceName))
}

// Services lists the registered service names in registration order.
func (s *Server) Services() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.services...)
}

// Start serves in the background. The returned channel yields the serve
// error once the server stops; it is nil after Shutdown.
func (s *Server) Start() <-chan error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.served != nil {
		ch := make(chan error, 1)
		ch <- errAlreadyStarted
		return ch
	}
	s.served = make(chan error, 1)

	s.healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.logger.Info("gRPC server listening", zap.String("addr", s.Addr().String()))

	go func(done chan<- error) {
		err := s.grpcServer.Serve(s.lis)
		if err != nil {
			s.logger.Error("gRPC server failed", zap.Error(err))
		}
		done <- err
	}(s.served)
	return s.served
}

// Shutdown flips every service to NOT_SERVING, then drains in-flight calls
// until ctx is done, after which open connections are closed.
func (s *Server) Shutdown(ctx context.Context) error {
	s.healthServer.Shutdown()

	drained := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(drained)
	}()

	select {
	case <-drained:
		s.logger.Info("gRPC server stopped")
		return nil
	case <-ctx.Done():
		s.grpcServer.Stop()
		s.logger.Warn("gRPC drain timed out; connections closed")
		return ctx.Err()
	}
}

func (s *Server) Addr() net.Addr {
	return s.lis.Addr()
}
