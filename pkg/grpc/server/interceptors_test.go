package server

import (
	"context"
	"net"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func TestLoggingInterceptor(t *testing.T) {
	logger := zaptest.NewLogger(t)

	interceptor := LoggingInterceptor(logger)

	successHandler := func(ctx context.Context, req any) (any, error) {
		return "success", nil
	}

	errorHandler := func(ctx context.Context, req any) (any, error) {
		return nil, status.Error(codes.InvalidArgument, "test error")
	}

	// Test successful request
	t.Run("successful request", func(t *testing.T) {
		info := &grpc.UnaryServerInfo{
			FullMethod: "/test.Service/TestMethod",
		}

		resp, err := interceptor(context.Background(), "test request", info, successHandler)
		if err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
		if resp != "success" {
			t.Errorf("Expected 'success', got %v", resp)
		}
	})

	// Test error request
	t.Run("error request", func(t *testing.T) {
		info := &grpc.UnaryServerInfo{
			FullMethod: "/test.Service/TestMethod",
		}

		_, err := interceptor(context.Background(), "test request", info, errorHandler)
		if err == nil {
			t.Error("Expected an error, got nil")
		}

		st, ok := status.FromError(err)
		if !ok {
			t.Error("Expected gRPC status error")
		}
		if st.Code() != codes.InvalidArgument {
			t.Errorf("Expected InvalidArgument, got %v", st.Code())
		}
	})
}

func TestAuthInterceptor(t *testing.T) {
	interceptor := AuthInterceptor("s3cret")
	handler := func(ctx context.Context, req any) (any, error) {
		return "ok", nil
	}
	info := &grpc.UnaryServerInfo{FullMethod: "/evalify.attrition.v1.AttritionService/RunBatch"}

	tests := []struct {
		name     string
		md       metadata.MD
		method   string
		wantCode codes.Code
	}{
		{name: "valid token", md: metadata.Pairs("authorization", "Bearer s3cret"), wantCode: codes.OK},
		{name: "missing token", md: metadata.MD{}, wantCode: codes.Unauthenticated},
		{name: "wrong token", md: metadata.Pairs("authorization", "Bearer nope"), wantCode: codes.Unauthenticated},
		{name: "wrong scheme", md: metadata.Pairs("authorization", "Basic s3cret"), wantCode: codes.Unauthenticated},
		{name: "health is public", md: metadata.MD{}, method: "/grpc.health.v1.Health/Check", wantCode: codes.OK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := metadata.NewIncomingContext(context.Background(), tt.md)
			callInfo := info
			if tt.method != "" {
				callInfo = &grpc.UnaryServerInfo{FullMethod: tt.method}
			}

			_, err := interceptor(ctx, nil, callInfo, handler)
			if got := status.Code(err); got != tt.wantCode {
				t.Errorf("Expected %v, got %v", tt.wantCode, got)
			}
		})
	}
}

func TestServerBuilderRejectsInvalidPort(t *testing.T) {
	if _, err := New(WithPort(70000)); err == nil {
		t.Error("Expected an error for an out of range port")
	}
}

func TestServerBuilderWithLogging(t *testing.T) {
	logger := zaptest.NewLogger(t)
	lis := bufconn.Listen(1024 * 1024)

	server, err := New(
		WithListener(lis),
		WithLogger(logger),
		WithLogging(true),
		WithAuthToken("s3cret"),
	)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			t.Logf("Server shutdown error: %v", err)
		}
	}()

	if server.grpcServer == nil {
		t.Error("gRPC server should not be nil")
	}
	if server.healthServer == nil {
		t.Error("Health server should not be nil")
	}

	server.Start()
	if err := <-server.Start(); err == nil {
		t.Error("Expected an error when starting twice")
	}

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("Failed to dial server: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	// health checks bypass the auth interceptor
	healthClient := healthpb.NewHealthClient(conn)
	resp, err := healthClient.Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("Health check failed: %v", err)
	}
	if resp.Status != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("Expected SERVING status, got %v", resp.Status)
	}
}

func TestServerRegisterReportsHealth(t *testing.T) {
	lis := bufconn.Listen(1024 * 1024)
	server, err := New(WithListener(lis), WithLogger(zaptest.NewLogger(t)))
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	desc := &grpc.ServiceDesc{
		ServiceName: "evalify.test.Echo",
		HandlerType: (*any)(nil),
	}
	server.Register(desc, struct{}{})
	if got := server.Services(); len(got) != 1 || got[0] != "evalify.test.Echo" {
		t.Errorf("Expected registered service, got %v", got)
	}

	served := server.Start()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("Failed to dial server: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: "evalify.test.Echo"})
	if err != nil {
		t.Fatalf("Health check failed: %v", err)
	}
	if resp.Status != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("Expected SERVING status, got %v", resp.Status)
	}

	if err := server.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	select {
	case err := <-served:
		if err != nil {
			t.Errorf("Expected clean stop, got %v", err)
		}
	case <-time.After(time.Second):
		t.Error("Serve did not return after Shutdown")
	}
}
