package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"runtime/debug"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/miradorstack/mirador-triage/internal/config"
	"github.com/miradorstack/mirador-triage/internal/grpc/triagev1"
)

// Alerts and incidents are small; anything larger is a client bug.
const maxMessageBytes = 4 << 20

// Server hosts the triage engine and the standard health service on one listener.
type Server struct {
	cfg      config.ServerConfig
	grpc     *grpc.Server
	listener net.Listener
	health   *health.Server
	logger   *slog.Logger
}

// NewServer listens on cfg.Address and registers service.
func NewServer(cfg config.ServerConfig, service triagev1.TriageEngineServer, opts ...grpc.ServerOption) (*Server, error) {
	lis, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", cfg.Address, err)
	}
	return NewServerWithListener(cfg, lis, service, opts...), nil
}

// NewServerWithListener registers service on a caller-supplied listener, e.g. bufconn.
func NewServerWithListener(cfg config.ServerConfig, lis net.Listener, service triagev1.TriageEngineServer, opts ...grpc.ServerOption) *Server {
	s := &Server{
		cfg:      cfg,
		listener: lis,
		health:   health.NewServer(),
		logger:   slog.Default(),
	}

	grpc_prometheus.EnableHandlingTimeHistogram()
	serverOpts := append([]grpc.ServerOption{
		grpc.MaxRecvMsgSize(maxMessageBytes),
		grpc.ChainUnaryInterceptor(grpc_prometheus.UnaryServerInterceptor, s.recoverUnary),
		grpc.ChainStreamInterceptor(grpc_prometheus.StreamServerInterceptor),
	}, opts...)
	s.grpc = grpc.NewServer(serverOpts...)

	triagev1.RegisterTriageEngineServer(s.grpc, service)
	healthpb.RegisterHealthServer(s.grpc, s.health)
	grpc_prometheus.Register(s.grpc)
	s.SetServing(true)
	return s
}

// SetServing flips the health status reported for the server and the triage service.
func (s *Server) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(triagev1.ServiceName, st)
}

// Start blocks serving requests. It returns nil after Shutdown.
func (s *Server) Start() error {
	if s.listener == nil {
		return errors.New("server has no listener")
	}
	return s.grpc.Serve(s.listener)
}

// Shutdown reports NOT_SERVING, drains in-flight calls and hard-stops when ctx
// expires first.
func (s *Server) Shutdown(ctx context.Context) {
	s.health.Shutdown()

	drained := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(drained)
	}()

	select {
	case <-drained:
	case <-ctx.Done():
		s.logger.Warn("graceful shutdown timed out, forcing stop", slog.Duration("timeout", s.cfg.GracefulTimeout))
		s.grpc.Stop()
	}
}

// Address is the bound listener address.
func (s *Server) Address() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// recoverUnary turns a handler panic into codes.Internal instead of killing the process.
func (s *Server) recoverUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("handler panicked",
				slog.String("method", info.FullMethod),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			err = status.Error(codes.Internal, "internal error")
		}
	}()
	return handler(ctx, req)
}
