package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/miradorstack/mirador-fmeda/internal/config"
	"github.com/miradorstack/mirador-fmeda/internal/grpc/fmedav1"
)

// Server hosts the FMEDA engine service together with gRPC health and reflection.
type Server struct {
	cfg      config.ServerConfig
	logger   *slog.Logger
	grpc     *grpc.Server
	health   *health.Server
	listener net.Listener
}

// NewServer listens on cfg.Address and registers engine on a new gRPC server. Calls
// arriving without a deadline get cfg.RequestTimeout.
func NewServer(cfg config.ServerConfig, logger *slog.Logger, engine fmedav1.FMEDAEngineServer, opts ...grpc.ServerOption) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	lis, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", cfg.Address, err)
	}

	grpc_prometheus.EnableHandlingTimeHistogram()
	serverOpts := append([]grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			grpc_prometheus.UnaryServerInterceptor,
			defaultDeadline(cfg.RequestTimeout),
			logCalls(logger),
		),
		grpc.ChainStreamInterceptor(grpc_prometheus.StreamServerInterceptor),
	}, opts...)
	srv := grpc.NewServer(serverOpts...)

	fmedav1.RegisterFMEDAEngineServer(srv, engine)
	grpc_prometheus.Register(srv)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	s := &Server{cfg: cfg, logger: logger, grpc: srv, health: hs, listener: lis}
	s.SetServing(true)
	return s, nil
}

// SetServing flips the health status reported for the server and the engine service.
func (s *Server) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(fmedav1.ServiceName, st)
}

// Start serves until Shutdown.
func (s *Server) Start() error {
	if s.grpc == nil || s.listener == nil {
		return fmt.Errorf("server not initialised")
	}
	s.logger.Info("grpc server listening", slog.String("address", s.Address()))
	return s.grpc.Serve(s.listener)
}

// Shutdown reports NOT_SERVING, drains in-flight calls and stops hard once ctx expires.
func (s *Server) Shutdown(ctx context.Context) {
	if s.grpc == nil {
		return
	}
	s.health.Shutdown()

	drained := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(drained)
	}()
	select {
	case <-ctx.Done():
		s.logger.Warn("grpc drain timed out, stopping")
		s.grpc.Stop()
	case <-drained:
	}
}

// Address is the bound listener address.
func (s *Server) Address() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// GracefulTimeout returns the configured drain period.
func (s *Server) GracefulTimeout() time.Duration {
	return s.cfg.GracefulTimeout
}

func defaultDeadline(timeout time.Duration) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if _, ok := ctx.Deadline(); ok || timeout <= 0 {
			return handler(ctx, req)
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return handler(ctx, req)
	}
}

func logCalls(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		attrs := []any{
			slog.String("method", info.FullMethod),
			slog.String("code", code.String()),
			slog.Duration("duration", time.Since(start)),
		}
		switch code {
		case codes.OK, codes.InvalidArgument, codes.NotFound, codes.FailedPrecondition, codes.Canceled:
			logger.Debug("grpc call", attrs...)
		default:
			logger.Warn("grpc call failed", attrs...)
		}
		return resp, err
	}
}
