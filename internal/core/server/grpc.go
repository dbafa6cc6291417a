// Package server provides gRPC server lifecycle management.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/solatis/weavereplace/internal/core/api"
	"github.com/solatis/weavereplace/internal/core/config"
)

const shutdownTimeout = 30 * time.Second

// GRPCServer manages gRPC server lifecycle and the metrics listener.
type GRPCServer struct {
	server        *grpc.Server
	health        *health.Server
	metrics       *Metrics
	metricsServer *http.Server
	config        *config.Config
	logger        *zap.Logger
}

// NewGRPCServer creates gRPC server with interceptors and service registration.
func NewGRPCServer(cfg *config.Config, service api.WeaveServer, metrics *Metrics, logger *zap.Logger) (*GRPCServer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}
	if service == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			loggingInterceptor(logger),
			metrics.UnaryInterceptor(),
			timeoutInterceptor(cfg.Server.RequestTimeout),
			recoveryInterceptor(logger),
		),
	}

	server := grpc.NewServer(opts...)
	api.RegisterWeaveServer(server, service)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(api.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	s := &GRPCServer{
		server:  server,
		health:  healthServer,
		metrics: metrics,
		config:  cfg,
		logger:  logger,
	}
	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		s.metricsServer = &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}
	return s, nil
}

// Start binds the configured address and serves until Shutdown.
func (s *GRPCServer) Start(ctx context.Context) error {
	addr := s.config.Server.Addr()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", addr, err)
	}
	return s.Serve(listener)
}

// Serve serves gRPC on listener and, when configured, metrics over HTTP.
func (s *GRPCServer) Serve(listener net.Listener) error {
	if s.metricsServer != nil {
		go func() {
			if err := s.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("metrics listener stopped", zap.Error(err))
			}
		}()
	}

	s.logger.Info("serving",
		zap.String("addr", listener.Addr().String()),
		zap.String("metrics_addr", s.config.Metrics.Addr),
	)
	return s.server.Serve(listener)
}

// Shutdown marks the service NOT_SERVING and gracefully stops with a
// 30-second timeout.
func (s *GRPCServer) Shutdown(ctx context.Context) error {
	s.health.Shutdown()

	if s.metricsServer != nil {
		mctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
		if err := s.metricsServer.Shutdown(mctx); err != nil {
			s.logger.Warn("metrics listener shutdown", zap.Error(err))
		}
	}

	stopped := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		s.server.Stop()
		return fmt.Errorf("shutdown cancelled by context: %w", ctx.Err())
	case <-time.After(shutdownTimeout):
		s.server.Stop()
		return fmt.Errorf("graceful shutdown timeout, forced stop")
	}
}
