// Package serve provides the gRPC lifecycle for a long-running
// orchestrator process: listener setup, health reporting, and graceful
// shutdown on signals or context cancellation.
package serve

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health check service name reported for the
// orchestrator. Clients watching readiness should query this name.
const ServiceName = "urbannexus.Orchestrator"

// Config holds server configuration: network settings, graceful
// shutdown behavior, and optional TLS.
type Config struct {
	// Port is the TCP port on which the gRPC server listens.
	// Port 0 picks an available port, which Port() reports.
	Port int

	// GracefulTimeout is the maximum duration to wait for active
	// requests to complete during graceful shutdown.
	GracefulTimeout time.Duration

	// TLSCertFile and TLSKeyFile enable TLS when both are set.
	TLSCertFile string
	TLSKeyFile  string

	// Logger receives lifecycle messages. Defaults to slog.Default.
	Logger *slog.Logger
}

// DefaultConfig returns defaults suitable for local development.
func DefaultConfig() *Config {
	return &Config{
		Port:            50051,
		GracefulTimeout: 30 * time.Second,
	}
}

// Server wraps a gRPC server with lifecycle management.
type Server struct {
	grpcServer   *grpc.Server
	listener     net.Listener
	config       *Config
	healthServer *health.Server
	log          *slog.Logger
}

// NewServer creates a gRPC server with the provided configuration and
// registers the standard health service. The orchestrator service is
// reported NOT_SERVING until SetServing is called.
func NewServer(cfg *Config) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on port %d: %w", cfg.Port, err)
	}

	var opts []grpc.ServerOption
	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		creds, err := credentials.NewServerTLSFromFile(cfg.TLSCertFile, cfg.TLSKeyFile)
		if err != nil {
			listener.Close()
			return nil, fmt.Errorf("failed to load TLS credentials: %w", err)
		}
		opts = append(opts, grpc.Creds(creds))
	}

	grpcServer := grpc.NewServer(opts...)

	healthServer := health.NewServer()
	healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)

	return &Server{
		grpcServer:   grpcServer,
		listener:     listener,
		config:       cfg,
		healthServer: healthServer,
		log:          log,
	}, nil
}

// GRPCServer returns the underlying gRPC server so callers can
// register additional services before Serve.
func (s *Server) GRPCServer() *grpc.Server {
	return s.grpcServer
}

// SetServing marks the orchestrator service as ready. Call after
// collaborators (rule engine, stores, sinks) are wired.
func (s *Server) SetServing() {
	s.healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
}

// SetNotServing marks the orchestrator service as unavailable without
// stopping the server, e.g. while a rule set reload is in flight.
func (s *Server) SetNotServing() {
	s.healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
}

// Serve starts the gRPC server and blocks until shutdown. Shutdown is
// triggered by SIGINT/SIGTERM, context cancellation, or a serve error.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		if err := s.grpcServer.Serve(s.listener); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	s.log.Info("orchestrator server listening", "port", s.Port())

	select {
	case <-ctx.Done():
		s.GracefulStop()
		return ctx.Err()
	case sig := <-sigCh:
		s.log.Info("received signal, shutting down gracefully", "signal", sig.String())
		s.GracefulStop()
		return nil
	case err := <-errCh:
		return err
	}
}

// Stop immediately stops the gRPC server, terminating active RPCs.
func (s *Server) Stop() {
	s.grpcServer.Stop()
}

// GracefulStop stops accepting new connections and waits for active
// RPCs to complete within the configured timeout, then forces a stop.
func (s *Server) GracefulStop() {
	s.healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	ctx, cancel := context.WithTimeout(context.Background(), s.config.GracefulTimeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		s.log.Info("server stopped gracefully")
	case <-ctx.Done():
		s.log.Warn("graceful shutdown timeout, forcing stop")
		s.grpcServer.Stop()
	}
}

// Port returns the port the server is listening on. Useful when the
// configured port is 0.
func (s *Server) Port() int {
	if s.listener != nil {
		if addr, ok := s.listener.Addr().(*net.TCPAddr); ok {
			return addr.Port
		}
	}
	return s.config.Port
}
