package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/lendwise/loanrisk/pkg/auth"
	"github.com/lendwise/loanrisk/pkg/tlsutil"
)

// ServerConfig configures the gRPC server.
type ServerConfig struct {
	// Validator enables bearer token authentication when set.
	Validator   auth.TokenValidator
	Address     string
	TLSCertFile string
	TLSKeyFile  string
	Reflection  bool
}

// MethodRoles lists the roles allowed to call each RPC when authentication is enabled.
var MethodRoles = map[string][]string{
	MethodAssessRisk:          {auth.RoleAdmin, auth.RoleUnderwriter},
	MethodRecordOutcome:       {auth.RoleAdmin, auth.RoleServicing},
	MethodListPredictions:     {auth.RoleAdmin, auth.RoleAnalyst, auth.RoleUnderwriter, auth.RoleServicing},
	MethodComputeModelMetrics: {auth.RoleAdmin, auth.RoleAnalyst},
}

// Server wraps the gRPC server with risk assessment handlers.
type Server struct {
	address    string
	grpcServer *grpc.Server
	health     *health.Server
	logger     *slog.Logger
}

// NewServer creates a new gRPC server for the risk assessment service.
func NewServer(handler RiskAssessmentServiceServer, cfg ServerConfig, logger *slog.Logger) (*Server, error) {
	interceptors := []grpc.UnaryServerInterceptor{loggingInterceptor(logger)}
	if cfg.Validator != nil {
		// Health checks stay reachable for orchestrator probes.
		interceptors = append(interceptors, auth.UnaryAuthInterceptor(cfg.Validator, []string{
			"/grpc.health.v1.Health/Check",
			"/grpc.health.v1.Health/Watch",
		}, MethodRoles))
	}

	serverOpts := []grpc.ServerOption{grpc.ChainUnaryInterceptor(interceptors...)}

	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		creds, err := tlsutil.ServerTLSConfig(cfg.TLSCertFile, cfg.TLSKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load TLS credentials: %w", err)
		}
		serverOpts = append(serverOpts, grpc.Creds(creds))
		logger.Info("gRPC TLS enabled", "cert", cfg.TLSCertFile, "key", cfg.TLSKeyFile)
	} else {
		logger.Info("gRPC TLS not configured, running without TLS")
	}

	grpcServer := grpc.NewServer(serverOpts...)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	RegisterRiskAssessmentServiceServer(grpcServer, handler)

	if cfg.Reflection {
		reflection.Register(grpcServer)
	}

	return &Server{
		address:    cfg.Address,
		grpcServer: grpcServer,
		health:     healthServer,
		logger:     logger,
	}, nil
}

// Start begins listening and serving gRPC requests.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}
	return s.Serve(listener)
}

// Serve serves gRPC requests on an existing listener.
func (s *Server) Serve(listener net.Listener) error {
	s.logger.Info("gRPC server starting", slog.String("address", listener.Addr().String()))
	return s.grpcServer.Serve(listener)
}

// Stop marks the service as not serving and gracefully stops the gRPC server.
func (s *Server) Stop() {
	s.logger.Info("gRPC server shutting down")
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}

func loggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Info("rpc",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return resp, err
	}
}
