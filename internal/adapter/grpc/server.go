package grpc

import (
	"github.com/FaizanHaider108/lookvisa/internal/adapter/grpc/middleware"
	"github.com/FaizanHaider108/lookvisa/internal/platform/logger"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the name the health server reports the listing service under.
const ServiceName = "lookvisa.ListingService"

var publicMethods = map[string]bool{
	healthpb.Health_Check_FullMethodName: true,
	healthpb.Health_Watch_FullMethodName: true,
}

// NewGRPCServer builds the internal gRPC server exposing the health service.
// The returned cleanup marks the service as not serving and stops the server gracefully.
func NewGRPCServer(appLogger *logger.Logger, jwtSecret string) (*grpc.Server, *health.Server, func()) {
	log := appLogger.Named("grpc")
	server := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			middleware.LoggingInterceptor(log),
			middleware.AuthInterceptor(jwtSecret, log, publicMethods),
		),
	)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	reflection.Register(server)

	log.Info("gRPC server configured", zap.Strings("interceptors", []string{"otel", "logging", "auth"}))

	cleanup := func() {
		log.Info("Stopping gRPC server")
		healthServer.Shutdown()
		server.GracefulStop()
		log.Info("gRPC server stopped")
	}
	return server, healthServer, cleanup
}
