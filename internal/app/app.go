package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	grpcserver "github.com/FaizanHaider108/lookvisa/internal/adapter/grpc"
	natspub "github.com/FaizanHaider108/lookvisa/internal/adapter/messaging/nats"
	"github.com/FaizanHaider108/lookvisa/internal/adapter/repository/cache"
	"github.com/FaizanHaider108/lookvisa/internal/adapter/repository/mongodb"
	"github.com/FaizanHaider108/lookvisa/internal/adapter/rest"
	"github.com/FaizanHaider108/lookvisa/internal/adapter/rest/middleware"
	"github.com/FaizanHaider108/lookvisa/internal/adapter/storage/s3"
	"github.com/FaizanHaider108/lookvisa/internal/config"
	"github.com/FaizanHaider108/lookvisa/internal/listing/usecase"
	"github.com/FaizanHaider108/lookvisa/internal/mailer"
	"github.com/FaizanHaider108/lookvisa/internal/platform/logger"
	"github.com/FaizanHaider108/lookvisa/internal/platform/metrics"
	"github.com/FaizanHaider108/lookvisa/internal/platform/tracer"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

type App struct {
	cfg *config.Config
	log *logger.Logger

	tracerProvider *sdktrace.TracerProvider
	mongoClient    *mongo.Client
	redisClient    *redis.Client
	publisher      *natspub.Publisher
	limiter        *middleware.RateLimiter

	httpServer    *http.Server
	metricsServer *http.Server
	grpcServer    *grpc.Server
	grpcCleanup   func()
	sweeper       *usecase.ExpirySweeper
}

// New connects every backing service and assembles the HTTP, gRPC and metrics servers.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}
	a.tracerProvider = tracer.InitTracer(cfg.ServiceName, cfg.Tracing.Endpoint, log)
	m := metrics.NewMetricsManager("lookvisa")

	mongoClient, err := mongodb.NewMongoDBConnection(&cfg.Mongo)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	a.mongoClient = mongoClient
	db := mongoClient.Database(cfg.Mongo.Database)
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		a.close(ctx)
		return nil, fmt.Errorf("failed to ensure MongoDB indexes: %w", err)
	}
	log.Info("MongoDB connected", zap.String("database", cfg.Mongo.Database))

	redisClient, err := cache.NewRedisClient(&cfg.Redis, log)
	if err != nil {
		a.close(ctx)
		return nil, err
	}
	a.redisClient = redisClient

	publisher, err := natspub.NewPublisher(&cfg.NATS, cfg.ServiceName, log)
	if err != nil {
		a.close(ctx)
		return nil, err
	}
	a.publisher = publisher

	storage, err := s3.NewS3Storage(ctx, &cfg.MinIO, log)
	if err != nil {
		a.close(ctx)
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	var notifier usecase.Notifier
	if cfg.SMTP.Host != "" {
		smtpMailer, err := mailer.NewSMTPMailer(&cfg.SMTP, log)
		if err != nil {
			a.close(ctx)
			return nil, err
		}
		notifier = smtpMailer
	} else {
		log.Info("SMTP host not configured, listing emails disabled")
	}

	listingRepo := mongodb.NewListingRepository(db, log)
	userRepo := mongodb.NewUserRepository(db, log)
	listingCache := cache.NewListingCache(redisClient, cfg.Redis.CacheTTL, log)

	listingUC := usecase.NewListingUsecase(listingRepo, userRepo, listingCache, publisher, notifier, m, log,
		usecase.WithPageSize(cfg.Search.PageSize),
		usecase.WithLegacySort(cfg.Search.LegacySortLabels),
	)
	telemetryUC := usecase.NewTelemetryUsecase(listingRepo, m, log)
	attachmentUC := usecase.NewAttachmentUsecase(storage, listingRepo, listingCache, log)
	a.sweeper = usecase.NewExpirySweeper(listingUC, cfg.Expiry.SweepInterval, log)

	a.limiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, cfg.RateLimit.IdleTTL, log.Named("ratelimit"))
	handler := rest.NewListingHandler(listingUC, telemetryUC, attachmentUC, cfg.HTTP.MaxUploadBytes, log)
	a.httpServer = &http.Server{
		Addr: ":" + cfg.HTTP.Port,
		Handler: rest.NewRouter(handler, rest.RouterConfig{
			JWTSecret:   cfg.JWT.Secret,
			RateLimiter: a.limiter,
			Metrics:     m,
			Logger:      log,
		}),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}
	a.metricsServer = metrics.NewMetricsServer(cfg.Metrics.Port, m.Registry)
	a.grpcServer, _, a.grpcCleanup = grpcserver.NewGRPCServer(log, cfg.JWT.Secret)
	return a, nil
}

// Run serves until ctx is cancelled or a server fails, then shuts everything down.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lis, err := net.Listen("tcp", ":"+a.cfg.GRPC.Port)
	if err != nil {
		a.close(ctx)
		return fmt.Errorf("failed to listen on gRPC port %s: %w", a.cfg.GRPC.Port, err)
	}

	errCh := make(chan error, 3)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.log.Info("HTTP server starting", zap.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.log.Info("gRPC server starting", zap.String("addr", lis.Addr().String()))
		if err := a.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := metrics.StartMetricsServer(a.metricsServer, a.log); err != nil {
			errCh <- fmt.Errorf("metrics server: %w", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.sweeper.Run(ctx)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info("Shutdown signal received")
	case runErr = <-errCh:
		a.log.Error("Server failed, shutting down", zap.Error(runErr))
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.log.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(shutdownCtx); err != nil {
			a.log.Error("Metrics server shutdown failed", zap.Error(err))
		}
	}
	a.grpcCleanup()
	wg.Wait()

	a.close(shutdownCtx)
	a.log.Info("Application shut down")
	return runErr
}

func (a *App) close(ctx context.Context) {
	if a.limiter != nil {
		a.limiter.Stop()
	}
	if a.publisher != nil {
		a.publisher.Close()
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Error("Error closing Redis client", zap.Error(err))
		}
	}
	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(ctx); err != nil {
			a.log.Error("Error disconnecting from MongoDB", zap.Error(err))
		}
	}
	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			a.log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}
}
