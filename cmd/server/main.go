package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/kevin07696/paytr-processor/internal/adapters/paytr"
	"github.com/kevin07696/paytr-processor/internal/adapters/postgres"
	"github.com/kevin07696/paytr-processor/internal/api/contract"
	processorgrpc "github.com/kevin07696/paytr-processor/internal/api/grpc/processor"
	"github.com/kevin07696/paytr-processor/internal/config"
	"github.com/kevin07696/paytr-processor/internal/domain/ports"
	processorhandler "github.com/kevin07696/paytr-processor/internal/handlers/processor"
	"github.com/kevin07696/paytr-processor/internal/middleware"
	"github.com/kevin07696/paytr-processor/internal/services/processor"
	pkghttp "github.com/kevin07696/paytr-processor/pkg/http"
	pkgmiddleware "github.com/kevin07696/paytr-processor/pkg/middleware"
	"github.com/kevin07696/paytr-processor/pkg/observability"
	"github.com/kevin07696/paytr-processor/pkg/security"
	"github.com/kevin07696/paytr-processor/pkg/shutdown"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "paytr-processor: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := initLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting PayTR payment processor",
		zap.String("version", version),
		zap.String("secret_manager", cfg.Secrets.Manager),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownMgr := shutdown.NewManager(logger, cfg.Server.ShutdownTimeout)

	if cfg.Tracing.Enabled {
		tp, err := initTracing(cfg.Tracing)
		if err != nil {
			return err
		}
		shutdownMgr.Register("tracer", tp.Shutdown)
		logger.Info("Tracing enabled", zap.String("service_name", cfg.Tracing.ServiceName))
	}

	// Secrets
	secretManager, closeSecrets, err := initSecretManager(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize secret manager: %w", err)
	}
	shutdownMgr.Register("secret manager", func(context.Context) error { return closeSecrets() })

	creds, err := loadCredentials(ctx, cfg, secretManager)
	if err != nil {
		return err
	}
	hostSecret, err := loadHostJWTSecret(ctx, cfg, secretManager)
	if err != nil {
		return err
	}

	// PayTR gateway
	httpClient := pkghttp.NewHTTPClient(pkghttp.PayTRClientConfig(), cfg.Gateway.Timeout)
	gateway := paytr.NewClient(creds, cfg.Gateway.BaseURL, httpClient, security.NewZapLogger(logger.Named("paytr")))

	// Host session store
	var sessions ports.SessionStore
	var db observability.Pinger
	if cfg.Database.URL != "" {
		poolCfg := postgres.DefaultPoolConfig(cfg.Database.URL)
		poolCfg.MaxConns = cfg.Database.MaxConns
		poolCfg.QueryTimeout = cfg.Database.QueryTimeout

		pool, err := postgres.NewPool(ctx, poolCfg, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		shutdownMgr.RegisterNoErr("database", pool.Close)

		sessions = postgres.NewSessionStore(pool, poolCfg.QueryTimeout, logger)
		db = pool
	} else {
		logger.Warn("DATABASE_URL not set, update-data requests will fail with SESSION_STORE_UNAVAILABLE")
	}

	service := processor.NewService(gateway, sessions, security.NewZapLogger(logger.Named("processor")))

	monitor, err := contract.NewMonitor()
	if err != nil {
		return fmt.Errorf("failed to compile request schemas: %w", err)
	}

	hostAuth := middleware.NewHostAuth(hostSecret, cfg.Auth.Audience, logger)
	rateLimiter := pkgmiddleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, logger)
	shutdownMgr.RegisterNoErr("rate limiter", rateLimiter.Shutdown)

	// Metrics and health
	healthChecker := observability.NewHealthChecker(db)
	healthChecker.AddCheck("paytr_circuit", func(context.Context) string {
		if state := gateway.CircuitState(); state == paytr.StateOpen {
			return "circuit " + state.String()
		}
		return ""
	})
	metricsServer := observability.StartMetricsServer(strconv.Itoa(cfg.Server.MetricsPort), healthChecker, logger)
	shutdownMgr.Register("metrics server", func(ctx context.Context) error {
		return observability.ShutdownMetricsServer(ctx, metricsServer)
	})
	logger.Info("Metrics server listening", zap.Int("port", cfg.Server.MetricsPort))

	// gRPC
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			recoveryInterceptor(logger),
			observability.UnaryServerInterceptor(),
			loggingInterceptor(logger),
			rateLimiter.UnaryServerInterceptor(),
			hostAuth.UnaryServerInterceptor(),
		),
	)
	processorgrpc.RegisterPaymentProcessorServer(grpcServer,
		processorgrpc.NewHandler(service, monitor, security.NewZapLogger(logger.Named("grpc"))))

	healthServer := health.NewServer()
	healthServer.SetServingStatus(processorgrpc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	grpcListener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen on gRPC port: %w", err)
	}
	shutdownMgr.RegisterGRPCServer("grpc server", grpcServer)
	shutdownMgr.RegisterNoErr("grpc health", healthServer.Shutdown)

	go func() {
		logger.Info("gRPC server listening", zap.String("address", grpcListener.Addr().String()))
		if err := grpcServer.Serve(grpcListener); err != nil {
			logger.Error("gRPC server stopped", zap.Error(err))
			cancel()
		}
	}()

	// HTTP
	handler := processorhandler.NewHandler(service, monitor, logger)
	securityHeaders := middleware.NewSecurityHeaders(cfg.Logger.Development)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", processorhandler.Healthz)
	mux.Handle("/processor/", rateLimiter.Middleware(hostAuth.Middleware(handler.Routes())))

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:           recoveryMiddleware(logger, observability.HTTPMiddleware(securityHeaders.Middleware(mux))),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.Gateway.Timeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	shutdownMgr.RegisterHTTPServer("http server", httpServer)

	go func() {
		logger.Info("HTTP server listening", zap.Int("port", cfg.Server.HTTPPort))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server stopped", zap.Error(err))
			cancel()
		}
	}()

	return shutdownMgr.WaitForShutdown(ctx)
}
