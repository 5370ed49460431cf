// Command apiserver serves the BioSecure portal REST API and the gRPC
// health endpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/BioSecure-Portal/internal/bootstrap"
	"github.com/turtacn/BioSecure-Portal/internal/config"
	"github.com/turtacn/BioSecure-Portal/internal/domain/assessment"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/auth/token"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/database/redis"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/logging"
	grpcserver "github.com/turtacn/BioSecure-Portal/internal/interfaces/grpc"
	httpserver "github.com/turtacn/BioSecure-Portal/internal/interfaces/http"
	"github.com/turtacn/BioSecure-Portal/internal/interfaces/http/handlers"
	"github.com/turtacn/BioSecure-Portal/internal/interfaces/http/middleware"
)

// Injected at build time via -ldflags.
var version = "dev"

const eventSource = "apiserver"

func main() {
	configPath := flag.String("config", "", "path to configuration file (environment only when empty)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadOrEnv(configPath)
	if err != nil {
		return err
	}
	gin.SetMode(cfg.Server.Mode)

	logger, level, err := bootstrap.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector, metrics, err := bootstrap.NewMetrics(cfg.Metrics, "api", logger)
	if err != nil {
		return err
	}

	infra, err := bootstrap.Connect(ctx, cfg, metrics, logger)
	if err != nil {
		return err
	}
	defer infra.Close()

	catalog, err := assessment.LoadCatalog(cfg.Assessment.CatalogPath)
	if err != nil {
		return err
	}
	svcs, err := bootstrap.NewServices(infra, catalog, eventSource)
	if err != nil {
		return err
	}

	verifier, err := token.NewVerifier(cfg.Auth)
	if err != nil {
		return fmt.Errorf("init token verifier: %w", err)
	}

	checkers := infra.Checkers()
	healthCheckers := make([]handlers.HealthChecker, 0, len(checkers))
	grpcCheckers := make([]grpcserver.Checker, 0, len(checkers))
	for _, c := range checkers {
		healthCheckers = append(healthCheckers, c)
		grpcCheckers = append(grpcCheckers, c)
	}

	routerCfg := httpserver.RouterConfig{
		HealthHandler:     handlers.NewHealthHandler(version, healthCheckers...),
		ProfileHandler:    handlers.NewProfileHandler(svcs.Profiles, logger),
		DashboardHandler:  handlers.NewDashboardHandler(svcs.Dashboard, logger),
		FarmHandler:       handlers.NewFarmHandler(svcs.Farms, logger),
		AssessmentHandler: handlers.NewAssessmentHandler(svcs.Assessments, logger),
		TrainingHandler:   handlers.NewTrainingHandler(svcs.Training, logger),
		AlertHandler:      handlers.NewAlertHandler(svcs.Alerts, logger),
		ComplianceHandler: handlers.NewComplianceHandler(svcs.Compliance, logger),
		AdminHandler:      handlers.NewAdminHandler(svcs.Admin, logger),
		AuthMiddleware:    middleware.NewAuthMiddleware(verifier, svcs.Profiles, metrics, logger),
		Logging:           middleware.DefaultLoggingConfig(),
		MaxBodySize:       cfg.Server.MaxBodySize,
		MaxUploadSize:     cfg.MinIO.MaxUploadSize,
		Logger:            logger,
		Metrics:           metrics,
	}
	if len(cfg.Server.AllowedOrigins) > 0 {
		cors := middleware.DefaultCORSConfig(cfg.Server.AllowedOrigins)
		routerCfg.CORS = &cors
	}
	if cfg.RateLimit.Enabled {
		routerCfg.RateLimiter = redis.NewFixedWindowLimiter(infra.Redis, cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}
	if collector != nil {
		routerCfg.MetricsPath = cfg.Metrics.Path
		routerCfg.MetricsHandler = collector.Handler()
	}

	srv := httpserver.NewServer(cfg.Server, httpserver.NewRouter(routerCfg), logger)
	errCh := make(chan error, 2)
	go func() { errCh <- srv.Start() }()

	var grpcSrv *grpcserver.Server
	if cfg.GRPC.Enabled {
		grpcSrv, err = grpcserver.NewServer(cfg.GRPC, grpcCheckers,
			grpcserver.WithLogger(logger),
			grpcserver.WithGracefulTimeout(cfg.Server.ShutdownTimeout),
			grpcserver.WithReflection(cfg.Server.Mode == "debug"),
		)
		if err != nil {
			return err
		}
		go grpcSrv.WatchHealth(ctx)
		go func() { errCh <- grpcSrv.Start() }()
	}

	if configPath != "" {
		watchConfig(configPath, level, logger)
	}

	logger.Info("API server started",
		logging.String("version", version),
		logging.String("catalog_version", catalog.Version),
		logging.Bool("grpc", cfg.GRPC.Enabled),
	)

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err = <-errCh:
		if err != nil {
			logger.Error("Server failed", logging.Err(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if grpcSrv != nil {
		if stopErr := grpcSrv.Stop(shutdownCtx); stopErr != nil {
			logger.Warn("gRPC shutdown failed", logging.Err(stopErr))
		}
	}
	if shutErr := srv.Shutdown(shutdownCtx); shutErr != nil {
		logger.Warn("HTTP shutdown failed", logging.Err(shutErr))
	}
	return err
}

// watchConfig hot-reloads the log level.  Other settings need a restart.
func watchConfig(path string, level *logging.Level, logger logging.Logger) {
	err := config.Watch(path, func(cfg *config.Config) {
		bootstrap.ReloadLogLevel(level, cfg, logger)
	})
	if err != nil {
		logger.Warn("Config watch disabled", logging.String("path", path), logging.Err(err))
	}
}
