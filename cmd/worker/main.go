// Command worker consumes portal domain events into the activity feed and
// runs the scheduled maintenance jobs.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/BioSecure-Portal/internal/application/activity"
	"github.com/turtacn/BioSecure-Portal/internal/application/maintenance"
	"github.com/turtacn/BioSecure-Portal/internal/bootstrap"
	"github.com/turtacn/BioSecure-Portal/internal/config"
	"github.com/turtacn/BioSecure-Portal/internal/domain/assessment"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/database/redis"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/turtacn/BioSecure-Portal/internal/interfaces/http"
	"github.com/turtacn/BioSecure-Portal/internal/interfaces/http/handlers"
	"github.com/turtacn/BioSecure-Portal/internal/interfaces/http/middleware"
)

// Injected at build time via -ldflags.
var version = "dev"

const (
	eventSource       = "worker"
	defaultHealthPort = 8081
	defaultConsumers  = 1
	jobLockTTL        = 10 * time.Minute
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (environment only when empty)")
	healthPort := flag.Int("health-port", defaultHealthPort, "port of the health and metrics listener")
	once := flag.Bool("once", false, "run every maintenance job once and exit")
	flag.Parse()

	if err := run(*configPath, *healthPort, *once); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, healthPort int, once bool) error {
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

	collector, metrics, err := bootstrap.NewMetrics(cfg.Metrics, "worker", logger)
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

	scheduler := maintenance.NewScheduler(metrics, logger)
	jobs := []maintenance.Job{
		maintenance.ComplianceSweep(svcs.Compliance, cfg.Worker.ComplianceSweepSchedule,
			redis.NewJobLock(infra.Redis, maintenance.JobComplianceSweep, jobLockTTL)),
		maintenance.AlertHousekeeping(svcs.Alerts, cfg.Worker.AlertHousekeepingSchedule, cfg.Worker.AlertMaxAge,
			redis.NewJobLock(infra.Redis, maintenance.JobAlertHousekeeping, jobLockTTL)),
	}

	if once {
		for _, job := range jobs {
			scheduler.RunOnce(ctx, job)
		}
		return nil
	}

	for _, job := range jobs {
		if err := scheduler.Add(job); err != nil {
			return fmt.Errorf("schedule %s: %w", job.Name, err)
		}
	}

	recorder := activity.NewRecorder(repositories.NewActivityRepository(infra.DB, logger), metrics, logger)
	consumers, err := startConsumers(ctx, cfg, infra.Producer, recorder, logger)
	defer func() {
		for _, c := range consumers {
			if cerr := c.Close(); cerr != nil {
				logger.Warn("Failed to close consumer", logging.Err(cerr))
			}
		}
	}()
	if err != nil {
		return err
	}

	scheduler.Start()

	checkers := infra.Checkers()
	healthCheckers := make([]handlers.HealthChecker, 0, len(checkers))
	for _, c := range checkers {
		healthCheckers = append(healthCheckers, c)
	}
	opsCfg := cfg.Server
	opsCfg.Port = healthPort
	ops := httpserver.NewServer(opsCfg, newOpsHandler(cfg.Metrics, collector, healthCheckers, logger), logger)
	errCh := make(chan error, 1)
	go func() { errCh <- ops.Start() }()

	if configPath != "" {
		if werr := config.Watch(configPath, func(c *config.Config) {
			bootstrap.ReloadLogLevel(level, c, logger)
		}); werr != nil {
			logger.Warn("Config watch disabled", logging.String("path", configPath), logging.Err(werr))
		}
	}

	logger.Info("Worker started",
		logging.String("version", version),
		logging.Int("consumers", len(consumers)),
		logging.Int("jobs", len(jobs)),
	)

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err = <-errCh:
		if err != nil {
			logger.Error("Health listener failed", logging.Err(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if stopErr := scheduler.Stop(shutdownCtx); stopErr != nil {
		logger.Warn("Scheduler did not drain", logging.Err(stopErr))
	}
	if shutErr := ops.Shutdown(shutdownCtx); shutErr != nil {
		logger.Warn("Health listener shutdown failed", logging.Err(shutErr))
	}
	return err
}

// startConsumers joins the consumer group ConsumerConcurrency times so that
// partitions are spread across readers.  Consumers started before a failure
// are returned for closing.
func startConsumers(ctx context.Context, cfg *config.Config, deadLetter kafka.Publisher, recorder *activity.Recorder, logger logging.Logger) ([]*kafka.Consumer, error) {
	n := cfg.Worker.ConsumerConcurrency
	if n <= 0 {
		n = defaultConsumers
	}
	topics := kafka.DomainTopics()
	consumers := make([]*kafka.Consumer, 0, n)
	for i := 0; i < n; i++ {
		c, err := kafka.NewConsumer(cfg.Kafka, topics, deadLetter, logger.With(logging.Int("consumer", i)))
		if err != nil {
			return consumers, fmt.Errorf("create consumer %d: %w", i, err)
		}
		consumers = append(consumers, c)
		for _, topic := range topics {
			c.Subscribe(topic, recorder.Handle)
		}
		if err := c.Start(ctx); err != nil {
			return consumers, fmt.Errorf("start consumer %d: %w", i, err)
		}
	}
	return consumers, nil
}

// newOpsHandler serves the probes and, when enabled, the metrics endpoint.
func newOpsHandler(cfg config.MetricsConfig, collector prometheus.MetricsCollector, checkers []handlers.HealthChecker, logger logging.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Recovery(logger))
	handlers.NewHealthHandler(version, checkers...).RegisterRoutes(r)
	if collector != nil {
		r.GET(cfg.Path, gin.WrapH(collector.Handler()))
	}
	return r
}
