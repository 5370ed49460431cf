// Package bootstrap assembles the infrastructure clients and application
// services shared by the portal binaries.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/turtacn/BioSecure-Portal/internal/application/admin"
	"github.com/turtacn/BioSecure-Portal/internal/application/alert"
	"github.com/turtacn/BioSecure-Portal/internal/application/assessment"
	"github.com/turtacn/BioSecure-Portal/internal/application/compliance"
	"github.com/turtacn/BioSecure-Portal/internal/application/dashboard"
	"github.com/turtacn/BioSecure-Portal/internal/application/events"
	"github.com/turtacn/BioSecure-Portal/internal/application/farm"
	"github.com/turtacn/BioSecure-Portal/internal/application/profile"
	"github.com/turtacn/BioSecure-Portal/internal/application/training"
	"github.com/turtacn/BioSecure-Portal/internal/config"
	domainassessment "github.com/turtacn/BioSecure-Portal/internal/domain/assessment"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/database/postgres"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/database/redis"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/storage/minio"
)

// Checker is a dependency that can report its health.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// NewLogger builds the process logger from cfg and installs it as the
// package default.
func NewLogger(cfg config.LogConfig) (logging.Logger, *logging.Level, error) {
	logger, level, err := logging.NewLeveledLogger(logging.LogConfig{
		Level:       cfg.Level,
		Format:      cfg.Format,
		OutputPaths: cfg.OutputPaths,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	logging.SetDefault(logger)
	return logger, level, nil
}

// ReloadLogLevel applies the level in cfg to a running logger.
func ReloadLogLevel(level *logging.Level, cfg *config.Config, logger logging.Logger) {
	changed, err := level.Set(cfg.Log.Level)
	if err != nil {
		logger.Warn("Ignoring log level from reloaded config", logging.Err(err))
		return
	}
	if changed {
		logger.Info("Log level changed", logging.String("level", level.String()))
	}
}

// NewMetrics builds the Prometheus collector and application metrics.  With
// metrics disabled the returned collector is nil and AppMetrics is a no-op.
func NewMetrics(cfg config.MetricsConfig, subsystem string, logger logging.Logger) (prometheus.MetricsCollector, *prometheus.AppMetrics, error) {
	if !cfg.Enabled {
		return nil, prometheus.NewNopMetrics(), nil
	}
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            cfg.Namespace,
		Subsystem:            subsystem,
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("init metrics: %w", err)
	}
	return collector, prometheus.NewAppMetrics(collector), nil
}

// Infrastructure holds the connected backing services.
type Infrastructure struct {
	Config   *config.Config
	Logger   logging.Logger
	Metrics  *prometheus.AppMetrics
	DB       *postgres.Connection
	Redis    *redis.Client
	Cache    redis.Cache
	Producer *kafka.Producer
	Storage  *minio.Client
	Store    *minio.DocumentStore

	closers []func() error
}

// Connect opens every backing service named in cfg.  On failure the
// services already opened are closed.
func Connect(ctx context.Context, cfg *config.Config, metrics *prometheus.AppMetrics, logger logging.Logger) (_ *Infrastructure, err error) {
	infra := &Infrastructure{Config: cfg, Logger: logger, Metrics: metrics}
	defer func() {
		if err != nil {
			infra.Close()
		}
	}()

	infra.DB, err = postgres.NewConnection(cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	infra.closers = append(infra.closers, infra.DB.Close)

	if cfg.Database.AutoMigrate {
		if err = Migrate(infra.DB); err != nil {
			return nil, err
		}
	}

	infra.Redis, err = redis.NewClient(cfg.Redis, logger)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	infra.closers = append(infra.closers, infra.Redis.Close)
	infra.Cache = redis.NewCache(infra.Redis, logger, redis.WithDefaultTTL(cfg.Cache.DefaultTTL))

	if cfg.Kafka.AutoCreateTopics {
		if err = ensureTopics(ctx, cfg.Kafka, logger); err != nil {
			return nil, err
		}
	}
	infra.Producer, err = kafka.NewProducer(cfg.Kafka, logger)
	if err != nil {
		return nil, fmt.Errorf("connect kafka: %w", err)
	}
	infra.closers = append(infra.closers, infra.Producer.Close)

	infra.Storage, err = minio.NewClient(ctx, cfg.MinIO, logger)
	if err != nil {
		return nil, fmt.Errorf("connect minio: %w", err)
	}
	if err = infra.Storage.EnsureBuckets(ctx); err != nil {
		return nil, fmt.Errorf("ensure buckets: %w", err)
	}
	infra.Store = minio.NewDocumentStore(infra.Storage, logger)

	return infra, nil
}

// Migrate applies every pending schema migration.  The migrator is not
// closed since Close would also close conn.
func Migrate(conn *postgres.Connection) error {
	m, err := postgres.NewMigrator(conn)
	if err != nil {
		return fmt.Errorf("init migrator: %w", err)
	}
	if err := m.Up(); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func ensureTopics(ctx context.Context, cfg config.KafkaConfig, logger logging.Logger) error {
	tm, err := kafka.NewTopicManager(ctx, cfg.Brokers, logger)
	if err != nil {
		return fmt.Errorf("connect kafka controller: %w", err)
	}
	defer tm.Close()
	if err := tm.EnsureTopics(kafka.DefaultTopics(cfg)); err != nil {
		return fmt.Errorf("ensure topics: %w", err)
	}
	return nil
}

// Checkers returns the connected services for readiness probes.
func (i *Infrastructure) Checkers() []Checker {
	var out []Checker
	if i.DB != nil {
		out = append(out, i.DB)
	}
	if i.Redis != nil {
		out = append(out, i.Redis)
	}
	if i.Storage != nil {
		out = append(out, i.Storage)
	}
	return out
}

// Events returns a publisher that emits domain events through Kafka.
func (i *Infrastructure) Events(source string) events.Publisher {
	if i.Producer == nil {
		return events.Nop{}
	}
	return events.NewPublisher(i.Producer, source, i.Metrics, i.Logger)
}

// Close releases the services in reverse order of opening.
func (i *Infrastructure) Close() {
	for n := len(i.closers) - 1; n >= 0; n-- {
		if err := i.closers[n](); err != nil {
			i.Logger.Warn("Failed to close dependency", logging.Err(err))
		}
	}
	i.closers = nil
}

// Services is the set of application services.
type Services struct {
	Profiles    profile.Service
	Farms       farm.Service
	Assessments assessment.Service
	Training    training.Service
	Alerts      alert.Service
	Compliance  compliance.Service
	Dashboard   dashboard.Service
	Admin       admin.Service
}

// NewServices builds the application services on top of infra.
func NewServices(infra *Infrastructure, catalog *domainassessment.Catalog, source string) (*Services, error) {
	cfg := infra.Config
	log := infra.Logger
	pub := infra.Events(source)
	now := time.Now

	profileRepo := repositories.NewProfileRepository(infra.DB, log)
	farmRepo := repositories.NewFarmRepository(infra.DB, log)
	assessmentRepo := repositories.NewAssessmentRepository(infra.DB, log)
	trainingRepo := repositories.NewTrainingRepository(infra.DB, log)
	alertRepo := repositories.NewAlertRepository(infra.DB, log)
	complianceRepo := repositories.NewComplianceRepository(infra.DB, log)
	activityRepo := repositories.NewActivityRepository(infra.DB, log)

	assessments, err := assessment.NewService(assessment.Dependencies{
		Repo:         assessmentRepo,
		Farms:        farmRepo,
		Catalog:      catalog,
		Cache:        infra.Cache,
		Events:       pub,
		Metrics:      infra.Metrics,
		Store:        infra.Store,
		ReportBucket: infra.Storage.ReportBucket(),
		Logger:       log,
		Now:          now,
	})
	if err != nil {
		return nil, fmt.Errorf("init assessment service: %w", err)
	}

	return &Services{
		Profiles:    profile.NewService(profileRepo, infra.Cache, cfg.Cache.ProfileTTL, pub, log),
		Farms:       farm.NewService(farmRepo, infra.Cache, pub, log),
		Assessments: assessments,
		Training:    training.NewService(trainingRepo, infra.Cache, pub, infra.Metrics, log),
		Alerts:      alert.NewService(alertRepo, infra.Cache, pub, infra.Metrics, log),
		Compliance: compliance.NewService(compliance.Dependencies{
			Repo:          complianceRepo,
			Store:         infra.Store,
			Bucket:        infra.Storage.CertificateBucket(),
			MaxUploadSize: infra.Storage.MaxUploadSize(),
			Events:        pub,
			Metrics:       infra.Metrics,
			Logger:        log,
			Now:           now,
		}),
		Dashboard: dashboard.NewService(dashboard.Dependencies{
			Profiles:    profileRepo,
			Farms:       farmRepo,
			Alerts:      alertRepo,
			Training:    trainingRepo,
			Assessments: assessmentRepo,
			Cache:       infra.Cache,
			TTL:         cfg.Cache.DashboardTTL,
			Metrics:     infra.Metrics,
			Logger:      log,
			Now:         now,
		}),
		Admin: admin.NewService(admin.Dependencies{
			Profiles: profileRepo,
			Farms:    farmRepo,
			Alerts:   alertRepo,
			Training: trainingRepo,
			Activity: activityRepo,
			Cache:    infra.Cache,
			StatsTTL: cfg.Cache.StatsTTL,
			Events:   pub,
			Metrics:  infra.Metrics,
			Logger:   log,
		}),
	}, nil
}
