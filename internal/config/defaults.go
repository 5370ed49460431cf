package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort            = 8080
	DefaultServerMode            = "release"
	DefaultServerReadTimeout     = 15 * time.Second
	DefaultServerWriteTimeout    = 30 * time.Second
	DefaultServerMaxBodySize     = 10 << 20
	DefaultServerShutdownTimeout = 30 * time.Second

	DefaultGRPCPort = 9090

	DefaultDBHost            = "localhost"
	DefaultDBPort            = 5432
	DefaultDBName            = "biosecure"
	DefaultDBSSLMode         = "disable"
	DefaultDBMaxOpenConns    = 25
	DefaultDBMaxIdleConns    = 10
	DefaultDBConnMaxLifetime = 30 * time.Minute
	DefaultDBConnMaxIdleTime = 5 * time.Minute

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisPoolSize  = 20
	DefaultRedisKeyPrefix = "biosec:"

	DefaultCacheTTL        = 10 * time.Minute
	DefaultProfileCacheTTL = 2 * time.Minute
	DefaultDashboardTTL    = 30 * time.Second
	DefaultStatsTTL        = time.Minute

	DefaultKafkaBroker       = "localhost:9092"
	DefaultKafkaGroupID      = "biosec-activity"
	DefaultKafkaClientID     = "biosec"
	DefaultKafkaBatchSize    = 100
	DefaultKafkaBatchTimeout = 50 * time.Millisecond
	DefaultKafkaMaxRetries   = 3
	DefaultKafkaRetryBackoff = 500 * time.Millisecond

	DefaultMinIOEndpoint          = "localhost:9000"
	DefaultMinIOCertificateBucket = "biosec-certificates"
	DefaultMinIOReportBucket      = "biosec-reports"
	DefaultMinIOPresignExpiry     = 15 * time.Minute
	DefaultMinIOMaxUploadSize     = 20 << 20

	DefaultAuthClockSkew           = 30 * time.Second
	DefaultAuthJWKSRefreshInterval = 15 * time.Minute

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsNamespace = "biosec"
	DefaultMetricsPath      = "/metrics"

	DefaultRateLimitRequests = 120
	DefaultRateLimitWindow   = time.Minute

	DefaultComplianceSweepSchedule   = "0 2 * * *"
	DefaultAlertHousekeepingSchedule = "@hourly"
	DefaultAlertMaxAge               = 90 * 24 * time.Hour
	DefaultConsumerConcurrency       = 4
)

// ApplyDefaults fills every zero-value field in cfg with the portal default.
// Explicitly configured values are left unchanged.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultServerReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultServerWriteTimeout
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = DefaultServerMaxBodySize
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultServerShutdownTimeout
	}
	if cfg.GRPC.Port == 0 {
		cfg.GRPC.Port = DefaultGRPCPort
	}

	// ── Database ──────────────────────────────────────────────────────────────
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = DefaultDBSSLMode
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = DefaultDBMaxOpenConns
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = DefaultDBMaxIdleConns
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = DefaultDBConnMaxLifetime
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = DefaultDBConnMaxIdleTime
	}

	// ── Redis / cache ─────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = DefaultRedisPoolSize
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Cache.DefaultTTL == 0 {
		cfg.Cache.DefaultTTL = DefaultCacheTTL
	}
	if cfg.Cache.ProfileTTL == 0 {
		cfg.Cache.ProfileTTL = DefaultProfileCacheTTL
	}
	if cfg.Cache.DashboardTTL == 0 {
		cfg.Cache.DashboardTTL = DefaultDashboardTTL
	}
	if cfg.Cache.StatsTTL == 0 {
		cfg.Cache.StatsTTL = DefaultStatsTTL
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.ClientID == "" {
		cfg.Kafka.ClientID = DefaultKafkaClientID
	}
	if cfg.Kafka.BatchSize == 0 {
		cfg.Kafka.BatchSize = DefaultKafkaBatchSize
	}
	if cfg.Kafka.BatchTimeout == 0 {
		cfg.Kafka.BatchTimeout = DefaultKafkaBatchTimeout
	}
	if cfg.Kafka.MaxRetries == 0 {
		cfg.Kafka.MaxRetries = DefaultKafkaMaxRetries
	}
	if cfg.Kafka.RetryBackoff == 0 {
		cfg.Kafka.RetryBackoff = DefaultKafkaRetryBackoff
	}
	if cfg.Kafka.NumPartitions == 0 {
		cfg.Kafka.NumPartitions = 3
	}
	if cfg.Kafka.ReplicationFactor == 0 {
		cfg.Kafka.ReplicationFactor = 1
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.CertificateBucket == "" {
		cfg.MinIO.CertificateBucket = DefaultMinIOCertificateBucket
	}
	if cfg.MinIO.ReportBucket == "" {
		cfg.MinIO.ReportBucket = DefaultMinIOReportBucket
	}
	if cfg.MinIO.PresignExpiry == 0 {
		cfg.MinIO.PresignExpiry = DefaultMinIOPresignExpiry
	}
	if cfg.MinIO.MaxUploadSize == 0 {
		cfg.MinIO.MaxUploadSize = DefaultMinIOMaxUploadSize
	}

	// ── Auth / log / metrics ──────────────────────────────────────────────────
	if cfg.Auth.JWKSURL != "" && cfg.Auth.JWKSRefreshInterval == 0 {
		cfg.Auth.JWKSRefreshInterval = DefaultAuthJWKSRefreshInterval
	}
	if cfg.Auth.ClockSkew == 0 {
		cfg.Auth.ClockSkew = DefaultAuthClockSkew
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}

	// ── Rate limit / worker ───────────────────────────────────────────────────
	if cfg.RateLimit.Requests == 0 {
		cfg.RateLimit.Requests = DefaultRateLimitRequests
	}
	if cfg.RateLimit.Window == 0 {
		cfg.RateLimit.Window = DefaultRateLimitWindow
	}
	if cfg.Worker.ComplianceSweepSchedule == "" {
		cfg.Worker.ComplianceSweepSchedule = DefaultComplianceSweepSchedule
	}
	if cfg.Worker.AlertHousekeepingSchedule == "" {
		cfg.Worker.AlertHousekeepingSchedule = DefaultAlertHousekeepingSchedule
	}
	if cfg.Worker.AlertMaxAge == 0 {
		cfg.Worker.AlertMaxAge = DefaultAlertMaxAge
	}
	if cfg.Worker.ConsumerConcurrency == 0 {
		cfg.Worker.ConsumerConcurrency = DefaultConsumerConcurrency
	}
}
