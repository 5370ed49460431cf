// Package http assembles the gin engine and HTTP server of the API.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/BioSecure-Portal/internal/domain/profile"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/BioSecure-Portal/internal/interfaces/http/handlers"
	"github.com/turtacn/BioSecure-Portal/internal/interfaces/http/middleware"
	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

// APIPrefix is the mount point of the versioned API.
const APIPrefix = "/api/v1"

// RouterConfig aggregates all handler and middleware dependencies required
// to construct the complete route tree.
type RouterConfig struct {
	// Handlers
	HealthHandler     *handlers.HealthHandler
	ProfileHandler    *handlers.ProfileHandler
	DashboardHandler  *handlers.DashboardHandler
	FarmHandler       *handlers.FarmHandler
	AssessmentHandler *handlers.AssessmentHandler
	TrainingHandler   *handlers.TrainingHandler
	AlertHandler      *handlers.AlertHandler
	ComplianceHandler *handlers.ComplianceHandler
	AdminHandler      *handlers.AdminHandler

	// Middleware
	AuthMiddleware *middleware.AuthMiddleware
	RateLimiter    middleware.Limiter
	CORS           *middleware.CORSConfig
	Logging        middleware.LoggingConfig
	MaxBodySize    int64
	MaxUploadSize  int64

	// Infrastructure
	Logger         logging.Logger
	Metrics        *prometheus.AppMetrics
	MetricsPath    string
	MetricsHandler http.Handler
}

// NewRouter constructs the complete route tree from cfg.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	// --- Global middleware (applied to every request) ---
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.CORS != nil {
		r.Use(middleware.CORS(*cfg.CORS))
	}
	r.Use(middleware.RequestLogging(cfg.Logger, cfg.Logging))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	r.Use(middleware.BodyLimit(cfg.MaxBodySize, cfg.MaxUploadSize))

	r.NoRoute(func(c *gin.Context) {
		middleware.AbortWithError(c, errors.NotFound("route not found"))
	})
	r.NoMethod(func(c *gin.Context) {
		middleware.AbortWithError(c, errors.New(errors.ErrCodeMethodNotAllowed, "method not allowed"))
	})

	// --- Public endpoints (no auth) ---
	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterRoutes(r)
	}
	if cfg.MetricsHandler != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(cfg.MetricsHandler))
	}

	// --- API v1 (authenticated) ---
	api := r.Group(APIPrefix)
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.Handler())
	}
	if cfg.RateLimiter != nil {
		api.Use(middleware.RateLimit(cfg.RateLimiter, cfg.Logger))
	}

	if cfg.ProfileHandler != nil {
		cfg.ProfileHandler.RegisterRoutes(api)
	}
	if cfg.DashboardHandler != nil {
		cfg.DashboardHandler.RegisterRoutes(api)
	}
	if cfg.FarmHandler != nil {
		cfg.FarmHandler.RegisterRoutes(api)
	}
	if cfg.AssessmentHandler != nil {
		cfg.AssessmentHandler.RegisterRoutes(api)
	}
	if cfg.TrainingHandler != nil {
		cfg.TrainingHandler.RegisterRoutes(api)
	}
	if cfg.AlertHandler != nil {
		cfg.AlertHandler.RegisterRoutes(api)
	}

	// --- Admin console ---
	adm := api.Group("/admin", middleware.RequireRole(profile.RoleAdmin))
	if cfg.AdminHandler != nil {
		cfg.AdminHandler.RegisterRoutes(adm)
	}
	if cfg.AlertHandler != nil {
		cfg.AlertHandler.RegisterAdminRoutes(adm)
	}
	if cfg.TrainingHandler != nil {
		cfg.TrainingHandler.RegisterAdminRoutes(adm)
	}
	if cfg.ComplianceHandler != nil {
		cfg.ComplianceHandler.RegisterRoutes(adm)
	}

	return r
}
