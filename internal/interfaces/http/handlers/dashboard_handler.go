package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/BioSecure-Portal/internal/application/dashboard"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/logging"
)

// DashboardHandler serves the caller's landing page data.
type DashboardHandler struct {
	dashboardSvc dashboard.Service
	logger       logging.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardSvc dashboard.Service, logger logging.Logger) *DashboardHandler {
	return &DashboardHandler{dashboardSvc: dashboardSvc, logger: logger}
}

// RegisterRoutes registers the dashboard route.
func (h *DashboardHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/dashboard", h.Get)
}

// Get handles GET /dashboard
func (h *DashboardHandler) Get(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	d, err := h.dashboardSvc.Get(c.Request.Context(), actor)
	if err != nil {
		h.logger.Error("failed to build dashboard", logging.String("profile_id", actor.ProfileID.String()), logging.Err(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
