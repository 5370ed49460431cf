package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appalert "github.com/turtacn/BioSecure-Portal/internal/application/alert"
	"github.com/turtacn/BioSecure-Portal/internal/domain/alert"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/logging"
)

// AlertHandler serves biosecurity alerts to members and their
// management to admins.
type AlertHandler struct {
	alertSvc appalert.Service
	logger   logging.Logger
}

// NewAlertHandler creates a new AlertHandler.
func NewAlertHandler(alertSvc appalert.Service, logger logging.Logger) *AlertHandler {
	return &AlertHandler{alertSvc: alertSvc, logger: logger}
}

// RegisterRoutes registers member alert routes.
func (h *AlertHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/alerts", h.ListActive)
}

// RegisterAdminRoutes registers alert management routes.
func (h *AlertHandler) RegisterAdminRoutes(r gin.IRoutes) {
	r.GET("/alerts", h.ListAll)
	r.POST("/alerts", h.Create)
	r.PUT("/alerts/:id", h.Update)
	r.DELETE("/alerts/:id", h.Delete)
	r.POST("/alerts/:id/toggle", h.Toggle)
}

func alertListInput(c *gin.Context) *appalert.ListInput {
	page, pageSize := parsePagination(c)
	return &appalert.ListInput{
		FarmType: c.Query("farm_type"),
		Severity: c.Query("severity"),
		Page:     page,
		PageSize: pageSize,
	}
}

// ListActive handles GET /alerts?farm_type=&severity=
func (h *AlertHandler) ListActive(c *gin.Context) {
	result, err := h.alertSvc.ListActive(c.Request.Context(), alertListInput(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListAll handles GET /admin/alerts
func (h *AlertHandler) ListAll(c *gin.Context) {
	result, err := h.alertSvc.List(c.Request.Context(), alertListInput(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Create handles POST /admin/alerts
func (h *AlertHandler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req alert.Input
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.alertSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// Update handles PUT /admin/alerts/:id
func (h *AlertHandler) Update(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req alert.Input
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.alertSvc.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// Toggle handles POST /admin/alerts/:id/toggle
func (h *AlertHandler) Toggle(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	a, err := h.alertSvc.Toggle(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// Delete handles DELETE /admin/alerts/:id
func (h *AlertHandler) Delete(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.alertSvc.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
