package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appfarm "github.com/turtacn/BioSecure-Portal/internal/application/farm"
	"github.com/turtacn/BioSecure-Portal/internal/domain/farm"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/logging"
)

// FarmHandler serves the caller's farms.
type FarmHandler struct {
	farmSvc appfarm.Service
	logger  logging.Logger
}

// NewFarmHandler creates a new FarmHandler.
func NewFarmHandler(farmSvc appfarm.Service, logger logging.Logger) *FarmHandler {
	return &FarmHandler{farmSvc: farmSvc, logger: logger}
}

// RegisterRoutes registers farm routes.
func (h *FarmHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/farms", h.ListFarms)
	r.POST("/farms", h.CreateFarm)
	r.GET("/farms/:id", h.GetFarm)
	r.PUT("/farms/:id", h.UpdateFarm)
	r.DELETE("/farms/:id", h.DeleteFarm)
}

// FarmListResponse wraps the caller's farms.
type FarmListResponse struct {
	Farms []*farm.Farm `json:"farms"`
}

// ListFarms handles GET /farms
func (h *FarmHandler) ListFarms(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	farms, err := h.farmSvc.List(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	if farms == nil {
		farms = []*farm.Farm{}
	}
	c.JSON(http.StatusOK, FarmListResponse{Farms: farms})
}

// CreateFarm handles POST /farms
func (h *FarmHandler) CreateFarm(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req farm.Input
	if !bindJSON(c, &req) {
		return
	}
	f, err := h.farmSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

// GetFarm handles GET /farms/:id
func (h *FarmHandler) GetFarm(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	f, err := h.farmSvc.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

// UpdateFarm handles PUT /farms/:id
func (h *FarmHandler) UpdateFarm(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req farm.Input
	if !bindJSON(c, &req) {
		return
	}
	f, err := h.farmSvc.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

// DeleteFarm handles DELETE /farms/:id
func (h *FarmHandler) DeleteFarm(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.farmSvc.Delete(c.Request.Context(), actor, id); err != nil {
		h.logger.Warn("failed to delete farm", logging.String("farm_id", id.String()), logging.Err(err))
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
