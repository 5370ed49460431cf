package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apptraining "github.com/turtacn/BioSecure-Portal/internal/application/training"
	"github.com/turtacn/BioSecure-Portal/internal/domain/training"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/logging"
)

// TrainingHandler serves training modules and the caller's progress.
type TrainingHandler struct {
	trainingSvc apptraining.Service
	logger      logging.Logger
}

// NewTrainingHandler creates a new TrainingHandler.
func NewTrainingHandler(trainingSvc apptraining.Service, logger logging.Logger) *TrainingHandler {
	return &TrainingHandler{trainingSvc: trainingSvc, logger: logger}
}

// RegisterRoutes registers member training routes.
func (h *TrainingHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/training/modules", h.ListModules)
	r.GET("/training/modules/:id", h.GetModule)
	r.GET("/training/progress", h.Progress)
	r.POST("/training/modules/:id/start", h.Start)
	r.POST("/training/modules/:id/complete", h.Complete)
	r.PUT("/training/modules/:id/progress", h.UpdateProgress)
}

// RegisterAdminRoutes registers module management routes.
func (h *TrainingHandler) RegisterAdminRoutes(r gin.IRoutes) {
	r.GET("/training/modules", h.ListAllModules)
	r.POST("/training/modules", h.CreateModule)
	r.PUT("/training/modules/:id", h.UpdateModule)
	r.PUT("/training/modules/:id/active", h.SetActive)
}

// ModuleListResponse wraps a module listing.
type ModuleListResponse struct {
	Modules []*training.Module `json:"modules"`
}

// ProgressRequest is the body of a progress update.
type ProgressRequest struct {
	Percentage int `json:"progress_percentage"`
}

// ActiveRequest is the body of an activation change.
type ActiveRequest struct {
	Active *bool `json:"is_active"`
}

func moduleList(modules []*training.Module) ModuleListResponse {
	if modules == nil {
		modules = []*training.Module{}
	}
	return ModuleListResponse{Modules: modules}
}

// ListModules handles GET /training/modules
func (h *TrainingHandler) ListModules(c *gin.Context) {
	modules, err := h.trainingSvc.ListModules(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, moduleList(modules))
}

// GetModule handles GET /training/modules/:id
func (h *TrainingHandler) GetModule(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	m, err := h.trainingSvc.GetModule(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// Progress handles GET /training/progress
func (h *TrainingHandler) Progress(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	summary, err := h.trainingSvc.Progress(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Start handles POST /training/modules/:id/start
func (h *TrainingHandler) Start(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	p, err := h.trainingSvc.Start(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Complete handles POST /training/modules/:id/complete
func (h *TrainingHandler) Complete(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	p, err := h.trainingSvc.Complete(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// UpdateProgress handles PUT /training/modules/:id/progress
func (h *TrainingHandler) UpdateProgress(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req ProgressRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.trainingSvc.UpdateProgress(c.Request.Context(), actor, id, req.Percentage)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// ListAllModules handles GET /admin/training/modules, inactive included.
func (h *TrainingHandler) ListAllModules(c *gin.Context) {
	modules, err := h.trainingSvc.ListAllModules(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, moduleList(modules))
}

// CreateModule handles POST /admin/training/modules
func (h *TrainingHandler) CreateModule(c *gin.Context) {
	var req training.ModuleInput
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.trainingSvc.CreateModule(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// UpdateModule handles PUT /admin/training/modules/:id
func (h *TrainingHandler) UpdateModule(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req training.ModuleInput
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.trainingSvc.UpdateModule(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// SetActive handles PUT /admin/training/modules/:id/active
func (h *TrainingHandler) SetActive(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req ActiveRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Active == nil {
		respondError(c, invalidField("is_active", "is required"))
		return
	}
	if err := h.trainingSvc.SetModuleActive(c.Request.Context(), id, *req.Active); err != nil {
		respondError(c, err)
		return
	}
	h.logger.Info("training module activation changed",
		logging.String("module_id", id.String()), logging.Bool("active", *req.Active))
	c.Status(http.StatusNoContent)
}
