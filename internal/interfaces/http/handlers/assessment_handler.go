package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appassessment "github.com/turtacn/BioSecure-Portal/internal/application/assessment"
	"github.com/turtacn/BioSecure-Portal/internal/domain/assessment"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/logging"
)

// AssessmentHandler serves the question catalog and the caller's
// risk assessments.
type AssessmentHandler struct {
	assessmentSvc appassessment.Service
	logger        logging.Logger
}

// NewAssessmentHandler creates a new AssessmentHandler.
func NewAssessmentHandler(assessmentSvc appassessment.Service, logger logging.Logger) *AssessmentHandler {
	return &AssessmentHandler{assessmentSvc: assessmentSvc, logger: logger}
}

// RegisterRoutes registers catalog and assessment routes.
func (h *AssessmentHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/catalog", h.GetCatalog)
	r.POST("/farms/:id/assessments", h.Submit)
	r.GET("/assessments", h.List)
	r.GET("/assessments/:id", h.Get)
	r.POST("/assessments/:id/export", h.Export)
}

// SubmitRequest is the body of an assessment submission.
type SubmitRequest struct {
	Responses       assessment.Responses `json:"responses"`
	Recommendations string               `json:"recommendations"`
}

// GetCatalog handles GET /catalog
func (h *AssessmentHandler) GetCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, h.assessmentSvc.Catalog())
}

// Submit handles POST /farms/:id/assessments
func (h *AssessmentHandler) Submit(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	farmID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req SubmitRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.assessmentSvc.Submit(c.Request.Context(), actor, &appassessment.SubmitInput{
		FarmID:          farmID,
		Responses:       req.Responses,
		Recommendations: req.Recommendations,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// List handles GET /assessments?farm_id=&page=&page_size=
func (h *AssessmentHandler) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	farmID, ok := queryUUID(c, "farm_id")
	if !ok {
		return
	}
	page, pageSize := parsePagination(c)
	result, err := h.assessmentSvc.List(c.Request.Context(), actor, &appassessment.ListInput{
		FarmID:   farmID,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Get handles GET /assessments/:id
func (h *AssessmentHandler) Get(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	a, err := h.assessmentSvc.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// Export handles POST /assessments/:id/export
func (h *AssessmentHandler) Export(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	link, err := h.assessmentSvc.ExportReport(c.Request.Context(), actor, id)
	if err != nil {
		h.logger.Error("failed to export assessment report", logging.String("assessment_id", id.String()), logging.Err(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}
