package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appcompliance "github.com/turtacn/BioSecure-Portal/internal/application/compliance"
	"github.com/turtacn/BioSecure-Portal/internal/domain/compliance"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

// CertificateField is the multipart field carrying a certificate upload.
const CertificateField = "file"

// ComplianceHandler serves compliance record management for admins.
type ComplianceHandler struct {
	complianceSvc appcompliance.Service
	logger        logging.Logger
}

// NewComplianceHandler creates a new ComplianceHandler.
func NewComplianceHandler(complianceSvc appcompliance.Service, logger logging.Logger) *ComplianceHandler {
	return &ComplianceHandler{complianceSvc: complianceSvc, logger: logger}
}

// RegisterRoutes registers compliance routes.  The group must require
// the admin role.
func (h *ComplianceHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/compliance", h.List)
	r.POST("/compliance", h.Create)
	r.GET("/compliance/:id", h.Get)
	r.PUT("/compliance/:id", h.Update)
	r.DELETE("/compliance/:id", h.Delete)
	r.POST("/compliance/:id/certificate", h.UploadCertificate)
	r.GET("/compliance/:id/certificate", h.CertificateURL)
}

// List handles GET /admin/compliance?farm_id=&status=
func (h *ComplianceHandler) List(c *gin.Context) {
	farmID, ok := queryUUID(c, "farm_id")
	if !ok {
		return
	}
	page, pageSize := parsePagination(c)
	result, err := h.complianceSvc.List(c.Request.Context(), &appcompliance.ListInput{
		FarmID:   farmID,
		Status:   c.Query("status"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Create handles POST /admin/compliance
func (h *ComplianceHandler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req compliance.Input
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.complianceSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// Get handles GET /admin/compliance/:id
func (h *ComplianceHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	rec, err := h.complianceSvc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Update handles PUT /admin/compliance/:id
func (h *ComplianceHandler) Update(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req compliance.Input
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.complianceSvc.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Delete handles DELETE /admin/compliance/:id
func (h *ComplianceHandler) Delete(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.complianceSvc.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadCertificate handles POST /admin/compliance/:id/certificate as a
// multipart form with the document in the "file" field.
func (h *ComplianceHandler) UploadCertificate(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	fh, err := c.FormFile(CertificateField)
	if err != nil {
		respondError(c, errors.InvalidParam("certificate file is required").WithField(CertificateField, "is required"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, errors.Wrap(err, errors.ErrCodeInternal, "failed to read upload"))
		return
	}
	defer f.Close()

	rec, err := h.complianceSvc.AttachCertificate(c.Request.Context(), actor, &appcompliance.CertificateInput{
		RecordID:    id,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		h.logger.Warn("certificate upload failed",
			logging.String("record_id", id.String()), logging.Int64("size", fh.Size), logging.Err(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// CertificateURL handles GET /admin/compliance/:id/certificate
func (h *ComplianceHandler) CertificateURL(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	link, err := h.complianceSvc.CertificateURL(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}
