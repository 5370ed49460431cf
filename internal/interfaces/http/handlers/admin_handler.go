package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/BioSecure-Portal/internal/application/admin"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/logging"
)

// AdminHandler serves the admin console: statistics, user management and
// the activity feed.
type AdminHandler struct {
	adminSvc admin.Service
	logger   logging.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminSvc admin.Service, logger logging.Logger) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc, logger: logger}
}

// RegisterRoutes registers console routes.  The group must require the
// admin role.
func (h *AdminHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/stats", h.Stats)
	r.GET("/users", h.ListUsers)
	r.PUT("/users/:id/role", h.ChangeRole)
	r.GET("/activity", h.RecentActivity)
}

// RoleRequest is the body of a role change.
type RoleRequest struct {
	Role string `json:"role"`
}

// Stats handles GET /admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.adminSvc.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListUsers handles GET /admin/users?search=&role=&page=&page_size=
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, pageSize := parsePagination(c)
	result, err := h.adminSvc.ListUsers(c.Request.Context(), &admin.UserListInput{
		Search:   c.Query("search"),
		Role:     c.Query("role"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ChangeRole handles PUT /admin/users/:id/role
func (h *AdminHandler) ChangeRole(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req RoleRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.adminSvc.ChangeRole(c.Request.Context(), actor, id, req.Role)
	if err != nil {
		h.logger.Warn("role change rejected",
			logging.String("profile_id", id.String()), logging.String("role", req.Role), logging.Err(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// RecentActivity handles GET /admin/activity?limit=
func (h *AdminHandler) RecentActivity(c *gin.Context) {
	entries, err := h.adminSvc.RecentActivity(c.Request.Context(), queryInt(c, "limit", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activities": entries})
}
