package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appprofile "github.com/turtacn/BioSecure-Portal/internal/application/profile"
	"github.com/turtacn/BioSecure-Portal/internal/domain/profile"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/logging"
)

// ProfileHandler serves the caller's own profile.
type ProfileHandler struct {
	profileSvc appprofile.Service
	logger     logging.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profileSvc appprofile.Service, logger logging.Logger) *ProfileHandler {
	return &ProfileHandler{profileSvc: profileSvc, logger: logger}
}

// RegisterRoutes registers profile routes.
func (h *ProfileHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/profile", h.GetProfile)
	r.PUT("/profile", h.UpdateProfile)
}

// GetProfile handles GET /profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	p, err := h.profileSvc.Get(c.Request.Context(), actor.ProfileID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// UpdateProfile handles PUT /profile.  The role is not writable here.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req profile.Update
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.profileSvc.Update(c.Request.Context(), actor, req)
	if err != nil {
		h.logger.Warn("failed to update profile", logging.String("profile_id", actor.ProfileID.String()), logging.Err(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
