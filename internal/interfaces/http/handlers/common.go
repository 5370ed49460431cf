// Package handlers implements the HTTP endpoints of the portal API.
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/turtacn/BioSecure-Portal/internal/application/common"
	"github.com/turtacn/BioSecure-Portal/internal/interfaces/http/middleware"
	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

// actorFrom returns the authenticated caller or aborts with 401.
func actorFrom(c *gin.Context) (common.Actor, bool) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		middleware.AbortWithError(c, errors.New(errors.ErrCodeTokenMissing, "authentication required"))
	}
	return actor, ok
}

// pathUUID parses the named path parameter.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		middleware.AbortWithError(c, errors.InvalidParam("invalid "+name).WithField(name, "must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}

// queryUUID parses an optional query parameter.  Absent yields nil.
func queryUUID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		middleware.AbortWithError(c, errors.InvalidParam("invalid "+name).WithField(name, "must be a UUID"))
		return nil, false
	}
	return &id, true
}

// parsePagination extracts page and page_size from the query.  Bad values
// fall back to the defaults.
func parsePagination(c *gin.Context) (int, int) {
	page := 1
	pageSize := common.DefaultPageSize

	if v := c.Query("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			page = p
		}
	}
	if v := c.Query("page_size"); v != "" {
		if ps, err := strconv.Atoi(v); err == nil && ps > 0 && ps <= common.MaxPageSize {
			pageSize = ps
		}
	}
	return page, pageSize
}

// queryInt reads a positive integer query parameter, returning def otherwise.
func queryInt(c *gin.Context, name string, def int) int {
	if v := c.Query(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// bindJSON decodes the request body into dst or aborts with 400.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		middleware.AbortWithError(c, errors.InvalidParam("invalid request body").WithDetail(err.Error()))
		return false
	}
	return true
}

// respondError writes err as the response.
func respondError(c *gin.Context, err error) {
	middleware.AbortWithError(c, err)
}

func invalidField(field, msg string) error {
	return errors.InvalidParam("invalid request body").WithField(field, msg)
}
