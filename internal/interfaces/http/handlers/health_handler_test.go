package handlers

import (
	"context"
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func healthEngine(h *HealthHandler) *gin.Engine {
	e := gin.New()
	h.RegisterRoutes(e)
	return e
}

func TestLiveness(t *testing.T) {
	e := healthEngine(NewHealthHandler("1.2.3", CheckFunc{Component: "postgres", Fn: func(context.Context) error {
		return stderrors.New("down")
	}}))

	w := doJSON(e, http.MethodGet, "/healthz", nil)
	assertStatus(t, w, http.StatusOK)
	var resp LivenessResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, "alive", resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
}

func TestReadiness_AllHealthy(t *testing.T) {
	ok := func(context.Context) error { return nil }
	e := healthEngine(NewHealthHandler("dev",
		CheckFunc{Component: "postgres", Fn: ok},
		CheckFunc{Component: "redis", Fn: ok}))

	w := doJSON(e, http.MethodGet, "/readyz", nil)
	assertStatus(t, w, http.StatusOK)
	var resp ReadinessResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, "ready", resp.Status)
	assert.Len(t, resp.Components, 2)
}

func TestReadiness_Unhealthy(t *testing.T) {
	e := healthEngine(NewHealthHandler("dev",
		CheckFunc{Component: "postgres", Fn: func(context.Context) error { return nil }},
		CheckFunc{Component: "redis", Fn: func(context.Context) error { return stderrors.New("connection refused") }}))

	w := doJSON(e, http.MethodGet, "/readyz", nil)
	assertStatus(t, w, http.StatusServiceUnavailable)
	var resp ReadinessResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, "not_ready", resp.Status)
	assert.Equal(t, "unhealthy", resp.Components["redis"].Status)
	assert.Equal(t, "connection refused", resp.Components["redis"].Error)
	assert.Equal(t, "healthy", resp.Components["postgres"].Status)
}

func TestReadiness_NoCheckers(t *testing.T) {
	w := doJSON(healthEngine(NewHealthHandler("dev")), http.MethodGet, "/readyz", nil)
	assertStatus(t, w, http.StatusOK)
}
