package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/BioSecure-Portal/internal/testutil"
	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

func TestRequestID_Generated(t *testing.T) {
	e := gin.New()
	e.Use(RequestID())
	var fromCtx string
	e.GET("/x", func(c *gin.Context) {
		fromCtx = logging.RequestIDFromContext(c.Request.Context())
		c.String(http.StatusOK, RequestIDFrom(c))
	})

	w := serve(e, httptest.NewRequest(http.MethodGet, "/x", nil))
	id := w.Header().Get(HeaderRequestID)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, w.Body.String())
	assert.Equal(t, id, fromCtx)
}

func TestRequestID_Propagated(t *testing.T) {
	e := gin.New()
	e.Use(RequestID())
	e.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "abc-123")

	w := serve(e, req)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))
}

func TestRequestLogging_Levels(t *testing.T) {
	log := testutil.NewMockLogger()
	e := gin.New()
	e.Use(RequestID(), RequestLogging(log, DefaultLoggingConfig()))
	e.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	e.GET("/missing", func(c *gin.Context) { AbortWithError(c, errors.NotFound("nope")) })
	e.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	e.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(e, httptest.NewRequest(http.MethodGet, "/ok", nil))
	serve(e, httptest.NewRequest(http.MethodGet, "/missing", nil))
	serve(e, httptest.NewRequest(http.MethodGet, "/boom", nil))
	serve(e, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.True(t, log.HasMessage("info", "HTTP request completed"))
	assert.True(t, log.HasMessage("warn", "HTTP request completed with client error"))
	assert.True(t, log.HasMessage("error", "HTTP request completed with server error"))
	assert.Len(t, log.GetMessages(), 3)
}

func TestRecovery(t *testing.T) {
	log := testutil.NewMockLogger()
	e := gin.New()
	e.Use(RequestID(), Recovery(log))
	e.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := serve(e, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, w.Header().Get(HeaderRequestID), decodeError(t, w).RequestID)
	assert.True(t, log.HasMessage("error", "Panic recovered"))
}

func TestMetrics_DoesNotInterfere(t *testing.T) {
	e := gin.New()
	e.Use(Metrics(prometheus.NewNopMetrics()))
	e.GET("/farms/:id", func(c *gin.Context) { c.Status(http.StatusAccepted) })

	assert.Equal(t, http.StatusAccepted, serve(e, httptest.NewRequest(http.MethodGet, "/farms/1", nil)).Code)
	assert.Equal(t, http.StatusNotFound, serve(e, httptest.NewRequest(http.MethodGet, "/nope", nil)).Code)
}

func TestBodyLimit(t *testing.T) {
	e := gin.New()
	e.Use(BodyLimit(8, 0))
	e.POST("/x", func(c *gin.Context) {
		var v map[string]string
		if err := c.ShouldBindJSON(&v); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	small := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{}`))
	small.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusOK, serve(e, small).Code)

	big := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"name":"a very long farm name"}`))
	big.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusRequestEntityTooLarge, serve(e, big).Code)
}
