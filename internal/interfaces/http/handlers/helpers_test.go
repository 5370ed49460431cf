package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/BioSecure-Portal/internal/domain/profile"
	"github.com/turtacn/BioSecure-Portal/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testProfile = &profile.Profile{
	ID:       uuid.MustParse("6b1d2c1e-5c55-4c1a-9e2e-0d7a1f3f9a01"),
	UserID:   "user-1",
	FullName: "Jo Farmer",
	Role:     profile.RoleAdmin,
}

// newEngine returns an engine that authenticates every request as
// testProfile.
func newEngine() *gin.Engine {
	e := gin.New()
	e.Use(middleware.RequestID(), func(c *gin.Context) {
		middleware.SetActor(c, testProfile)
		c.Next()
	})
	return e
}

func doJSON(e *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func doRaw(e *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst))
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body middleware.ErrorBody
	decodeBody(t, w, &body)
	return body.Error.Code
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, w.Body.String())
}
