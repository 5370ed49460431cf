package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/BioSecure-Portal/internal/domain/profile"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newProfile(role profile.Role) *profile.Profile {
	return &profile.Profile{ID: uuid.New(), UserID: "user-1", FullName: "Jo Farmer", Role: role}
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorDetail {
	t.Helper()
	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}
