package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/turtacn/BioSecure-Portal/internal/application/admin"
	"github.com/turtacn/BioSecure-Portal/internal/application/common"
	appprofile "github.com/turtacn/BioSecure-Portal/internal/application/profile"
	"github.com/turtacn/BioSecure-Portal/internal/domain/activity"
	"github.com/turtacn/BioSecure-Portal/internal/domain/profile"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/auth/token"
	"github.com/turtacn/BioSecure-Portal/internal/interfaces/http/handlers"
	"github.com/turtacn/BioSecure-Portal/internal/interfaces/http/middleware"
	"github.com/turtacn/BioSecure-Portal/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixedVerifier struct{}

func (fixedVerifier) Verify(_ context.Context, raw string) (*token.Claims, error) {
	if raw != "good" {
		return nil, token.ErrTokenInvalid
	}
	return &token.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}}, nil
}

type fixedProfiles struct{ role profile.Role }

func (f fixedProfiles) EnsureProfile(_ context.Context, in *appprofile.EnsureInput) (*profile.Profile, error) {
	return &profile.Profile{ID: uuid.New(), UserID: in.UserID, Role: f.role}, nil
}

type stubAdmin struct{}

func (s *stubAdmin) Stats(context.Context) (*admin.Stats, error) { return &admin.Stats{TotalUsers: 1}, nil }
func (s *stubAdmin) ListUsers(context.Context, *admin.UserListInput) (*admin.UserListResult, error) {
	return &admin.UserListResult{}, nil
}
func (s *stubAdmin) ChangeRole(context.Context, common.Actor, uuid.UUID, string) (*profile.Profile, error) {
	return &profile.Profile{}, nil
}
func (s *stubAdmin) RecentActivity(context.Context, int) ([]*activity.Entry, error) {
	return []*activity.Entry{}, nil
}

func newTestRouter(role profile.Role) *gin.Engine {
	log := testutil.NewMockLogger()
	cors := middleware.DefaultCORSConfig([]string{"https://portal.example.com"})
	return NewRouter(RouterConfig{
		HealthHandler:  handlers.NewHealthHandler("test"),
		AdminHandler:   handlers.NewAdminHandler(&stubAdmin{}, log),
		AuthMiddleware: middleware.NewAuthMiddleware(fixedVerifier{}, fixedProfiles{role: role}, nil, log),
		CORS:           &cors,
		Logging:        middleware.DefaultLoggingConfig(),
		Logger:         log,
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }),
	})
}

func get(r http.Handler, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestNewRouter_PublicEndpoints(t *testing.T) {
	r := newTestRouter(profile.RoleMember)
	assert.Equal(t, http.StatusOK, get(r, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, get(r, "/readyz", "").Code)
	assert.Equal(t, http.StatusOK, get(r, "/metrics", "").Code)
}

func TestNewRouter_APIRequiresAuth(t *testing.T) {
	r := newTestRouter(profile.RoleAdmin)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/api/v1/admin/stats", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/api/v1/admin/stats", "bad").Code)
	assert.Equal(t, http.StatusOK, get(r, "/api/v1/admin/stats", "good").Code)
}

func TestNewRouter_AdminRequiresRole(t *testing.T) {
	for _, role := range []profile.Role{profile.RoleMember, profile.RoleModerator} {
		r := newTestRouter(role)
		assert.Equal(t, http.StatusForbidden, get(r, "/api/v1/admin/stats", "good").Code, role)
	}
}

func TestNewRouter_UnknownRoute(t *testing.T) {
	r := newTestRouter(profile.RoleMember)
	w := get(r, "/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))
}

func TestNewRouter_MethodNotAllowed(t *testing.T) {
	r := newTestRouter(profile.RoleMember)
	req := httptest.NewRequest(http.MethodDelete, "/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestNewRouter_CORSPreflight(t *testing.T) {
	r := newTestRouter(profile.RoleMember)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/farms", nil)
	req.Header.Set("Origin", "https://portal.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
