package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/turtacn/BioSecure-Portal/internal/application/admin"
	"github.com/turtacn/BioSecure-Portal/internal/domain/activity"
	"github.com/turtacn/BioSecure-Portal/internal/domain/farm"
	"github.com/turtacn/BioSecure-Portal/internal/domain/profile"
	"github.com/turtacn/BioSecure-Portal/internal/testutil"
	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

func adminSetup() (*mockAdminService, *gin.Engine) {
	svc := new(mockAdminService)
	h := NewAdminHandler(svc, testutil.NewMockLogger())
	e := newEngine()
	h.RegisterRoutes(e.Group("/admin"))
	return svc, e
}

func TestAdminStats(t *testing.T) {
	svc, e := adminSetup()
	svc.On("Stats", mock.Anything).Return(&admin.Stats{TotalUsers: 12, TotalFarms: 30, ActiveAlerts: 2, CompletedTraining: 41}, nil)

	w := doJSON(e, http.MethodGet, "/admin/stats", nil)
	assertStatus(t, w, http.StatusOK)
	assert.JSONEq(t, `{"total_users":12,"total_farms":30,"active_alerts":2,"completed_training":41}`, w.Body.String())
}

func TestAdminListUsers(t *testing.T) {
	svc, e := adminSetup()
	svc.On("ListUsers", mock.Anything, mock.MatchedBy(func(in *admin.UserListInput) bool {
		return in.Search == "devon" && in.Role == "member" && in.Page == 1 && in.PageSize == 20
	})).Return(&admin.UserListResult{
		Users: []*admin.UserSummary{{
			Profile:   &profile.Profile{ID: uuid.New(), FullName: "Kim", Role: profile.RoleMember},
			Farms:     []admin.FarmSummary{{ID: uuid.New(), Name: "Hill", FarmType: farm.TypeSheep}},
			FarmCount: 1,
		}},
		Total: 1, Page: 1, PageSize: 20, TotalPages: 1,
	}, nil)

	w := doJSON(e, http.MethodGet, "/admin/users?search=devon&role=member&page_size=1000", nil)
	assertStatus(t, w, http.StatusOK)
	body := w.Body.String()
	assert.Contains(t, body, `"full_name":"Kim"`)
	assert.Contains(t, body, `"farm_count":1`)
	assert.Contains(t, body, `"name":"Hill","farm_type":"sheep"`)
	svc.AssertExpectations(t)
}

func TestAdminChangeRole(t *testing.T) {
	svc, e := adminSetup()
	id := uuid.New()
	svc.On("ChangeRole", mock.Anything, mock.Anything, id, "moderator").
		Return(&profile.Profile{ID: id, Role: profile.RoleModerator}, nil)

	w := doJSON(e, http.MethodPut, "/admin/users/"+id.String()+"/role", RoleRequest{Role: "moderator"})
	assertStatus(t, w, http.StatusOK)
	assert.Contains(t, w.Body.String(), `"role":"moderator"`)
}

func TestAdminChangeRole_Self(t *testing.T) {
	svc, e := adminSetup()
	svc.On("ChangeRole", mock.Anything, mock.Anything, testProfile.ID, "member").
		Return(nil, errors.Forbidden("cannot change your own role"))

	w := doJSON(e, http.MethodPut, "/admin/users/"+testProfile.ID.String()+"/role", RoleRequest{Role: "member"})
	assertStatus(t, w, http.StatusForbidden)
}

func TestAdminRecentActivity(t *testing.T) {
	svc, e := adminSetup()
	svc.On("RecentActivity", mock.Anything, 5).Return([]*activity.Entry{{
		ID: uuid.New(), ActorName: "Jo Farmer", Action: "Created farm", Resource: "Hillside",
		Type: activity.TypeFarm, OccurredAt: time.Now(),
	}}, nil)
	svc.On("RecentActivity", mock.Anything, 0).Return([]*activity.Entry{}, nil)

	w := doJSON(e, http.MethodGet, "/admin/activity?limit=5", nil)
	assertStatus(t, w, http.StatusOK)
	assert.Contains(t, w.Body.String(), `"action":"Created farm"`)

	w = doJSON(e, http.MethodGet, "/admin/activity?limit=bogus", nil)
	assertStatus(t, w, http.StatusOK)
	svc.AssertExpectations(t)
}
