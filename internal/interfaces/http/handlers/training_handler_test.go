package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	apptraining "github.com/turtacn/BioSecure-Portal/internal/application/training"
	"github.com/turtacn/BioSecure-Portal/internal/domain/training"
	"github.com/turtacn/BioSecure-Portal/internal/testutil"
	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

func trainingSetup() (*mockTrainingService, *gin.Engine) {
	svc := new(mockTrainingService)
	h := NewTrainingHandler(svc, testutil.NewMockLogger())
	e := newEngine()
	h.RegisterRoutes(e)
	h.RegisterAdminRoutes(e.Group("/admin"))
	return svc, e
}

func TestListModules(t *testing.T) {
	svc, e := trainingSetup()
	svc.On("ListModules", mock.Anything).Return([]*training.Module{{ID: uuid.New(), Title: "Visitor control"}}, nil)

	w := doJSON(e, http.MethodGet, "/training/modules", nil)
	assertStatus(t, w, http.StatusOK)
	var got ModuleListResponse
	decodeBody(t, w, &got)
	assert.Len(t, got.Modules, 1)
}

func TestGetModule_WithSteps(t *testing.T) {
	svc, e := trainingSetup()
	id := uuid.New()
	svc.On("GetModule", mock.Anything, id).Return(&apptraining.ModuleDetail{
		Module: &training.Module{ID: id, Title: "Cleaning"},
		Steps:  []string{"Scrape", "Wash"},
	}, nil)

	w := doJSON(e, http.MethodGet, "/training/modules/"+id.String(), nil)
	assertStatus(t, w, http.StatusOK)
	assert.Contains(t, w.Body.String(), `"steps":["Scrape","Wash"]`)
}

func TestStartAndCompleteModule(t *testing.T) {
	svc, e := trainingSetup()
	id := uuid.New()
	svc.On("Start", mock.Anything, mock.Anything, id).
		Return(&training.Progress{ModuleID: id, Status: training.StatusInProgress}, nil)
	svc.On("Complete", mock.Anything, mock.Anything, id).
		Return(&training.Progress{ModuleID: id, Status: training.StatusCompleted, ProgressPercentage: 100}, nil)

	assertStatus(t, doJSON(e, http.MethodPost, "/training/modules/"+id.String()+"/start", nil), http.StatusOK)

	w := doJSON(e, http.MethodPost, "/training/modules/"+id.String()+"/complete", nil)
	assertStatus(t, w, http.StatusOK)
	var got training.Progress
	decodeBody(t, w, &got)
	assert.Equal(t, 100, got.ProgressPercentage)
}

func TestUpdateProgress_OutOfRange(t *testing.T) {
	svc, e := trainingSetup()
	id := uuid.New()
	svc.On("UpdateProgress", mock.Anything, mock.Anything, id, 150).
		Return(nil, errors.Validation("invalid progress", map[string]string{"progress_percentage": "must be between 0 and 100"}))

	w := doJSON(e, http.MethodPut, "/training/modules/"+id.String()+"/progress", ProgressRequest{Percentage: 150})
	assert.Equal(t, errors.HTTPStatusForCode(errors.CodeValidation), w.Code)
	svc.AssertExpectations(t)
}

func TestProgressSummary(t *testing.T) {
	svc, e := trainingSetup()
	svc.On("Progress", mock.Anything, mock.Anything).
		Return(&apptraining.ProgressSummary{CompletedModules: 1, ActiveModules: 4, CompletionPercentage: 25}, nil)

	w := doJSON(e, http.MethodGet, "/training/progress", nil)
	assertStatus(t, w, http.StatusOK)
	assert.Contains(t, w.Body.String(), `"completion_percentage":25`)
}

func TestAdminCreateModule(t *testing.T) {
	svc, e := trainingSetup()
	svc.On("CreateModule", mock.Anything, mock.MatchedBy(func(in *training.ModuleInput) bool {
		return in.Title == "Footbaths"
	})).Return(&training.Module{ID: uuid.New(), Title: "Footbaths", IsActive: true}, nil)

	w := doJSON(e, http.MethodPost, "/admin/training/modules", training.ModuleInput{Title: "Footbaths", DurationMinutes: 10})
	assertStatus(t, w, http.StatusCreated)
}

func TestAdminSetActive(t *testing.T) {
	svc, e := trainingSetup()
	id := uuid.New()
	svc.On("SetModuleActive", mock.Anything, id, false).Return(nil)

	assertStatus(t, doRaw(e, http.MethodPut, "/admin/training/modules/"+id.String()+"/active", `{"is_active":false}`), http.StatusNoContent)
	assertStatus(t, doRaw(e, http.MethodPut, "/admin/training/modules/"+id.String()+"/active", `{}`), http.StatusBadRequest)
	svc.AssertExpectations(t)
}
