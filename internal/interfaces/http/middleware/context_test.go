package middleware

import (
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/turtacn/BioSecure-Portal/internal/domain/profile"
	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

func TestRenderError_AppError(t *testing.T) {
	status, body := RenderError(errors.NotFound("farm not found"), "req-1")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "farm not found", body.Error.Message)
	assert.Equal(t, "req-1", body.Error.RequestID)
}

func TestRenderError_ValidationKeepsFields(t *testing.T) {
	err := errors.Validation("invalid farm", map[string]string{"name": "required"})
	status, body := RenderError(err, "")
	assert.Equal(t, errors.HTTPStatusForCode(errors.CodeValidation), status)
	assert.Equal(t, "required", body.Error.Fields["name"])
}

func TestRenderError_PlainErrorIsInternal(t *testing.T) {
	status, body := RenderError(stderrors.New("pq: connection refused"), "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.NotContains(t, body.Error.Message, "pq:")
}

func TestRenderError_ServerErrorHidesDetail(t *testing.T) {
	err := errors.New(errors.ErrCodeDatabaseError, "select failed on farms")
	_, body := RenderError(err, "")
	assert.Equal(t, errors.DefaultMessageForCode(errors.ErrCodeDatabaseError), body.Error.Message)
}

func TestActorFrom(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := ActorFrom(c)
	assert.False(t, ok)

	p := newProfile(profile.RoleMember)
	SetActor(c, p)
	actor, ok := ActorFrom(c)
	assert.True(t, ok)
	assert.Equal(t, p.ID, actor.ProfileID)

	got, ok := ProfileFrom(c)
	assert.True(t, ok)
	assert.Same(t, p, got)
}
