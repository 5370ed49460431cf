// Package middleware holds the gin middleware of the API server.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/BioSecure-Portal/internal/application/common"
	"github.com/turtacn/BioSecure-Portal/internal/domain/profile"
	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

const (
	actorKey     = "biosec.actor"
	profileKey   = "biosec.profile"
	requestIDKey = "biosec.request_id"

	// HeaderRequestID carries the request id in both directions.
	HeaderRequestID = "X-Request-ID"
)

// SetActor stores the authenticated caller on c.
func SetActor(c *gin.Context, p *profile.Profile) {
	c.Set(profileKey, p)
	c.Set(actorKey, common.ActorFromProfile(p))
}

// ActorFrom returns the authenticated caller.
func ActorFrom(c *gin.Context) (common.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return common.Actor{}, false
	}
	a, ok := v.(common.Actor)
	return a, ok
}

// ProfileFrom returns the caller's profile as loaded by the auth middleware.
func ProfileFrom(c *gin.Context) (*profile.Profile, bool) {
	v, ok := c.Get(profileKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*profile.Profile)
	return p, ok && p != nil
}

// RequestIDFrom returns the id assigned by RequestID.
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// ErrorBody is the JSON error envelope.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes one failed request.
type ErrorDetail struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// RenderError maps err to its status and body.  Server-side failures are
// reported with the code's default message only.
func RenderError(err error, requestID string) (int, ErrorBody) {
	var ae *errors.AppError
	if !errors.As(err, &ae) {
		ae = errors.New(errors.ErrCodeInternal, "internal server error")
	}
	status := errors.HTTPStatusForCode(ae.Code)
	body := ErrorDetail{Code: ae.Code.String(), Message: ae.Message, Fields: ae.Fields, RequestID: requestID}
	if status >= http.StatusInternalServerError {
		body.Message = errors.DefaultMessageForCode(ae.Code)
		body.Fields = nil
	}
	return status, ErrorBody{Error: body}
}

// AbortWithError writes err as the response and stops the chain.
func AbortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	status, body := RenderError(err, RequestIDFrom(c))
	c.AbortWithStatusJSON(status, body)
}
