package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	appprofile "github.com/turtacn/BioSecure-Portal/internal/application/profile"
	"github.com/turtacn/BioSecure-Portal/internal/domain/profile"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/auth/token"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (*token.Claims, error)
}

// ProfileResolver maps a verified subject to its portal profile.
type ProfileResolver interface {
	EnsureProfile(ctx context.Context, input *appprofile.EnsureInput) (*profile.Profile, error)
}

// AuthMiddleware authenticates bearer tokens and loads the caller's profile.
type AuthMiddleware struct {
	verifier TokenVerifier
	profiles ProfileResolver
	metrics  *prometheus.AppMetrics
	logger   logging.Logger
}

// NewAuthMiddleware creates the middleware.  metrics may be nil.
func NewAuthMiddleware(verifier TokenVerifier, profiles ProfileResolver, metrics *prometheus.AppMetrics, logger logging.Logger) *AuthMiddleware {
	if metrics == nil {
		metrics = prometheus.NewNopMetrics()
	}
	return &AuthMiddleware{verifier: verifier, profiles: profiles, metrics: metrics, logger: logger}
}

// Handler rejects requests without a valid bearer token with 401.
func (m *AuthMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := token.FromHeader(c.GetHeader("Authorization"))
		if err != nil {
			m.reject(c, err)
			return
		}
		claims, err := m.verifier.Verify(c.Request.Context(), raw)
		if err != nil {
			m.reject(c, err)
			return
		}
		p, err := m.profiles.EnsureProfile(c.Request.Context(), &appprofile.EnsureInput{
			UserID:   claims.Subject,
			Email:    claims.Email,
			FullName: claims.FullName(),
		})
		if err != nil {
			m.logger.Error("Failed to resolve profile",
				logging.String("subject", claims.Subject), logging.Err(err))
			AbortWithError(c, err)
			return
		}

		prometheus.RecordAuthAttempt(m.metrics, true, "ok")
		SetActor(c, p)
		c.Request = c.Request.WithContext(logging.ContextWithUserID(c.Request.Context(), p.ID.String()))
		c.Next()
	}
}

func (m *AuthMiddleware) reject(c *gin.Context, err error) {
	reason := "invalid"
	switch {
	case errors.IsCode(err, errors.ErrCodeTokenMissing):
		reason = "missing"
	case errors.IsCode(err, errors.ErrCodeTokenExpired):
		reason = "expired"
	}
	prometheus.RecordAuthAttempt(m.metrics, false, reason)
	m.logger.Debug("Authentication rejected", logging.String("reason", reason), logging.String("path", c.FullPath()))
	c.Header("WWW-Authenticate", `Bearer realm="biosec"`)
	AbortWithError(c, err)
}

// RequireRole admits callers holding one of roles.  It must run after
// AuthMiddleware.Handler.
func RequireRole(roles ...profile.Role) gin.HandlerFunc {
	allowed := make(map[profile.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			AbortWithError(c, errors.New(errors.ErrCodeTokenMissing, "authentication required"))
			return
		}
		if !allowed[actor.Role] {
			AbortWithError(c, errors.New(errors.ErrCodeRoleDenied, "insufficient role").
				WithDetail("role="+string(actor.Role)))
			return
		}
		c.Next()
	}
}
