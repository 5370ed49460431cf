// Package token verifies bearer tokens minted by the external identity
// provider.  The portal never issues tokens itself.
package token

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/turtacn/BioSecure-Portal/internal/config"
	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

var (
	ErrTokenMissing = errors.New(errors.ErrCodeTokenMissing, "bearer token required")
	ErrTokenInvalid = errors.New(errors.ErrCodeTokenInvalid, "invalid bearer token")
	ErrTokenExpired = errors.New(errors.ErrCodeTokenExpired, "bearer token expired")
)

// Claims is the verified token payload.  Subject identifies the user at the
// identity provider and is stored as the profile's user_id.
type Claims struct {
	jwt.RegisteredClaims
	Email        string                 `json:"email,omitempty"`
	Name         string                 `json:"name,omitempty"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
}

// FullName prefers the provider's user metadata over the standard name claim.
func (c *Claims) FullName() string {
	if v, ok := c.UserMetadata["full_name"].(string); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(c.Name)
}

// Verifier checks signatures and the standard time, issuer and audience
// claims.  Tokens are RS256 against the provider's JWKS when a JWKS URL is
// configured and HS256 against the shared secret otherwise.
type Verifier struct {
	secret []byte
	keys   *keySet
	parser *jwt.Parser
}

// NewVerifier builds a verifier from cfg.  Issuer and audience are checked
// only when configured.
func NewVerifier(cfg config.AuthConfig) (*Verifier, error) {
	v := &Verifier{}
	method := jwt.SigningMethodHS256.Alg()
	switch {
	case cfg.JWKSURL != "":
		v.keys = newKeySet(cfg.JWKSURL, &http.Client{Timeout: 10 * time.Second}, cfg.JWKSRefreshInterval)
		method = jwt.SigningMethodRS256.Alg()
	case cfg.JWTSecret != "":
		v.secret = []byte(cfg.JWTSecret)
	default:
		return nil, errors.New(errors.ErrCodeValidation, "auth.jwt_secret or auth.jwks_url is required")
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{method}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(cfg.ClockSkew),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	v.parser = jwt.NewParser(opts...)
	return v, nil
}

// Verify parses raw and returns its claims.
func (v *Verifier) Verify(ctx context.Context, raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrTokenMissing
	}
	claims := &Claims{}
	_, err := v.parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if v.keys == nil {
			return v.secret, nil
		}
		kid, _ := t.Header["kid"].(string)
		return v.keys.key(ctx, kid)
	})
	switch {
	case err == nil:
	case stderrors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	default:
		return nil, ErrTokenInvalid.WithCause(err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrTokenInvalid.WithDetail("subject claim missing")
	}
	return claims, nil
}

// FromHeader extracts the token from an Authorization header value.
func FromHeader(h string) (string, error) {
	if h == "" {
		return "", ErrTokenMissing
	}
	scheme, tok, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tok) == "" {
		return "", ErrTokenInvalid.WithDetail("authorization header must be 'Bearer <token>'")
	}
	return strings.TrimSpace(tok), nil
}

// ExpiresIn reports the remaining lifetime of c at now.
func (c *Claims) ExpiresIn(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Sub(now)
}
