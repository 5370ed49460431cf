// Package common holds types shared by the application services: the
// authenticated actor, pagination, cache keys and the object store port.
package common

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/BioSecure-Portal/internal/domain/profile"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/storage/minio"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ProfileID uuid.UUID
	UserID    string
	Name      string
	Role      profile.Role
}

// ActorFromProfile builds the actor for p.
func ActorFromProfile(p *profile.Profile) Actor {
	return Actor{
		ProfileID: p.ID,
		UserID:    p.UserID,
		Name:      p.DisplayName(),
		Role:      p.Role,
	}
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.Role == profile.RoleAdmin }

// Pagination defaults shared by list operations.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is a normalised 1-based page request.
type Page struct {
	Page     int
	PageSize int
}

// NormalizePage clamps page and size to their accepted ranges.
func NormalizePage(page, size int) Page {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Page: page, PageSize: size}
}

// Offset returns the row offset of the page.
func (p Page) Offset() int { return (p.Page - 1) * p.PageSize }

// TotalPages returns the number of pages needed for total rows.
func (p Page) TotalPages(total int64) int {
	if total <= 0 {
		return 0
	}
	return int((total + int64(p.PageSize) - 1) / int64(p.PageSize))
}

// Cache keys.  The redis client adds its own namespace prefix.
const (
	DashboardKeyPrefix = "dashboard:"
	StatsKey           = "admin:stats"
)

// ProfileKey caches the profile of a token subject.
func ProfileKey(userID string) string { return "profile:user:" + userID }

// DashboardKey caches the dashboard of one profile.
func DashboardKey(profileID uuid.UUID) string { return DashboardKeyPrefix + profileID.String() }

// ObjectStore is the subset of the document store used by services.
type ObjectStore interface {
	Put(ctx context.Context, req *minio.PutRequest) (*minio.ObjectInfo, error)
	Delete(ctx context.Context, bucket, key string) error
	PresignedURL(ctx context.Context, bucket, key, filename string) (string, time.Time, error)
}
