// Package profile models portal members and their roles.
package profile

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is the authorization level of a profile.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleMember    Role = "member"
)

// Roles lists every assignable role.
var Roles = []Role{RoleAdmin, RoleModerator, RoleMember}

// Valid reports whether r is an assignable role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleMember:
		return true
	}
	return false
}

// ParseRole normalises s and reports whether it names a role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}

// Profile is the portal-side record of an identity-provider subject.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	FullName  string    `json:"full_name"`
	FarmType  string    `json:"farm_type,omitempty"`
	Location  string    `json:"location,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName returns the name to show in feeds, falling back to the email.
func (p *Profile) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	if p.Email != "" {
		return p.Email
	}
	return "Unknown user"
}

// IsAdmin reports whether the profile holds the admin role.
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// Update carries the self-editable profile fields.  Nil means unchanged.
type Update struct {
	FullName *string `json:"full_name"`
	FarmType *string `json:"farm_type"`
	Location *string `json:"location"`
	Phone    *string `json:"phone"`
}

// Apply copies the non-nil fields of u onto p.
func (u Update) Apply(p *Profile) {
	if u.FullName != nil {
		p.FullName = strings.TrimSpace(*u.FullName)
	}
	if u.FarmType != nil {
		p.FarmType = strings.TrimSpace(*u.FarmType)
	}
	if u.Location != nil {
		p.Location = strings.TrimSpace(*u.Location)
	}
	if u.Phone != nil {
		p.Phone = strings.TrimSpace(*u.Phone)
	}
}

// ListFilter narrows admin user listings.  Search matches name, role and
// location case-insensitively.
type ListFilter struct {
	Search string
	Role   Role
	Offset int
	Limit  int
}

// Repository persists profiles.
type Repository interface {
	Create(ctx context.Context, p *Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	GetByUserID(ctx context.Context, userID string) (*Profile, error)
	Update(ctx context.Context, p *Profile) error
	UpdateRole(ctx context.Context, id uuid.UUID, role Role) error
	List(ctx context.Context, filter ListFilter) ([]*Profile, int64, error)
	Count(ctx context.Context) (int64, error)
}
