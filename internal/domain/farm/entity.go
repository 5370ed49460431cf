// Package farm models registered farms and their ownership.
package farm

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

// Type is the production category of a farm.
type Type string

const (
	TypePig     Type = "pig"
	TypePoultry Type = "poultry"
	TypeCattle  Type = "cattle"
	TypeSheep   Type = "sheep"
	TypeGoat    Type = "goat"
	TypeMixed   Type = "mixed"
	TypeOther   Type = "other"
)

// Valid reports whether t is a known farm type.
func (t Type) Valid() bool {
	switch t {
	case TypePig, TypePoultry, TypeCattle, TypeSheep, TypeGoat, TypeMixed, TypeOther:
		return true
	}
	return false
}

// Farm is a registered farm owned by one profile.
type Farm struct {
	ID                 uuid.UUID `json:"id"`
	OwnerID            uuid.UUID `json:"owner_id"`
	Name               string    `json:"name"`
	FarmType           Type      `json:"farm_type"`
	Location           string    `json:"location"`
	SizeHectares       *float64  `json:"size_hectares,omitempty"`
	AnimalCount        int       `json:"animal_count"`
	RegistrationNumber string    `json:"registration_number,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Input carries the writable farm fields for create and update.
type Input struct {
	Name               string   `json:"name"`
	FarmType           string   `json:"farm_type"`
	Location           string   `json:"location"`
	SizeHectares       *float64 `json:"size_hectares"`
	AnimalCount        *int     `json:"animal_count"`
	RegistrationNumber string   `json:"registration_number"`
}

// Validate reports every invalid field at once.
func (in *Input) Validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "required"
	} else if len(in.Name) > 200 {
		fields["name"] = "must be at most 200 characters"
	}
	if strings.TrimSpace(in.FarmType) == "" {
		fields["farm_type"] = "required"
	} else if !Type(strings.ToLower(in.FarmType)).Valid() {
		fields["farm_type"] = "unknown farm type"
	}
	if strings.TrimSpace(in.Location) == "" {
		fields["location"] = "required"
	}
	if in.SizeHectares != nil && *in.SizeHectares < 0 {
		fields["size_hectares"] = "must not be negative"
	}
	if in.AnimalCount != nil && *in.AnimalCount < 0 {
		fields["animal_count"] = "must not be negative"
	}
	if len(fields) > 0 {
		ae := errors.New(errors.ErrCodeFarmInvalid, "invalid farm")
		ae.Fields = fields
		return ae
	}
	return nil
}

// Apply writes the validated input onto f.  AnimalCount defaults to 0 when
// absent on creation and is left unchanged on update.
func (in *Input) Apply(f *Farm) {
	f.Name = strings.TrimSpace(in.Name)
	f.FarmType = Type(strings.ToLower(strings.TrimSpace(in.FarmType)))
	f.Location = strings.TrimSpace(in.Location)
	f.SizeHectares = in.SizeHectares
	if in.AnimalCount != nil {
		f.AnimalCount = *in.AnimalCount
	}
	f.RegistrationNumber = strings.TrimSpace(in.RegistrationNumber)
}

// New builds a farm for ownerID from validated input.
func New(ownerID uuid.UUID, in *Input) *Farm {
	f := &Farm{ID: uuid.New(), OwnerID: ownerID}
	in.Apply(f)
	return f
}

// Repository persists farms.  Update and Delete are owner-scoped: a farm
// that exists but belongs to someone else is reported as not found.
type Repository interface {
	Create(ctx context.Context, f *Farm) error
	GetByID(ctx context.Context, id uuid.UUID) (*Farm, error)
	Update(ctx context.Context, f *Farm) error
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Farm, error)
	ListByOwners(ctx context.Context, ownerIDs []uuid.UUID) ([]*Farm, error)
	Count(ctx context.Context) (int64, error)
}
