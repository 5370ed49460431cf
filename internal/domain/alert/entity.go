// Package alert models biosecurity alerts broadcast by administrators.
package alert

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

// Severity ranks the urgency of an alert.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Rank orders severities from 1 (low) to 4 (critical); unknown is 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	}
	return 0
}

// DefaultType is applied when an alert is created without a type.
const DefaultType = "biosecurity"

// Alert is a broadcast notice, optionally targeted at a farm type or region.
type Alert struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	AlertType string    `json:"alert_type"`
	FarmType  string    `json:"farm_type,omitempty"`
	Location  string    `json:"location,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Input carries the writable alert fields.
type Input struct {
	Title     string `json:"title"`
	Message   string `json:"message"`
	Severity  string `json:"severity"`
	AlertType string `json:"alert_type"`
	FarmType  string `json:"farm_type"`
	Location  string `json:"location"`
}

// Validate reports every invalid field at once.
func (in *Input) Validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(in.Title) == "" {
		fields["title"] = "required"
	}
	if strings.TrimSpace(in.Message) == "" {
		fields["message"] = "required"
	}
	if !Severity(strings.ToLower(in.Severity)).Valid() {
		fields["severity"] = "must be one of low, medium, high, critical"
	}
	if len(fields) > 0 {
		ae := errors.New(errors.ErrCodeAlertInvalid, "invalid alert")
		ae.Fields = fields
		return ae
	}
	return nil
}

// Apply writes validated input onto a.
func (in *Input) Apply(a *Alert) {
	a.Title = strings.TrimSpace(in.Title)
	a.Message = strings.TrimSpace(in.Message)
	a.Severity = Severity(strings.ToLower(in.Severity))
	a.AlertType = strings.TrimSpace(in.AlertType)
	if a.AlertType == "" {
		a.AlertType = DefaultType
	}
	a.FarmType = strings.TrimSpace(in.FarmType)
	a.Location = strings.TrimSpace(in.Location)
}

// New builds an active alert from validated input.
func New(in *Input) *Alert {
	a := &Alert{ID: uuid.New(), IsActive: true}
	in.Apply(a)
	return a
}

// ListFilter narrows alert listings.  Ordering is always created_at desc.
type ListFilter struct {
	ActiveOnly bool
	FarmType   string
	Severity   Severity
	Limit      int
	Offset     int
}

// Repository persists alerts.
type Repository interface {
	Create(ctx context.Context, a *Alert) error
	GetByID(ctx context.Context, id uuid.UUID) (*Alert, error)
	Update(ctx context.Context, a *Alert) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ListFilter) ([]*Alert, int64, error)
	CountActive(ctx context.Context) (int64, error)
	// DeactivateOlderThan switches off active alerts created before cutoff.
	DeactivateOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
