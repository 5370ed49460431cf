// Package compliance models regulatory compliance records and their
// certificate documents.
package compliance

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

// Status is the lifecycle state of a compliance record.
type Status string

const (
	StatusActive  Status = "active"
	StatusPending Status = "pending"
	StatusExpired Status = "expired"
	StatusRevoked Status = "revoked"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusPending, StatusExpired, StatusRevoked:
		return true
	}
	return false
}

// Record is one certification or regulatory obligation of a farm.
type Record struct {
	ID                uuid.UUID  `json:"id"`
	FarmID            uuid.UUID  `json:"farm_id"`
	ComplianceType    string     `json:"compliance_type"`
	CertificateNumber string     `json:"certificate_number,omitempty"`
	IssueDate         *time.Time `json:"issue_date,omitempty"`
	ExpiryDate        *time.Time `json:"expiry_date,omitempty"`
	Status            Status     `json:"status"`
	Notes             string     `json:"notes,omitempty"`
	DocumentKey       string     `json:"document_key,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// ExpiredAt reports whether the record has lapsed at now.
func (r *Record) ExpiredAt(now time.Time) bool {
	return r.ExpiryDate != nil && r.ExpiryDate.Before(now)
}

// Input carries the writable record fields.
type Input struct {
	FarmID            uuid.UUID  `json:"farm_id"`
	ComplianceType    string     `json:"compliance_type"`
	CertificateNumber string     `json:"certificate_number"`
	IssueDate         *time.Time `json:"issue_date"`
	ExpiryDate        *time.Time `json:"expiry_date"`
	Status            string     `json:"status"`
	Notes             string     `json:"notes"`
}

// Validate reports every invalid field at once.
func (in *Input) Validate() error {
	fields := map[string]string{}
	if in.FarmID == uuid.Nil {
		fields["farm_id"] = "required"
	}
	if strings.TrimSpace(in.ComplianceType) == "" {
		fields["compliance_type"] = "required"
	}
	if in.Status != "" && !Status(strings.ToLower(in.Status)).Valid() {
		fields["status"] = "must be active, pending, expired or revoked"
	}
	if in.IssueDate != nil && in.ExpiryDate != nil && in.ExpiryDate.Before(*in.IssueDate) {
		fields["expiry_date"] = "must not precede issue_date"
	}
	if len(fields) == 0 {
		return nil
	}
	code := errors.ErrCodeValidation
	if _, ok := fields["expiry_date"]; ok && len(fields) == 1 {
		code = errors.ErrCodeComplianceDateInvalid
	}
	ae := errors.New(code, "invalid compliance record")
	ae.Fields = fields
	return ae
}

// Apply writes validated input onto r.  An empty status defaults to pending.
func (in *Input) Apply(r *Record) {
	r.FarmID = in.FarmID
	r.ComplianceType = strings.TrimSpace(in.ComplianceType)
	r.CertificateNumber = strings.TrimSpace(in.CertificateNumber)
	r.IssueDate = in.IssueDate
	r.ExpiryDate = in.ExpiryDate
	r.Status = Status(strings.ToLower(in.Status))
	if r.Status == "" {
		r.Status = StatusPending
	}
	r.Notes = in.Notes
}

// New builds a record from validated input.
func New(in *Input) *Record {
	r := &Record{ID: uuid.New()}
	in.Apply(r)
	return r
}

// ListFilter narrows record listings.
type ListFilter struct {
	FarmID *uuid.UUID
	Status Status
	Limit  int
	Offset int
}

// Repository persists compliance records.
type Repository interface {
	Create(ctx context.Context, r *Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	Update(ctx context.Context, r *Record) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ListFilter) ([]*Record, int64, error)
	SetDocument(ctx context.Context, id uuid.UUID, key string) error
	// ExpireDue marks active records whose expiry date is before now as
	// expired and returns the affected ids.
	ExpireDue(ctx context.Context, now time.Time) ([]uuid.UUID, error)
}
