// Package compliance provides compliance record management and certificate
// storage for admins, and the expiry sweep run by the worker.
package compliance

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/BioSecure-Portal/internal/application/common"
	"github.com/turtacn/BioSecure-Portal/internal/application/events"
	domain "github.com/turtacn/BioSecure-Portal/internal/domain/compliance"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/storage/minio"
	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

// Service defines compliance operations.
type Service interface {
	Create(ctx context.Context, actor common.Actor, input *domain.Input) (*domain.Record, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Record, error)
	Update(ctx context.Context, actor common.Actor, id uuid.UUID, input *domain.Input) (*domain.Record, error)
	Delete(ctx context.Context, actor common.Actor, id uuid.UUID) error
	List(ctx context.Context, input *ListInput) (*ListResult, error)
	AttachCertificate(ctx context.Context, actor common.Actor, input *CertificateInput) (*domain.Record, error)
	CertificateURL(ctx context.Context, id uuid.UUID) (*CertificateLink, error)
	// ExpireDue marks active records past their expiry date as expired.
	ExpireDue(ctx context.Context) (int64, error)
}

// ListInput filters record listings.
type ListInput struct {
	FarmID   *uuid.UUID
	Status   string
	Page     int
	PageSize int
}

// ListResult is a page of records.
type ListResult struct {
	Records    []*domain.Record `json:"records"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

// CertificateInput is an uploaded certificate document.
type CertificateInput struct {
	RecordID    uuid.UUID
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// CertificateLink is a signed download link for a certificate.
type CertificateLink struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Dependencies wires the service.  Events and Metrics are optional.
type Dependencies struct {
	Repo          domain.Repository
	Store         common.ObjectStore
	Bucket        string
	MaxUploadSize int64
	Events        events.Publisher
	Metrics       *prometheus.AppMetrics
	Logger        logging.Logger
	Now           func() time.Time
}

type serviceImpl struct {
	deps Dependencies
}

// NewService creates the compliance service.
func NewService(deps Dependencies) Service {
	if deps.Events == nil {
		deps.Events = events.Nop{}
	}
	if deps.Metrics == nil {
		deps.Metrics = prometheus.NewNopMetrics()
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNopLogger()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &serviceImpl{deps: deps}
}

func (s *serviceImpl) Create(ctx context.Context, actor common.Actor, input *domain.Input) (*domain.Record, error) {
	if input == nil {
		return nil, errors.Validation("compliance input required", nil)
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	r := domain.New(input)
	if err := s.deps.Repo.Create(ctx, r); err != nil {
		return nil, err
	}
	s.deps.Logger.Info("Compliance record created",
		logging.String("record_id", r.ID.String()),
		logging.String("farm_id", r.FarmID.String()))
	s.publish(ctx, actor, events.ComplianceCreated, r)
	return r, nil
}

func (s *serviceImpl) Get(ctx context.Context, id uuid.UUID) (*domain.Record, error) {
	return s.deps.Repo.GetByID(ctx, id)
}

func (s *serviceImpl) Update(ctx context.Context, actor common.Actor, id uuid.UUID, input *domain.Input) (*domain.Record, error) {
	if input == nil {
		return nil, errors.Validation("compliance input required", nil)
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	r, err := s.deps.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	input.Apply(r)
	if err := s.deps.Repo.Update(ctx, r); err != nil {
		return nil, err
	}
	s.publish(ctx, actor, events.ComplianceUpdated, r)
	return r, nil
}

func (s *serviceImpl) Delete(ctx context.Context, actor common.Actor, id uuid.UUID) error {
	r, err := s.deps.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.deps.Repo.Delete(ctx, id); err != nil {
		return err
	}
	if r.DocumentKey != "" && s.deps.Store != nil {
		if err := s.deps.Store.Delete(ctx, s.deps.Bucket, r.DocumentKey); err != nil {
			s.deps.Logger.Warn("Failed to remove certificate of deleted record",
				logging.String("key", r.DocumentKey), logging.Err(err))
		}
	}
	s.publish(ctx, actor, events.ComplianceDeleted, r)
	return nil
}

func (s *serviceImpl) List(ctx context.Context, input *ListInput) (*ListResult, error) {
	if input == nil {
		input = &ListInput{}
	}
	filter := domain.ListFilter{FarmID: input.FarmID}
	if input.Status != "" {
		st := domain.Status(strings.ToLower(input.Status))
		if !st.Valid() {
			return nil, errors.Validation("invalid filter", map[string]string{"status": "must be active, pending, expired or revoked"})
		}
		filter.Status = st
	}
	page := common.NormalizePage(input.Page, input.PageSize)
	filter.Limit = page.PageSize
	filter.Offset = page.Offset()

	items, total, err := s.deps.Repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*domain.Record{}
	}
	return &ListResult{
		Records:    items,
		Total:      total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages(total),
	}, nil
}

// CertificateKey is the object key of a record's certificate.
func CertificateKey(recordID uuid.UUID, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "certificate"
	}
	return fmt.Sprintf("certificates/%s/%s", recordID, name)
}

func (s *serviceImpl) AttachCertificate(ctx context.Context, actor common.Actor, input *CertificateInput) (*domain.Record, error) {
	if input == nil || input.Body == nil {
		return nil, errors.Validation("certificate file required", map[string]string{"file": "required"})
	}
	if s.deps.Store == nil {
		return nil, errors.New(errors.ErrCodeStorageError, "certificate storage is not configured")
	}
	if s.deps.MaxUploadSize > 0 && input.Size > s.deps.MaxUploadSize {
		return nil, errors.Newf(errors.ErrCodeCertificateTooLarge, "certificate exceeds %d bytes", s.deps.MaxUploadSize)
	}
	r, err := s.deps.Repo.GetByID(ctx, input.RecordID)
	if err != nil {
		return nil, err
	}

	key := CertificateKey(r.ID, input.Filename)
	if _, err := s.deps.Store.Put(ctx, &minio.PutRequest{
		Bucket:      s.deps.Bucket,
		Key:         key,
		Body:        input.Body,
		Size:        input.Size,
		ContentType: input.ContentType,
		Metadata:    map[string]string{"record-id": r.ID.String()},
	}); err != nil {
		if errors.Is(err, minio.ErrObjectTooLarge) {
			return nil, errors.Wrap(err, errors.ErrCodeCertificateTooLarge, "certificate too large")
		}
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to store certificate")
	}
	if err := s.deps.Repo.SetDocument(ctx, r.ID, key); err != nil {
		return nil, err
	}
	previous := r.DocumentKey
	r.DocumentKey = key
	if previous != "" && previous != key {
		if err := s.deps.Store.Delete(ctx, s.deps.Bucket, previous); err != nil {
			s.deps.Logger.Warn("Failed to remove replaced certificate", logging.String("key", previous), logging.Err(err))
		}
	}

	s.deps.Metrics.CertificatesUploadedTotal.WithLabelValues().Inc()
	s.publish(ctx, actor, events.ComplianceCertificate, r)
	return r, nil
}

func (s *serviceImpl) CertificateURL(ctx context.Context, id uuid.UUID) (*CertificateLink, error) {
	r, err := s.deps.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.DocumentKey == "" {
		return nil, errors.New(errors.ErrCodeCertificateNotFound, "certificate not found")
	}
	if s.deps.Store == nil {
		return nil, errors.New(errors.ErrCodeStorageError, "certificate storage is not configured")
	}
	url, expires, err := s.deps.Store.PresignedURL(ctx, s.deps.Bucket, r.DocumentKey, path.Base(r.DocumentKey))
	if err != nil {
		if errors.Is(err, minio.ErrObjectNotFound) {
			return nil, errors.Wrap(err, errors.ErrCodeCertificateNotFound, "certificate not found")
		}
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to sign certificate url")
	}
	return &CertificateLink{URL: url, ExpiresAt: expires}, nil
}

func (s *serviceImpl) ExpireDue(ctx context.Context) (int64, error) {
	ids, err := s.deps.Repo.ExpireDue(ctx, s.deps.Now().UTC())
	if err != nil {
		return 0, err
	}
	system := common.Actor{Name: "system"}
	for _, id := range ids {
		s.deps.Events.Publish(ctx, events.Event{
			Type:    events.ComplianceExpired,
			Actor:   system,
			Subject: id.String(),
			Key:     id.String(),
		})
	}
	return int64(len(ids)), nil
}

func (s *serviceImpl) publish(ctx context.Context, actor common.Actor, eventType string, r *domain.Record) {
	s.deps.Events.Publish(ctx, events.Event{
		Type:    eventType,
		Actor:   actor,
		Subject: r.ComplianceType,
		Key:     r.ID.String(),
		Payload: r,
	})
}
