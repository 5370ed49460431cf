// Package alert provides alert broadcasting for admins and the active alert
// feed for members.
package alert

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/BioSecure-Portal/internal/application/common"
	"github.com/turtacn/BioSecure-Portal/internal/application/events"
	domain "github.com/turtacn/BioSecure-Portal/internal/domain/alert"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/database/redis"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

// Service defines alert operations.
type Service interface {
	Create(ctx context.Context, actor common.Actor, input *domain.Input) (*domain.Alert, error)
	Update(ctx context.Context, actor common.Actor, id uuid.UUID, input *domain.Input) (*domain.Alert, error)
	Toggle(ctx context.Context, actor common.Actor, id uuid.UUID) (*domain.Alert, error)
	Delete(ctx context.Context, actor common.Actor, id uuid.UUID) error
	List(ctx context.Context, input *ListInput) (*ListResult, error)
	ListActive(ctx context.Context, input *ListInput) (*ListResult, error)
	// DeactivateOlderThan switches off alerts created more than maxAge ago.
	DeactivateOlderThan(ctx context.Context, maxAge time.Duration) (int64, error)
}

// ListInput filters alert listings.
type ListInput struct {
	FarmType string
	Severity string
	Page     int
	PageSize int
}

// ListResult is a page of alerts.
type ListResult struct {
	Alerts     []*domain.Alert `json:"alerts"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}

type serviceImpl struct {
	repo    domain.Repository
	cache   redis.Cache
	events  events.Publisher
	metrics *prometheus.AppMetrics
	logger  logging.Logger
	now     func() time.Time
}

// NewService creates the alert service.  cache, pub and metrics may be nil.
func NewService(repo domain.Repository, cache redis.Cache, pub events.Publisher, metrics *prometheus.AppMetrics, logger logging.Logger) Service {
	if pub == nil {
		pub = events.Nop{}
	}
	if metrics == nil {
		metrics = prometheus.NewNopMetrics()
	}
	return &serviceImpl{
		repo:    repo,
		cache:   cache,
		events:  pub,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *serviceImpl) Create(ctx context.Context, actor common.Actor, input *domain.Input) (*domain.Alert, error) {
	if input == nil {
		return nil, errors.New(errors.ErrCodeAlertInvalid, "alert input required")
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	a := domain.New(input)
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	s.metrics.AlertsBroadcastTotal.WithLabelValues(string(a.Severity)).Inc()
	s.logger.Info("Alert broadcast",
		logging.String("alert_id", a.ID.String()),
		logging.String("severity", string(a.Severity)))
	s.changed(ctx, actor, events.AlertBroadcast, a)
	return a, nil
}

func (s *serviceImpl) Update(ctx context.Context, actor common.Actor, id uuid.UUID, input *domain.Input) (*domain.Alert, error) {
	if input == nil {
		return nil, errors.New(errors.ErrCodeAlertInvalid, "alert input required")
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	input.Apply(a)
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	s.changed(ctx, actor, events.AlertUpdated, a)
	return a, nil
}

func (s *serviceImpl) Toggle(ctx context.Context, actor common.Actor, id uuid.UUID) (*domain.Alert, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.IsActive = !a.IsActive
	if err := s.repo.SetActive(ctx, id, a.IsActive); err != nil {
		return nil, err
	}
	s.changed(ctx, actor, events.AlertUpdated, a)
	return a, nil
}

func (s *serviceImpl) Delete(ctx context.Context, actor common.Actor, id uuid.UUID) error {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, actor, events.AlertDeleted, a)
	return nil
}

func (s *serviceImpl) List(ctx context.Context, input *ListInput) (*ListResult, error) {
	return s.list(ctx, input, false)
}

func (s *serviceImpl) ListActive(ctx context.Context, input *ListInput) (*ListResult, error) {
	return s.list(ctx, input, true)
}

func (s *serviceImpl) list(ctx context.Context, input *ListInput, activeOnly bool) (*ListResult, error) {
	if input == nil {
		input = &ListInput{}
	}
	filter := domain.ListFilter{ActiveOnly: activeOnly, FarmType: strings.TrimSpace(input.FarmType)}
	if input.Severity != "" {
		sev := domain.Severity(strings.ToLower(input.Severity))
		if !sev.Valid() {
			return nil, errors.New(errors.ErrCodeAlertInvalid, "unknown severity").WithField("severity", "must be one of low, medium, high, critical")
		}
		filter.Severity = sev
	}
	page := common.NormalizePage(input.Page, input.PageSize)
	filter.Limit = page.PageSize
	filter.Offset = page.Offset()

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*domain.Alert{}
	}
	return &ListResult{
		Alerts:     items,
		Total:      total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages(total),
	}, nil
}

func (s *serviceImpl) DeactivateOlderThan(ctx context.Context, maxAge time.Duration) (int64, error) {
	if maxAge <= 0 {
		return 0, errors.InvalidParam("max age must be positive")
	}
	n, err := s.repo.DeactivateOlderThan(ctx, s.now().Add(-maxAge))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.invalidateDashboards(ctx)
	}
	return n, nil
}

// changed drops every cached dashboard, since each one lists the newest
// active alerts, and emits eventType.
func (s *serviceImpl) changed(ctx context.Context, actor common.Actor, eventType string, a *domain.Alert) {
	s.invalidateDashboards(ctx)
	s.events.Publish(ctx, events.Event{
		Type:    eventType,
		Actor:   actor,
		Subject: a.Title,
		Key:     a.ID.String(),
		Payload: a,
	})
}

func (s *serviceImpl) invalidateDashboards(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.DeleteByPrefix(ctx, common.DashboardKeyPrefix); err != nil {
		s.logger.Warn("Failed to invalidate dashboards", logging.Err(err))
	}
	if err := s.cache.Delete(ctx, common.StatsKey); err != nil {
		s.logger.Warn("Failed to invalidate admin stats", logging.Err(err))
	}
}
