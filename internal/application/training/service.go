// Package training provides the training catalog and progress service.
package training

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/BioSecure-Portal/internal/application/common"
	"github.com/turtacn/BioSecure-Portal/internal/application/events"
	domain "github.com/turtacn/BioSecure-Portal/internal/domain/training"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/database/redis"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

// Service defines training operations.
type Service interface {
	ListModules(ctx context.Context) ([]*domain.Module, error)
	GetModule(ctx context.Context, id uuid.UUID) (*ModuleDetail, error)
	Start(ctx context.Context, actor common.Actor, moduleID uuid.UUID) (*domain.Progress, error)
	Complete(ctx context.Context, actor common.Actor, moduleID uuid.UUID) (*domain.Progress, error)
	UpdateProgress(ctx context.Context, actor common.Actor, moduleID uuid.UUID, percentage int) (*domain.Progress, error)
	Progress(ctx context.Context, actor common.Actor) (*ProgressSummary, error)

	ListAllModules(ctx context.Context) ([]*domain.Module, error)
	CreateModule(ctx context.Context, input *domain.ModuleInput) (*domain.Module, error)
	UpdateModule(ctx context.Context, id uuid.UUID, input *domain.ModuleInput) (*domain.Module, error)
	SetModuleActive(ctx context.Context, id uuid.UUID, active bool) error
}

// ModuleDetail is a module with its content split into steps.
type ModuleDetail struct {
	*domain.Module
	Steps []string `json:"steps"`
}

// ProgressSummary is the caller's progress over the active catalog.
type ProgressSummary struct {
	Items                []*domain.ProgressView `json:"items"`
	CompletedModules     int                    `json:"completed_modules"`
	ActiveModules        int                    `json:"active_modules"`
	CompletionPercentage int                    `json:"completion_percentage"`
}

type serviceImpl struct {
	repo    domain.Repository
	cache   redis.Cache
	events  events.Publisher
	metrics *prometheus.AppMetrics
	logger  logging.Logger
	now     func() time.Time
}

// NewService creates the training service.  cache, pub and metrics may be nil.
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
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *serviceImpl) ListModules(ctx context.Context) ([]*domain.Module, error) {
	return s.list(ctx, true)
}

func (s *serviceImpl) ListAllModules(ctx context.Context) ([]*domain.Module, error) {
	return s.list(ctx, false)
}

func (s *serviceImpl) list(ctx context.Context, activeOnly bool) ([]*domain.Module, error) {
	mods, err := s.repo.ListModules(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	if mods == nil {
		mods = []*domain.Module{}
	}
	return mods, nil
}

func (s *serviceImpl) GetModule(ctx context.Context, id uuid.UUID) (*ModuleDetail, error) {
	m, err := s.activeModule(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ModuleDetail{Module: m, Steps: m.Steps()}, nil
}

func (s *serviceImpl) activeModule(ctx context.Context, id uuid.UUID) (*domain.Module, error) {
	m, err := s.repo.GetModule(ctx, id)
	if err != nil {
		return nil, err
	}
	if !m.IsActive {
		return nil, errors.New(errors.ErrCodeModuleInactive, "training module is inactive").WithDetail("id=" + id.String())
	}
	return m, nil
}

// loadProgress returns the stored progress row or a fresh one.
func (s *serviceImpl) loadProgress(ctx context.Context, actor common.Actor, moduleID uuid.UUID) (*domain.Progress, error) {
	p, err := s.repo.GetProgress(ctx, actor.ProfileID, moduleID)
	if err == nil {
		return p, nil
	}
	if !errors.IsCode(err, errors.ErrCodeProgressNotFound) {
		return nil, err
	}
	return &domain.Progress{ID: uuid.New(), UserID: actor.ProfileID, ModuleID: moduleID}, nil
}

func (s *serviceImpl) Start(ctx context.Context, actor common.Actor, moduleID uuid.UUID) (*domain.Progress, error) {
	return s.transition(ctx, actor, moduleID, "start", func(p *domain.Progress, now time.Time) error {
		p.Start(now)
		return nil
	})
}

func (s *serviceImpl) Complete(ctx context.Context, actor common.Actor, moduleID uuid.UUID) (*domain.Progress, error) {
	return s.transition(ctx, actor, moduleID, "complete", func(p *domain.Progress, now time.Time) error {
		p.Complete(now)
		return nil
	})
}

func (s *serviceImpl) UpdateProgress(ctx context.Context, actor common.Actor, moduleID uuid.UUID, percentage int) (*domain.Progress, error) {
	return s.transition(ctx, actor, moduleID, "progress", func(p *domain.Progress, now time.Time) error {
		return p.Advance(percentage, now)
	})
}

func (s *serviceImpl) transition(ctx context.Context, actor common.Actor, moduleID uuid.UUID, action string, apply func(*domain.Progress, time.Time) error) (*domain.Progress, error) {
	m, err := s.activeModule(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	p, err := s.loadProgress(ctx, actor, moduleID)
	if err != nil {
		return nil, err
	}
	wasCompleted := p.Status == domain.StatusCompleted
	if err := apply(p, s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.UpsertProgress(ctx, p); err != nil {
		return nil, err
	}
	s.metrics.TrainingTransitionsTotal.WithLabelValues(action).Inc()

	if s.cache != nil {
		if err := s.cache.Delete(ctx, common.DashboardKey(actor.ProfileID)); err != nil {
			s.logger.Warn("Failed to invalidate dashboard", logging.Err(err))
		}
	}

	eventType := ""
	switch {
	case action == "start":
		eventType = events.TrainingStarted
	case p.Status == domain.StatusCompleted && !wasCompleted:
		eventType = events.TrainingComplete
	}
	if eventType != "" {
		s.events.Publish(ctx, events.Event{
			Type:    eventType,
			Actor:   actor,
			Subject: m.Title,
			Key:     actor.ProfileID.String(),
			Payload: p,
		})
	}
	return p, nil
}

func (s *serviceImpl) Progress(ctx context.Context, actor common.Actor) (*ProgressSummary, error) {
	items, err := s.repo.ListProgress(ctx, actor.ProfileID)
	if err != nil {
		return nil, err
	}
	active, err := s.repo.CountActiveModules(ctx)
	if err != nil {
		return nil, err
	}
	return Summarize(items, int(active)), nil
}

// Summarize computes the completion figures over activeModules.
func Summarize(items []*domain.ProgressView, activeModules int) *ProgressSummary {
	if items == nil {
		items = []*domain.ProgressView{}
	}
	completed := 0
	for _, it := range items {
		if it.Status == domain.StatusCompleted {
			completed++
		}
	}
	return &ProgressSummary{
		Items:                items,
		CompletedModules:     completed,
		ActiveModules:        activeModules,
		CompletionPercentage: domain.CompletionPercentage(completed, activeModules),
	}
}

func (s *serviceImpl) CreateModule(ctx context.Context, input *domain.ModuleInput) (*domain.Module, error) {
	if input == nil {
		return nil, errors.Validation("training module input required", nil)
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	m := &domain.Module{ID: uuid.New(), IsActive: true}
	input.Apply(m)
	if err := s.repo.CreateModule(ctx, m); err != nil {
		return nil, err
	}
	s.logger.Info("Training module created", logging.String("module_id", m.ID.String()))
	return m, nil
}

func (s *serviceImpl) UpdateModule(ctx context.Context, id uuid.UUID, input *domain.ModuleInput) (*domain.Module, error) {
	if input == nil {
		return nil, errors.Validation("training module input required", nil)
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	m, err := s.repo.GetModule(ctx, id)
	if err != nil {
		return nil, err
	}
	input.Apply(m)
	if err := s.repo.UpdateModule(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *serviceImpl) SetModuleActive(ctx context.Context, id uuid.UUID, active bool) error {
	if err := s.repo.SetModuleActive(ctx, id, active); err != nil {
		return err
	}
	s.logger.Info("Training module toggled", logging.String("module_id", id.String()), logging.Bool("active", active))
	return nil
}
