// Package farm provides the owner-scoped farm service.
package farm

import (
	"context"

	"github.com/google/uuid"

	"github.com/turtacn/BioSecure-Portal/internal/application/common"
	"github.com/turtacn/BioSecure-Portal/internal/application/events"
	domain "github.com/turtacn/BioSecure-Portal/internal/domain/farm"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/database/redis"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

// Service defines farm operations.  Every call is scoped to the actor: a farm
// owned by someone else is reported as not found.
type Service interface {
	Create(ctx context.Context, actor common.Actor, input *domain.Input) (*domain.Farm, error)
	Get(ctx context.Context, actor common.Actor, id uuid.UUID) (*domain.Farm, error)
	List(ctx context.Context, actor common.Actor) ([]*domain.Farm, error)
	Update(ctx context.Context, actor common.Actor, id uuid.UUID, input *domain.Input) (*domain.Farm, error)
	Delete(ctx context.Context, actor common.Actor, id uuid.UUID) error
}

type serviceImpl struct {
	repo   domain.Repository
	cache  redis.Cache
	events events.Publisher
	logger logging.Logger
}

// NewService creates the farm service.  cache may be nil.
func NewService(repo domain.Repository, cache redis.Cache, pub events.Publisher, logger logging.Logger) Service {
	if pub == nil {
		pub = events.Nop{}
	}
	return &serviceImpl{
		repo:   repo,
		cache:  cache,
		events: pub,
		logger: logger,
	}
}

func (s *serviceImpl) Create(ctx context.Context, actor common.Actor, input *domain.Input) (*domain.Farm, error) {
	if input == nil {
		return nil, errors.New(errors.ErrCodeFarmInvalid, "farm input required")
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	f := domain.New(actor.ProfileID, input)
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}
	s.logger.Info("Farm created",
		logging.String("farm_id", f.ID.String()),
		logging.String("owner_id", actor.ProfileID.String()))
	s.changed(ctx, actor, events.FarmCreated, f)
	return f, nil
}

func (s *serviceImpl) Get(ctx context.Context, actor common.Actor, id uuid.UUID) (*domain.Farm, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.OwnerID != actor.ProfileID {
		return nil, errors.New(errors.ErrCodeFarmNotFound, "farm not found")
	}
	return f, nil
}

func (s *serviceImpl) List(ctx context.Context, actor common.Actor) ([]*domain.Farm, error) {
	farms, err := s.repo.ListByOwner(ctx, actor.ProfileID)
	if err != nil {
		return nil, err
	}
	if farms == nil {
		farms = []*domain.Farm{}
	}
	return farms, nil
}

func (s *serviceImpl) Update(ctx context.Context, actor common.Actor, id uuid.UUID, input *domain.Input) (*domain.Farm, error) {
	if input == nil {
		return nil, errors.New(errors.ErrCodeFarmInvalid, "farm input required")
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	f, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	input.Apply(f)
	if err := s.repo.Update(ctx, f); err != nil {
		return nil, err
	}
	s.changed(ctx, actor, events.FarmUpdated, f)
	return f, nil
}

func (s *serviceImpl) Delete(ctx context.Context, actor common.Actor, id uuid.UUID) error {
	f, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, actor.ProfileID); err != nil {
		return err
	}
	s.logger.Info("Farm deleted", logging.String("farm_id", id.String()))
	s.changed(ctx, actor, events.FarmDeleted, f)
	return nil
}

func (s *serviceImpl) changed(ctx context.Context, actor common.Actor, eventType string, f *domain.Farm) {
	if s.cache != nil {
		if err := s.cache.Delete(ctx, common.DashboardKey(actor.ProfileID)); err != nil {
			s.logger.Warn("Failed to invalidate dashboard", logging.Err(err))
		}
	}
	s.events.Publish(ctx, events.Event{
		Type:    eventType,
		Actor:   actor,
		Subject: f.Name,
		Key:     f.ID.String(),
		Payload: f,
	})
}
