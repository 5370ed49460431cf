// Package profile provides the application service for portal profiles.
package profile

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/BioSecure-Portal/internal/application/common"
	"github.com/turtacn/BioSecure-Portal/internal/application/events"
	domain "github.com/turtacn/BioSecure-Portal/internal/domain/profile"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/database/redis"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

const maxNameLength = 200

// Service defines the profile operations.
type Service interface {
	// EnsureProfile returns the profile of a token subject, creating a
	// member profile the first time the subject is seen.
	EnsureProfile(ctx context.Context, input *EnsureInput) (*domain.Profile, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	Update(ctx context.Context, actor common.Actor, update domain.Update) (*domain.Profile, error)
	// Invalidate drops the cached profile of a token subject.
	Invalidate(ctx context.Context, userID string)
}

// EnsureInput carries the identity claims of a verified token.
type EnsureInput struct {
	UserID   string
	Email    string
	FullName string
}

type serviceImpl struct {
	repo   domain.Repository
	cache  redis.Cache
	ttl    time.Duration
	events events.Publisher
	logger logging.Logger
}

// NewService creates the profile service.  cache may be nil.
func NewService(repo domain.Repository, cache redis.Cache, ttl time.Duration, pub events.Publisher, logger logging.Logger) Service {
	if pub == nil {
		pub = events.Nop{}
	}
	return &serviceImpl{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		events: pub,
		logger: logger,
	}
}

func (s *serviceImpl) EnsureProfile(ctx context.Context, input *EnsureInput) (*domain.Profile, error) {
	if input == nil || strings.TrimSpace(input.UserID) == "" {
		return nil, errors.New(errors.ErrCodeTokenInvalid, "token subject required")
	}
	if s.cache == nil {
		return s.loadOrCreate(ctx, input)
	}
	var p domain.Profile
	err := s.cache.GetOrSet(ctx, common.ProfileKey(input.UserID), &p, s.ttl, func(ctx context.Context) (interface{}, error) {
		return s.loadOrCreate(ctx, input)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *serviceImpl) loadOrCreate(ctx context.Context, input *EnsureInput) (*domain.Profile, error) {
	p, err := s.repo.GetByUserID(ctx, input.UserID)
	if err == nil {
		return p, nil
	}
	if !errors.IsCode(err, errors.ErrCodeProfileNotFound) {
		return nil, err
	}

	p = &domain.Profile{
		ID:       uuid.New(),
		UserID:   input.UserID,
		Email:    strings.TrimSpace(input.Email),
		FullName: strings.TrimSpace(input.FullName),
		Role:     domain.RoleMember,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if errors.IsCode(err, errors.ErrCodeConflict) {
			// Another request created it first.
			return s.repo.GetByUserID(ctx, input.UserID)
		}
		return nil, err
	}
	s.logger.Info("Profile created", logging.String("profile_id", p.ID.String()))
	s.events.Publish(ctx, events.Event{
		Type:    events.ProfileCreated,
		Actor:   common.ActorFromProfile(p),
		Subject: p.DisplayName(),
		Key:     p.ID.String(),
	})
	return p, nil
}

func (s *serviceImpl) Get(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *serviceImpl) Update(ctx context.Context, actor common.Actor, update domain.Update) (*domain.Profile, error) {
	if update.FullName != nil && len(strings.TrimSpace(*update.FullName)) > maxNameLength {
		return nil, errors.Validation("invalid profile", map[string]string{
			"full_name": "must be at most 200 characters",
		})
	}
	p, err := s.repo.GetByID(ctx, actor.ProfileID)
	if err != nil {
		return nil, err
	}
	update.Apply(p)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.Invalidate(ctx, p.UserID)
	s.deleteKeys(ctx, common.DashboardKey(p.ID))
	s.events.Publish(ctx, events.Event{
		Type:    events.ProfileUpdated,
		Actor:   common.ActorFromProfile(p),
		Subject: p.DisplayName(),
		Key:     p.ID.String(),
	})
	return p, nil
}

func (s *serviceImpl) Invalidate(ctx context.Context, userID string) {
	s.deleteKeys(ctx, common.ProfileKey(userID))
}

func (s *serviceImpl) deleteKeys(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("Failed to invalidate profile cache", logging.Err(err))
	}
}
