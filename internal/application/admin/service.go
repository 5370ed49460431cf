// Package admin provides the admin console: portal statistics, user and role
// management, and the activity feed.
package admin

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/BioSecure-Portal/internal/application/common"
	"github.com/turtacn/BioSecure-Portal/internal/application/events"
	"github.com/turtacn/BioSecure-Portal/internal/domain/activity"
	"github.com/turtacn/BioSecure-Portal/internal/domain/alert"
	"github.com/turtacn/BioSecure-Portal/internal/domain/farm"
	"github.com/turtacn/BioSecure-Portal/internal/domain/profile"
	"github.com/turtacn/BioSecure-Portal/internal/domain/training"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/database/redis"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 200
	statsCacheName       = "admin_stats"
)

// Stats are the portal-wide counters of the admin console.
type Stats struct {
	TotalUsers        int64 `json:"total_users"`
	TotalFarms        int64 `json:"total_farms"`
	ActiveAlerts      int64 `json:"active_alerts"`
	CompletedTraining int64 `json:"completed_training"`
}

// UserListInput filters the user directory.
type UserListInput struct {
	Search   string
	Role     string
	Page     int
	PageSize int
}

// FarmSummary is the part of a farm shown in the user directory.
type FarmSummary struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	FarmType farm.Type `json:"farm_type"`
}

// UserSummary is a profile with the farms it owns.
type UserSummary struct {
	*profile.Profile
	Farms     []FarmSummary `json:"farms"`
	FarmCount int           `json:"farm_count"`
}

// UserListResult is a page of the user directory.
type UserListResult struct {
	Users      []*UserSummary `json:"users"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

// Service defines admin console operations.
type Service interface {
	Stats(ctx context.Context) (*Stats, error)
	ListUsers(ctx context.Context, input *UserListInput) (*UserListResult, error)
	ChangeRole(ctx context.Context, actor common.Actor, profileID uuid.UUID, role string) (*profile.Profile, error)
	RecentActivity(ctx context.Context, limit int) ([]*activity.Entry, error)
}

// Dependencies wires the service.  Cache, Events and Metrics are optional.
type Dependencies struct {
	Profiles profile.Repository
	Farms    farm.Repository
	Alerts   alert.Repository
	Training training.Repository
	Activity activity.Repository
	Cache    redis.Cache
	StatsTTL time.Duration
	Events   events.Publisher
	Metrics  *prometheus.AppMetrics
	Logger   logging.Logger
}

type serviceImpl struct {
	deps Dependencies
}

// NewService creates the admin service.
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
	return &serviceImpl{deps: deps}
}

func (s *serviceImpl) Stats(ctx context.Context) (*Stats, error) {
	if s.deps.Cache != nil && s.deps.StatsTTL > 0 {
		var cached Stats
		err := s.deps.Cache.Get(ctx, common.StatsKey, &cached)
		if err == nil {
			prometheus.RecordCacheAccess(s.deps.Metrics, statsCacheName, true)
			return &cached, nil
		}
		prometheus.RecordCacheAccess(s.deps.Metrics, statsCacheName, false)
		if !errors.IsNotFound(err) {
			s.deps.Logger.Warn("Stats cache read failed", logging.Err(err))
		}
	}

	st := &Stats{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		st.TotalUsers, err = s.deps.Profiles.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		st.TotalFarms, err = s.deps.Farms.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		st.ActiveAlerts, err = s.deps.Alerts.CountActive(gctx)
		return err
	})
	g.Go(func() (err error) {
		st.CompletedTraining, err = s.deps.Training.CountCompleted(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if s.deps.Cache != nil && s.deps.StatsTTL > 0 {
		if err := s.deps.Cache.Set(ctx, common.StatsKey, st, s.deps.StatsTTL); err != nil {
			s.deps.Logger.Warn("Stats cache write failed", logging.Err(err))
		}
	}
	return st, nil
}

func (s *serviceImpl) ListUsers(ctx context.Context, input *UserListInput) (*UserListResult, error) {
	if input == nil {
		input = &UserListInput{}
	}
	filter := profile.ListFilter{Search: strings.TrimSpace(input.Search)}
	if input.Role != "" {
		role, ok := profile.ParseRole(input.Role)
		if !ok {
			return nil, errors.New(errors.ErrCodeRoleInvalid, "unknown role").WithField("role", "must be admin, moderator or member")
		}
		filter.Role = role
	}
	page := common.NormalizePage(input.Page, input.PageSize)
	filter.Limit = page.PageSize
	filter.Offset = page.Offset()

	users, total, err := s.deps.Profiles.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	summaries, err := s.withFarms(ctx, users)
	if err != nil {
		return nil, err
	}
	return &UserListResult{
		Users:      summaries,
		Total:      total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages(total),
	}, nil
}

// withFarms attaches each user's farms with one query for the whole page.
func (s *serviceImpl) withFarms(ctx context.Context, users []*profile.Profile) ([]*UserSummary, error) {
	out := make([]*UserSummary, 0, len(users))
	if len(users) == 0 {
		return out, nil
	}
	ids := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	farms, err := s.deps.Farms.ListByOwners(ctx, ids)
	if err != nil {
		return nil, err
	}
	byOwner := make(map[uuid.UUID][]FarmSummary, len(users))
	for _, f := range farms {
		byOwner[f.OwnerID] = append(byOwner[f.OwnerID], FarmSummary{ID: f.ID, Name: f.Name, FarmType: f.FarmType})
	}
	for _, u := range users {
		owned := byOwner[u.ID]
		if owned == nil {
			owned = []FarmSummary{}
		}
		out = append(out, &UserSummary{Profile: u, Farms: owned, FarmCount: len(owned)})
	}
	return out, nil
}

func (s *serviceImpl) ChangeRole(ctx context.Context, actor common.Actor, profileID uuid.UUID, role string) (*profile.Profile, error) {
	r, ok := profile.ParseRole(role)
	if !ok {
		return nil, errors.New(errors.ErrCodeRoleInvalid, "unknown role").WithField("role", "must be admin, moderator or member")
	}
	if profileID == actor.ProfileID {
		return nil, errors.Forbidden("admins cannot change their own role")
	}
	p, err := s.deps.Profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	previous := p.Role
	if previous == r {
		return p, nil
	}
	if err := s.deps.Profiles.UpdateRole(ctx, profileID, r); err != nil {
		return nil, err
	}
	p.Role = r

	if s.deps.Cache != nil {
		if err := s.deps.Cache.Delete(ctx, common.ProfileKey(p.UserID), common.DashboardKey(p.ID)); err != nil {
			s.deps.Logger.Warn("Failed to invalidate profile", logging.Err(err))
		}
	}
	s.deps.Logger.Info("Role changed",
		logging.String("profile_id", p.ID.String()),
		logging.String("from", string(previous)),
		logging.String("to", string(r)),
		logging.String("by", actor.ProfileID.String()))
	s.deps.Events.Publish(ctx, events.Event{
		Type:    events.ProfileRoleChanged,
		Actor:   actor,
		Subject: p.DisplayName(),
		Key:     p.ID.String(),
		Payload: map[string]string{"from": string(previous), "to": string(r)},
	})
	return p, nil
}

func (s *serviceImpl) RecentActivity(ctx context.Context, limit int) ([]*activity.Entry, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}
	entries, err := s.deps.Activity.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*activity.Entry{}
	}
	return entries, nil
}
