// Package dashboard assembles the per-user landing view.
package dashboard

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/BioSecure-Portal/internal/application/common"
	"github.com/turtacn/BioSecure-Portal/internal/domain/alert"
	"github.com/turtacn/BioSecure-Portal/internal/domain/assessment"
	"github.com/turtacn/BioSecure-Portal/internal/domain/farm"
	"github.com/turtacn/BioSecure-Portal/internal/domain/profile"
	"github.com/turtacn/BioSecure-Portal/internal/domain/training"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/database/redis"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

const (
	// DefaultScore is reported until the caller has a scored assessment.
	DefaultScore = 85

	alertLimit      = 5
	assessmentLimit = 3
	cacheName       = "dashboard"
)

// Dashboard is the caller's landing view.
type Dashboard struct {
	Profile            *profile.Profile         `json:"profile"`
	Farms              []*farm.Farm             `json:"farms"`
	Alerts             []*alert.Alert           `json:"alerts"`
	UrgentAlerts       int                      `json:"urgent_alerts"`
	Training           []*training.ProgressView `json:"training_progress"`
	RecentAssessments  []*assessment.Assessment `json:"recent_assessments"`
	BiosecurityScore   int                      `json:"biosecurity_score"`
	TrainingCompletion int                      `json:"training_completion"`
	GeneratedAt        time.Time                `json:"generated_at"`
}

// Service builds dashboards.
type Service interface {
	Get(ctx context.Context, actor common.Actor) (*Dashboard, error)
}

// Dependencies wires the service.  Cache and Metrics are optional.
type Dependencies struct {
	Profiles    profile.Repository
	Farms       farm.Repository
	Alerts      alert.Repository
	Training    training.Repository
	Assessments assessment.Repository
	Cache       redis.Cache
	TTL         time.Duration
	Metrics     *prometheus.AppMetrics
	Logger      logging.Logger
	Now         func() time.Time
}

type serviceImpl struct {
	deps Dependencies
}

// NewService creates the dashboard service.
func NewService(deps Dependencies) Service {
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

func (s *serviceImpl) Get(ctx context.Context, actor common.Actor) (*Dashboard, error) {
	key := common.DashboardKey(actor.ProfileID)
	if s.deps.Cache != nil && s.deps.TTL > 0 {
		var cached Dashboard
		err := s.deps.Cache.Get(ctx, key, &cached)
		if err == nil {
			prometheus.RecordCacheAccess(s.deps.Metrics, cacheName, true)
			return &cached, nil
		}
		prometheus.RecordCacheAccess(s.deps.Metrics, cacheName, false)
		if !errors.IsNotFound(err) {
			s.deps.Logger.Warn("Dashboard cache read failed", logging.Err(err))
		}
	}

	d, err := s.build(ctx, actor)
	if err != nil {
		return nil, err
	}

	if s.deps.Cache != nil && s.deps.TTL > 0 {
		if err := s.deps.Cache.Set(ctx, key, d, s.deps.TTL); err != nil {
			s.deps.Logger.Warn("Dashboard cache write failed", logging.Err(err))
		}
	}
	return d, nil
}

func (s *serviceImpl) build(ctx context.Context, actor common.Actor) (*Dashboard, error) {
	d := &Dashboard{GeneratedAt: s.deps.Now().UTC()}
	var scores []*assessment.Score
	var activeModules int64

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := s.deps.Profiles.GetByID(gctx, actor.ProfileID)
		if err != nil {
			return err
		}
		d.Profile = p
		return nil
	})

	g.Go(func() error {
		alerts, _, err := s.deps.Alerts.List(gctx, alert.ListFilter{ActiveOnly: true, Limit: alertLimit})
		if err != nil {
			return err
		}
		d.Alerts = alerts
		return nil
	})

	g.Go(func() error {
		items, err := s.deps.Training.ListProgress(gctx, actor.ProfileID)
		if err != nil {
			return err
		}
		n, err := s.deps.Training.CountActiveModules(gctx)
		if err != nil {
			return err
		}
		d.Training = items
		activeModules = n
		return nil
	})

	g.Go(func() error {
		farms, err := s.deps.Farms.ListByOwner(gctx, actor.ProfileID)
		if err != nil {
			return err
		}
		d.Farms = farms
		if len(farms) == 0 {
			return nil
		}
		ids := make([]uuid.UUID, len(farms))
		for i, f := range farms {
			ids[i] = f.ID
		}
		recent, _, err := s.deps.Assessments.List(gctx, assessment.ListFilter{FarmIDs: ids, Limit: assessmentLimit})
		if err != nil {
			return err
		}
		d.RecentAssessments = recent
		scores, err = s.deps.Assessments.LatestScores(gctx, ids, assessmentLimit)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if d.Farms == nil {
		d.Farms = []*farm.Farm{}
	}
	if d.Alerts == nil {
		d.Alerts = []*alert.Alert{}
	}
	if d.Training == nil {
		d.Training = []*training.ProgressView{}
	}
	if d.RecentAssessments == nil {
		d.RecentAssessments = []*assessment.Assessment{}
	}
	for _, a := range d.Alerts {
		if a.Severity == alert.SeverityCritical || a.Severity == alert.SeverityHigh {
			d.UrgentAlerts++
		}
	}
	d.BiosecurityScore = BiosecurityScore(scores)
	completed := 0
	for _, it := range d.Training {
		if it.Status == training.StatusCompleted {
			completed++
		}
	}
	d.TrainingCompletion = training.CompletionPercentage(completed, int(activeModules))
	return d, nil
}

// BiosecurityScore is the rounded mean of the overall scores, or
// DefaultScore when there are none.
func BiosecurityScore(scores []*assessment.Score) int {
	if len(scores) == 0 {
		return DefaultScore
	}
	sum := 0
	for _, s := range scores {
		sum += s.OverallScore
	}
	return int(math.Round(float64(sum) / float64(len(scores))))
}
