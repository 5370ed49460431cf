// Package assessment provides the risk-assessment submission service.
package assessment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/BioSecure-Portal/internal/application/common"
	"github.com/turtacn/BioSecure-Portal/internal/application/events"
	domain "github.com/turtacn/BioSecure-Portal/internal/domain/assessment"
	"github.com/turtacn/BioSecure-Portal/internal/domain/farm"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/database/redis"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/storage/minio"
	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

const maxRecommendationsLength = 5000

// Service defines risk-assessment operations.
type Service interface {
	Catalog() *domain.Catalog
	Submit(ctx context.Context, actor common.Actor, input *SubmitInput) (*domain.Assessment, error)
	Get(ctx context.Context, actor common.Actor, id uuid.UUID) (*domain.Assessment, error)
	List(ctx context.Context, actor common.Actor, input *ListInput) (*ListResult, error)
	// ExportReport renders the assessment as a JSON report in object storage
	// and returns a time-limited download link.
	ExportReport(ctx context.Context, actor common.Actor, id uuid.UUID) (*ReportLink, error)
}

// SubmitInput contains one questionnaire submission.
type SubmitInput struct {
	FarmID          uuid.UUID        `json:"farm_id"`
	Responses       domain.Responses `json:"responses"`
	Recommendations string           `json:"recommendations"`
}

// ListInput narrows the caller's assessments to one farm when FarmID is set.
type ListInput struct {
	FarmID   *uuid.UUID
	Page     int
	PageSize int
}

// ListResult is a page of assessments.
type ListResult struct {
	Assessments []*domain.Assessment `json:"assessments"`
	Total       int64                `json:"total"`
	Page        int                  `json:"page"`
	PageSize    int                  `json:"page_size"`
	TotalPages  int                  `json:"total_pages"`
}

// ReportLink points at an exported report.
type ReportLink struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Dependencies wires the service.  Cache, Events, Metrics and Store are
// optional; without Store, ExportReport fails.
type Dependencies struct {
	Repo         domain.Repository
	Farms        farm.Repository
	Catalog      *domain.Catalog
	Cache        redis.Cache
	Events       events.Publisher
	Metrics      *prometheus.AppMetrics
	Store        common.ObjectStore
	ReportBucket string
	Logger       logging.Logger
	Now          func() time.Time
}

type serviceImpl struct {
	Dependencies
}

// NewService validates the catalog and creates the assessment service.
func NewService(deps Dependencies) (Service, error) {
	if deps.Catalog == nil {
		deps.Catalog = domain.DefaultCatalog()
	}
	if err := deps.Catalog.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCatalogInvalid, "invalid assessment catalog")
	}
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
	return &serviceImpl{Dependencies: deps}, nil
}

func (s *serviceImpl) Catalog() *domain.Catalog { return s.Dependencies.Catalog }

func (s *serviceImpl) Submit(ctx context.Context, actor common.Actor, input *SubmitInput) (*domain.Assessment, error) {
	if input == nil {
		return nil, errors.New(errors.ErrCodeAssessmentIncomplete, "assessment responses required")
	}
	if len(input.Recommendations) > maxRecommendationsLength {
		return nil, errors.Validation("invalid assessment", map[string]string{
			"recommendations": fmt.Sprintf("must be at most %d characters", maxRecommendationsLength),
		})
	}
	f, err := s.ownedFarm(ctx, actor, input.FarmID)
	if err != nil {
		return nil, err
	}

	a, err := domain.New(s.Dependencies.Catalog, f.ID, input.Responses, input.Recommendations, s.Now())
	if err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, a, domain.SnapshotOf(a)); err != nil {
		return nil, err
	}

	prometheus.RecordAssessment(s.Metrics, string(f.FarmType), string(a.RiskLevel), a.OverallScore, a.Areas.AreaScores)
	s.Logger.Info("Assessment submitted",
		logging.String("assessment_id", a.ID.String()),
		logging.String("farm_id", f.ID.String()),
		logging.Int("overall_score", a.OverallScore))

	if s.Cache != nil {
		if err := s.Cache.Delete(ctx, common.DashboardKey(actor.ProfileID)); err != nil {
			s.Logger.Warn("Failed to invalidate dashboard", logging.Err(err))
		}
	}
	s.Events.Publish(ctx, events.Event{
		Type:    events.AssessmentCompleted,
		Actor:   actor,
		Subject: f.Name,
		Key:     f.ID.String(),
		Payload: map[string]interface{}{
			"assessment_id": a.ID,
			"farm_id":       f.ID,
			"overall_score": a.OverallScore,
			"risk_level":    a.RiskLevel,
		},
	})
	return a, nil
}

func (s *serviceImpl) Get(ctx context.Context, actor common.Actor, id uuid.UUID) (*domain.Assessment, error) {
	a, _, err := s.owned(ctx, actor, id)
	return a, err
}

func (s *serviceImpl) owned(ctx context.Context, actor common.Actor, id uuid.UUID) (*domain.Assessment, *farm.Farm, error) {
	a, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	f, err := s.ownedFarm(ctx, actor, a.FarmID)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeFarmNotFound) {
			return nil, nil, errors.New(errors.ErrCodeAssessmentNotFound, "assessment not found")
		}
		return nil, nil, err
	}
	return a, f, nil
}

func (s *serviceImpl) List(ctx context.Context, actor common.Actor, input *ListInput) (*ListResult, error) {
	if input == nil {
		input = &ListInput{}
	}
	page := common.NormalizePage(input.Page, input.PageSize)

	var farmIDs []uuid.UUID
	if input.FarmID != nil {
		f, err := s.ownedFarm(ctx, actor, *input.FarmID)
		if err != nil {
			return nil, err
		}
		farmIDs = []uuid.UUID{f.ID}
	} else {
		farms, err := s.Farms.ListByOwner(ctx, actor.ProfileID)
		if err != nil {
			return nil, err
		}
		for _, f := range farms {
			farmIDs = append(farmIDs, f.ID)
		}
	}

	result := &ListResult{
		Assessments: []*domain.Assessment{},
		Page:        page.Page,
		PageSize:    page.PageSize,
	}
	if len(farmIDs) == 0 {
		return result, nil
	}
	items, total, err := s.Repo.List(ctx, domain.ListFilter{
		FarmIDs: farmIDs,
		Limit:   page.PageSize,
		Offset:  page.Offset(),
	})
	if err != nil {
		return nil, err
	}
	if items != nil {
		result.Assessments = items
	}
	result.Total = total
	result.TotalPages = page.TotalPages(total)
	return result, nil
}

// Report is the exported document.
type Report struct {
	AssessmentID    uuid.UUID        `json:"assessment_id"`
	GeneratedAt     time.Time        `json:"generated_at"`
	AssessmentDate  time.Time        `json:"assessment_date"`
	Farm            ReportFarm       `json:"farm"`
	CatalogVersion  string           `json:"catalog_version"`
	OverallScore    int              `json:"overall_score"`
	RiskLevel       domain.RiskLevel `json:"risk_level"`
	Areas           []ReportArea     `json:"areas"`
	Advisories      []string         `json:"advisories,omitempty"`
	Recommendations string           `json:"recommendations,omitempty"`
}

// ReportFarm identifies the assessed farm.
type ReportFarm struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	FarmType farm.Type `json:"farm_type"`
	Location string    `json:"location"`
}

// ReportArea is one area section of the report.
type ReportArea struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Score     int              `json:"score"`
	Responses []ReportResponse `json:"responses"`
}

// ReportResponse pairs a question with its recorded answer.
type ReportResponse struct {
	Question string `json:"question"`
	Weight   int    `json:"weight"`
	Answer   string `json:"answer"`
}

// BuildReport assembles the report document for a and its farm.
func BuildReport(c *domain.Catalog, a *domain.Assessment, f *farm.Farm, now time.Time) *Report {
	r := &Report{
		AssessmentID:    a.ID,
		GeneratedAt:     now.UTC(),
		AssessmentDate:  a.AssessmentDate,
		Farm:            ReportFarm{ID: f.ID, Name: f.Name, FarmType: f.FarmType, Location: f.Location},
		CatalogVersion:  a.Areas.CatalogVersion,
		OverallScore:    a.OverallScore,
		RiskLevel:       a.RiskLevel,
		Advisories:      a.Areas.Advisories,
		Recommendations: a.Recommendations,
	}
	for _, area := range c.Areas {
		score, ok := a.Areas.AreaScores[area.ID]
		if !ok {
			continue
		}
		ra := ReportArea{ID: area.ID, Name: area.Name, Score: score}
		for _, q := range area.Questions {
			ra.Responses = append(ra.Responses, ReportResponse{
				Question: q.Text,
				Weight:   q.Weight,
				Answer:   a.Areas.Responses[q.ID].String(),
			})
		}
		r.Areas = append(r.Areas, ra)
	}
	return r
}

func (s *serviceImpl) ExportReport(ctx context.Context, actor common.Actor, id uuid.UUID) (*ReportLink, error) {
	a, f, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if s.Store == nil {
		return nil, errors.New(errors.ErrCodeReportExportFailed, "report storage is not configured")
	}

	body, err := json.MarshalIndent(BuildReport(s.Dependencies.Catalog, a, f, s.Now()), "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReportExportFailed, "failed to render report")
	}
	key := fmt.Sprintf("reports/%s/%s.json", a.FarmID, a.ID)
	if _, err := s.Store.Put(ctx, &minio.PutRequest{
		Bucket:      s.ReportBucket,
		Key:         key,
		Body:        bytes.NewReader(body),
		Size:        int64(len(body)),
		ContentType: "application/json",
		Metadata:    map[string]string{"assessment-id": a.ID.String()},
	}); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReportExportFailed, "failed to store report")
	}
	url, expires, err := s.Store.PresignedURL(ctx, s.ReportBucket, key, fmt.Sprintf("assessment-%s.json", a.ID))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReportExportFailed, "failed to sign report url")
	}
	s.Logger.Info("Assessment report exported", logging.String("assessment_id", a.ID.String()), logging.String("key", key))
	return &ReportLink{Key: key, URL: url, ExpiresAt: expires}, nil
}

func (s *serviceImpl) ownedFarm(ctx context.Context, actor common.Actor, farmID uuid.UUID) (*farm.Farm, error) {
	if farmID == uuid.Nil {
		return nil, errors.Validation("invalid assessment", map[string]string{"farm_id": "required"})
	}
	f, err := s.Farms.GetByID(ctx, farmID)
	if err != nil {
		return nil, err
	}
	if f.OwnerID != actor.ProfileID {
		return nil, errors.New(errors.ErrCodeFarmNotFound, "farm not found")
	}
	return f, nil
}
