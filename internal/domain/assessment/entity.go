package assessment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StatusCompleted is the only status a persisted assessment can have.
const StatusCompleted = "completed"

// Areas is the JSON document stored with each assessment.
type Areas struct {
	CatalogVersion string         `json:"catalog_version"`
	Responses      Responses      `json:"responses"`
	AreaScores     map[string]int `json:"area_scores"`
	Advisories     []string       `json:"advisories,omitempty"`
}

// Assessment is an immutable, scored questionnaire submission for one farm.
type Assessment struct {
	ID              uuid.UUID `json:"id"`
	FarmID          uuid.UUID `json:"farm_id"`
	AssessmentDate  time.Time `json:"assessment_date"`
	OverallScore    int       `json:"overall_score"`
	RiskLevel       RiskLevel `json:"risk_level"`
	Areas           Areas     `json:"areas"`
	Recommendations string    `json:"recommendations"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// New scores responses against the catalog and builds the record to persist.
// The returned value is complete; repositories only add timestamps.
func New(c *Catalog, farmID uuid.UUID, r Responses, recommendations string, now time.Time) (*Assessment, error) {
	res, err := c.Score(r)
	if err != nil {
		return nil, err
	}
	stored := make(Responses, len(r))
	for k, v := range r {
		stored[k] = v
	}
	return &Assessment{
		ID:             uuid.New(),
		FarmID:         farmID,
		AssessmentDate: now.UTC(),
		OverallScore:   res.Overall,
		RiskLevel:      RiskLevelFor(res.Overall),
		Areas: Areas{
			CatalogVersion: c.Version,
			Responses:      stored,
			AreaScores:     res.AreaScores,
			Advisories:     c.Advisories(res, r),
		},
		Recommendations: recommendations,
		Status:          StatusCompleted,
		CreatedAt:       now.UTC(),
		UpdatedAt:       now.UTC(),
	}, nil
}

// Score is the per-farm snapshot written alongside each assessment and read by
// the dashboard.
type Score struct {
	ID             uuid.UUID      `json:"id"`
	FarmID         uuid.UUID      `json:"farm_id"`
	AssessmentID   uuid.UUID      `json:"assessment_id"`
	OverallScore   int            `json:"overall_score"`
	CategoryScores map[string]int `json:"category_scores"`
	CalculatedAt   time.Time      `json:"calculated_at"`
}

// SnapshotOf derives the score snapshot of an assessment.
func SnapshotOf(a *Assessment) *Score {
	return &Score{
		ID:             uuid.New(),
		FarmID:         a.FarmID,
		AssessmentID:   a.ID,
		OverallScore:   a.OverallScore,
		CategoryScores: a.Areas.AreaScores,
		CalculatedAt:   a.CreatedAt,
	}
}

// ListFilter narrows assessment listings.  FarmIDs is required; an empty
// slice yields no rows.
type ListFilter struct {
	FarmIDs []uuid.UUID
	Limit   int
	Offset  int
}

// Repository persists assessments.  There is intentionally no Update or
// Delete: a new submission always creates a new record.
type Repository interface {
	// Create stores the assessment and its score snapshot atomically.
	Create(ctx context.Context, a *Assessment, s *Score) error
	GetByID(ctx context.Context, id uuid.UUID) (*Assessment, error)
	List(ctx context.Context, filter ListFilter) ([]*Assessment, int64, error)
	// LatestScores returns the newest overall scores across farms, newest first.
	LatestScores(ctx context.Context, farmIDs []uuid.UUID, limit int) ([]*Score, error)
}
