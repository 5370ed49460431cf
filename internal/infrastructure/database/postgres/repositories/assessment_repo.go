package repositories

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/turtacn/BioSecure-Portal/internal/domain/assessment"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/database/postgres"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

const assessmentColumns = `id, farm_id, assessment_date, overall_score, risk_level, areas, recommendations, status, created_at, updated_at`

// AssessmentRepository stores assessments in risk_assessments and their
// score snapshots in biosecurity_scores.
type AssessmentRepository struct {
	conn     *postgres.Connection
	log      logging.Logger
	executor queryExecutor
}

var _ assessment.Repository = (*AssessmentRepository)(nil)

func NewAssessmentRepository(conn *postgres.Connection, log logging.Logger) *AssessmentRepository {
	return &AssessmentRepository{conn: conn, log: log, executor: conn.DB()}
}

func (r *AssessmentRepository) Create(ctx context.Context, a *assessment.Assessment, s *assessment.Score) error {
	areas, err := json.Marshal(a.Areas)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode assessment areas")
	}
	categories, err := json.Marshal(s.CategoryScores)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode category scores")
	}

	return r.conn.WithTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO risk_assessments (id, farm_id, assessment_date, overall_score, risk_level, areas, recommendations, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING created_at, updated_at`,
			a.ID, a.FarmID, a.AssessmentDate, a.OverallScore, string(a.RiskLevel), areas, a.Recommendations, a.Status,
		).Scan(&a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			if isForeignKeyViolation(err) {
				return errors.Wrap(err, errors.ErrCodeFarmNotFound, "farm not found")
			}
			return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create assessment")
		}

		s.CalculatedAt = a.CreatedAt
		_, err = tx.ExecContext(ctx, `
			INSERT INTO biosecurity_scores (id, farm_id, assessment_id, overall_score, category_scores, calculated_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			s.ID, s.FarmID, s.AssessmentID, s.OverallScore, categories, s.CalculatedAt,
		)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to record score snapshot")
		}
		return nil
	})
}

func (r *AssessmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*assessment.Assessment, error) {
	row := r.executor.QueryRowContext(ctx, `SELECT `+assessmentColumns+` FROM risk_assessments WHERE id = $1`, id)
	return scanAssessment(row)
}

func (r *AssessmentRepository) List(ctx context.Context, filter assessment.ListFilter) ([]*assessment.Assessment, int64, error) {
	if len(filter.FarmIDs) == 0 {
		return []*assessment.Assessment{}, 0, nil
	}
	ids := uuidArray(filter.FarmIDs)

	var total int64
	if err := r.executor.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM risk_assessments WHERE farm_id = ANY($1::uuid[])`, ids,
	).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count assessments")
	}

	limit, offset := clampPage(filter.Limit, filter.Offset)
	rows, err := r.executor.QueryContext(ctx,
		`SELECT `+assessmentColumns+` FROM risk_assessments WHERE farm_id = ANY($1::uuid[])
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, ids, limit, offset)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list assessments")
	}
	defer rows.Close()

	out := make([]*assessment.Assessment, 0, limit)
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate assessments")
	}
	return out, total, nil
}

func (r *AssessmentRepository) LatestScores(ctx context.Context, farmIDs []uuid.UUID, limit int) ([]*assessment.Score, error) {
	if len(farmIDs) == 0 {
		return []*assessment.Score{}, nil
	}
	limit, _ = clampPage(limit, 0)
	rows, err := r.executor.QueryContext(ctx, `
		SELECT id, farm_id, assessment_id, overall_score, category_scores, calculated_at
		FROM biosecurity_scores WHERE farm_id = ANY($1::uuid[])
		ORDER BY calculated_at DESC LIMIT $2`, uuidArray(farmIDs), limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load scores")
	}
	defer rows.Close()

	var out []*assessment.Score
	for rows.Next() {
		var (
			s   assessment.Score
			raw []byte
		)
		if err := rows.Scan(&s.ID, &s.FarmID, &s.AssessmentID, &s.OverallScore, &raw, &s.CalculatedAt); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan score")
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &s.CategoryScores); err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode category scores")
			}
		}
		out = append(out, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate scores")
	}
	return out, nil
}

func scanAssessment(s scanner) (*assessment.Assessment, error) {
	var (
		a     assessment.Assessment
		risk  string
		areas []byte
	)
	err := s.Scan(&a.ID, &a.FarmID, &a.AssessmentDate, &a.OverallScore, &risk, &areas,
		&a.Recommendations, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, notFoundOr(err, errors.ErrCodeAssessmentNotFound, "assessment")
	}
	a.RiskLevel = assessment.RiskLevel(risk)
	if err := json.Unmarshal(areas, &a.Areas); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode assessment areas")
	}
	return &a, nil
}
