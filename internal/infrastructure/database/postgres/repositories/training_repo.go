package repositories

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/turtacn/BioSecure-Portal/internal/domain/training"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/database/postgres"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

const moduleColumns = `id, title, description, content, difficulty_level, duration_minutes, farm_type, is_active, created_at, updated_at`

const progressColumns = `p.id, p.user_id, p.module_id, p.status, p.progress_percentage, p.started_at, p.completed_at, p.created_at, p.updated_at`

// TrainingRepository stores training_modules and user_training_progress.
type TrainingRepository struct {
	conn     *postgres.Connection
	log      logging.Logger
	executor queryExecutor
}

var _ training.Repository = (*TrainingRepository)(nil)

func NewTrainingRepository(conn *postgres.Connection, log logging.Logger) *TrainingRepository {
	return &TrainingRepository{conn: conn, log: log, executor: conn.DB()}
}

// ListModules returns modules alphabetically by title.
func (r *TrainingRepository) ListModules(ctx context.Context, activeOnly bool) ([]*training.Module, error) {
	query := `SELECT ` + moduleColumns + ` FROM training_modules`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.executor.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list training modules")
	}
	defer rows.Close()

	var out []*training.Module
	for rows.Next() {
		m, err := scanModule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate training modules")
	}
	return out, nil
}

func (r *TrainingRepository) GetModule(ctx context.Context, id uuid.UUID) (*training.Module, error) {
	row := r.executor.QueryRowContext(ctx, `SELECT `+moduleColumns+` FROM training_modules WHERE id = $1`, id)
	return scanModule(row)
}

func (r *TrainingRepository) CreateModule(ctx context.Context, m *training.Module) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	query := `
		INSERT INTO training_modules (id, title, description, content, difficulty_level, duration_minutes, farm_type, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := r.executor.QueryRowContext(ctx, query,
		m.ID, m.Title, m.Description, m.Content, m.DifficultyLevel, m.DurationMinutes, m.FarmType, m.IsActive,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create training module")
	}
	return nil
}

func (r *TrainingRepository) UpdateModule(ctx context.Context, m *training.Module) error {
	query := `
		UPDATE training_modules SET
			title = $2, description = $3, content = $4, difficulty_level = $5, duration_minutes = $6,
			farm_type = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING is_active, created_at, updated_at
	`
	err := r.executor.QueryRowContext(ctx, query,
		m.ID, m.Title, m.Description, m.Content, m.DifficultyLevel, m.DurationMinutes, m.FarmType,
	).Scan(&m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return notFoundOr(err, errors.ErrCodeModuleNotFound, "training module")
	}
	return nil
}

func (r *TrainingRepository) SetModuleActive(ctx context.Context, id uuid.UUID, active bool) error {
	res, err := r.executor.ExecContext(ctx,
		`UPDATE training_modules SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update training module")
	}
	return requireAffected(res, errors.ErrCodeModuleNotFound, "training module")
}

func (r *TrainingRepository) CountActiveModules(ctx context.Context) (int64, error) {
	var n int64
	if err := r.executor.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM training_modules WHERE is_active = TRUE`).Scan(&n); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count training modules")
	}
	return n, nil
}

func (r *TrainingRepository) GetProgress(ctx context.Context, userID, moduleID uuid.UUID) (*training.Progress, error) {
	row := r.executor.QueryRowContext(ctx,
		`SELECT `+progressColumns+` FROM user_training_progress p WHERE p.user_id = $1 AND p.module_id = $2`,
		userID, moduleID)
	var p training.Progress
	if err := scanProgress(row, &p); err != nil {
		return nil, notFoundOr(err, errors.ErrCodeProgressNotFound, "training progress")
	}
	return &p, nil
}

func (r *TrainingRepository) UpsertProgress(ctx context.Context, p *training.Progress) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	query := `
		INSERT INTO user_training_progress (id, user_id, module_id, status, progress_percentage, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, module_id) DO UPDATE SET
			status = EXCLUDED.status,
			progress_percentage = EXCLUDED.progress_percentage,
			started_at = EXCLUDED.started_at,
			completed_at = EXCLUDED.completed_at,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	err := r.executor.QueryRowContext(ctx, query,
		p.ID, p.UserID, p.ModuleID, string(p.Status), p.ProgressPercentage, nullTime(p.StartedAt), nullTime(p.CompletedAt),
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return errors.Wrap(err, errors.ErrCodeModuleNotFound, "training module not found")
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to save training progress")
	}
	return nil
}

// ListProgress returns the member's progress rows, most recently touched first.
func (r *TrainingRepository) ListProgress(ctx context.Context, userID uuid.UUID) ([]*training.ProgressView, error) {
	rows, err := r.executor.QueryContext(ctx, `
		SELECT `+progressColumns+`, m.title, m.duration_minutes
		FROM user_training_progress p
		JOIN training_modules m ON m.id = p.module_id
		WHERE p.user_id = $1
		ORDER BY p.updated_at DESC`, userID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list training progress")
	}
	defer rows.Close()

	var out []*training.ProgressView
	for rows.Next() {
		var v training.ProgressView
		if err := scanProgress(rows, &v.Progress, &v.ModuleTitle, &v.DurationMinutes); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan training progress")
		}
		out = append(out, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate training progress")
	}
	return out, nil
}

func (r *TrainingRepository) CountCompleted(ctx context.Context) (int64, error) {
	var n int64
	if err := r.executor.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_training_progress WHERE status = 'completed'`).Scan(&n); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count completions")
	}
	return n, nil
}

func scanModule(s scanner) (*training.Module, error) {
	var m training.Module
	err := s.Scan(&m.ID, &m.Title, &m.Description, &m.Content, &m.DifficultyLevel, &m.DurationMinutes,
		&m.FarmType, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, notFoundOr(err, errors.ErrCodeModuleNotFound, "training module")
	}
	return &m, nil
}

// scanProgress reads progressColumns into p followed by any extra columns.
func scanProgress(s scanner, p *training.Progress, extra ...interface{}) error {
	var (
		status             string
		started, completed sql.NullTime
	)
	dest := append([]interface{}{
		&p.ID, &p.UserID, &p.ModuleID, &status, &p.ProgressPercentage, &started, &completed, &p.CreatedAt, &p.UpdatedAt,
	}, extra...)
	if err := s.Scan(dest...); err != nil {
		return err
	}
	p.Status = training.Status(status)
	p.StartedAt = timePtr(started)
	p.CompletedAt = timePtr(completed)
	return nil
}
