package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/BioSecure-Portal/internal/domain/alert"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/database/postgres"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

const alertColumns = `id, title, message, severity, alert_type, farm_type, location, is_active, created_at, updated_at`

// AlertRepository stores alerts in the alerts table.
type AlertRepository struct {
	conn     *postgres.Connection
	log      logging.Logger
	executor queryExecutor
}

var _ alert.Repository = (*AlertRepository)(nil)

func NewAlertRepository(conn *postgres.Connection, log logging.Logger) *AlertRepository {
	return &AlertRepository{conn: conn, log: log, executor: conn.DB()}
}

func (r *AlertRepository) Create(ctx context.Context, a *alert.Alert) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	query := `
		INSERT INTO alerts (id, title, message, severity, alert_type, farm_type, location, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := r.executor.QueryRowContext(ctx, query,
		a.ID, a.Title, a.Message, string(a.Severity), a.AlertType, a.FarmType, a.Location, a.IsActive,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create alert")
	}
	return nil
}

func (r *AlertRepository) GetByID(ctx context.Context, id uuid.UUID) (*alert.Alert, error) {
	row := r.executor.QueryRowContext(ctx, `SELECT `+alertColumns+` FROM alerts WHERE id = $1`, id)
	return scanAlert(row)
}

func (r *AlertRepository) Update(ctx context.Context, a *alert.Alert) error {
	query := `
		UPDATE alerts SET
			title = $2, message = $3, severity = $4, alert_type = $5, farm_type = $6, location = $7,
			updated_at = NOW()
		WHERE id = $1
		RETURNING is_active, created_at, updated_at
	`
	err := r.executor.QueryRowContext(ctx, query,
		a.ID, a.Title, a.Message, string(a.Severity), a.AlertType, a.FarmType, a.Location,
	).Scan(&a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return notFoundOr(err, errors.ErrCodeAlertNotFound, "alert")
	}
	return nil
}

func (r *AlertRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res, err := r.executor.ExecContext(ctx,
		`UPDATE alerts SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to toggle alert")
	}
	return requireAffected(res, errors.ErrCodeAlertNotFound, "alert")
}

func (r *AlertRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.executor.ExecContext(ctx, `DELETE FROM alerts WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete alert")
	}
	return requireAffected(res, errors.ErrCodeAlertNotFound, "alert")
}

// List returns alerts newest first.  A FarmType filter also matches alerts
// that target no farm type.
func (r *AlertRepository) List(ctx context.Context, filter alert.ListFilter) ([]*alert.Alert, int64, error) {
	var w whereBuilder
	if filter.ActiveOnly {
		w.addRaw(`is_active = TRUE`)
	}
	if filter.FarmType != "" {
		w.add(`(farm_type = '' OR farm_type = $%d)`, filter.FarmType)
	}
	if filter.Severity != "" {
		w.add(`severity = $%d`, string(filter.Severity))
	}

	var total int64
	if err := r.executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM alerts`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count alerts")
	}

	limit, offset := clampPage(filter.Limit, filter.Offset)
	n := w.next()
	query := `SELECT ` + alertColumns + ` FROM alerts` + w.String() +
		` ORDER BY created_at DESC LIMIT $` + itoa(n) + ` OFFSET $` + itoa(n+1)
	rows, err := r.executor.QueryContext(ctx, query, append(w.args, limit, offset)...)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list alerts")
	}
	defer rows.Close()

	var out []*alert.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate alerts")
	}
	return out, total, nil
}

func (r *AlertRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	if err := r.executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM alerts WHERE is_active = TRUE`).Scan(&n); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count alerts")
	}
	return n, nil
}

func (r *AlertRepository) DeactivateOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.executor.ExecContext(ctx,
		`UPDATE alerts SET is_active = FALSE, updated_at = NOW() WHERE is_active = TRUE AND created_at < $1`, cutoff)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to deactivate alerts")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to read affected rows")
	}
	return n, nil
}

func scanAlert(s scanner) (*alert.Alert, error) {
	var (
		a        alert.Alert
		severity string
	)
	err := s.Scan(&a.ID, &a.Title, &a.Message, &severity, &a.AlertType, &a.FarmType, &a.Location, &a.IsActive,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, notFoundOr(err, errors.ErrCodeAlertNotFound, "alert")
	}
	a.Severity = alert.Severity(severity)
	return &a, nil
}
