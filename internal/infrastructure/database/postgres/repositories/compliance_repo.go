package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/BioSecure-Portal/internal/domain/compliance"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/database/postgres"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

const complianceColumns = `id, farm_id, compliance_type, certificate_number, issue_date, expiry_date, status, notes, document_key, created_at, updated_at`

// ComplianceRepository stores compliance_records.
type ComplianceRepository struct {
	conn     *postgres.Connection
	log      logging.Logger
	executor queryExecutor
}

var _ compliance.Repository = (*ComplianceRepository)(nil)

func NewComplianceRepository(conn *postgres.Connection, log logging.Logger) *ComplianceRepository {
	return &ComplianceRepository{conn: conn, log: log, executor: conn.DB()}
}

func (r *ComplianceRepository) Create(ctx context.Context, c *compliance.Record) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	query := `
		INSERT INTO compliance_records (id, farm_id, compliance_type, certificate_number, issue_date, expiry_date, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := r.executor.QueryRowContext(ctx, query,
		c.ID, c.FarmID, c.ComplianceType, c.CertificateNumber, nullTime(c.IssueDate), nullTime(c.ExpiryDate),
		string(c.Status), c.Notes,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return errors.Wrap(err, errors.ErrCodeFarmNotFound, "farm not found")
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create compliance record")
	}
	return nil
}

func (r *ComplianceRepository) GetByID(ctx context.Context, id uuid.UUID) (*compliance.Record, error) {
	row := r.executor.QueryRowContext(ctx, `SELECT `+complianceColumns+` FROM compliance_records WHERE id = $1`, id)
	return scanCompliance(row)
}

func (r *ComplianceRepository) Update(ctx context.Context, c *compliance.Record) error {
	query := `
		UPDATE compliance_records SET
			farm_id = $2, compliance_type = $3, certificate_number = $4, issue_date = $5, expiry_date = $6,
			status = $7, notes = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING document_key, created_at, updated_at
	`
	err := r.executor.QueryRowContext(ctx, query,
		c.ID, c.FarmID, c.ComplianceType, c.CertificateNumber, nullTime(c.IssueDate), nullTime(c.ExpiryDate),
		string(c.Status), c.Notes,
	).Scan(&c.DocumentKey, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return errors.Wrap(err, errors.ErrCodeFarmNotFound, "farm not found")
		}
		return notFoundOr(err, errors.ErrCodeComplianceNotFound, "compliance record")
	}
	return nil
}

func (r *ComplianceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.executor.ExecContext(ctx, `DELETE FROM compliance_records WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete compliance record")
	}
	return requireAffected(res, errors.ErrCodeComplianceNotFound, "compliance record")
}

// List orders records by expiry, soonest first, with undated records last.
func (r *ComplianceRepository) List(ctx context.Context, filter compliance.ListFilter) ([]*compliance.Record, int64, error) {
	var w whereBuilder
	if filter.FarmID != nil {
		w.add(`farm_id = $%d`, *filter.FarmID)
	}
	if filter.Status != "" {
		w.add(`status = $%d`, string(filter.Status))
	}

	var total int64
	if err := r.executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM compliance_records`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count compliance records")
	}

	limit, offset := clampPage(filter.Limit, filter.Offset)
	n := w.next()
	query := `SELECT ` + complianceColumns + ` FROM compliance_records` + w.String() +
		` ORDER BY expiry_date ASC NULLS LAST, created_at DESC LIMIT $` + itoa(n) + ` OFFSET $` + itoa(n+1)
	rows, err := r.executor.QueryContext(ctx, query, append(w.args, limit, offset)...)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list compliance records")
	}
	defer rows.Close()

	var out []*compliance.Record
	for rows.Next() {
		c, err := scanCompliance(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate compliance records")
	}
	return out, total, nil
}

func (r *ComplianceRepository) SetDocument(ctx context.Context, id uuid.UUID, key string) error {
	res, err := r.executor.ExecContext(ctx,
		`UPDATE compliance_records SET document_key = $2, updated_at = NOW() WHERE id = $1`, id, key)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to attach certificate")
	}
	return requireAffected(res, errors.ErrCodeComplianceNotFound, "compliance record")
}

func (r *ComplianceRepository) ExpireDue(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	rows, err := r.executor.QueryContext(ctx, `
		UPDATE compliance_records SET status = 'expired', updated_at = NOW()
		WHERE status = 'active' AND expiry_date < $1
		RETURNING id`, now)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to expire compliance records")
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan expired id")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate expired ids")
	}
	return ids, nil
}

func scanCompliance(s scanner) (*compliance.Record, error) {
	var (
		c             compliance.Record
		issue, expiry sql.NullTime
		status        string
	)
	err := s.Scan(&c.ID, &c.FarmID, &c.ComplianceType, &c.CertificateNumber, &issue, &expiry, &status,
		&c.Notes, &c.DocumentKey, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, notFoundOr(err, errors.ErrCodeComplianceNotFound, "compliance record")
	}
	c.IssueDate = timePtr(issue)
	c.ExpiryDate = timePtr(expiry)
	c.Status = compliance.Status(status)
	return &c, nil
}
