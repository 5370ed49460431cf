package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/turtacn/BioSecure-Portal/internal/domain/profile"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/database/postgres"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

const profileColumns = `id, user_id, email, full_name, farm_type, location, phone, role, created_at, updated_at`

// ProfileRepository stores profiles in the profiles table.
type ProfileRepository struct {
	conn     *postgres.Connection
	log      logging.Logger
	executor queryExecutor
}

var _ profile.Repository = (*ProfileRepository)(nil)

func NewProfileRepository(conn *postgres.Connection, log logging.Logger) *ProfileRepository {
	return &ProfileRepository{conn: conn, log: log, executor: conn.DB()}
}

func (r *ProfileRepository) Create(ctx context.Context, p *profile.Profile) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Role == "" {
		p.Role = profile.RoleMember
	}
	query := `
		INSERT INTO profiles (id, user_id, email, full_name, farm_type, location, phone, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := r.executor.QueryRowContext(ctx, query,
		p.ID, p.UserID, p.Email, p.FullName, p.FarmType, p.Location, p.Phone, string(p.Role),
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Wrap(err, errors.ErrCodeConflict, "profile already exists")
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create profile")
	}
	return nil
}

func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	row := r.executor.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
	return scanProfile(row)
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*profile.Profile, error) {
	row := r.executor.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID)
	return scanProfile(row)
}

func (r *ProfileRepository) Update(ctx context.Context, p *profile.Profile) error {
	query := `
		UPDATE profiles SET
			email = $2, full_name = $3, farm_type = $4, location = $5, phone = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.executor.QueryRowContext(ctx, query,
		p.ID, p.Email, p.FullName, p.FarmType, p.Location, p.Phone,
	).Scan(&p.UpdatedAt)
	if err != nil {
		return notFoundOr(err, errors.ErrCodeProfileNotFound, "profile")
	}
	return nil
}

func (r *ProfileRepository) UpdateRole(ctx context.Context, id uuid.UUID, role profile.Role) error {
	res, err := r.executor.ExecContext(ctx,
		`UPDATE profiles SET role = $2, updated_at = NOW() WHERE id = $1`, id, string(role))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update role")
	}
	return requireAffected(res, errors.ErrCodeProfileNotFound, "profile")
}

func (r *ProfileRepository) List(ctx context.Context, filter profile.ListFilter) ([]*profile.Profile, int64, error) {
	var w whereBuilder
	if filter.Search != "" {
		w.add(`(full_name ILIKE $%[1]d ESCAPE '\' OR email ILIKE $%[1]d ESCAPE '\' OR role ILIKE $%[1]d ESCAPE '\' OR location ILIKE $%[1]d ESCAPE '\')`,
			likePattern(filter.Search))
	}
	if filter.Role != "" {
		w.add(`role = $%d`, string(filter.Role))
	}

	var total int64
	if err := r.executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count profiles")
	}

	limit, offset := clampPage(filter.Limit, filter.Offset)
	n := w.next()
	query := `SELECT ` + profileColumns + ` FROM profiles` + w.String() +
		` ORDER BY created_at DESC LIMIT $` + itoa(n) + ` OFFSET $` + itoa(n+1)
	rows, err := r.executor.QueryContext(ctx, query, append(w.args, limit, offset)...)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list profiles")
	}
	defer rows.Close()

	var out []*profile.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate profiles")
	}
	return out, total, nil
}

func (r *ProfileRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&n); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count profiles")
	}
	return n, nil
}

func scanProfile(s scanner) (*profile.Profile, error) {
	var (
		p    profile.Profile
		role string
	)
	err := s.Scan(&p.ID, &p.UserID, &p.Email, &p.FullName, &p.FarmType, &p.Location, &p.Phone, &role,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, notFoundOr(err, errors.ErrCodeProfileNotFound, "profile")
	}
	p.Role = profile.Role(role)
	return &p, nil
}
