package repositories

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/turtacn/BioSecure-Portal/internal/domain/farm"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/database/postgres"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

const farmColumns = `id, owner_id, name, farm_type, location, size_hectares, animal_count, registration_number, created_at, updated_at`

// FarmRepository stores farms in the farms table.
type FarmRepository struct {
	conn     *postgres.Connection
	log      logging.Logger
	executor queryExecutor
}

var _ farm.Repository = (*FarmRepository)(nil)

func NewFarmRepository(conn *postgres.Connection, log logging.Logger) *FarmRepository {
	return &FarmRepository{conn: conn, log: log, executor: conn.DB()}
}

func (r *FarmRepository) Create(ctx context.Context, f *farm.Farm) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	query := `
		INSERT INTO farms (id, owner_id, name, farm_type, location, size_hectares, animal_count, registration_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := r.executor.QueryRowContext(ctx, query,
		f.ID, f.OwnerID, f.Name, string(f.FarmType), f.Location, nullFloat(f.SizeHectares), f.AnimalCount, f.RegistrationNumber,
	).Scan(&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Wrap(err, errors.ErrCodeFarmAlreadyExists, "farm already exists")
		}
		if isForeignKeyViolation(err) {
			return errors.Wrap(err, errors.ErrCodeProfileNotFound, "owner profile not found")
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create farm")
	}
	return nil
}

func (r *FarmRepository) GetByID(ctx context.Context, id uuid.UUID) (*farm.Farm, error) {
	row := r.executor.QueryRowContext(ctx, `SELECT `+farmColumns+` FROM farms WHERE id = $1`, id)
	return scanFarm(row)
}

func (r *FarmRepository) Update(ctx context.Context, f *farm.Farm) error {
	query := `
		UPDATE farms SET
			name = $3, farm_type = $4, location = $5, size_hectares = $6, animal_count = $7,
			registration_number = $8, updated_at = NOW()
		WHERE id = $1 AND owner_id = $2
		RETURNING created_at, updated_at
	`
	err := r.executor.QueryRowContext(ctx, query,
		f.ID, f.OwnerID, f.Name, string(f.FarmType), f.Location, nullFloat(f.SizeHectares), f.AnimalCount, f.RegistrationNumber,
	).Scan(&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return notFoundOr(err, errors.ErrCodeFarmNotFound, "farm")
	}
	return nil
}

func (r *FarmRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	res, err := r.executor.ExecContext(ctx, `DELETE FROM farms WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete farm")
	}
	return requireAffected(res, errors.ErrCodeFarmNotFound, "farm")
}

func (r *FarmRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*farm.Farm, error) {
	return r.query(ctx,
		`SELECT `+farmColumns+` FROM farms WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
}

// ListByOwners returns the farms of every owner in ownerIDs, grouped by owner
// and newest first within an owner.
func (r *FarmRepository) ListByOwners(ctx context.Context, ownerIDs []uuid.UUID) ([]*farm.Farm, error) {
	if len(ownerIDs) == 0 {
		return nil, nil
	}
	return r.query(ctx,
		`SELECT `+farmColumns+` FROM farms WHERE owner_id = ANY($1::uuid[])
		ORDER BY owner_id, created_at DESC`, uuidArray(ownerIDs))
}

func (r *FarmRepository) query(ctx context.Context, query string, args ...interface{}) ([]*farm.Farm, error) {
	rows, err := r.executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list farms")
	}
	defer rows.Close()

	var out []*farm.Farm
	for rows.Next() {
		f, err := scanFarm(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate farms")
	}
	return out, nil
}

func (r *FarmRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM farms`).Scan(&n); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count farms")
	}
	return n, nil
}

func scanFarm(s scanner) (*farm.Farm, error) {
	var (
		f        farm.Farm
		farmType string
		size     sql.NullFloat64
	)
	err := s.Scan(&f.ID, &f.OwnerID, &f.Name, &farmType, &f.Location, &size, &f.AnimalCount,
		&f.RegistrationNumber, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, notFoundOr(err, errors.ErrCodeFarmNotFound, "farm")
	}
	f.FarmType = farm.Type(farmType)
	if size.Valid {
		v := size.Float64
		f.SizeHectares = &v
	}
	return &f, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
