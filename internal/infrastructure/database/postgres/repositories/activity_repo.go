package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/turtacn/BioSecure-Portal/internal/domain/activity"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/database/postgres"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

// ActivityRepository stores the activity_log feed.
type ActivityRepository struct {
	conn     *postgres.Connection
	log      logging.Logger
	executor queryExecutor
}

var _ activity.Repository = (*ActivityRepository)(nil)

func NewActivityRepository(conn *postgres.Connection, log logging.Logger) *ActivityRepository {
	return &ActivityRepository{conn: conn, log: log, executor: conn.DB()}
}

func (r *ActivityRepository) Record(ctx context.Context, e *activity.Entry) (bool, error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	res, err := r.executor.ExecContext(ctx, `
		INSERT INTO activity_log (id, event_id, actor_id, actor_name, action, resource, type, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (event_id) DO NOTHING`,
		e.ID, e.EventID, nullUUID(e.ActorID), e.ActorName, e.Action, e.Resource, string(e.Type), e.OccurredAt,
	)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to record activity")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to read affected rows")
	}
	return n > 0, nil
}

func (r *ActivityRepository) Recent(ctx context.Context, limit int) ([]*activity.Entry, error) {
	limit, _ = clampPage(limit, 0)
	rows, err := r.executor.QueryContext(ctx, `
		SELECT id, event_id, actor_id, actor_name, action, resource, type, occurred_at
		FROM activity_log ORDER BY occurred_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load activity")
	}
	defer rows.Close()

	var out []*activity.Entry
	for rows.Next() {
		var (
			e     activity.Entry
			actor uuid.NullUUID
			typ   string
		)
		if err := rows.Scan(&e.ID, &e.EventID, &actor, &e.ActorName, &e.Action, &e.Resource, &typ, &e.OccurredAt); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan activity")
		}
		if actor.Valid {
			id := actor.UUID
			e.ActorID = &id
		}
		e.Type = activity.Type(typ)
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate activity")
	}
	return out, nil
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
