// Package repositories implements the domain repository interfaces on
// PostgreSQL through database/sql and the pgx driver.
package repositories

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

// queryExecutor abstracts sql.DB and sql.Tx
type queryExecutor interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// scanner abstracts sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	defaultListLimit = 20
	maxListLimit     = 100
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool     { return pgErrorCode(err) == pgUniqueViolation }
func isForeignKeyViolation(err error) bool { return pgErrorCode(err) == pgForeignKeyViolation }

// notFoundOr maps sql.ErrNoRows to an AppError with code, and anything else
// to a database error.
func notFoundOr(err error, code errors.ErrorCode, what string) error {
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.New(code, what+" not found")
	}
	return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load "+what)
}

// requireAffected turns a zero-row write into a not-found error.
func requireAffected(res sql.Result, code errors.ErrorCode, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to read affected rows")
	}
	if n == 0 {
		return errors.New(code, what+" not found")
	}
	return nil
}

// clampPage applies the listing defaults: limit 20, at most 100.
func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// whereBuilder accumulates positional predicates.  Each clause is a format
// string whose %[1]d verbs receive the placeholder index of its argument.
type whereBuilder struct {
	clauses []string
	args    []interface{}
}

func (w *whereBuilder) add(clause string, arg interface{}) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, fmt.Sprintf(clause, len(w.args)))
}

func (w *whereBuilder) addRaw(clause string) {
	w.clauses = append(w.clauses, clause)
}

func (w *whereBuilder) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// next returns the placeholder index for an argument appended after the
// predicates.
func (w *whereBuilder) next() int { return len(w.args) + 1 }

// uuidArray renders ids as a PostgreSQL array literal for "= ANY($n::uuid[])".
func uuidArray(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// likePattern wraps s for a substring ILIKE match with '\' as the escape
// character, so wildcards typed by the user match literally.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func itoa(i int) string { return strconv.Itoa(i) }
