package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/BioSecure-Portal/internal/domain/activity"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/database/postgres"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/logging"
)

type ActivityRepoTestSuite struct {
	suite.Suite
	mock sqlmock.Sqlmock
	db   *sql.DB
	repo *ActivityRepository
}

func (s *ActivityRepoTestSuite) SetupTest() {
	var err error
	s.db, s.mock, err = sqlmock.New()
	s.Require().NoError(err)
	log := logging.NewNopLogger()
	s.repo = NewActivityRepository(postgres.NewConnectionWithDB(s.db, log), log)
}

func (s *ActivityRepoTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	s.db.Close()
}

func (s *ActivityRepoTestSuite) TestRecord_IdempotentByEventID() {
	e := &activity.Entry{EventID: "evt-1", ActorName: "Ann", Action: "Registered farm", Resource: "North", Type: activity.TypeFarm, OccurredAt: time.Now()}

	s.mock.ExpectExec("INSERT INTO activity_log .* ON CONFLICT \\(event_id\\) DO NOTHING").
		WillReturnResult(sqlmock.NewResult(0, 1))
	inserted, err := s.repo.Record(context.Background(), e)
	s.NoError(err)
	s.True(inserted)

	s.mock.ExpectExec("INSERT INTO activity_log").
		WillReturnResult(sqlmock.NewResult(0, 0))
	inserted, err = s.repo.Record(context.Background(), e)
	s.NoError(err)
	s.False(inserted)
}

func (s *ActivityRepoTestSuite) TestRecent() {
	actor := uuid.New()
	now := time.Now()
	s.mock.ExpectQuery("SELECT .* FROM activity_log ORDER BY occurred_at DESC LIMIT \\$1").
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "actor_id", "actor_name", "action", "resource", "type", "occurred_at"}).
			AddRow(uuid.NewString(), "evt-2", actor.String(), "Ann", "Completed training", "Basics", "training", now).
			AddRow(uuid.NewString(), "evt-1", nil, "System", "Expired certificate", "GAP", "compliance", now.Add(-time.Minute)))

	entries, err := s.repo.Recent(context.Background(), 10)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal(actor, *entries[0].ActorID)
	s.Nil(entries[1].ActorID)
	s.Equal(activity.TypeCompliance, entries[1].Type)
}

func TestActivityRepoTestSuite(t *testing.T) {
	suite.Run(t, new(ActivityRepoTestSuite))
}
