package farm

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/BioSecure-Portal/internal/application/common"
	"github.com/turtacn/BioSecure-Portal/internal/application/events"
	domain "github.com/turtacn/BioSecure-Portal/internal/domain/farm"
	"github.com/turtacn/BioSecure-Portal/internal/testutil"
	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

type fixture struct {
	repo   *testutil.MockFarmRepository
	events *testutil.RecordingEvents
	svc    Service
	actor  common.Actor
}

func newFixture(t *testing.T) *fixture {
	repo := new(testutil.MockFarmRepository)
	rec := &testutil.RecordingEvents{}
	cache, _ := testutil.NewTestCache(t)
	return &fixture{
		repo:   repo,
		events: rec,
		svc:    NewService(repo, cache, rec, testutil.NewMockLogger()),
		actor:  common.Actor{ProfileID: uuid.New(), Name: "Sam"},
	}
}

func validInput() *domain.Input {
	return &domain.Input{Name: "Green Valley", FarmType: "pig", Location: "Iowa"}
}

func TestCreate_Success(t *testing.T) {
	f := newFixture(t)
	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(fm *domain.Farm) bool {
		return fm.OwnerID == f.actor.ProfileID && fm.Name == "Green Valley"
	})).Return(nil).Once()

	got, err := f.svc.Create(context.Background(), f.actor, validInput())
	require.NoError(t, err)
	assert.Equal(t, domain.TypePig, got.FarmType)

	evs := f.events.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, events.FarmCreated, evs[0].Type)
	assert.Equal(t, "Green Valley", evs[0].Subject)
	f.repo.AssertExpectations(t)
}

func TestCreate_InvalidInput(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), f.actor, &domain.Input{Name: "x"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeFarmInvalid))
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, f.events.Events())
}

func TestGet_OtherOwnerIsNotFound(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()
	f.repo.On("GetByID", mock.Anything, id).Return(&domain.Farm{ID: id, OwnerID: uuid.New()}, nil)

	_, err := f.svc.Get(context.Background(), f.actor, id)
	assert.True(t, errors.IsCode(err, errors.ErrCodeFarmNotFound))
}

func TestList_EmptyIsNotNil(t *testing.T) {
	f := newFixture(t)
	f.repo.On("ListByOwner", mock.Anything, f.actor.ProfileID).Return(nil, nil)

	farms, err := f.svc.List(context.Background(), f.actor)
	require.NoError(t, err)
	assert.NotNil(t, farms)
	assert.Empty(t, farms)
}

func TestUpdate_AppliesInput(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()
	stored := &domain.Farm{ID: id, OwnerID: f.actor.ProfileID, Name: "Old", FarmType: domain.TypeCattle, Location: "Kent", AnimalCount: 40}
	f.repo.On("GetByID", mock.Anything, id).Return(stored, nil)
	f.repo.On("Update", mock.Anything, stored).Return(nil).Once()

	got, err := f.svc.Update(context.Background(), f.actor, id, validInput())
	require.NoError(t, err)
	assert.Equal(t, "Green Valley", got.Name)
	assert.Equal(t, 40, got.AnimalCount)
	assert.Equal(t, []string{events.FarmUpdated}, f.events.Types())
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()
	f.repo.On("GetByID", mock.Anything, id).Return(&domain.Farm{ID: id, OwnerID: f.actor.ProfileID, Name: "Gone"}, nil)
	f.repo.On("Delete", mock.Anything, id, f.actor.ProfileID).Return(nil).Once()

	require.NoError(t, f.svc.Delete(context.Background(), f.actor, id))
	assert.Equal(t, []string{events.FarmDeleted}, f.events.Types())
	f.repo.AssertExpectations(t)
}

func TestDelete_NotOwned(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()
	f.repo.On("GetByID", mock.Anything, id).Return(nil, errors.New(errors.ErrCodeFarmNotFound, "farm not found"))

	err := f.svc.Delete(context.Background(), f.actor, id)
	assert.True(t, errors.IsNotFound(err))
	f.repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}
