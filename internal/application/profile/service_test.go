package profile

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/BioSecure-Portal/internal/application/common"
	"github.com/turtacn/BioSecure-Portal/internal/application/events"
	domain "github.com/turtacn/BioSecure-Portal/internal/domain/profile"
	"github.com/turtacn/BioSecure-Portal/internal/testutil"
	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

func newTestService(t *testing.T) (*testutil.MockProfileRepository, *testutil.RecordingEvents, Service) {
	repo := new(testutil.MockProfileRepository)
	rec := &testutil.RecordingEvents{}
	cache, _ := testutil.NewTestCache(t)
	return repo, rec, NewService(repo, cache, time.Minute, rec, testutil.NewMockLogger())
}

func TestEnsureProfile_Existing(t *testing.T) {
	repo, rec, svc := newTestService(t)
	existing := &domain.Profile{ID: uuid.New(), UserID: "sub-1", FullName: "Jane", Role: domain.RoleAdmin}
	repo.On("GetByUserID", mock.Anything, "sub-1").Return(existing, nil).Once()

	p, err := svc.EnsureProfile(context.Background(), &EnsureInput{UserID: "sub-1"})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, p.ID)
	assert.Equal(t, domain.RoleAdmin, p.Role)

	// Second call is served from the cache.
	p, err = svc.EnsureProfile(context.Background(), &EnsureInput{UserID: "sub-1"})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, p.ID)

	repo.AssertExpectations(t)
	assert.Empty(t, rec.Events())
}

func TestEnsureProfile_CreatesMember(t *testing.T) {
	repo, rec, svc := newTestService(t)
	repo.On("GetByUserID", mock.Anything, "sub-2").
		Return(nil, errors.New(errors.ErrCodeProfileNotFound, "profile not found")).Once()
	repo.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Profile) bool {
		return p.UserID == "sub-2" && p.Role == domain.RoleMember && p.FullName == "Sam Farmer"
	})).Return(nil).Once()

	p, err := svc.EnsureProfile(context.Background(), &EnsureInput{UserID: "sub-2", Email: "sam@farm.test", FullName: " Sam Farmer "})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleMember, p.Role)
	assert.Equal(t, []string{events.ProfileCreated}, rec.Types())
	repo.AssertExpectations(t)
}

func TestEnsureProfile_CreateRace(t *testing.T) {
	repo, _, svc := newTestService(t)
	winner := &domain.Profile{ID: uuid.New(), UserID: "sub-3", Role: domain.RoleMember}
	repo.On("GetByUserID", mock.Anything, "sub-3").
		Return(nil, errors.New(errors.ErrCodeProfileNotFound, "profile not found")).Once()
	repo.On("Create", mock.Anything, mock.Anything).
		Return(errors.New(errors.ErrCodeConflict, "profile already exists")).Once()
	repo.On("GetByUserID", mock.Anything, "sub-3").Return(winner, nil).Once()

	p, err := svc.EnsureProfile(context.Background(), &EnsureInput{UserID: "sub-3"})
	require.NoError(t, err)
	assert.Equal(t, winner.ID, p.ID)
}

func TestEnsureProfile_RequiresSubject(t *testing.T) {
	_, _, svc := newTestService(t)
	_, err := svc.EnsureProfile(context.Background(), &EnsureInput{})
	assert.True(t, errors.IsCode(err, errors.ErrCodeTokenInvalid))
}

func TestEnsureProfile_RepositoryFailure(t *testing.T) {
	repo, _, svc := newTestService(t)
	repo.On("GetByUserID", mock.Anything, "sub-4").
		Return(nil, errors.New(errors.ErrCodeDatabaseError, "db down")).Once()

	_, err := svc.EnsureProfile(context.Background(), &EnsureInput{UserID: "sub-4"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeDatabaseError))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdate_InvalidatesCache(t *testing.T) {
	repo, rec, svc := newTestService(t)
	id := uuid.New()
	stored := &domain.Profile{ID: id, UserID: "sub-5", FullName: "Old", Role: domain.RoleMember}

	repo.On("GetByUserID", mock.Anything, "sub-5").Return(&domain.Profile{ID: id, UserID: "sub-5", FullName: "Old"}, nil).Once()
	_, err := svc.EnsureProfile(context.Background(), &EnsureInput{UserID: "sub-5"})
	require.NoError(t, err)

	name := "New Name"
	repo.On("GetByID", mock.Anything, id).Return(stored, nil).Once()
	repo.On("Update", mock.Anything, stored).Return(nil).Once()

	p, err := svc.Update(context.Background(), common.Actor{ProfileID: id}, domain.Update{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, "New Name", p.FullName)
	assert.Equal(t, []string{events.ProfileUpdated}, rec.Types())

	// The cached entry was dropped, so the next lookup reaches the repository.
	repo.On("GetByUserID", mock.Anything, "sub-5").Return(stored, nil).Once()
	p, err = svc.EnsureProfile(context.Background(), &EnsureInput{UserID: "sub-5"})
	require.NoError(t, err)
	assert.Equal(t, "New Name", p.FullName)
	repo.AssertExpectations(t)
}

func TestUpdate_RejectsLongName(t *testing.T) {
	_, _, svc := newTestService(t)
	long := strings.Repeat("a", 201)
	_, err := svc.Update(context.Background(), common.Actor{ProfileID: uuid.New()}, domain.Update{FullName: &long})
	assert.True(t, errors.IsValidation(err))
}
