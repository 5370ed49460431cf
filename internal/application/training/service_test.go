package training

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/BioSecure-Portal/internal/application/common"
	"github.com/turtacn/BioSecure-Portal/internal/application/events"
	domain "github.com/turtacn/BioSecure-Portal/internal/domain/training"
	"github.com/turtacn/BioSecure-Portal/internal/testutil"
	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

type fixture struct {
	repo   *testutil.MockTrainingRepository
	events *testutil.RecordingEvents
	svc    *serviceImpl
	actor  common.Actor
	module *domain.Module
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	repo := new(testutil.MockTrainingRepository)
	rec := &testutil.RecordingEvents{}
	cache, _ := testutil.NewTestCache(t)
	svc := NewService(repo, cache, rec, nil, testutil.NewMockLogger()).(*serviceImpl)
	now := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return &fixture{
		repo:   repo,
		events: rec,
		svc:    svc,
		actor:  common.Actor{ProfileID: uuid.New(), Name: "Sam"},
		module: &domain.Module{ID: uuid.New(), Title: "Footbath Basics", Content: "Fill.\n\nDip.", IsActive: true},
		now:    now,
	}
}

func progressNotFound() error {
	return errors.New(errors.ErrCodeProgressNotFound, "training progress not found")
}

func TestGetModule_SplitsSteps(t *testing.T) {
	f := newFixture(t)
	f.repo.On("GetModule", mock.Anything, f.module.ID).Return(f.module, nil)

	d, err := f.svc.GetModule(context.Background(), f.module.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Fill.", "Dip."}, d.Steps)
}

func TestGetModule_Inactive(t *testing.T) {
	f := newFixture(t)
	f.module.IsActive = false
	f.repo.On("GetModule", mock.Anything, f.module.ID).Return(f.module, nil)

	_, err := f.svc.GetModule(context.Background(), f.module.ID)
	assert.True(t, errors.IsCode(err, errors.ErrCodeModuleInactive))
}

func TestStart_CreatesProgress(t *testing.T) {
	f := newFixture(t)
	f.repo.On("GetModule", mock.Anything, f.module.ID).Return(f.module, nil)
	f.repo.On("GetProgress", mock.Anything, f.actor.ProfileID, f.module.ID).Return(nil, progressNotFound())
	f.repo.On("UpsertProgress", mock.Anything, mock.AnythingOfType("*training.Progress")).Return(nil).Once()

	p, err := f.svc.Start(context.Background(), f.actor, f.module.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, p.Status)
	assert.Equal(t, 0, p.ProgressPercentage)
	require.NotNil(t, p.StartedAt)
	assert.Equal(t, f.now, *p.StartedAt)

	evs := f.events.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, events.TrainingStarted, evs[0].Type)
	assert.Equal(t, "Footbath Basics", evs[0].Subject)
}

func TestComplete_EmitsOnce(t *testing.T) {
	f := newFixture(t)
	existing := &domain.Progress{ID: uuid.New(), UserID: f.actor.ProfileID, ModuleID: f.module.ID, Status: domain.StatusInProgress}
	f.repo.On("GetModule", mock.Anything, f.module.ID).Return(f.module, nil)
	f.repo.On("GetProgress", mock.Anything, f.actor.ProfileID, f.module.ID).Return(existing, nil)
	f.repo.On("UpsertProgress", mock.Anything, existing).Return(nil)

	p, err := f.svc.Complete(context.Background(), f.actor, f.module.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, p.ProgressPercentage)
	require.NotNil(t, p.CompletedAt)

	_, err = f.svc.Complete(context.Background(), f.actor, f.module.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{events.TrainingComplete}, f.events.Types())
}

func TestUpdateProgress(t *testing.T) {
	f := newFixture(t)
	f.repo.On("GetModule", mock.Anything, f.module.ID).Return(f.module, nil)
	f.repo.On("GetProgress", mock.Anything, f.actor.ProfileID, f.module.ID).Return(nil, progressNotFound())
	f.repo.On("UpsertProgress", mock.Anything, mock.Anything).Return(nil)

	p, err := f.svc.UpdateProgress(context.Background(), f.actor, f.module.ID, 40)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, p.Status)
	assert.Equal(t, 40, p.ProgressPercentage)
	assert.Empty(t, f.events.Events())

	_, err = f.svc.UpdateProgress(context.Background(), f.actor, f.module.ID, 140)
	assert.True(t, errors.IsValidation(err))
}

func TestUpdateProgress_CompletedModuleKeepsCompletion(t *testing.T) {
	f := newFixture(t)
	done := f.now.Add(-24 * time.Hour)
	existing := &domain.Progress{
		ID: uuid.New(), UserID: f.actor.ProfileID, ModuleID: f.module.ID,
		Status: domain.StatusCompleted, ProgressPercentage: 100, StartedAt: &done, CompletedAt: &done,
	}
	f.repo.On("GetModule", mock.Anything, f.module.ID).Return(f.module, nil)
	f.repo.On("GetProgress", mock.Anything, f.actor.ProfileID, f.module.ID).Return(existing, nil)

	_, err := f.svc.UpdateProgress(context.Background(), f.actor, f.module.ID, 40)
	assert.True(t, errors.IsCode(err, errors.ErrCodeModuleCompleted))
	assert.Equal(t, domain.StatusCompleted, existing.Status)
	assert.Equal(t, 100, existing.ProgressPercentage)
	f.repo.AssertNotCalled(t, "UpsertProgress", mock.Anything, mock.Anything)
	assert.Empty(t, f.events.Events())
}

func TestProgressSummary(t *testing.T) {
	f := newFixture(t)
	items := []*domain.ProgressView{
		{Progress: domain.Progress{Status: domain.StatusCompleted}},
		{Progress: domain.Progress{Status: domain.StatusInProgress}},
	}
	f.repo.On("ListProgress", mock.Anything, f.actor.ProfileID).Return(items, nil)
	f.repo.On("CountActiveModules", mock.Anything).Return(int64(3), nil)

	sum, err := f.svc.Progress(context.Background(), f.actor)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.CompletedModules)
	assert.Equal(t, 3, sum.ActiveModules)
	assert.Equal(t, 33, sum.CompletionPercentage)
}

func TestSummarize_NoActiveModules(t *testing.T) {
	sum := Summarize(nil, 0)
	assert.NotNil(t, sum.Items)
	assert.Equal(t, 0, sum.CompletionPercentage)
}

func TestCreateModule(t *testing.T) {
	f := newFixture(t)
	f.repo.On("CreateModule", mock.Anything, mock.MatchedBy(func(m *domain.Module) bool {
		return m.IsActive && m.Title == "Rodent control" && m.DifficultyLevel == domain.DifficultyBeginner
	})).Return(nil).Once()

	m, err := f.svc.CreateModule(context.Background(), &domain.ModuleInput{
		Title: "Rodent control", Content: "Set traps.", DifficultyLevel: "Beginner", DurationMinutes: 15,
	})
	require.NoError(t, err)
	assert.True(t, m.IsActive)

	_, err = f.svc.CreateModule(context.Background(), &domain.ModuleInput{})
	assert.True(t, errors.IsValidation(err))
	f.repo.AssertExpectations(t)
}
