package training

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

func TestModuleSteps(t *testing.T) {
	m := &Module{Content: "Wash hands.\n\nWear boots.\r\n\r\n  \n\nLog visitors.\n"}
	assert.Equal(t, []string{"Wash hands.", "Wear boots.", "Log visitors."}, m.Steps())
	assert.Empty(t, (&Module{}).Steps())
}

func TestProgressLifecycle(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	p := &Progress{}

	p.Start(now)
	assert.Equal(t, StatusInProgress, p.Status)
	assert.Equal(t, 0, p.ProgressPercentage)
	require.NotNil(t, p.StartedAt)
	assert.Nil(t, p.CompletedAt)

	require.NoError(t, p.Advance(40, now.Add(time.Minute)))
	assert.Equal(t, 40, p.ProgressPercentage)
	assert.Equal(t, now, *p.StartedAt)

	later := now.Add(time.Hour)
	require.NoError(t, p.Advance(100, later))
	assert.Equal(t, StatusCompleted, p.Status)
	assert.Equal(t, 100, p.ProgressPercentage)
	assert.Equal(t, later, *p.CompletedAt)

	err := p.Advance(101, later)
	assert.True(t, errors.IsValidation(err))
}

func TestAdvance_CompletedModule(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	p := &Progress{}
	p.Complete(now)

	err := p.Advance(40, now.Add(time.Hour))
	assert.True(t, errors.IsCode(err, errors.ErrCodeModuleCompleted))
	assert.Equal(t, StatusCompleted, p.Status)
	assert.Equal(t, 100, p.ProgressPercentage)
	assert.Equal(t, now, *p.CompletedAt)

	require.NoError(t, p.Advance(100, now.Add(time.Hour)))
	assert.Equal(t, now, *p.CompletedAt)

	p.Start(now.Add(2 * time.Hour))
	require.NoError(t, p.Advance(40, now.Add(3*time.Hour)))
	assert.Equal(t, StatusInProgress, p.Status)
	assert.Nil(t, p.CompletedAt)
}

func TestComplete_WithoutStart(t *testing.T) {
	now := time.Now()
	p := &Progress{}
	p.Complete(now)
	require.NotNil(t, p.StartedAt)
	assert.Equal(t, now, *p.StartedAt)
}

func TestCompletionPercentage(t *testing.T) {
	assert.Equal(t, 0, CompletionPercentage(0, 0))
	assert.Equal(t, 33, CompletionPercentage(1, 3))
	assert.Equal(t, 67, CompletionPercentage(2, 3))
	assert.Equal(t, 50, CompletionPercentage(1, 2))
	assert.Equal(t, 100, CompletionPercentage(5, 4))
}

func TestModuleInputValidate(t *testing.T) {
	err := (&ModuleInput{DifficultyLevel: "expert"}).Validate()
	var ae *errors.AppError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, errors.CodeValidation, ae.Code)
	assert.Len(t, ae.Fields, 4)

	ok := &ModuleInput{Title: "Footbaths", Content: "Step one", DifficultyLevel: "Beginner", DurationMinutes: 15}
	require.NoError(t, ok.Validate())
	m := &Module{}
	ok.Apply(m)
	assert.Equal(t, DifficultyBeginner, m.DifficultyLevel)
}
