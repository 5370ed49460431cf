package alert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

func TestInputValidate(t *testing.T) {
	err := (&Input{Severity: "urgent"}).Validate()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeAlertInvalid))

	var ae *errors.AppError
	require.True(t, errors.As(err, &ae))
	assert.Len(t, ae.Fields, 3)
}

func TestNew_ActiveWithDefaultType(t *testing.T) {
	in := &Input{Title: "ASF outbreak", Message: "Restrict visitors", Severity: "CRITICAL", FarmType: "pig"}
	require.NoError(t, in.Validate())

	a := New(in)
	assert.True(t, a.IsActive)
	assert.Equal(t, SeverityCritical, a.Severity)
	assert.Equal(t, DefaultType, a.AlertType)
	assert.Equal(t, "pig", a.FarmType)
}

func TestSeverityRank(t *testing.T) {
	assert.Less(t, SeverityLow.Rank(), SeverityMedium.Rank())
	assert.Less(t, SeverityHigh.Rank(), SeverityCritical.Rank())
	assert.Equal(t, 0, Severity("x").Rank())
}
