package farm

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

func TestInputValidate(t *testing.T) {
	size := -1.0
	count := -5
	in := &Input{FarmType: "llama", SizeHectares: &size, AnimalCount: &count}

	err := in.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeFarmInvalid))

	var ae *errors.AppError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, map[string]string{
		"name":          "required",
		"farm_type":     "unknown farm type",
		"location":      "required",
		"size_hectares": "must not be negative",
		"animal_count":  "must not be negative",
	}, ae.Fields)
}

func TestNew_DefaultsAnimalCountAndNormalises(t *testing.T) {
	owner := uuid.New()
	in := &Input{Name: "  Green Valley ", FarmType: "Pig", Location: "Iowa"}
	require.NoError(t, in.Validate())

	f := New(owner, in)
	assert.Equal(t, owner, f.OwnerID)
	assert.Equal(t, "Green Valley", f.Name)
	assert.Equal(t, TypePig, f.FarmType)
	assert.Equal(t, 0, f.AnimalCount)
	assert.Nil(t, f.SizeHectares)
	assert.NotEqual(t, uuid.Nil, f.ID)
}

func TestApply_KeepsAnimalCountWhenAbsent(t *testing.T) {
	f := &Farm{AnimalCount: 120}
	(&Input{Name: "A", FarmType: "cattle", Location: "B"}).Apply(f)
	assert.Equal(t, 120, f.AnimalCount)
}
