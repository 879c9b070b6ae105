package orchestrator

import (
	"testing"

	"github.com/medsync-ai/orchestrator/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSyntheticDevice_FillsMissingFieldsWithDefaults(t *testing.T) {
	d := buildSyntheticDevice(genericMapping{Label: ".014 wire", Insufficient: true})

	require.NotNil(t, d.Dimensions.OuterDiameterDistal.Inches)
	assert.Equal(t, genericDefaultDiameterInches, *d.Dimensions.OuterDiameterDistal.Inches)
	require.NotNil(t, d.Dimensions.LengthCM)
	assert.Equal(t, genericDefaultLengthCM, *d.Dimensions.LengthCM)
	assert.Equal(t, models.LevelL0, d.ConicalCategory)
	assert.Equal(t, models.FitLogicMath, d.FitLogic)
	assert.Equal(t, ".014 wire", d.ProductName)
}

func TestBuildSyntheticDevice_UsesMappedValuesWhenPresent(t *testing.T) {
	diameter := 0.014
	length := 190.0
	d := buildSyntheticDevice(genericMapping{
		Label:           "microcatheter",
		ConicalCategory: models.LevelL3,
		FitLogic:        models.FitLogicCompat,
		LogicCategory:   []string{"microcatheter"},
		DiameterInches:  &diameter,
		LengthCM:        &length,
	})

	assert.Equal(t, models.LevelL3, d.ConicalCategory)
	assert.Equal(t, models.FitLogicCompat, d.FitLogic)
	assert.Equal(t, diameter, *d.Dimensions.OuterDiameterDistal.Inches)
	assert.Equal(t, length, *d.Dimensions.LengthCM)
}

func TestJoinQuoted(t *testing.T) {
	assert.Equal(t, `"a", "b"`, joinQuoted([]string{"a", "b"}))
	assert.Equal(t, "", joinQuoted(nil))
}
