package chainengine

import (
	"testing"

	"github.com/medsync-ai/orchestrator/pkg/devicestore"
	"github.com/medsync-ai/orchestrator/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func fixtureStore() *devicestore.Store {
	wire := &models.Device{
		ID: "wire1", ProductName: "WireY", DeviceName: "WireY",
		ConicalCategory: models.LevelLW,
		FitLogic:        models.FitLogicMath,
		Dimensions: models.Dimensions{
			OuterDiameterDistal: models.Measurement{Inches: f(0.058)},
			LengthCM:            f(132),
		},
	}
	catheter := &models.Device{
		ID: "cath1", ProductName: "CatheterA", DeviceName: "CatheterA",
		ConicalCategory: models.LevelL0,
		FitLogic:        models.FitLogicCompat,
		LogicCategory:   []string{"catheter"},
		Dimensions: models.Dimensions{
			InnerDiameter: models.Measurement{Inches: f(0.088)},
			LengthCM:      f(80),
		},
	}
	catheterIncompatible := &models.Device{
		ID: "cath2", ProductName: "CatheterB", DeviceName: "CatheterB",
		ConicalCategory: models.LevelL0,
		FitLogic:        models.FitLogicCompat,
		LogicCategory:   []string{"catheter"},
		Dimensions: models.Dimensions{
			InnerDiameter: models.Measurement{Inches: f(0.040)},
			LengthCM:      f(10),
		},
	}
	store := devicestore.New()
	store.Load([]*models.Device{wire, catheter, catheterIncompatible})
	return store
}

func TestEvaluateChain_SinglePathPasses(t *testing.T) {
	devices := fixtureStore()
	exp := Expansion{
		Chain:            &models.Chain{Sequence: []string{"WireY", "CatheterA"}, Levels: []models.ConicalCategory{models.LevelLW, models.LevelL0}},
		ProductSequences: [][]string{{"WireY", "CatheterA"}},
	}

	result := EvaluateChain(exp, devices)
	require.Len(t, result.Paths, 1)
	assert.True(t, result.Paths[0].Passed)
	assert.True(t, result.Passed)
	require.Len(t, result.Paths[0].Connections, 1)
	assert.Equal(t, "WireY", result.Paths[0].Connections[0].InnerProduct)
	assert.Equal(t, "CatheterA", result.Paths[0].Connections[0].OuterProduct)
}

func TestEvaluateChain_FailingGeometryFailsPath(t *testing.T) {
	devices := fixtureStore()
	exp := Expansion{
		Chain:            &models.Chain{Sequence: []string{"WireY", "CatheterB"}, Levels: []models.ConicalCategory{models.LevelLW, models.LevelL0}},
		ProductSequences: [][]string{{"WireY", "CatheterB"}},
	}

	result := EvaluateChain(exp, devices)
	require.Len(t, result.Paths, 1)
	assert.False(t, result.Paths[0].Passed)
	assert.False(t, result.Passed)
}

func TestEvaluateChain_ChainPassesIfAnyPathPasses(t *testing.T) {
	devices := fixtureStore()
	exp := Expansion{
		Chain: &models.Chain{Sequence: []string{"WireY", "guide_catheters"}, Levels: []models.ConicalCategory{models.LevelLW, models.LevelL0}, ContainsCategory: true},
		ProductSequences: [][]string{
			{"WireY", "CatheterB"}, // fails
			{"WireY", "CatheterA"}, // passes
		},
	}

	result := EvaluateChain(exp, devices)
	assert.True(t, result.Passed)
	assert.False(t, result.Paths[0].Passed)
	assert.True(t, result.Paths[1].Passed)
}
