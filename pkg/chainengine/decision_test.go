package chainengine

import (
	"context"
	"testing"

	"github.com/medsync-ai/orchestrator/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passingChain() *models.ChainResult {
	return &models.ChainResult{Passed: true, Paths: []*models.PathResult{{Passed: true}}}
}

func failingChain() *models.ChainResult {
	return &models.ChainResult{Passed: false, Paths: []*models.PathResult{{Passed: false}}}
}

func TestDecide_AllPassReturnsAsIs(t *testing.T) {
	got := Decide(models.Classification{}, []*models.ChainResult{passingChain(), passingChain()})
	assert.Equal(t, models.DecisionReturnAsIs, got)
}

func TestDecide_AllFailMultiDeviceExploratoryRunsN1(t *testing.T) {
	c := models.Classification{QueryStructure: models.StructureMultiDevice, QueryMode: models.ModeExploratory}
	got := Decide(c, []*models.ChainResult{failingChain(), failingChain()})
	assert.Equal(t, models.DecisionRunN1Subsets, got)
}

func TestDecide_AllFailTwoDevicePositiveFlagsGentleCorrection(t *testing.T) {
	c := models.Classification{QueryStructure: models.StructureTwoDevice, ResponseFraming: models.FramingPositive}
	got := Decide(c, []*models.ChainResult{failingChain()})
	assert.Equal(t, models.DecisionFlagGentleCorrect, got)
}

func TestDecide_AllFailOtherwiseReturnsAsIs(t *testing.T) {
	c := models.Classification{QueryStructure: models.StructureTwoDevice, ResponseFraming: models.FramingNeutral}
	got := Decide(c, []*models.ChainResult{failingChain()})
	assert.Equal(t, models.DecisionReturnAsIs, got)
}

func TestDecide_MixedResultsReturnsAsIs(t *testing.T) {
	c := models.Classification{QueryStructure: models.StructureMultiDevice, QueryMode: models.ModeExploratory}
	got := Decide(c, []*models.ChainResult{passingChain(), failingChain()})
	assert.Equal(t, models.DecisionReturnAsIs, got)
}

func TestRunN1Subsets_ExcludesEachDeviceOnce(t *testing.T) {
	devices := fixtureStore()
	exp := Expansion{
		Chain:            &models.Chain{Sequence: []string{"CatheterB", "WireY", "CatheterA"}, Levels: []models.ConicalCategory{models.LevelL0, models.LevelLW, models.LevelL0}},
		ProductSequences: [][]string{{"CatheterB", "WireY", "CatheterA"}},
	}

	results, err := RunN1Subsets(context.Background(), []Expansion{exp}, devices)
	require.NoError(t, err)
	assert.Len(t, results, 3)

	excluded := map[string]bool{}
	for _, r := range results {
		excluded[r.ExcludedDevice] = true
	}
	assert.True(t, excluded["CatheterB"])
	assert.True(t, excluded["WireY"])
	assert.True(t, excluded["CatheterA"])
}
