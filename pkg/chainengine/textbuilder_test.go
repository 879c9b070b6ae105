package chainengine

import (
	"strings"
	"testing"

	"github.com/medsync-ai/orchestrator/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestChainTextBuilder_CompatibilityCheckReportsPassCounts(t *testing.T) {
	devices := fixtureStore()
	passing := EvaluateChain(Expansion{
		Chain:            &models.Chain{Sequence: []string{"WireY", "CatheterA"}, Levels: []models.ConicalCategory{models.LevelLW, models.LevelL0}},
		ProductSequences: [][]string{{"WireY", "CatheterA"}},
	}, devices)

	b := NewChainTextBuilder()
	text := b.Build(models.ResultCompatibilityCheck, []*models.ChainResult{passing}, models.DecisionReturnAsIs, nil)

	assert.Contains(t, text, "Chains tested: 1 | Passing: 1 | Failing: 0")
	assert.Contains(t, text, "COMPATIBLE: WireY -> CatheterA")
}

func TestChainTextBuilder_CompatibilityCheckReportsFailureReason(t *testing.T) {
	devices := fixtureStore()
	failing := EvaluateChain(Expansion{
		Chain:            &models.Chain{Sequence: []string{"WireY", "CatheterB"}, Levels: []models.ConicalCategory{models.LevelLW, models.LevelL0}},
		ProductSequences: [][]string{{"WireY", "CatheterB"}},
	}, devices)

	b := NewChainTextBuilder()
	text := b.Build(models.ResultCompatibilityCheck, []*models.ChainResult{failing}, models.DecisionReturnAsIs, nil)

	assert.Contains(t, text, "NOT COMPATIBLE: WireY -> CatheterB")
}

func TestChainTextBuilder_GentleCorrectionAppendsNote(t *testing.T) {
	devices := fixtureStore()
	failing := EvaluateChain(Expansion{
		Chain:            &models.Chain{Sequence: []string{"WireY", "CatheterB"}, Levels: []models.ConicalCategory{models.LevelLW, models.LevelL0}},
		ProductSequences: [][]string{{"WireY", "CatheterB"}},
	}, devices)

	b := NewChainTextBuilder()
	text := b.Build(models.ResultCompatibilityCheck, []*models.ChainResult{failing}, models.DecisionFlagGentleCorrect, nil)

	assert.Contains(t, text, "uncommon")
}

func TestChainTextBuilder_DeviceDiscoveryListsSourceAndCompatible(t *testing.T) {
	devices := fixtureStore()
	passing := EvaluateChain(Expansion{
		Chain:            &models.Chain{Sequence: []string{"WireY", "CatheterA"}, Levels: []models.ConicalCategory{models.LevelLW, models.LevelL0}},
		ProductSequences: [][]string{{"WireY", "CatheterA"}},
	}, devices)

	b := NewChainTextBuilder()
	text := b.Build(models.ResultDeviceDiscovery, []*models.ChainResult{passing}, models.DecisionReturnAsIs, nil)

	assert.Contains(t, text, "SOURCE DEVICE(S):")
	assert.Contains(t, text, "CatheterA")
	assert.Contains(t, text, "COMPATIBLE DEVICES")
	assert.Contains(t, text, "WireY")
}

func TestChainTextBuilder_DeviceDiscoveryNoPassesReturnsFixedMessage(t *testing.T) {
	devices := fixtureStore()
	failing := EvaluateChain(Expansion{
		Chain:            &models.Chain{Sequence: []string{"WireY", "CatheterB"}, Levels: []models.ConicalCategory{models.LevelLW, models.LevelL0}},
		ProductSequences: [][]string{{"WireY", "CatheterB"}},
	}, devices)

	b := NewChainTextBuilder()
	text := b.Build(models.ResultDeviceDiscovery, []*models.ChainResult{failing}, models.DecisionReturnAsIs, nil)

	assert.Equal(t, "No compatible devices found.", text)
}

func TestChainTextBuilder_SubsetAnalysisAppended(t *testing.T) {
	devices := fixtureStore()
	passing := EvaluateChain(Expansion{
		Chain:            &models.Chain{Sequence: []string{"WireY", "CatheterA"}, Levels: []models.ConicalCategory{models.LevelLW, models.LevelL0}},
		ProductSequences: [][]string{{"WireY", "CatheterA"}},
	}, devices)

	n1 := []models.N1SubsetResult{{ExcludedDevice: "WireY", Passed: false}}
	b := NewChainTextBuilder()
	text := b.Build(models.ResultCompatibilityCheck, []*models.ChainResult{passing}, models.DecisionReturnAsIs, n1)

	assert.True(t, strings.Contains(text, "N-1 SUBSET CONFIGURATIONS:"))
	assert.Contains(t, text, "Excluding WireY: Invalid")
}
