package chainanalyzer

import (
	"testing"

	"github.com/medsync-ai/orchestrator/pkg/compat"
	"github.com/medsync-ai/orchestrator/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fp(v float64) *float64 { return &v }

func passingPair(innerProduct, outerProduct string) *models.PairAnalysis {
	inner := &models.Device{ID: innerProduct + "-v1", ProductName: innerProduct, DeviceName: innerProduct,
		FitLogic: models.FitLogicMath,
		Dimensions: models.Dimensions{OuterDiameterDistal: models.Measurement{Inches: fp(0.058)}, LengthCM: fp(132)}}
	outer := &models.Device{ID: outerProduct + "-v1", ProductName: outerProduct, DeviceName: outerProduct,
		FitLogic: models.FitLogicMath,
		Dimensions: models.Dimensions{OuterDiameterDistal: models.Measurement{Inches: fp(0.070)}, LengthCM: fp(80)}}
	pair := compat.EvaluatePair(inner, outer)
	return AnalyzePair(pair)
}

// TestRollupChain_S3 is spec scenario S3: a three-product chain A->B->C
// where every variant pair at every connection passes.
func TestRollupChain_S3(t *testing.T) {
	connAB := RollupConnection("A", "B", models.ConnectionIntraLevel, []*models.PairAnalysis{passingPair("A", "B")})
	connBC := RollupConnection("B", "C", models.ConnectionIntraLevel, []*models.PairAnalysis{passingPair("B", "C")})

	require.True(t, connAB.Passed)
	require.True(t, connBC.Passed)
	require.Len(t, connAB.Combinations, 1)
	assert.Equal(t, 1, connAB.Combinations[0].PassingVariants)

	path := RollupPath([]string{"A", "B", "C"}, []*models.ConnectionResult{connAB, connBC})
	assert.True(t, path.Passed)

	chain := &models.Chain{Sequence: []string{"A", "B", "C"}, Levels: []models.ConicalCategory{models.LevelL2, models.LevelL1, models.LevelL0}}
	result := RollupChain(chain, []*models.PathResult{path})
	assert.True(t, result.Passed)
}

func TestRollupConnection_FailsWhenAnyCombinationFails(t *testing.T) {
	failing := &models.PairAnalysis{Pair: &models.PairResult{
		Inner:         &models.Device{ID: "x", ProductName: "X", DeviceName: "X"},
		Outer:         &models.Device{ID: "y", ProductName: "Y", DeviceName: "Y"},
		OverallStatus: models.OverallFail,
	}}
	conn := RollupConnection("X", "Y", models.ConnectionIntraLevel, []*models.PairAnalysis{failing})
	assert.False(t, conn.Passed)
	assert.Equal(t, 0, conn.Combinations[0].PassingVariants)
	assert.Equal(t, 1, conn.Combinations[0].FailingVariants)
}

func TestRollupChain_PassesIfAnyPathPasses(t *testing.T) {
	failingPath := &models.PathResult{Passed: false}
	passingPath := &models.PathResult{Passed: true}
	result := RollupChain(&models.Chain{}, []*models.PathResult{failingPath, passingPath})
	assert.True(t, result.Passed)
}
