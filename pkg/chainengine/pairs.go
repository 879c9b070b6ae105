package chainengine

import (
	"github.com/medsync-ai/orchestrator/pkg/chainanalyzer"
	"github.com/medsync-ai/orchestrator/pkg/compat"
	"github.com/medsync-ai/orchestrator/pkg/devicestore"
	"github.com/medsync-ai/orchestrator/pkg/models"
)

// EvaluateChain runs steps 4-6 (pair generation, evaluation, analysis) over
// every concrete product sequence an expansion produced, then rolls the
// paths up into a chain verdict (spec.md §4.6, §4.5).
func EvaluateChain(exp Expansion, devices *devicestore.Store) *models.ChainResult {
	paths := make([]*models.PathResult, 0, len(exp.ProductSequences))
	for _, seq := range exp.ProductSequences {
		paths = append(paths, evaluatePath(seq, exp.Chain.Levels, devices))
	}
	return chainanalyzer.RollupChain(exp.Chain, paths)
}

// evaluatePath grades every adjacent connection in one concrete product
// sequence. Sequence runs distal-to-proximal (models.Chain's invariant:
// Levels[i] >= Levels[i+1]), so at position (i, i+1) the device at i is
// the inner member of the pair and the device at i+1 is the outer member.
func evaluatePath(products []string, levels []models.ConicalCategory, devices *devicestore.Store) *models.PathResult {
	connections := make([]*models.ConnectionResult, 0, len(products)-1)
	for i := 0; i+1 < len(products); i++ {
		connType := models.ConnectionTypeOf(levels, i)
		innerProduct, outerProduct := products[i], products[i+1]
		connections = append(connections, evaluateConnection(innerProduct, outerProduct, connType, devices))
	}
	return chainanalyzer.RollupPath(products, connections)
}

// evaluateConnection generates every (inner_variant_id, outer_variant_id)
// combination at one adjacent position, grades each pair, and rolls the
// results up into a connection verdict (spec.md §4.6 step 4).
func evaluateConnection(innerProduct, outerProduct string, connType models.ConnectionType, devices *devicestore.Store) *models.ConnectionResult {
	innerVariants := devices.VariantIDs(innerProduct)
	outerVariants := devices.VariantIDs(outerProduct)

	analyzed := make([]*models.PairAnalysis, 0, len(innerVariants)*len(outerVariants))
	for _, innerID := range innerVariants {
		innerDevice := devices.Get(innerID)
		if innerDevice == nil {
			continue
		}
		for _, outerID := range outerVariants {
			outerDevice := devices.Get(outerID)
			if outerDevice == nil {
				continue
			}
			pair := compat.EvaluatePair(innerDevice, outerDevice)
			analyzed = append(analyzed, chainanalyzer.AnalyzePair(pair))
		}
	}
	return chainanalyzer.RollupConnection(innerProduct, outerProduct, connType, analyzed)
}
