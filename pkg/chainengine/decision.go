package chainengine

import (
	"context"

	"github.com/medsync-ai/orchestrator/pkg/chainanalyzer"
	"github.com/medsync-ai/orchestrator/pkg/devicestore"
	"github.com/medsync-ai/orchestrator/pkg/models"
)

// Decide applies spec.md §4.6's decision table to the full set of evaluated
// chains.
func Decide(classification models.Classification, results []*models.ChainResult) models.Decision {
	if len(results) == 0 {
		return models.DecisionReturnAsIs
	}

	allPass, allFail := true, true
	for _, r := range results {
		if r.Passed {
			allFail = false
		} else {
			allPass = false
		}
	}

	switch {
	case allPass:
		return models.DecisionReturnAsIs
	case allFail && classification.QueryStructure == models.StructureMultiDevice && isExploratoryFamily(classification.QueryMode):
		return models.DecisionRunN1Subsets
	case allFail && classification.QueryStructure == models.StructureTwoDevice && classification.ResponseFraming == models.FramingPositive:
		return models.DecisionFlagGentleCorrect
	default:
		return models.DecisionReturnAsIs
	}
}

func isExploratoryFamily(mode models.QueryMode) bool {
	return mode == models.ModeExploratory || mode == models.ModeDiscovery || mode == models.ModeStackValidation
}

// RunN1Subsets implements spec.md §4.6 step 7's retry: for every concrete
// product sequence, repeat pair generation, evaluation, and analysis (steps
// 4-6) once per excluded device. Partial pair failures within a subset are
// not retried further; each subset stands on its own evaluation. The three
// loops run sequentially, in input order, so the returned slice is ordered
// by (expansion, sequence, excludeIdx) the same way every time the same
// input is evaluated, matching spec.md §8's reproducibility invariant.
func RunN1Subsets(ctx context.Context, expansions []Expansion, devices *devicestore.Store) ([]models.N1SubsetResult, error) {
	var results []models.N1SubsetResult

	for _, exp := range expansions {
		for _, seq := range exp.ProductSequences {
			for excludeIdx := range seq {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				reducedProducts, reducedLevels := removeAt(seq, exp.Chain.Levels, excludeIdx)
				if len(reducedProducts) < 2 {
					continue
				}
				path := evaluatePath(reducedProducts, reducedLevels, devices)
				chainResult := chainanalyzer.RollupChain(exp.Chain, []*models.PathResult{path})

				results = append(results, models.N1SubsetResult{
					ExcludedDevice: seq[excludeIdx],
					Result:         chainResult,
					Passed:         path.Passed,
				})
			}
		}
	}
	return results, nil
}

// removeAt returns the product sequence and level sequence with the entry
// at idx removed, preserving relative order.
func removeAt(products []string, levels []models.ConicalCategory, idx int) ([]string, []models.ConicalCategory) {
	outProducts := make([]string, 0, len(products)-1)
	outProducts = append(outProducts, products[:idx]...)
	outProducts = append(outProducts, products[idx+1:]...)

	var outLevels []models.ConicalCategory
	if len(levels) == len(products) {
		outLevels = make([]models.ConicalCategory, 0, len(levels)-1)
		outLevels = append(outLevels, levels[:idx]...)
		outLevels = append(outLevels, levels[idx+1:]...)
	}
	return outProducts, outLevels
}
