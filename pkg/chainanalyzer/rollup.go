package chainanalyzer

import "github.com/medsync-ai/orchestrator/pkg/models"

// combinationKey groups variant pairs by product name, the rollup key named
// in spec.md §3.
type combinationKey struct {
	inner, outer string
}

// RollupConnection groups all analyzed variant pairs at one adjacent
// position into per-product-combination results, then the connection
// verdict (spec.md §4.5 "Connection rollup"): a combination passes iff any
// variant pair passes; the connection passes iff every combination passes.
func RollupConnection(innerProduct, outerProduct string, connType models.ConnectionType, pairs []*models.PairAnalysis) *models.ConnectionResult {
	grouped := map[combinationKey][]*models.PairAnalysis{}
	var order []combinationKey
	for _, p := range pairs {
		key := combinationKey{p.Pair.Inner.ProductName, p.Pair.Outer.ProductName}
		if _, seen := grouped[key]; !seen {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], p)
	}

	conn := &models.ConnectionResult{InnerProduct: innerProduct, OuterProduct: outerProduct, Type: connType, Passed: true}
	for _, key := range order {
		variantPairs := grouped[key]
		combo := &models.ProductCombinationResult{
			InnerProduct:  key.inner,
			OuterProduct:  key.outer,
			Pairs:         variantPairs,
			TotalVariants: len(variantPairs),
		}
		for _, p := range variantPairs {
			if isPassing(p.Pair.OverallStatus) {
				combo.PassingVariants++
			} else {
				combo.FailingVariants++
			}
		}
		combo.Passed = combo.PassingVariants > 0
		if !combo.Passed {
			conn.Passed = false
		}
		conn.Combinations = append(conn.Combinations, combo)
	}
	return conn
}

// RollupPath implements spec.md §4.5: a path passes iff every connection
// passes.
func RollupPath(products []string, connections []*models.ConnectionResult) *models.PathResult {
	path := &models.PathResult{Products: products, Connections: connections, Passed: true}
	for _, c := range connections {
		if !c.Passed {
			path.Passed = false
			break
		}
	}
	return path
}

// RollupChain implements spec.md §4.5: a chain passes iff at least one path
// passes.
func RollupChain(chain *models.Chain, paths []*models.PathResult) *models.ChainResult {
	result := &models.ChainResult{Chain: chain, Paths: paths}
	for _, p := range paths {
		if p.Passed {
			result.Passed = true
			break
		}
	}
	return result
}

// FindPairByKey linear-scans analyzed pairs for the one matching a given
// (inner_id, outer_id) variant key. Acceptable given the catalog is
// request-sized, not global-sized; a hash index would be equivalent but
// isn't required at this scale.
func FindPairByKey(pairs []*models.PairAnalysis, innerID, outerID string) *models.PairAnalysis {
	for _, p := range pairs {
		if p.Pair.Inner.ID == innerID && p.Pair.Outer.ID == outerID {
			return p
		}
	}
	return nil
}
