package chainengine

import "github.com/medsync-ai/orchestrator/pkg/models"

// Expansion pairs one builder-proposed abstract chain with every concrete
// product-name sequence its category positions expand to (spec.md §4.6
// step 3). The abstract chain itself is kept for reporting and for the
// nesting-level invariant it already carries; only Sequence positions that
// name a category are substituted per realization.
type Expansion struct {
	Chain            *models.Chain
	ProductSequences [][]string
}

// ExpandCategories implements step 3: for each candidate chain, substitute
// the Cartesian product of every category position's product names,
// emitting one concrete product sequence per assignment. A candidate whose
// nesting-level sequence violates the chain invariant (a malformed
// builder-proposed chain) is dropped rather than evaluated, matching
// spec.md §7's "failures surface through Status, never a panic" contract —
// there is nothing sensible to grade against an invalid nesting order.
func ExpandCategories(candidates []models.ChainCandidate, categories map[string][]string) []Expansion {
	out := make([]Expansion, 0, len(candidates))
	for _, cand := range candidates {
		exp := expandOne(cand, categories)
		if err := exp.Chain.Validate(); err != nil {
			continue
		}
		out = append(out, exp)
	}
	return out
}

type categoryPosition struct {
	index   int
	options []string
}

func expandOne(cand models.ChainCandidate, categories map[string][]string) Expansion {
	chain := &models.Chain{
		Sequence:         append([]string(nil), cand.Sequence...),
		Levels:           append([]models.ConicalCategory(nil), cand.Levels...),
		ContainsCategory: cand.ContainsCategory,
	}

	var positions []categoryPosition
	for i, name := range cand.Sequence {
		if opts, ok := categories[name]; ok && len(opts) > 0 {
			positions = append(positions, categoryPosition{index: i, options: opts})
		}
	}
	if len(positions) == 0 {
		return Expansion{Chain: chain, ProductSequences: [][]string{append([]string(nil), cand.Sequence...)}}
	}

	var sequences [][]string
	var assign func(depth int, current []string)
	assign = func(depth int, current []string) {
		if depth == len(positions) {
			sequences = append(sequences, append([]string(nil), current...))
			return
		}
		pos := positions[depth]
		for _, option := range pos.options {
			current[pos.index] = option
			assign(depth+1, current)
		}
	}
	assign(0, append([]string(nil), cand.Sequence...))

	return Expansion{Chain: chain, ProductSequences: sequences}
}
