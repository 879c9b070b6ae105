package models

import "fmt"

// Chain is an ordered sequence of product names, distal to proximal, paired
// with a parallel sequence of conical-category labels.
type Chain struct {
	Sequence         []string
	Levels           []ConicalCategory
	ContainsCategory bool
}

// Validate enforces the chain invariants from spec.md §3: sequence length
// equals level-label sequence length, and at each adjacent position
// level[i] >= level[i+1] (the more distal device at position i nests
// inside the more proximal device at position i+1).
func (c *Chain) Validate() error {
	if len(c.Sequence) != len(c.Levels) {
		return fmt.Errorf("chain: sequence length %d != levels length %d", len(c.Sequence), len(c.Levels))
	}
	for i := 0; i+1 < len(c.Levels); i++ {
		if c.Levels[i].Rank() < 0 || c.Levels[i+1].Rank() < 0 {
			continue // unresolved category reference, checked post-expansion
		}
		if c.Levels[i].Rank() < c.Levels[i+1].Rank() {
			return fmt.Errorf("chain: level[%d]=%s must be >= level[%d]=%s", i, c.Levels[i], i+1, c.Levels[i+1])
		}
	}
	return nil
}

// ConnectionType labels one adjacent pair of positions.
type ConnectionType string

const (
	ConnectionIntraLevel ConnectionType = "intra_level"
	ConnectionInterLevel ConnectionType = "inter_level"
)

// ConnectionTypeOf returns the connection type for the adjacent pair of
// levels at positions i, i+1 in a chain.
func ConnectionTypeOf(levels []ConicalCategory, i int) ConnectionType {
	if levels[i] == levels[i+1] {
		return ConnectionIntraLevel
	}
	return ConnectionInterLevel
}
