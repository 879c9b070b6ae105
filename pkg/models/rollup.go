package models

// CompatReason is a unit-collapsed, human-readable compatibility row used
// for both pass rationale and failure detail (spec.md §4.5).
type CompatReason struct {
	Field     CompatFieldName
	SpecField SpecFieldName
	Unit      DiameterUnit
	Claimant  *float64
	Target    *float64
	Status    CompatStatus
	Text      string
}

// GeomReason is a unit-collapsed geometric row used for pass/fail detail.
type GeomReason struct {
	Dimension  GeomDimension
	Unit       string
	Difference *float64
	Status     GeomStatus
	Text       string
}

// CompatFailure is a detailed failure record for a failing compatibility row.
type CompatFailure struct {
	Field         CompatFieldName
	SpecField     SpecFieldName
	ClaimantValue *float64
	SpecValue     *float64
	Reason        string
}

// GeomFailure is a detailed failure record for a failing geometry row.
type GeomFailure struct {
	Dimension  GeomDimension
	Difference *float64
	Reason     string
}

// PairAnalysis is the analyzer's per-pair output layered on top of
// PairResult: reasons, failures, and the pass classification (spec.md §4.5).
type PairAnalysis struct {
	Pair *PairResult

	CompatibilityReasons []CompatReason
	GeometryReasonsDiam  []GeomReason
	GeometryReasonsLen   []GeomReason
	Summary              string

	PassReasonType PassReasonType
	OverrideNote   string

	CompatibilityFailures []CompatFailure
	GeometryFailures      []GeomFailure
}

// ProductCombinationResult rolls up every variant pair for one
// (inner_product, outer_product) combination.
type ProductCombinationResult struct {
	InnerProduct    string
	OuterProduct    string
	Pairs           []*PairAnalysis
	TotalVariants   int
	PassingVariants int
	FailingVariants int
	Passed          bool
}

// ConnectionResult rolls up one adjacent pair of positions in a path.
type ConnectionResult struct {
	InnerProduct string
	OuterProduct string
	Type         ConnectionType
	Combinations []*ProductCombinationResult
	Passed       bool
}

// PathResult is one ordering of products realized from a chain.
type PathResult struct {
	Products    []string
	Connections []*ConnectionResult
	Passed      bool
}

// ChainResult is one abstract chain and all of its realized paths.
type ChainResult struct {
	Chain  *Chain
	Paths  []*PathResult
	Passed bool
}
