package models

// Intent is the classified purpose of one normalized query (spec.md §4.7
// routing table).
type Intent string

const (
	IntentEquipmentCompatibility Intent = "equipment_compatibility"
	IntentDeviceDiscovery        Intent = "device_discovery"
	IntentSpecificationLookup    Intent = "specification_lookup"
	IntentSpecReasoning          Intent = "spec_reasoning"
	IntentDeviceSearch           Intent = "device_search"
	IntentDeviceComparison       Intent = "device_comparison"
	IntentManufacturerLookup     Intent = "manufacturer_lookup"
	IntentFilteredDiscovery      Intent = "filtered_discovery"
	IntentDocumentation          Intent = "documentation"
	IntentKnowledgeBase          Intent = "knowledge_base"
	IntentDeviceDefinition       Intent = "device_definition"
	IntentClinicalSupport        Intent = "clinical_support"
	IntentDeepResearch           Intent = "deep_research"
	IntentGeneral                Intent = "general"
)

// EnginePath names the static dispatch target for one intent.
type EnginePath string

const (
	EngineChain     EnginePath = "chain"
	EngineDatabase  EnginePath = "database"
	EnginePlanned   EnginePath = "planned"
	EngineVector    EnginePath = "vector"
	EngineClinical  EnginePath = "clinical"
	EngineResearch  EnginePath = "research"
	EngineGeneral   EnginePath = "general"
)

// QueryMode, ResponseFraming, QueryStructure, and SubType are the four axes
// the classifier agent reports (spec.md §4.6 step 2).
type QueryMode string

const (
	ModeExploratory      QueryMode = "exploratory"
	ModeDiscovery         QueryMode = "discovery"
	ModeStackValidation   QueryMode = "stack_validation"
	ModeDirectCompat      QueryMode = "direct_compatibility"
)

type ResponseFraming string

const (
	FramingPositive ResponseFraming = "positive"
	FramingNeutral  ResponseFraming = "neutral"
	FramingNegative ResponseFraming = "negative"
)

type QueryStructure string

const (
	StructureTwoDevice    QueryStructure = "two_device"
	StructureMultiDevice  QueryStructure = "multi_device"
)

// Classification is the chain-engine classifier agent's output.
type Classification struct {
	QueryMode       QueryMode
	ResponseFraming ResponseFraming
	QueryStructure  QueryStructure
	SubType         string
	Confidence      float64
}

// ChainCandidate is one candidate chain the chain-builder agent proposes,
// before category expansion.
type ChainCandidate struct {
	Sequence         []string
	Levels           []ConicalCategory
	ContainsCategory bool
}

// ChainBuilderResult is the chain-engine builder agent's output.
type ChainBuilderResult struct {
	Chains         []ChainCandidate
	Confidence     float64
	Interpretation string
}

// Decision is the chain engine's post-analysis decision (spec.md §4.6).
type Decision string

const (
	DecisionReturnAsIs        Decision = "return_as_is"
	DecisionRunN1Subsets      Decision = "run_n1_subsets"
	DecisionFlagGentleCorrect Decision = "flag_gentle_correction"
)

// ResultType selects the chain text-synthesis narrative shape (spec.md §9).
type ResultType string

const (
	ResultCompatibilityCheck ResultType = "compatibility_check"
	ResultDeviceDiscovery    ResultType = "device_discovery"
	ResultStackValidation    ResultType = "stack_validation"
)

// EngineStatus is the engine return-contract status (spec.md §7):
// "not_errors" are surfaced through this field, never exceptions.
type EngineStatus string

const (
	StatusOK               EngineStatus = "ok"
	StatusClarificationNeeded EngineStatus = "clarification_needed"
	StatusError            EngineStatus = "error"
	StatusNotImplemented   EngineStatus = "not_implemented"
)

// EngineOutput is the typed return contract every engine produces.
type EngineOutput struct {
	Status         EngineStatus
	ResultType     ResultType
	Text           string
	Devices        []*Device
	ChainResults   []*ChainResult
	N1Analysis     []N1SubsetResult
	ErrorMessage   string
	InputTokens    int64
	OutputTokens   int64
	ClarificationDevices []string // names found
	UnresolvedSuggestions map[string][]FuzzySuggestion
	// PendingClinicalRecord and Clinical carry the clinical engine's
	// follow-up/assessment state back to the orchestrator for session
	// persistence (spec.md §4.7 "Clinical follow-up detection",
	// "Guideline enrichment"). Both are nil for every other engine.
	PendingClinicalRecord map[string]any
	Clinical              *ClinicalAssessment
}

// N1SubsetResult records one N-1 subset retry outcome (spec.md §4.6 decision
// rules, and S4 in spec.md §8).
type N1SubsetResult struct {
	ExcludedDevice string
	Result         *ChainResult
	Passed         bool
}

// FuzzySuggestion is one fuzzy-matched candidate name with a coarse ranking
// score in [0,1] (spec.md §4.3).
type FuzzySuggestion struct {
	ProductName string
	DeviceID    string
	Score       float64
	Tier        string // "edit_distance" or "sequence_ratio"
}

// PlanStep is one step of the planned-path executor (spec.md §4.7).
type PlanStep struct {
	ID        string
	Engine    EnginePath
	Action    string
	Params    map[string]any
	DependsOn []string
	StoreAs   string
}

// Plan is the ordered, dependency-annotated step set an LLM planner emits.
// OutputStepID names the step whose EngineOutput becomes the plan's overall
// result once every step has run (spec.md §4.7 "invoke the designated
// output agent").
type Plan struct {
	Steps        []PlanStep
	OutputStepID string
}

// EngineInput is what the orchestrator hands to an engine: the normalized
// query, extracted entities, and any injected category/device context.
type EngineInput struct {
	NormalizedQuery string
	FoundDevices    []*Device
	VirtualCategories map[string][]string // category name -> product names
	PlanStepOutputs map[string]any       // store_as results from prior wave(s)
	Constraints     map[string]string    // attribute filters for filtered_discovery
	SourceFilter    []string             // explicit source scope from the rewrite step, e.g. restrict vector search to a named document source
}
