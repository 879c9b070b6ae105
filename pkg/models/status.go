package models

// CompatStatus is the verdict of the manufacturer-compatibility grading.
type CompatStatus string

const (
	CompatPass CompatStatus = "pass"
	CompatFail CompatStatus = "fail"
	CompatNA   CompatStatus = "NA"
)

// GeomStatus is the verdict of one geometry subset (diameter or length), or
// of a single geometry row.
type GeomStatus string

const (
	GeomPass            GeomStatus = "pass"
	GeomPassWithWarning GeomStatus = "pass_with_warning"
	GeomWarning         GeomStatus = "warning"
	GeomFail            GeomStatus = "fail"
	GeomNA              GeomStatus = "NA"
)

// OverallStatus is the single reconciled verdict, the source of truth for
// all downstream consumers (spec.md §4.4.3).
type OverallStatus string

const (
	OverallPass            OverallStatus = "pass"
	OverallPassWithWarning OverallStatus = "pass_with_warning"
	OverallFail            OverallStatus = "fail"
	OverallNA              OverallStatus = "NA"
)

// LogicType records which rule produced the overall verdict.
type LogicType string

const (
	LogicMath                 LogicType = "math"
	LogicCompat                LogicType = "compat"
	LogicGeometryFallback      LogicType = "geometry_fallback"
	LogicCompatLengthFail      LogicType = "compat+length_fail"
	LogicCompatGeometryWarning LogicType = "compat+geometry_warning"
)

// PassReasonType distinguishes a standard pass from one the analyzer should
// call out as an override (spec.md §4.5).
type PassReasonType string

const (
	PassReasonStandard         PassReasonType = "standard"
	PassReasonGeometryOverride PassReasonType = "geometry_override"
)

// CompareOp is the comparison operator for one compatibility rule row.
type CompareOp string

const (
	OpLessOrEqual    CompareOp = "<="
	OpGreaterOrEqual CompareOp = ">="
	OpEqual          CompareOp = "="
)

// CompatFieldName names one recognized manufacturer-declared compatibility
// field on a device.
type CompatFieldName string

const (
	FieldMaxWireOD        CompatFieldName = "max_compatible_wire_od"
	FieldMaxCatheterOD    CompatFieldName = "max_compatible_catheter_od"
	FieldRequiredCatheterID CompatFieldName = "required_catheter_id"
	FieldMinGuideCatheterSheathID CompatFieldName = "min_guide_catheter_sheath_id"
)

// SpecFieldName names one target dimensional field a compat rule compares
// against.
type SpecFieldName string

const (
	SpecFieldInnerDiameter       SpecFieldName = "inner_diameter"
	SpecFieldOuterDiameterDistal SpecFieldName = "outer_diameter_distal"
	SpecFieldOuterDiameterProx   SpecFieldName = "outer_diameter_proximal"
)

// Role identifies which side of a pair is making the compatibility claim.
type Role string

const (
	RoleInnerClaimant Role = "inner_claimant"
	RoleOuterClaimant Role = "outer_claimant"
)

// GeomDimension names one geometric comparison.
type GeomDimension string

const (
	DimDiameterDistal GeomDimension = "diameter_distal"
	DimDiameterProx   GeomDimension = "diameter_proximal"
	DimLength         GeomDimension = "length"
)
