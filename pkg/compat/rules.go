// Package compat implements the pure compatibility evaluator: given one
// (inner, outer) device pair it grades manufacturer-declared compatibility
// and geometric fit, then reconciles both into one overall verdict. No I/O,
// no logging — every function here is a pure transform of its arguments.
package compat

import "github.com/medsync-ai/orchestrator/pkg/models"

// compatRule describes one recognized manufacturer-declared compatibility
// field: which target spec field(s) it is checked against, the comparison
// operator, and which target logic-category tags make the rule applicable.
type compatRule struct {
	field        models.CompatFieldName
	specFields   []models.SpecFieldName
	op           models.CompareOp
	requiredTags []string
}

// ruleTable is the static cross-product of recognized compat fields (spec.md
// §4.4.1). A claimant's max-OD fields are checked against both the target's
// distal and proximal OD; the ID fields are checked against the target's
// inner diameter only.
var ruleTable = []compatRule{
	{
		field:        models.FieldMaxWireOD,
		specFields:   []models.SpecFieldName{models.SpecFieldOuterDiameterDistal, models.SpecFieldOuterDiameterProx},
		op:           models.OpLessOrEqual,
		requiredTags: []string{"wire"},
	},
	{
		field:        models.FieldMaxCatheterOD,
		specFields:   []models.SpecFieldName{models.SpecFieldOuterDiameterDistal, models.SpecFieldOuterDiameterProx},
		op:           models.OpLessOrEqual,
		requiredTags: []string{"catheter", "microcatheter"},
	},
	{
		field:        models.FieldRequiredCatheterID,
		specFields:   []models.SpecFieldName{models.SpecFieldInnerDiameter},
		op:           models.OpEqual,
		requiredTags: []string{"catheter", "microcatheter"},
	},
	{
		field:        models.FieldMinGuideCatheterSheathID,
		specFields:   []models.SpecFieldName{models.SpecFieldInnerDiameter},
		op:           models.OpGreaterOrEqual,
		requiredTags: []string{"guide", "sheath", "catheter"},
	},
}

var diameterUnits = []models.DiameterUnit{models.UnitInches, models.UnitMM, models.UnitFrench}

// diameterThreshold is the per-unit pass threshold for outer-minus-inner
// diameter clearance (spec.md §4.4.2).
var diameterThreshold = map[models.DiameterUnit]float64{
	models.UnitInches: 0.003,
	models.UnitMM:     0.0762,
	models.UnitFrench: 0.23091,
}

// lengthThresholdCM is the pass threshold for inner-minus-outer length
// clearance, in centimeters.
const lengthThresholdCM = 5.0

// compatField reads the claimant field named by a rule off a device.
func compatField(d *models.Device, field models.CompatFieldName) *models.CompatField {
	switch field {
	case models.FieldMaxWireOD:
		return d.Dimensions.MaxCompatibleWireOD
	case models.FieldMaxCatheterOD:
		return d.Dimensions.MaxCompatibleCatheterOD
	case models.FieldRequiredCatheterID:
		return d.Dimensions.RequiredCatheterID
	case models.FieldMinGuideCatheterSheathID:
		return d.Dimensions.MinGuideCatheterSheathID
	default:
		return nil
	}
}

// specMeasurement reads the target spec field named by a rule off a device.
func specMeasurement(d *models.Device, field models.SpecFieldName) models.Measurement {
	switch field {
	case models.SpecFieldInnerDiameter:
		return d.Dimensions.InnerDiameter
	case models.SpecFieldOuterDiameterDistal:
		return d.Dimensions.OuterDiameterDistal
	case models.SpecFieldOuterDiameterProx:
		return d.Dimensions.OuterDiameterProx
	default:
		return models.Measurement{}
	}
}

// hasAnyTag reports whether d carries at least one of tags in its
// logic-category set.
func hasAnyTag(d *models.Device, tags []string) bool {
	for _, t := range tags {
		if d.HasCategory(t) {
			return true
		}
	}
	return false
}
