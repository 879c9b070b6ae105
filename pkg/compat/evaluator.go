package compat

import (
	"fmt"

	"github.com/medsync-ai/orchestrator/pkg/models"
)

// EvaluatePair grades one (inner, outer) device pair per spec.md §4.4: two
// parallel grading schemes reconciled into one overall verdict. Running this
// twice on the same pair yields byte-identical results; it touches no shared
// state.
func EvaluatePair(inner, outer *models.Device) *models.PairResult {
	rows := gradeCompatRows(inner, outer)
	compatStatus, rationale := reconcileCompat(rows)

	geom := gradeGeometry(inner, outer)

	overall, logicType := reconcileOverall(inner, outer, compatStatus, geom)

	return &models.PairResult{
		Inner:           inner,
		Outer:           outer,
		CompatRows:      rows,
		CompatStatus:    compatStatus,
		CompatRationale: rationale,
		Geometry:        geom,
		OverallStatus:   overall,
		LogicType:       logicType,
	}
}

// gradeCompatRows emits one row per (role × rule × spec field × unit)
// combination, both directions: inner as claimant against outer as target,
// then outer as claimant against inner as target.
func gradeCompatRows(inner, outer *models.Device) []models.CompatRow {
	var rows []models.CompatRow
	rows = append(rows, gradeRoleRows(models.RoleInnerClaimant, inner, outer)...)
	rows = append(rows, gradeRoleRows(models.RoleOuterClaimant, outer, inner)...)
	return rows
}

func gradeRoleRows(role models.Role, claimant, target *models.Device) []models.CompatRow {
	var rows []models.CompatRow
	for _, rule := range ruleTable {
		cf := compatField(claimant, rule.field)
		applicableCategory := hasAnyTag(target, rule.requiredTags)
		for _, specField := range rule.specFields {
			spec := specMeasurement(target, specField)
			for _, unit := range diameterUnits {
				row := models.CompatRow{
					Role:                role,
					ClaimantDevice:      claimant,
					TargetDevice:        target,
					Field:               rule.field,
					SpecField:           specField,
					Unit:                unit,
					Op:                  rule.op,
					ApplicableCategory:  applicableCategory,
					ApplicableSpecField: true,
				}
				if cf != nil {
					row.ClaimantValue = cf.Measurement.Value(unit)
					row.ClaimantRange = cf.Range
				}
				row.TargetValue = spec.Value(unit)
				row.Status = gradeCompatRow(row)
				row.Note = compatNote(row)
				rows = append(rows, row)
			}
		}
	}
	return rows
}

// gradeCompatRow applies spec.md §4.4.1: either applicability flag false, or
// either value null, grades NA; otherwise the numeric (or range) comparison.
func gradeCompatRow(row models.CompatRow) models.CompatStatus {
	if !row.ApplicableCategory || !row.ApplicableSpecField {
		return models.CompatNA
	}
	if row.TargetValue == nil {
		return models.CompatNA
	}
	if row.Op == models.OpEqual && row.ClaimantRange != nil {
		v := *row.TargetValue
		if v >= row.ClaimantRange.Low && v <= row.ClaimantRange.High {
			return models.CompatPass
		}
		return models.CompatFail
	}
	if row.ClaimantValue == nil {
		return models.CompatNA
	}
	switch row.Op {
	case models.OpLessOrEqual:
		if *row.TargetValue <= *row.ClaimantValue {
			return models.CompatPass
		}
		return models.CompatFail
	case models.OpGreaterOrEqual:
		if *row.TargetValue >= *row.ClaimantValue {
			return models.CompatPass
		}
		return models.CompatFail
	case models.OpEqual:
		if *row.TargetValue == *row.ClaimantValue {
			return models.CompatPass
		}
		return models.CompatFail
	default:
		return models.CompatNA
	}
}

func compatNote(row models.CompatRow) string {
	claimantVal := "NA"
	if row.ClaimantRange != nil {
		claimantVal = fmt.Sprintf("%.4f-%.4f", row.ClaimantRange.Low, row.ClaimantRange.High)
	} else if row.ClaimantValue != nil {
		claimantVal = fmt.Sprintf("%.4f", *row.ClaimantValue)
	}
	targetVal := "NA"
	if row.TargetValue != nil {
		targetVal = fmt.Sprintf("%.4f", *row.TargetValue)
	}
	return fmt.Sprintf("%s %s %s %s vs %s %s %s: %s",
		row.ClaimantDevice.DeviceName, row.Field, claimantVal,
		row.Op, row.TargetDevice.DeviceName, row.SpecField, targetVal, row.Status)
}

// reconcileCompat implements spec.md §4.4.1's verdict rule: pass if any row
// passes, else fail if any row fails, else NA. The rationale is the set of
// rows that determined the verdict.
func reconcileCompat(rows []models.CompatRow) (models.CompatStatus, []models.CompatRow) {
	var passes, fails []models.CompatRow
	for _, r := range rows {
		switch r.Status {
		case models.CompatPass:
			passes = append(passes, r)
		case models.CompatFail:
			fails = append(fails, r)
		}
	}
	if len(passes) > 0 {
		return models.CompatPass, passes
	}
	if len(fails) > 0 {
		return models.CompatFail, fails
	}
	return models.CompatNA, nil
}
