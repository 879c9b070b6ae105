package compat

import (
	"github.com/medsync-ai/orchestrator/pkg/models"
)

// gradeGeometry implements spec.md §4.4.2: diameter rows (the inner device's
// distal and proximal outer diameter each against the outer device's inner
// diameter, each in three units) and one length row, graded against
// dimension-specific thresholds then partitioned into a diameter sub-verdict
// and a length sub-verdict.
func gradeGeometry(inner, outer *models.Device) models.GeometryVerdict {
	var diamRows []models.GeomRow
	diamRows = append(diamRows, gradeDiameterRows(models.DimDiameterDistal, inner.Dimensions.OuterDiameterDistal, outer.Dimensions.InnerDiameter)...)
	diamRows = append(diamRows, gradeDiameterRows(models.DimDiameterProx, inner.Dimensions.OuterDiameterProx, outer.Dimensions.InnerDiameter)...)

	lengthRows := []models.GeomRow{gradeLengthRow(inner.Dimensions.LengthCM, outer.Dimensions.LengthCM)}

	diamStatus := subsetVerdict(diamRows, true)
	lengthStatus := subsetVerdict(lengthRows, false)

	return models.GeometryVerdict{
		DiameterRows:   diamRows,
		LengthRows:     lengthRows,
		DiameterStatus: diamStatus,
		LengthStatus:   lengthStatus,
		Overall:        combineGeometry(diamStatus, lengthStatus),
	}
}

func gradeDiameterRows(dim models.GeomDimension, innerM, outerM models.Measurement) []models.GeomRow {
	rows := make([]models.GeomRow, 0, len(diameterUnits))
	for _, unit := range diameterUnits {
		iv := innerM.Value(unit)
		ov := outerM.Value(unit)
		row := models.GeomRow{Dimension: dim, Unit: string(unit), InnerValue: iv, OuterValue: ov, Threshold: diameterThreshold[unit]}
		if iv == nil || ov == nil {
			row.Status = models.GeomNA
			rows = append(rows, row)
			continue
		}
		diff := *ov - *iv
		row.Difference = &diff
		row.Status = gradeAgainstThreshold(diff, diameterThreshold[unit])
		rows = append(rows, row)
	}
	return rows
}

func gradeLengthRow(innerLen, outerLen *float64) models.GeomRow {
	row := models.GeomRow{Dimension: models.DimLength, Unit: "cm", InnerValue: innerLen, OuterValue: outerLen, Threshold: lengthThresholdCM}
	if innerLen == nil || outerLen == nil {
		row.Status = models.GeomNA
		return row
	}
	diff := *innerLen - *outerLen
	row.Difference = &diff
	row.Status = gradeAgainstThreshold(diff, lengthThresholdCM)
	return row
}

// gradeAgainstThreshold implements spec.md §4.4.2's boundary rule: pass at
// difference >= threshold (not warning); fail at difference <= 0 (not
// warning); warning strictly between.
func gradeAgainstThreshold(diff, threshold float64) models.GeomStatus {
	switch {
	case diff >= threshold:
		return models.GeomPass
	case diff <= 0:
		return models.GeomFail
	default:
		return models.GeomWarning
	}
}

// subsetVerdict implements spec.md §4.4.2's partition rule, including the
// diameter-specific "not enough data" tie-break. diamTieBreak is true only
// for the diameter subset.
func subsetVerdict(rows []models.GeomRow, diamTieBreak bool) models.GeomStatus {
	var nPass, nWarn, nFail, nNA int
	for _, r := range rows {
		switch r.Status {
		case models.GeomPass:
			nPass++
		case models.GeomWarning:
			nWarn++
		case models.GeomFail:
			nFail++
		case models.GeomNA:
			nNA++
		}
	}
	if nFail > 0 {
		return models.GeomFail
	}
	var verdict models.GeomStatus
	switch {
	case nPass > 0:
		if nWarn > 0 {
			verdict = models.GeomPassWithWarning
		} else {
			verdict = models.GeomPass
		}
	case nWarn > 0:
		verdict = models.GeomWarning
	case nNA == len(rows):
		verdict = models.GeomNA
	default:
		verdict = models.GeomNA
	}
	if diamTieBreak && nFail == 0 && nPass < 2 && (nPass+nWarn) < 2 && nNA == len(rows) {
		return models.GeomNA
	}
	return verdict
}

// combineGeometry implements spec.md §4.4.2's final combination step.
func combineGeometry(diam, length models.GeomStatus) models.GeomStatus {
	if diam == models.GeomFail || length == models.GeomFail {
		return models.GeomFail
	}
	if diam == models.GeomNA && length == models.GeomNA {
		return models.GeomNA
	}
	if containsWarning(diam) || containsWarning(length) {
		return models.GeomPassWithWarning
	}
	if diam == models.GeomPass || length == models.GeomPass {
		return models.GeomPass
	}
	return models.GeomNA
}

func containsWarning(s models.GeomStatus) bool {
	return s == models.GeomWarning || s == models.GeomPassWithWarning
}

// reconcileOverall implements spec.md §4.4.3's decision table.
func reconcileOverall(inner, outer *models.Device, compat models.CompatStatus, geom models.GeometryVerdict) (models.OverallStatus, models.LogicType) {
	if inner.FitLogic == models.FitLogicMath && outer.FitLogic == models.FitLogicMath {
		switch geom.Overall {
		case models.GeomPass:
			return models.OverallPass, models.LogicMath
		case models.GeomPassWithWarning:
			return models.OverallPassWithWarning, models.LogicMath
		default:
			return models.OverallFail, models.LogicMath
		}
	}

	switch compat {
	case models.CompatFail:
		return models.OverallFail, models.LogicCompat
	case models.CompatNA:
		if geom.DiameterStatus == models.GeomPass && geom.LengthStatus == models.GeomPass {
			return models.OverallPass, models.LogicGeometryFallback
		}
		if fallbackBothContainPass(geom) {
			return models.OverallPassWithWarning, models.LogicGeometryFallback
		}
		return models.OverallFail, models.LogicGeometryFallback
	case models.CompatPass:
		if geom.LengthStatus == models.GeomFail {
			return models.OverallFail, models.LogicCompatLengthFail
		}
		if geom.DiameterStatus == models.GeomFail {
			return models.OverallPassWithWarning, models.LogicCompatGeometryWarning
		}
		if containsWarning(geom.DiameterStatus) || containsWarning(geom.LengthStatus) {
			return models.OverallPassWithWarning, models.LogicCompat
		}
		return models.OverallPass, models.LogicCompat
	default:
		return models.OverallNA, models.LogicGeometryFallback
	}
}

// fallbackBothContainPass implements the geometry-fallback row of spec.md
// §4.4.3's table literally: "pass or pass_with_warning iff both diameter and
// length contain pass". containsPass treats pass_with_warning as containing
// pass (it was built from a pass row plus a warning row).
func fallbackBothContainPass(geom models.GeometryVerdict) bool {
	return containsPass(geom.DiameterStatus) && containsPass(geom.LengthStatus)
}

func containsPass(s models.GeomStatus) bool {
	return s == models.GeomPass || s == models.GeomPassWithWarning
}
