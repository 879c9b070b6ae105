package chainanalyzer

import (
	"fmt"

	"github.com/medsync-ai/orchestrator/pkg/models"
)

// compatReasonKey groups compat rows that differ only by unit.
type compatReasonKey struct {
	role      models.Role
	field     models.CompatFieldName
	specField models.SpecFieldName
}

// collapseCompatReasons implements spec.md §4.5's unit-preference collapse:
// group rows by (role, field, spec field), keep only the best-unit row per
// group.
func collapseCompatReasons(rows []models.CompatRow) []models.CompatReason {
	best := map[compatReasonKey]models.CompatRow{}
	for _, row := range rows {
		key := compatReasonKey{row.Role, row.Field, row.SpecField}
		existing, ok := best[key]
		if !ok || unitRank(string(row.Unit)) < unitRank(string(existing.Unit)) {
			best[key] = row
		}
	}
	reasons := make([]models.CompatReason, 0, len(best))
	for _, row := range best {
		reasons = append(reasons, models.CompatReason{
			Field:     row.Field,
			SpecField: row.SpecField,
			Unit:      row.Unit,
			Claimant:  row.ClaimantValue,
			Target:    row.TargetValue,
			Status:    row.Status,
			Text:      row.Note,
		})
	}
	return reasons
}

// collapseGeomReasons keeps the best-unit row per dimension (length rows
// have only the "cm" unit, so the group is trivially size one).
func collapseGeomReasons(rows []models.GeomRow) []models.GeomReason {
	best := map[models.GeomDimension]models.GeomRow{}
	for _, row := range rows {
		existing, ok := best[row.Dimension]
		if !ok || unitRank(row.Unit) < unitRank(existing.Unit) {
			best[row.Dimension] = row
		}
	}
	reasons := make([]models.GeomReason, 0, len(best))
	for _, row := range best {
		reasons = append(reasons, models.GeomReason{
			Dimension:  row.Dimension,
			Unit:       row.Unit,
			Difference: row.Difference,
			Status:     row.Status,
			Text:       geomReasonText(row),
		})
	}
	return reasons
}

func geomReasonText(row models.GeomRow) string {
	if row.Difference == nil {
		return fmt.Sprintf("%s: no data in %s", row.Dimension, row.Unit)
	}
	return fmt.Sprintf("%s clearance %.4f %s (threshold %.4f): %s", row.Dimension, *row.Difference, row.Unit, row.Threshold, row.Status)
}

// compatFailures builds spec.md §4.5's detailed failure records from the
// rows that graded fail.
func compatFailures(rows []models.CompatRow) []models.CompatFailure {
	var out []models.CompatFailure
	for _, row := range rows {
		if row.Status != models.CompatFail {
			continue
		}
		out = append(out, models.CompatFailure{
			Field:         row.Field,
			SpecField:     row.SpecField,
			ClaimantValue: row.ClaimantValue,
			SpecValue:     row.TargetValue,
			Reason:        row.Note,
		})
	}
	return out
}

func geomFailures(rows []models.GeomRow) []models.GeomFailure {
	var out []models.GeomFailure
	for _, row := range rows {
		if row.Status != models.GeomFail {
			continue
		}
		out = append(out, models.GeomFailure{
			Dimension:  row.Dimension,
			Difference: row.Difference,
			Reason:     geomReasonText(row),
		})
	}
	return out
}

// summarize builds the one-sentence natural-language explanation per
// spec.md §4.5's decision table, including the length-overrides-compat
// special case.
func summarize(pair *models.PairResult) string {
	switch pair.LogicType {
	case models.LogicCompatLengthFail:
		return fmt.Sprintf("%s is manufacturer-compatible with %s, but the combined length is too short to reach (fails)", pair.Inner.DeviceName, pair.Outer.DeviceName)
	case models.LogicCompatGeometryWarning:
		return fmt.Sprintf("%s is manufacturer-compatible with %s; diameter clearance is tight and should be reviewed", pair.Inner.DeviceName, pair.Outer.DeviceName)
	case models.LogicGeometryFallback:
		if pair.OverallStatus == models.OverallFail {
			return fmt.Sprintf("no declared compatibility between %s and %s, and geometric fit fails", pair.Inner.DeviceName, pair.Outer.DeviceName)
		}
		return fmt.Sprintf("no declared compatibility between %s and %s, but geometric fit passes", pair.Inner.DeviceName, pair.Outer.DeviceName)
	case models.LogicMath:
		if pair.OverallStatus == models.OverallFail {
			return fmt.Sprintf("%s does not fit inside %s by dimensional comparison", pair.Inner.DeviceName, pair.Outer.DeviceName)
		}
		return fmt.Sprintf("%s fits inside %s by dimensional comparison", pair.Inner.DeviceName, pair.Outer.DeviceName)
	case models.LogicCompat:
		if pair.CompatStatus == models.CompatFail {
			return fmt.Sprintf("%s is not manufacturer-compatible with %s", pair.Inner.DeviceName, pair.Outer.DeviceName)
		}
		return fmt.Sprintf("%s is manufacturer-compatible with %s", pair.Inner.DeviceName, pair.Outer.DeviceName)
	default:
		return fmt.Sprintf("compatibility between %s and %s is undetermined", pair.Inner.DeviceName, pair.Outer.DeviceName)
	}
}
