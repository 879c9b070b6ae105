// Package chainanalyzer rolls up compatibility-evaluator pair results into
// connection, path, and chain verdicts, and extracts human-readable pass and
// failure reasons. It consumes only models.PairResult;
// per spec it never re-derives a verdict by inspecting sub-statuses — the
// pair's overall_status is always the single source of truth.
package chainanalyzer

import "github.com/medsync-ai/orchestrator/pkg/models"

// AnalyzePair wraps one evaluated pair with its extracted reasons and
// failure detail (spec.md §4.5 "Reason extraction").
func AnalyzePair(pair *models.PairResult) *models.PairAnalysis {
	a := &models.PairAnalysis{Pair: pair}

	a.CompatibilityReasons = collapseCompatReasons(pair.CompatRationale)
	a.GeometryReasonsDiam = collapseGeomReasons(pair.Geometry.DiameterRows)
	a.GeometryReasonsLen = collapseGeomReasons(pair.Geometry.LengthRows)
	a.Summary = summarize(pair)

	if isPassing(pair.OverallStatus) {
		a.PassReasonType, a.OverrideNote = passReason(pair)
	} else {
		a.CompatibilityFailures = compatFailures(pair.CompatRows)
		a.GeometryFailures = append(geomFailures(pair.Geometry.DiameterRows), geomFailures(pair.Geometry.LengthRows)...)
	}
	return a
}

func isPassing(s models.OverallStatus) bool {
	return s == models.OverallPass || s == models.OverallPassWithWarning
}

// passReason implements spec.md §4.5: passing pairs are "standard" unless
// the verdict came from the compat-pass-but-diameter-failed logic path
// (compat+geometry_warning), in which case it is a geometry_override with an
// explanatory note.
func passReason(pair *models.PairResult) (models.PassReasonType, string) {
	if pair.LogicType == models.LogicCompatGeometryWarning {
		return models.PassReasonGeometryOverride, "declared compatibility but diameter clearance failed; passed on manufacturer compatibility alone, flagged for review"
	}
	return models.PassReasonStandard, ""
}

// unitRank orders diameter units by preference for unit-collapse: inches
// first, then millimeters, then French (spec.md §4.5).
func unitRank(unit string) int {
	switch unit {
	case string(models.UnitInches):
		return 0
	case string(models.UnitMM):
		return 1
	case string(models.UnitFrench):
		return 2
	default:
		return 3
	}
}
