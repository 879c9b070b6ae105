package orchestrator

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/medsync-ai/orchestrator/pkg/models"
)

// clinicalKeywords are the heuristic continuation markers spec.md §4.7
// names ("clinical keywords or terse numeric patterns"). The clinical rule
// content itself is out of scope (Non-goal); this is only a conversational
// continuity heuristic, not a medical judgment.
var clinicalKeywords = []string{
	"yes", "no", "hour", "hours", "lkw", "last known well", "nihss",
	"stroke", "thrombectomy", "tpa", "contraindication",
}

var terseNumericPattern = regexp.MustCompile(`^\s*\d{1,3}(\.\d+)?\s*(hours?|hrs?|h)?\s*\.?\s*$`)

// applyClinicalFollowUp implements spec.md §4.7's "Clinical follow-up
// detection". If the session has a pending clarification and the current
// turn looks like a continuation, it merges the earlier parsed patient
// record into the normalized query and forces intent to clinical_support.
// Otherwise it clears the pending marker.
func (o *Orchestrator) applyClinicalFollowUp(st *requestState, normalized string) (string, models.Intent, bool) {
	pending := st.sess.PendingClinicalClarification
	if pending == nil {
		return normalized, "", false
	}

	if !looksLikeClinicalContinuation(st.req.RawQuery) {
		st.sess.PendingClinicalClarification = nil
		return normalized, "", false
	}

	record, _ := json.Marshal(pending.ParsedPatientRecord)
	merged := normalized + " [prior patient context: " + string(record) + "]"
	return merged, models.IntentClinicalSupport, true
}

func looksLikeClinicalContinuation(raw string) bool {
	lower := strings.ToLower(strings.TrimSpace(raw))
	if terseNumericPattern.MatchString(lower) {
		return true
	}
	for _, kw := range clinicalKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// enrichWithGuideline implements spec.md §4.7's "Guideline enrichment": if a
// prior turn produced a last_clinical_assessment and the current turn asks
// a guideline/trial question without new patient data or device
// references, append a compact bracketed context summary.
func (o *Orchestrator) enrichWithGuideline(st *requestState, normalized string, forcedIntent models.Intent) string {
	if forcedIntent == models.IntentClinicalSupport {
		return normalized // already a clinical continuation, not a guideline-only question
	}
	assessment := st.sess.LastClinicalAssessment
	if assessment == nil || !looksLikeGuidelineQuestion(normalized) {
		return normalized
	}
	if len(st.devices.Search(normalized)) > 0 {
		return normalized // mentions a device; let normal routing handle it
	}

	context := "[pre_stroke_status=" + assessment.PreStrokeStatus
	if !assessment.LastKnownWell.IsZero() {
		context += ", lkw=" + assessment.LastKnownWell.Format("2006-01-02T15:04")
	}
	if len(assessment.FlaggedPathways) > 0 {
		context += ", flagged_pathways=" + strings.Join(assessment.FlaggedPathways, "|")
	}
	context += "]"
	return normalized + " " + context
}

var guidelineKeywords = []string{"guideline", "trial", "eligib", "pathway", "criteria"}

func looksLikeGuidelineQuestion(normalized string) bool {
	lower := strings.ToLower(normalized)
	for _, kw := range guidelineKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// persistClinicalState updates the session's pending-clarification and
// last-assessment markers from a clinical engine's output, consumed by the
// next turn's applyClinicalFollowUp/enrichWithGuideline.
func (o *Orchestrator) persistClinicalState(st *requestState, intent models.Intent, out models.EngineOutput) {
	if intent != models.IntentClinicalSupport {
		return
	}
	if out.Status == models.StatusClarificationNeeded {
		st.sess.PendingClinicalClarification = &models.ClinicalClarification{
			ParsedPatientRecord: out.PendingClinicalRecord,
			AskedAt:             time.Now(),
		}
		return
	}
	st.sess.PendingClinicalClarification = nil
	if out.Clinical != nil {
		st.sess.LastClinicalAssessment = out.Clinical
	}
}
