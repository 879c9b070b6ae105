package orchestrator

import (
	"testing"
	"time"

	"github.com/medsync-ai/orchestrator/pkg/devicestore"
	"github.com/medsync-ai/orchestrator/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestApplyClinicalFollowUp_NoPendingReturnsUnchanged(t *testing.T) {
	o := &Orchestrator{}
	st := &requestState{sess: &models.Session{}, req: models.RequestContext{RawQuery: "anything"}}

	normalized, intent, continuation := o.applyClinicalFollowUp(st, "normalized")
	assert.Equal(t, "normalized", normalized)
	assert.Empty(t, intent)
	assert.False(t, continuation)
}

func TestApplyClinicalFollowUp_TerseNumericContinuesClinical(t *testing.T) {
	o := &Orchestrator{}
	st := &requestState{
		sess: &models.Session{PendingClinicalClarification: &models.ClinicalClarification{
			ParsedPatientRecord: map[string]any{"age": 68.0},
		}},
		req: models.RequestContext{RawQuery: "4 hours"},
	}

	normalized, intent, continuation := o.applyClinicalFollowUp(st, "normalized")
	assert.True(t, continuation)
	assert.Equal(t, models.IntentClinicalSupport, intent)
	assert.Contains(t, normalized, "prior patient context")
	assert.NotNil(t, st.sess.PendingClinicalClarification)
}

func TestApplyClinicalFollowUp_UnrelatedQueryClearsPending(t *testing.T) {
	o := &Orchestrator{}
	st := &requestState{
		sess: &models.Session{PendingClinicalClarification: &models.ClinicalClarification{}},
		req:  models.RequestContext{RawQuery: "what catheters fit a Neuron MAX"},
	}

	_, _, continuation := o.applyClinicalFollowUp(st, "normalized")
	assert.False(t, continuation)
	assert.Nil(t, st.sess.PendingClinicalClarification)
}

func TestEnrichWithGuideline_AppendsContextWhenNoDeviceMentioned(t *testing.T) {
	o := &Orchestrator{}
	st := &requestState{
		sess: &models.Session{LastClinicalAssessment: &models.ClinicalAssessment{
			PreStrokeStatus: "independent",
			LastKnownWell:   time.Date(2026, 7, 29, 10, 0, 0, 0, time.UTC),
			FlaggedPathways: []string{"mechanical_thrombectomy"},
		}},
		devices: devicestore.New(),
	}

	out := o.enrichWithGuideline(st, "what is the eligibility criteria for this trial", "")
	assert.Contains(t, out, "pre_stroke_status=independent")
	assert.Contains(t, out, "flagged_pathways=mechanical_thrombectomy")
}

func TestEnrichWithGuideline_SkippedWhenDeviceMentioned(t *testing.T) {
	devices := devicestore.New()
	devices.Load([]*models.Device{{ID: "d1", ProductName: "Neuron MAX", DeviceName: "Neuron MAX"}})

	o := &Orchestrator{}
	st := &requestState{
		sess:    &models.Session{LastClinicalAssessment: &models.ClinicalAssessment{PreStrokeStatus: "independent"}},
		devices: devices,
	}

	out := o.enrichWithGuideline(st, "is Neuron MAX eligible for this trial guideline", "")
	assert.Equal(t, "is Neuron MAX eligible for this trial guideline", out)
}

func TestEnrichWithGuideline_SkippedWhenClinicalContinuation(t *testing.T) {
	o := &Orchestrator{}
	st := &requestState{sess: &models.Session{LastClinicalAssessment: &models.ClinicalAssessment{}}, devices: devicestore.New()}

	out := o.enrichWithGuideline(st, "4 hours", models.IntentClinicalSupport)
	assert.Equal(t, "4 hours", out)
}

func TestPersistClinicalState_ClarificationSetsPending(t *testing.T) {
	o := &Orchestrator{}
	st := &requestState{sess: &models.Session{}}
	out := models.EngineOutput{Status: models.StatusClarificationNeeded, PendingClinicalRecord: map[string]any{"age": 70.0}}

	o.persistClinicalState(st, models.IntentClinicalSupport, out)
	assert.NotNil(t, st.sess.PendingClinicalClarification)
	assert.Equal(t, 70.0, st.sess.PendingClinicalClarification.ParsedPatientRecord["age"])
}

func TestPersistClinicalState_CompletedAssessmentUpdatesSession(t *testing.T) {
	o := &Orchestrator{}
	st := &requestState{sess: &models.Session{PendingClinicalClarification: &models.ClinicalClarification{}}}
	assessment := &models.ClinicalAssessment{PreStrokeStatus: "independent"}
	out := models.EngineOutput{Status: models.StatusOK, Clinical: assessment}

	o.persistClinicalState(st, models.IntentClinicalSupport, out)
	assert.Nil(t, st.sess.PendingClinicalClarification)
	assert.Equal(t, assessment, st.sess.LastClinicalAssessment)
}

func TestPersistClinicalState_NonClinicalIntentIsNoop(t *testing.T) {
	o := &Orchestrator{}
	st := &requestState{sess: &models.Session{LastClinicalAssessment: &models.ClinicalAssessment{PreStrokeStatus: "x"}}}

	o.persistClinicalState(st, models.IntentGeneral, models.EngineOutput{Clinical: &models.ClinicalAssessment{PreStrokeStatus: "y"}})
	assert.Equal(t, "x", st.sess.LastClinicalAssessment.PreStrokeStatus)
}
