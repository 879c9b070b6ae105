package engines

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/medsync-ai/orchestrator/pkg/broker"
	"github.com/medsync-ai/orchestrator/pkg/eligibility"
	"github.com/medsync-ai/orchestrator/pkg/llmprovider"
	"github.com/medsync-ai/orchestrator/pkg/models"
)

// ClinicalEngine is a thin wrapper around pkg/eligibility: the rule set
// itself is data loaded at startup, never authored here (Non-goal
// "defining the clinical eligibility rule set content"). This engine only
// shapes the LLM extraction prompt, decides whether enough information was
// extracted to evaluate, and renders the result.
type ClinicalEngine struct {
	LLM          llmprovider.Provider
	Pathways     *eligibility.Registry
	ExtractModel string
	ExtractPrompt string
	SynthesisModel string
	SynthesisPrompt string
}

// NewClinicalEngine builds a ClinicalEngine bound to a loaded pathway
// registry and the two agent models/prompts its extraction and synthesis
// steps resolve through pkg/config.
func NewClinicalEngine(llm llmprovider.Provider, pathways *eligibility.Registry, extractModel, extractPrompt, synthesisModel, synthesisPrompt string) *ClinicalEngine {
	return &ClinicalEngine{
		LLM: llm, Pathways: pathways,
		ExtractModel: extractModel, ExtractPrompt: extractPrompt,
		SynthesisModel: synthesisModel, SynthesisPrompt: synthesisPrompt,
	}
}

func (e *ClinicalEngine) Run(ctx context.Context, in models.EngineInput, sess *models.Session, _ *broker.Broker) (models.EngineOutput, error) {
	messages := []llmprovider.Message{{Role: llmprovider.RoleUser, Content: in.NormalizedQuery}}
	extracted, err := e.LLM.CallJSON(ctx, e.ExtractPrompt, messages, e.ExtractModel)
	if err != nil {
		return models.EngineOutput{Status: models.StatusError, ErrorMessage: fmt.Sprintf("clinical extract: %v", err)}, nil
	}

	record := mergeRecord(priorRecord(sess), extracted.Content["patient_record"])
	pathways := stringSlice(extracted.Content["pathways"])
	ready := boolField(extracted.Content, "ready")
	usage := llmprovider.Usage{InputTokens: extracted.InputTokens, OutputTokens: extracted.OutputTokens}

	if !ready {
		question := stringField(extracted.Content, "clarifying_question")
		if question == "" {
			question = "Could you provide more detail on the patient's clinical presentation?"
		}
		return models.EngineOutput{
			Status:                models.StatusClarificationNeeded,
			Text:                  question,
			PendingClinicalRecord: record,
			InputTokens:           usage.InputTokens,
			OutputTokens:          usage.OutputTokens,
		}, nil
	}

	assessments := make([]eligibility.Assessment, 0, len(pathways))
	var flagged []string
	for _, name := range pathways {
		a, err := e.Pathways.Evaluate(name, record)
		if err != nil {
			continue // an unrecognized pathway name is an extraction miss, not a fatal error
		}
		assessments = append(assessments, a)
		if a.Eligible {
			flagged = append(flagged, name)
		}
	}

	synthMessages := []llmprovider.Message{{Role: llmprovider.RoleUser, Content: in.NormalizedQuery + "\n\n" + summarizeAssessments(assessments)}}
	synthResult, err := e.LLM.Call(ctx, e.SynthesisPrompt, synthMessages, nil, e.SynthesisModel, 1024)
	if err != nil {
		return models.EngineOutput{Status: models.StatusError, ErrorMessage: fmt.Sprintf("clinical synthesis: %v", err)}, nil
	}
	usage.InputTokens += synthResult.Usage.InputTokens
	usage.OutputTokens += synthResult.Usage.OutputTokens

	assessment := &models.ClinicalAssessment{
		PreStrokeStatus: stringField(record, "pre_stroke_status"),
		LastKnownWell:   lastKnownWell(record),
		FlaggedPathways: flagged,
		AssessedAt:      time.Now(),
	}

	return models.EngineOutput{
		Status:       models.StatusOK,
		Text:         synthResult.Content,
		Clinical:     assessment,
		InputTokens:  usage.InputTokens,
		OutputTokens: usage.OutputTokens,
	}, nil
}

// priorRecord recovers the patient-record fields gathered on an earlier,
// still-pending turn (spec.md §4.7 "Clinical follow-up detection").
func priorRecord(sess *models.Session) map[string]any {
	if sess == nil || sess.PendingClinicalClarification == nil {
		return nil
	}
	return sess.PendingClinicalClarification.ParsedPatientRecord
}

// mergeRecord layers newly extracted fields over a prior pending record;
// new values win on key collision.
func mergeRecord(prior map[string]any, next any) map[string]any {
	merged := make(map[string]any, len(prior))
	for k, v := range prior {
		merged[k] = v
	}
	if nextMap, ok := next.(map[string]any); ok {
		for k, v := range nextMap {
			merged[k] = v
		}
	}
	return merged
}

func lastKnownWell(record map[string]any) time.Time {
	if raw, ok := record["last_known_well"].(string); ok {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t
		}
	}
	if hours, ok := floatField(record, "last_known_well_hours"); ok {
		return time.Now().Add(-time.Duration(hours * float64(time.Hour)))
	}
	return time.Time{}
}

func summarizeAssessments(assessments []eligibility.Assessment) string {
	if len(assessments) == 0 {
		return "No pathway assessments were evaluated."
	}
	var sb strings.Builder
	for _, a := range assessments {
		status := "not eligible"
		if a.Eligible {
			status = "eligible"
		}
		sb.WriteString(fmt.Sprintf("Pathway %s: %s\n", a.Pathway, status))
		for _, f := range a.Findings {
			if !f.Met {
				sb.WriteString("  - unmet: " + f.Reason + "\n")
			}
		}
	}
	return sb.String()
}
