package engines

import (
	"context"
	"testing"
	"time"

	"github.com/medsync-ai/orchestrator/pkg/eligibility"
	"github.com/medsync-ai/orchestrator/pkg/llmprovider"
	"github.com/medsync-ai/orchestrator/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJSONProvider struct {
	content map[string]any
	usage   llmprovider.Usage
}

func (p *fakeJSONProvider) Call(ctx context.Context, system string, messages []llmprovider.Message, tools []llmprovider.Tool, model string, maxTokens int) (llmprovider.CallResult, error) {
	return llmprovider.CallResult{}, nil
}

func (p *fakeJSONProvider) CallJSON(ctx context.Context, system string, messages []llmprovider.Message, model string) (llmprovider.JSONResult, error) {
	return llmprovider.JSONResult{Content: p.content, InputTokens: p.usage.InputTokens, OutputTokens: p.usage.OutputTokens}, nil
}

func (p *fakeJSONProvider) CallStream(ctx context.Context, system string, messages []llmprovider.Message, model string, maxTokens int) (<-chan llmprovider.StreamChunk, <-chan error) {
	chunks := make(chan llmprovider.StreamChunk)
	errs := make(chan error)
	close(chunks)
	close(errs)
	return chunks, errs
}

func testPathways() *eligibility.Registry {
	return eligibility.NewRegistry(eligibility.RuleSet{Pathways: []eligibility.Pathway{
		{Name: "mechanical_thrombectomy", Criteria: []eligibility.Criterion{
			{Field: "age", Operator: eligibility.OpGTE, Value: 18.0, Reason: "age threshold"},
		}},
	}})
}

func TestMergeRecord_NewValuesWinOnCollision(t *testing.T) {
	merged := mergeRecord(map[string]any{"age": 50.0, "pre_stroke_status": "independent"}, map[string]any{"age": 72.0})
	assert.Equal(t, 72.0, merged["age"])
	assert.Equal(t, "independent", merged["pre_stroke_status"])
}

func TestLastKnownWell_FromHoursAgo(t *testing.T) {
	got := lastKnownWell(map[string]any{"last_known_well_hours": 4.0})
	assert.WithinDuration(t, time.Now().Add(-4*time.Hour), got, time.Second)
}

func TestLastKnownWell_MissingReturnsZero(t *testing.T) {
	assert.True(t, lastKnownWell(map[string]any{}).IsZero())
}

func TestClinicalEngine_Run_NotReadyReturnsClarificationWithPendingRecord(t *testing.T) {
	llm := &fakeJSONProvider{content: map[string]any{
		"ready":               false,
		"clarifying_question": "How many hours since the patient was last known well?",
		"patient_record":      map[string]any{"age": 72.0},
	}}
	engine := NewClinicalEngine(llm, testPathways(), "model", "prompt", "model", "prompt")

	out, err := engine.Run(context.Background(), models.EngineInput{NormalizedQuery: "72yo stroke patient"}, &models.Session{}, nil)

	require.NoError(t, err)
	assert.Equal(t, models.StatusClarificationNeeded, out.Status)
	assert.Contains(t, out.Text, "hours")
	assert.Equal(t, 72.0, out.PendingClinicalRecord["age"])
}

func TestClinicalEngine_Run_ReadyEvaluatesPathwaysAndSynthesizes(t *testing.T) {
	llm := &fakeJSONProvider{content: map[string]any{
		"ready":          true,
		"pathways":       []any{"mechanical_thrombectomy"},
		"patient_record": map[string]any{"age": 72.0, "pre_stroke_status": "independent"},
	}}
	engine := NewClinicalEngine(llm, testPathways(), "model", "prompt", "model", "prompt")
	sess := &models.Session{}

	out, err := engine.Run(context.Background(), models.EngineInput{NormalizedQuery: "is this patient eligible"}, sess, nil)

	require.NoError(t, err)
	assert.Equal(t, models.StatusOK, out.Status)
	require.NotNil(t, out.Clinical)
	assert.Contains(t, out.Clinical.FlaggedPathways, "mechanical_thrombectomy")
	assert.Equal(t, "independent", out.Clinical.PreStrokeStatus)
}

func TestClinicalEngine_Run_MergesPriorPendingRecord(t *testing.T) {
	llm := &fakeJSONProvider{content: map[string]any{
		"ready":          true,
		"pathways":       []any{"mechanical_thrombectomy"},
		"patient_record": map[string]any{}, // this turn adds nothing new
	}}
	engine := NewClinicalEngine(llm, testPathways(), "model", "prompt", "model", "prompt")
	sess := &models.Session{PendingClinicalClarification: &models.ClinicalClarification{ParsedPatientRecord: map[string]any{"age": 72.0}}}

	out, err := engine.Run(context.Background(), models.EngineInput{NormalizedQuery: "4 hours"}, sess, nil)

	require.NoError(t, err)
	assert.Equal(t, models.StatusOK, out.Status)
	require.NotNil(t, out.Clinical)
	assert.Contains(t, out.Clinical.FlaggedPathways, "mechanical_thrombectomy")
}
