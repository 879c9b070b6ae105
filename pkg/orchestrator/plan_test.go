package orchestrator

import (
	"context"
	"testing"

	"github.com/medsync-ai/orchestrator/pkg/broker"
	"github.com/medsync-ai/orchestrator/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	text      string
	inTokens  int64
	outTokens int64
	err       error
	// sawDeps records, for assertion, the PlanStepOutputs keys visible when
	// this engine ran.
	sawDeps *[]string
}

func (e *fakeEngine) Run(ctx context.Context, in models.EngineInput, sess *models.Session, b *broker.Broker) (models.EngineOutput, error) {
	if e.err != nil {
		return models.EngineOutput{}, e.err
	}
	if e.sawDeps != nil {
		for k := range in.PlanStepOutputs {
			*e.sawDeps = append(*e.sawDeps, k)
		}
	}
	return models.EngineOutput{Status: models.StatusOK, Text: e.text, InputTokens: e.inTokens, OutputTokens: e.outTokens}, nil
}

func TestExecuteWaves_RunsDependentStepAfterDependency(t *testing.T) {
	var seenByS2 []string
	registry := Registry{
		models.EngineDatabase: &fakeEngine{text: "filtered devices", inTokens: 10, outTokens: 5},
		models.EngineChain:    &fakeEngine{text: "compat result", inTokens: 20, outTokens: 8, sawDeps: &seenByS2},
	}
	plan := models.Plan{
		OutputStepID: "s2",
		Steps: []models.PlanStep{
			{ID: "s1", Engine: models.EngineDatabase, StoreAs: "s1"},
			{ID: "s2", Engine: models.EngineChain, StoreAs: "s2", DependsOn: []string{"s1"}},
		},
	}

	out, err := ExecuteWaves(context.Background(), plan, registry, models.EngineInput{}, &models.Session{}, broker.New())
	require.NoError(t, err)
	assert.Equal(t, "compat result", out.Text)
	assert.Equal(t, int64(30), out.InputTokens)
	assert.Equal(t, int64(13), out.OutputTokens)
	assert.Contains(t, seenByS2, "s1")
}

func TestExecuteWaves_IndependentStepsRunConcurrently(t *testing.T) {
	registry := Registry{
		models.EngineDatabase: &fakeEngine{text: "a"},
		models.EngineVector:   &fakeEngine{text: "b"},
	}
	plan := models.Plan{
		OutputStepID: "s1",
		Steps: []models.PlanStep{
			{ID: "s1", Engine: models.EngineDatabase, StoreAs: "s1"},
			{ID: "s2", Engine: models.EngineVector, StoreAs: "s2"},
		},
	}

	out, err := ExecuteWaves(context.Background(), plan, registry, models.EngineInput{}, &models.Session{}, broker.New())
	require.NoError(t, err)
	assert.Equal(t, "a", out.Text)
}

func TestExecuteWaves_UnsatisfiableDependencyFallsBackToSerial(t *testing.T) {
	registry := Registry{
		models.EngineDatabase: &fakeEngine{text: "db"},
		models.EngineChain:    &fakeEngine{text: "chain"},
	}
	plan := models.Plan{
		OutputStepID: "s2",
		Steps: []models.PlanStep{
			// s1 depends on a step id that does not exist in the plan at all.
			{ID: "s1", Engine: models.EngineDatabase, StoreAs: "s1", DependsOn: []string{"ghost"}},
			{ID: "s2", Engine: models.EngineChain, StoreAs: "s2", DependsOn: []string{"s1"}},
		},
	}

	out, err := ExecuteWaves(context.Background(), plan, registry, models.EngineInput{}, &models.Session{}, broker.New())
	require.NoError(t, err)
	assert.Equal(t, "chain", out.Text)
}

func TestExecuteWaves_UnknownEnginePathReturnsError(t *testing.T) {
	registry := Registry{}
	plan := models.Plan{
		OutputStepID: "s1",
		Steps:        []models.PlanStep{{ID: "s1", Engine: models.EngineDatabase, StoreAs: "s1"}},
	}

	_, err := ExecuteWaves(context.Background(), plan, registry, models.EngineInput{}, &models.Session{}, broker.New())
	assert.Error(t, err)
}
