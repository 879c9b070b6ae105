package engines

import (
	"context"
	"fmt"

	"github.com/medsync-ai/orchestrator/pkg/broker"
	"github.com/medsync-ai/orchestrator/pkg/llmprovider"
	"github.com/medsync-ai/orchestrator/pkg/models"
	"github.com/medsync-ai/orchestrator/pkg/orchestrator"
)

// PlannedEngine implements spec.md §4.7's "Planned path": an LLM planner
// emits an ordered, dependency-annotated step set, and pkg/orchestrator's
// wave scheduler executes it against the same engine registry this engine
// is itself registered in. The registry is a map (a reference type), so the
// entrypoint can hand this engine the registry before every other engine is
// added to it without a construction-order cycle.
type PlannedEngine struct {
	LLM      llmprovider.Provider
	Registry orchestrator.Registry
	Model    string
	Prompt   string
}

// NewPlannedEngine builds a PlannedEngine bound to the shared dispatch
// registry and the planner model/prompt its one LLM call resolves through
// pkg/config.
func NewPlannedEngine(llm llmprovider.Provider, registry orchestrator.Registry, model, prompt string) *PlannedEngine {
	return &PlannedEngine{LLM: llm, Registry: registry, Model: model, Prompt: prompt}
}

func (e *PlannedEngine) Run(ctx context.Context, in models.EngineInput, sess *models.Session, b *broker.Broker) (models.EngineOutput, error) {
	plan, usage, err := e.buildPlan(ctx, in)
	if err != nil {
		return models.EngineOutput{Status: models.StatusError, ErrorMessage: fmt.Sprintf("planning: %v", err)}, nil
	}
	if len(plan.Steps) == 0 {
		return models.EngineOutput{Status: models.StatusError, ErrorMessage: "planner produced an empty step set"}, nil
	}

	out, err := orchestrator.ExecuteWaves(ctx, plan, e.Registry, in, sess, b)
	if err != nil {
		return models.EngineOutput{
			Status:       models.StatusError,
			ErrorMessage: fmt.Sprintf("wave execution: %v", err),
			InputTokens:  usage.InputTokens,
			OutputTokens: usage.OutputTokens,
		}, nil
	}
	out.InputTokens += usage.InputTokens
	out.OutputTokens += usage.OutputTokens
	return out, nil
}

// buildPlan calls the planner agent and translates its JSON-mode response
// into a models.Plan.
func (e *PlannedEngine) buildPlan(ctx context.Context, in models.EngineInput) (models.Plan, llmprovider.Usage, error) {
	messages := []llmprovider.Message{{Role: llmprovider.RoleUser, Content: in.NormalizedQuery}}
	result, err := e.LLM.CallJSON(ctx, e.Prompt, messages, e.Model)
	if err != nil {
		return models.Plan{}, llmprovider.Usage{}, err
	}
	usage := llmprovider.Usage{InputTokens: result.InputTokens, OutputTokens: result.OutputTokens}

	rawSteps, _ := result.Content["steps"].([]any)
	steps := make([]models.PlanStep, 0, len(rawSteps))
	for _, raw := range rawSteps {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		params, _ := m["params"].(map[string]any)
		steps = append(steps, models.PlanStep{
			ID:        stringField(m, "id"),
			Engine:    models.EnginePath(stringField(m, "engine")),
			Action:    stringField(m, "action"),
			Params:    params,
			DependsOn: stringSlice(m["depends_on"]),
			StoreAs:   stringField(m, "store_as"),
		})
	}

	return models.Plan{Steps: steps, OutputStepID: stringField(result.Content, "output_step_id")}, usage, nil
}
