package engines

import (
	"context"
	"fmt"

	"github.com/medsync-ai/orchestrator/pkg/broker"
	"github.com/medsync-ai/orchestrator/pkg/llmprovider"
	"github.com/medsync-ai/orchestrator/pkg/models"
)

// GeneralEngine answers the default "general" intent: no catalog or
// retrieval lookup applies, so the query goes straight to the LLM with the
// normalized text as context.
type GeneralEngine struct {
	LLM    llmprovider.Provider
	Model  string
	Prompt string
}

// NewGeneralEngine builds a GeneralEngine bound to the fallback model/prompt.
func NewGeneralEngine(llm llmprovider.Provider, model, prompt string) *GeneralEngine {
	return &GeneralEngine{LLM: llm, Model: model, Prompt: prompt}
}

func (e *GeneralEngine) Run(ctx context.Context, in models.EngineInput, _ *models.Session, _ *broker.Broker) (models.EngineOutput, error) {
	messages := []llmprovider.Message{{Role: llmprovider.RoleUser, Content: in.NormalizedQuery}}
	result, err := e.LLM.Call(ctx, e.Prompt, messages, nil, e.Model, 1024)
	if err != nil {
		return models.EngineOutput{Status: models.StatusError, ErrorMessage: fmt.Sprintf("general synthesis: %v", err)}, nil
	}
	return models.EngineOutput{
		Status:       models.StatusOK,
		Text:         result.Content,
		InputTokens:  result.Usage.InputTokens,
		OutputTokens: result.Usage.OutputTokens,
	}, nil
}

// ResearchEngine is the deep_research stub spec.md §2's routing table names
// ("deep_research → research (stub)"): it always reports not_implemented
// rather than attempting a multi-source research synthesis this system
// does not build.
type ResearchEngine struct{}

// NewResearchEngine builds the stub engine.
func NewResearchEngine() *ResearchEngine {
	return &ResearchEngine{}
}

func (e *ResearchEngine) Run(_ context.Context, _ models.EngineInput, _ *models.Session, _ *broker.Broker) (models.EngineOutput, error) {
	return models.EngineOutput{
		Status:       models.StatusNotImplemented,
		Text:         "Deep research queries are not yet supported.",
		ErrorMessage: "deep research is not implemented",
	}, nil
}
