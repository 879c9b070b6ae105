package engines

import (
	"context"
	"fmt"
	"strings"

	"github.com/medsync-ai/orchestrator/pkg/broker"
	"github.com/medsync-ai/orchestrator/pkg/llmprovider"
	"github.com/medsync-ai/orchestrator/pkg/models"
	"github.com/medsync-ai/orchestrator/pkg/vectorstore"
)

// vectorMaxResults bounds how many ranked hits each search contributes
// before synthesis, independent from any device-chunk pagination.
const vectorMaxResults = 8

// VectorEngine answers documentation/knowledge_base/device_definition
// intents against the document retrieval store. Per spec.md §9's resolved
// Open Question, this is the richer of the two near-identical
// implementations in the original: when the query carries no device
// filter, it additionally searches a separate guideline store and merges
// both result sets before synthesis.
type VectorEngine struct {
	LLM        llmprovider.Provider
	Docs       vectorstore.Provider
	Guidelines vectorstore.Provider // optional; nil disables the guideline fallback
	Model      string
	Prompt     string
}

// NewVectorEngine builds a VectorEngine. guidelines may be nil if no
// separate guideline store is configured.
func NewVectorEngine(llm llmprovider.Provider, docs, guidelines vectorstore.Provider, model, prompt string) *VectorEngine {
	return &VectorEngine{LLM: llm, Docs: docs, Guidelines: guidelines, Model: model, Prompt: prompt}
}

func (e *VectorEngine) Run(ctx context.Context, in models.EngineInput, _ *models.Session, _ *broker.Broker) (models.EngineOutput, error) {
	filter := deviceFilter(in)

	results, err := e.Docs.Search(ctx, in.NormalizedQuery, filter, vectorMaxResults)
	if err != nil {
		return models.EngineOutput{Status: models.StatusError, ErrorMessage: fmt.Sprintf("vector search: %v", err)}, nil
	}

	if filter == nil && e.Guidelines != nil {
		guidelineHits, err := e.Guidelines.Search(ctx, in.NormalizedQuery, nil, vectorMaxResults)
		if err != nil {
			return models.EngineOutput{Status: models.StatusError, ErrorMessage: fmt.Sprintf("guideline search: %v", err)}, nil
		}
		results = append(results, guidelineHits...)
	}

	messages := []llmprovider.Message{{Role: llmprovider.RoleUser, Content: in.NormalizedQuery + "\n\n" + summarizeResults(results)}}
	result, err := e.LLM.Call(ctx, e.Prompt, messages, nil, e.Model, 1024)
	if err != nil {
		return models.EngineOutput{Status: models.StatusError, ErrorMessage: fmt.Sprintf("vector synthesis: %v", err)}, nil
	}

	return models.EngineOutput{
		Status:       models.StatusOK,
		Text:         result.Content,
		Devices:      in.FoundDevices,
		InputTokens:  result.Usage.InputTokens,
		OutputTokens: result.Usage.OutputTokens,
	}, nil
}

// deviceFilter builds a device-scoped filter when the query named specific
// devices, restricting retrieval to documents attributed to them. No
// device filter means the guideline fallback applies.
func deviceFilter(in models.EngineInput) *vectorstore.Filter {
	if len(in.FoundDevices) == 0 {
		return nil
	}
	ids := make([]string, 0, len(in.FoundDevices))
	for _, d := range in.FoundDevices {
		ids = append(ids, d.ID)
	}
	return &vectorstore.Filter{Type: vectorstore.FilterContainsAny, Key: "device_variant_id", Value: ids}
}

func summarizeResults(results []vectorstore.SearchResult) string {
	if len(results) == 0 {
		return "No matching documents found."
	}
	var sb strings.Builder
	sb.WriteString("Retrieved passages:\n")
	for _, r := range results {
		for _, block := range r.Content {
			sb.WriteString("- " + block.Text + "\n")
		}
	}
	return sb.String()
}
