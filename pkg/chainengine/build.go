package chainengine

import (
	"context"
	"fmt"

	"github.com/medsync-ai/orchestrator/pkg/llmprovider"
	"github.com/medsync-ai/orchestrator/pkg/models"
)

const builderSystemPrompt = "Propose every candidate device chain the query implies. Respond as JSON with keys chains_to_check (array of {sequence, levels, contains_category}), confidence, interpretation."

// BuildChains runs the chain engine's builder call (spec.md §4.6 step 2,
// second of the two concurrent calls).
func BuildChains(ctx context.Context, llm llmprovider.Provider, model, query string) (models.ChainBuilderResult, llmprovider.Usage, error) {
	result, err := llm.CallJSON(ctx, builderSystemPrompt, []llmprovider.Message{{Role: llmprovider.RoleUser, Content: query}}, model)
	if err != nil {
		return models.ChainBuilderResult{}, llmprovider.Usage{}, fmt.Errorf("chain builder call: %w", err)
	}
	usage := llmprovider.Usage{InputTokens: result.InputTokens, OutputTokens: result.OutputTokens}

	rawChains, _ := result.Content["chains_to_check"].([]any)
	chains := make([]models.ChainCandidate, 0, len(rawChains))
	for _, rc := range rawChains {
		entry, ok := rc.(map[string]any)
		if !ok {
			continue
		}
		chains = append(chains, models.ChainCandidate{
			Sequence:         stringSlice(entry["sequence"]),
			Levels:           levelSlice(entry["levels"]),
			ContainsCategory: boolField(entry, "contains_category"),
		})
	}

	builder := models.ChainBuilderResult{
		Chains:         chains,
		Confidence:     floatField(result.Content, "confidence"),
		Interpretation: stringField(result.Content, "interpretation"),
	}
	return builder, usage, nil
}

func stringSlice(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, e := range raw {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func levelSlice(v any) []models.ConicalCategory {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]models.ConicalCategory, 0, len(raw))
	for _, e := range raw {
		if s, ok := e.(string); ok {
			out = append(out, models.ConicalCategory(s))
		}
	}
	return out
}
