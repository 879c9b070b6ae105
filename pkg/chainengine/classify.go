package chainengine

import (
	"context"
	"fmt"

	"github.com/medsync-ai/orchestrator/pkg/llmprovider"
	"github.com/medsync-ai/orchestrator/pkg/models"
)

const classifySystemPrompt = "Classify the query's mode, response framing, structure, and sub-type. Respond as JSON with keys query_mode, response_framing, query_structure, sub_type, confidence."

// ClassifyQuery runs the chain engine's classifier call (spec.md §4.6
// step 2, first of the two concurrent calls).
func ClassifyQuery(ctx context.Context, llm llmprovider.Provider, model, query string) (models.Classification, llmprovider.Usage, error) {
	result, err := llm.CallJSON(ctx, classifySystemPrompt, []llmprovider.Message{{Role: llmprovider.RoleUser, Content: query}}, model)
	if err != nil {
		return models.Classification{}, llmprovider.Usage{}, fmt.Errorf("classifier call: %w", err)
	}
	usage := llmprovider.Usage{InputTokens: result.InputTokens, OutputTokens: result.OutputTokens}

	c := models.Classification{
		QueryMode:       models.QueryMode(stringField(result.Content, "query_mode")),
		ResponseFraming: models.ResponseFraming(stringField(result.Content, "response_framing")),
		QueryStructure:  models.QueryStructure(stringField(result.Content, "query_structure")),
		SubType:         stringField(result.Content, "sub_type"),
		Confidence:      floatField(result.Content, "confidence"),
	}
	return c, usage, nil
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func floatField(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

func boolField(m map[string]any, key string) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return false
}
