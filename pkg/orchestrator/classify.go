package orchestrator

import (
	"context"
	"fmt"

	"github.com/medsync-ai/orchestrator/pkg/llmprovider"
	"github.com/medsync-ai/orchestrator/pkg/models"
)

// classifyResult is the intent-classification agent's output (spec.md §4.7
// "route_by_intent").
type classifyResult struct {
	intent        models.Intent
	needsPlanning bool
	usage         llmprovider.Usage
}

// classify calls the intent-classification agent. needs_planning is an
// independent flag the agent may set on any intent, consumed by
// RouteIntent alongside the routing table (spec.md §9 "needs_planning /
// filtered_discovery overlap" — either is sufficient).
func (o *Orchestrator) classify(ctx context.Context, model, query string) (classifyResult, error) {
	system, err := o.Prompts.Load("classify")
	if err != nil {
		return classifyResult{}, err
	}
	messages := []llmprovider.Message{{Role: llmprovider.RoleUser, Content: query}}
	result, err := o.LLM.CallJSON(ctx, system, messages, model)
	if err != nil {
		return classifyResult{}, fmt.Errorf("classify call: %w", err)
	}
	return classifyResult{
		intent:        models.Intent(stringField(result.Content, "intent")),
		needsPlanning: boolField(result.Content, "needs_planning"),
		usage:         llmprovider.Usage{InputTokens: result.InputTokens, OutputTokens: result.OutputTokens},
	}, nil
}

// isRelationalIntent reports whether an intent requires every named device
// to resolve before routing (spec.md §4.7 "Unresolved-device gating").
func isRelationalIntent(intent models.Intent) bool {
	switch intent {
	case models.IntentEquipmentCompatibility, models.IntentDeviceDiscovery,
		models.IntentDeviceComparison, models.IntentFilteredDiscovery:
		return true
	default:
		return false
	}
}

// isGenericDeviceIntent reports whether an intent is in the compatibility
// family the generic-device subpipeline applies to (spec.md §4.7
// "Generic-device subpipeline").
func isGenericDeviceIntent(intent models.Intent) bool {
	switch intent {
	case models.IntentEquipmentCompatibility, models.IntentDeviceDiscovery:
		return true
	default:
		return false
	}
}
