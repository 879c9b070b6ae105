package orchestrator

import "github.com/medsync-ai/orchestrator/pkg/models"

// RouteIntent implements spec.md §4.7's routing table. needsPlanning and a
// non-empty constraints map are each independently sufficient to route to
// the planned path, per spec.md §9's "needs_planning / filtered_discovery
// overlap" decision (logical OR, not an exclusive trigger).
func RouteIntent(intent models.Intent, needsPlanning bool, constraints map[string]string) models.EnginePath {
	if intent == models.IntentFilteredDiscovery || needsPlanning || len(constraints) > 0 {
		return models.EnginePlanned
	}

	switch intent {
	case models.IntentEquipmentCompatibility, models.IntentDeviceDiscovery:
		return models.EngineChain
	case models.IntentSpecificationLookup, models.IntentSpecReasoning,
		models.IntentDeviceSearch, models.IntentDeviceComparison, models.IntentManufacturerLookup:
		return models.EngineDatabase
	case models.IntentDocumentation, models.IntentKnowledgeBase, models.IntentDeviceDefinition:
		return models.EngineVector
	case models.IntentClinicalSupport:
		return models.EngineClinical
	case models.IntentDeepResearch:
		return models.EngineResearch
	default:
		return models.EngineGeneral
	}
}
