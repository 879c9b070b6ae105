package orchestrator

import (
	"context"
	"fmt"

	"github.com/medsync-ai/orchestrator/pkg/devicestore"
	"github.com/medsync-ai/orchestrator/pkg/llmprovider"
	"github.com/medsync-ai/orchestrator/pkg/models"
)

// extractResult is the equipment-extraction agent's output before Device
// Store resolution (spec.md §4.7 "Unresolved-device gating").
type extractResult struct {
	Found        []string
	NotFound     []string
	GenericSpecs []string
	Constraints  map[string]string
	usage        llmprovider.Usage
}

// extract calls the equipment-extraction agent, which names device mentions
// in the query, flags attribute constraints (for filtered_discovery
// routing), and surfaces generic specs (e.g. ".014 wire") separately from
// named products.
func (o *Orchestrator) extract(ctx context.Context, model, query string, devices *devicestore.Store) (extractResult, error) {
	system, err := o.Prompts.Load("extract")
	if err != nil {
		return extractResult{}, err
	}
	messages := []llmprovider.Message{{Role: llmprovider.RoleUser, Content: query}}
	result, err := o.LLM.CallJSON(ctx, system, messages, model)
	if err != nil {
		return extractResult{}, fmt.Errorf("extract call: %w", err)
	}

	mentioned := stringSlice(result.Content["device_mentions"])
	var found, notFound []string
	for _, name := range mentioned {
		if len(devices.Search(name)) > 0 {
			found = append(found, name)
		} else {
			notFound = append(notFound, name)
		}
	}

	return extractResult{
		Found:        found,
		NotFound:     notFound,
		GenericSpecs: stringSlice(result.Content["generic_specs"]),
		Constraints:  stringMap(result.Content["constraints"]),
		usage:        llmprovider.Usage{InputTokens: result.InputTokens, OutputTokens: result.OutputTokens},
	}, nil
}

// resolveExtractedDevices turns the extractor's found product names into
// concrete Device Store hits and computes fuzzy suggestions for every
// unresolved name, per spec.md §4.7.
func (o *Orchestrator) resolveExtractedDevices(st *requestState, extraction extractResult) ([]*models.Device, map[string][]models.FuzzySuggestion) {
	var found []*models.Device
	for _, name := range extraction.Found {
		found = append(found, st.devices.Search(name)...)
	}

	suggestions := make(map[string][]models.FuzzySuggestion, len(extraction.NotFound))
	for _, name := range extraction.NotFound {
		suggestions[name] = st.devices.Suggest(name)
	}
	return found, suggestions
}
