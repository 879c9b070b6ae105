package engines

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/medsync-ai/orchestrator/pkg/broker"
	"github.com/medsync-ai/orchestrator/pkg/devicestore"
	"github.com/medsync-ai/orchestrator/pkg/llmprovider"
	"github.com/medsync-ai/orchestrator/pkg/models"
)

// DatabaseEngine answers specification_lookup, spec_reasoning, device_search,
// device_comparison, and manufacturer_lookup by querying the device catalog
// directly (spec.md §4.7 routing table: "Database Engine uses Device
// Store"), then asking an LLM to render the final narrative over the
// matched records — the database path's own designated output agent, since
// no separate engine runs after it for a non-planned dispatch.
type DatabaseEngine struct {
	LLM     llmprovider.Provider
	Devices *devicestore.Store
	Model   string
	Prompt  string
}

// NewDatabaseEngine builds a DatabaseEngine bound to a catalog and the
// synthesis model/prompt its output step resolves through pkg/config.
func NewDatabaseEngine(llm llmprovider.Provider, devices *devicestore.Store, model, prompt string) *DatabaseEngine {
	return &DatabaseEngine{LLM: llm, Devices: devices, Model: model, Prompt: prompt}
}

func (e *DatabaseEngine) Run(ctx context.Context, in models.EngineInput, _ *models.Session, _ *broker.Broker) (models.EngineOutput, error) {
	devices := in.FoundDevices
	if len(devices) == 0 {
		devices = e.Devices.Search(in.NormalizedQuery)
	}
	devices = applyConstraints(devices, in.Constraints)

	messages := []llmprovider.Message{{Role: llmprovider.RoleUser, Content: in.NormalizedQuery + "\n\n" + summarizeDevices(devices)}}
	result, err := e.LLM.Call(ctx, e.Prompt, messages, nil, e.Model, 1024)
	if err != nil {
		return models.EngineOutput{Status: models.StatusError, ErrorMessage: fmt.Sprintf("database synthesis: %v", err)}, nil
	}

	return models.EngineOutput{
		Status:       models.StatusOK,
		ResultType:   models.ResultDeviceDiscovery,
		Text:         result.Content,
		Devices:      devices,
		InputTokens:  result.Usage.InputTokens,
		OutputTokens: result.Usage.OutputTokens,
	}, nil
}

// applyConstraints narrows a candidate list by the attribute filters a
// filtered_discovery/spec_reasoning extraction surfaced (spec.md §4.3's
// constraint map, e.g. manufacturer/category/fit_logic/conical_category).
// An unrecognized constraint key is ignored rather than rejected, matching
// vectorstore.filterClause's "advisory narrowing, not a query language"
// stance.
func applyConstraints(devices []*models.Device, constraints map[string]string) []*models.Device {
	if len(constraints) == 0 {
		return devices
	}
	out := make([]*models.Device, 0, len(devices))
	for _, d := range devices {
		if matchesConstraints(d, constraints) {
			out = append(out, d)
		}
	}
	return out
}

func matchesConstraints(d *models.Device, constraints map[string]string) bool {
	for key, want := range constraints {
		if want == "" {
			continue
		}
		switch strings.ToLower(key) {
		case "manufacturer":
			if !strings.EqualFold(d.Manufacturer, want) {
				return false
			}
		case "category", "category_type":
			if !strings.EqualFold(d.CategoryType, want) {
				return false
			}
		case "conical_category", "level":
			if !strings.EqualFold(string(d.ConicalCategory), want) {
				return false
			}
		case "fit_logic":
			if !strings.EqualFold(string(d.FitLogic), want) {
				return false
			}
		case "logic_category", "tag":
			if !d.HasCategory(want) {
				return false
			}
		}
	}
	return true
}

func summarizeDevices(devices []*models.Device) string {
	if len(devices) == 0 {
		return "No matching devices found in the catalog."
	}
	names := make([]string, 0, len(devices))
	for _, d := range devices {
		names = append(names, fmt.Sprintf("%s (%s, %s)", d.ProductName, d.Manufacturer, d.ConicalCategory))
	}
	sort.Strings(names)
	return "Matched devices:\n" + strings.Join(names, "\n")
}
