package chainengine

import (
	"sort"

	"github.com/medsync-ai/orchestrator/pkg/models"
)

// foundDevicesCategory is the virtual category key a prior engine's device
// list is wrapped under (spec.md §4.6 step 1).
const foundDevicesCategory = "__found_devices__"

// resolveCategories implements step 1: if the engine input carries a prior
// result's device list, it is wrapped as a virtual category (empty
// device-category, product names deduplicated and sorted) and merged into
// the caller-supplied category mappings. The nesting levels a virtual
// category's products occupy are not needed here — they come from the
// chain candidate's own Levels array at expansion time, not from the
// category itself.
func resolveCategories(in models.EngineInput) map[string][]string {
	categories := make(map[string][]string, len(in.VirtualCategories)+1)
	for name, products := range in.VirtualCategories {
		categories[name] = append([]string(nil), products...)
	}
	if len(in.FoundDevices) == 0 {
		return categories
	}

	seen := map[string]struct{}{}
	var products []string
	for _, d := range in.FoundDevices {
		if _, ok := seen[d.ProductName]; ok {
			continue
		}
		seen[d.ProductName] = struct{}{}
		products = append(products, d.ProductName)
	}
	sort.Strings(products)
	categories[foundDevicesCategory] = products
	return categories
}
