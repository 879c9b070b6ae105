// Package devicestore provides the read-only, in-memory device catalog:
// O(1) lookup by id, an inverted text-search index over product names and
// aliases (device names and manufacturer are not indexed), and a two-tier
// fuzzy suggester for misspelled device names (spec.md §4.3).
package devicestore

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/medsync-ai/orchestrator/pkg/models"
)

// searchLimit bounds the number of ids returned by Search (spec.md §4.3).
const searchLimit = 100

// DeviceCatalogReader is the read-only snapshot contract the Device Store
// bootstraps from at startup (spec.md §6 "Device catalog contract").
type DeviceCatalogReader interface {
	LoadDevices(ctx context.Context) ([]*models.Device, error)
}

// Store is the shared, immutable-after-load device catalog. Devices are
// read-only after LoadFromDocStore returns; the only mutation path is
// WithOverlay, which never touches the shared instance.
type Store struct {
	devices map[string]*models.Device
	index   invertedIndex
	// productNames is the deduplicated set of all known product names, used
	// by the tier-2 fuzzy fallback (spec.md §4.3).
	productNames []string
}

// New creates an empty store. Call LoadFromDocStore or Load to populate it.
func New() *Store {
	return &Store{devices: map[string]*models.Device{}, index: newInvertedIndex()}
}

// LoadFromDocStore bootstraps the catalog from the read-only document-store
// snapshot (spec.md §6).
func (s *Store) LoadFromDocStore(ctx context.Context, reader DeviceCatalogReader) error {
	devices, err := reader.LoadDevices(ctx)
	if err != nil {
		return fmt.Errorf("load device catalog: %w", err)
	}
	s.Load(devices)
	return nil
}

// Load populates the store from an already-fetched device list. Exported
// separately from LoadFromDocStore so tests can build a store without a
// DeviceCatalogReader.
func (s *Store) Load(devices []*models.Device) {
	names := map[string]struct{}{}
	for _, d := range devices {
		s.devices[d.ID] = d
		s.index.add(d)
		names[d.ProductName] = struct{}{}
	}
	s.productNames = s.productNames[:0]
	for n := range names {
		s.productNames = append(s.productNames, n)
	}
	sort.Strings(s.productNames)
}

// Get returns the device with the given id, or nil if absent.
func (s *Store) Get(id string) *models.Device {
	return s.devices[id]
}

// VariantIDs returns every device id recorded under the given product name,
// the mapping the chain engine's pair-generation step uses to expand one
// concrete product position into every physical size variant (spec.md §4.6
// step 4).
func (s *Store) VariantIDs(productName string) []string {
	var ids []string
	for id, d := range s.devices {
		if d.ProductName == productName {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// ProductsByCategory returns the distinct product names tagged with the
// given logic-category, the source of the Cartesian expansion for a named
// (non-virtual) category reference in a candidate chain (spec.md §4.6
// step 3).
func (s *Store) ProductsByCategory(category string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, d := range s.devices {
		if !d.HasCategory(category) {
			continue
		}
		if _, ok := seen[d.ProductName]; ok {
			continue
		}
		seen[d.ProductName] = struct{}{}
		out = append(out, d.ProductName)
	}
	sort.Strings(out)
	return out
}

// Search implements spec.md §4.3: tokenize the query, union phrase and
// conjunctive-token matches over product_name and aliases, ranked by
// internal relevance, capped at searchLimit.
func (s *Store) Search(query string) []*models.Device {
	ids := s.index.search(query)
	out := make([]*models.Device, 0, len(ids))
	for _, id := range ids {
		if d := s.devices[id]; d != nil {
			out = append(out, d)
		}
		if len(out) >= searchLimit {
			break
		}
	}
	return out
}

// WithOverlay returns a request-scoped Store that shares this store's
// devices and index but additionally resolves ids from overlay first. The
// shared instance is never mutated (spec.md §3 "Ownership").
func (s *Store) WithOverlay(overlay map[string]*models.Device) *Store {
	if len(overlay) == 0 {
		return s
	}
	merged := &Store{
		devices:      make(map[string]*models.Device, len(s.devices)+len(overlay)),
		index:        s.index.clone(),
		productNames: append([]string(nil), s.productNames...),
	}
	for id, d := range s.devices {
		merged.devices[id] = d
	}
	names := map[string]struct{}{}
	for _, n := range merged.productNames {
		names[n] = struct{}{}
	}
	for id, d := range overlay {
		merged.devices[id] = d
		merged.index.add(d)
		if _, ok := names[d.ProductName]; !ok {
			names[d.ProductName] = struct{}{}
			merged.productNames = append(merged.productNames, d.ProductName)
		}
	}
	sort.Strings(merged.productNames)
	return merged
}

// tokenize implements spec.md §4.3's "lowercase, simple word tokenizer".
func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '.')
	})
	return fields
}
