// Package masking redacts patient-identifying content before it reaches
// server logs (spec.md §7 "server logs (with trace)"), re-targeted from
// teacher's Kubernetes Secret/ConfigMap masking onto clinical identifiers.
package masking

// Masker is the interface for code-based maskers that need structural
// awareness beyond regex pattern matching (e.g. parsing a JSON patient
// record and masking specific fields rather than sweeping the whole blob).
type Masker interface {
	// Name returns the unique identifier for this masker.
	Name() string

	// AppliesTo performs a lightweight check on whether this masker should
	// process the data. Should be fast (string contains, not parsing).
	AppliesTo(data string) bool

	// Mask applies masking logic and returns the masked result. Must be
	// defensive: return original data on parse/processing errors.
	Mask(data string) string
}
