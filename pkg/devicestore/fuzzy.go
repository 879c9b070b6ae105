package devicestore

import (
	"sort"
	"strings"
	"unicode/utf8"

	levenshtein "github.com/agext/levenshtein"
	"github.com/medsync-ai/orchestrator/pkg/models"
	"github.com/pmezard/go-difflib/difflib"
)

const (
	// maxEditDistance bounds the tier-1 fuzzy term search (spec.md §4.3).
	maxEditDistance = 2
	// sequenceRatioCutoff is the tier-2 fallback threshold (spec.md §4.3).
	sequenceRatioCutoff = 0.5
	// maxSuggestions bounds how many candidates Suggest returns.
	maxSuggestions = 5
)

// Suggest implements spec.md §4.3's fuzzy suggester: called when exact
// search returns nothing for name. Tier 1 is an edit-distance term search
// (max distance 2) over product_name/device_name/aliases; tier 2 falls back
// to a sequence-ratio comparison against all known product names, cutoff
// 0.5. Results are sorted descending by score; scores from the two tiers
// are coarse ranking signals only, not directly comparable.
func (s *Store) Suggest(name string) []models.FuzzySuggestion {
	norm := strings.ToLower(strings.TrimSpace(name))

	tier1 := s.tier1EditDistance(norm)
	if len(tier1) > 0 {
		return capSuggestions(tier1)
	}
	return capSuggestions(s.tier2SequenceRatio(norm))
}

func (s *Store) tier1EditDistance(norm string) []models.FuzzySuggestion {
	var out []models.FuzzySuggestion
	seen := map[string]bool{}
	for id, productNorm := range s.index.productText {
		d := s.devices[id]
		if d == nil {
			continue
		}
		if dist := levenshtein.Distance(norm, productNorm, nil); dist <= maxEditDistance {
			out = append(out, models.FuzzySuggestion{ProductName: d.ProductName, DeviceID: id, Score: editScore(dist, norm, productNorm), Tier: "edit_distance"})
			seen[id] = true
		}
	}
	for id, deviceNorm := range s.index.deviceText {
		if seen[id] {
			continue
		}
		d := s.devices[id]
		if d == nil {
			continue
		}
		if dist := levenshtein.Distance(norm, deviceNorm, nil); dist <= maxEditDistance {
			out = append(out, models.FuzzySuggestion{ProductName: d.ProductName, DeviceID: id, Score: editScore(dist, norm, deviceNorm), Tier: "edit_distance"})
			seen[id] = true
		}
	}
	for id, aliases := range s.index.aliasText {
		if seen[id] {
			continue
		}
		d := s.devices[id]
		if d == nil {
			continue
		}
		for _, alias := range aliases {
			if dist := levenshtein.Distance(norm, alias, nil); dist <= maxEditDistance {
				out = append(out, models.FuzzySuggestion{ProductName: d.ProductName, DeviceID: id, Score: editScore(dist, norm, alias), Tier: "edit_distance"})
				seen[id] = true
				break
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// editScore normalizes an edit distance into a coarse [0,1] ranking signal.
func editScore(dist int, a, b string) float64 {
	maxLen := utf8.RuneCountInString(a)
	if l := utf8.RuneCountInString(b); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 1
	}
	score := 1 - float64(dist)/float64(maxLen)
	if score < 0 {
		return 0
	}
	return score
}

// tier2SequenceRatio mirrors Python's
// difflib.SequenceMatcher(None, a, b).ratio() via pmezard/go-difflib, the
// direct Go port the original source's fallback is grounded on.
func (s *Store) tier2SequenceRatio(norm string) []models.FuzzySuggestion {
	normChars := splitChars(norm)
	var out []models.FuzzySuggestion
	for _, productName := range s.productNames {
		candidateNorm := strings.ToLower(productName)
		matcher := difflib.NewMatcher(normChars, splitChars(candidateNorm))
		ratio := matcher.Ratio()
		if ratio >= sequenceRatioCutoff {
			out = append(out, models.FuzzySuggestion{ProductName: productName, Score: ratio, Tier: "sequence_ratio"})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func capSuggestions(in []models.FuzzySuggestion) []models.FuzzySuggestion {
	if len(in) > maxSuggestions {
		return in[:maxSuggestions]
	}
	return in
}

// splitChars splits a string into one-rune strings, the sequence difflib's
// Matcher compares (equivalent to Python's default string-as-sequence-of-
// characters behavior).
func splitChars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
