package devicestore

import (
	"sort"
	"strings"

	"github.com/medsync-ai/orchestrator/pkg/models"
)

// invertedIndex maps lowercase tokens to device ids that contain them, kept
// separately for product_name and aliases so phrase and conjunctive matching
// (spec.md §4.3) can be scored per field.
type invertedIndex struct {
	productTokens map[string]map[string]bool // token -> ids
	aliasTokens   map[string]map[string]bool
	productPhrase map[string]map[string]bool // normalized full phrase -> ids
	aliasPhrase   map[string]map[string]bool
	// normalized text retained per device for the fuzzy fallback.
	productText map[string]string // id -> normalized product_name
	deviceText  map[string]string // id -> normalized device_name
	aliasText   map[string][]string
}

func newInvertedIndex() invertedIndex {
	return invertedIndex{
		productTokens: map[string]map[string]bool{},
		aliasTokens:   map[string]map[string]bool{},
		productPhrase: map[string]map[string]bool{},
		aliasPhrase:   map[string]map[string]bool{},
		productText:   map[string]string{},
		deviceText:    map[string]string{},
		aliasText:     map[string][]string{},
	}
}

func addTo(index map[string]map[string]bool, key, id string) {
	if index[key] == nil {
		index[key] = map[string]bool{}
	}
	index[key][id] = true
}

func (idx *invertedIndex) add(d *models.Device) {
	productNorm := strings.ToLower(d.ProductName)
	idx.productText[d.ID] = productNorm
	idx.deviceText[d.ID] = strings.ToLower(d.DeviceName)
	addTo(idx.productPhrase, productNorm, d.ID)
	for _, tok := range tokenize(d.ProductName) {
		addTo(idx.productTokens, tok, d.ID)
	}
	var aliasNorms []string
	for _, alias := range d.Aliases {
		norm := strings.ToLower(alias)
		aliasNorms = append(aliasNorms, norm)
		addTo(idx.aliasPhrase, norm, d.ID)
		for _, tok := range tokenize(alias) {
			addTo(idx.aliasTokens, tok, d.ID)
		}
	}
	idx.aliasText[d.ID] = aliasNorms
}

// search implements spec.md §4.3: the union of phrase match on product_name,
// phrase match on aliases, conjunctive token match on product_name,
// conjunctive token match on aliases — ranked by a simple relevance score
// (phrase matches first, then by matched-token count).
func (idx *invertedIndex) search(query string) []string {
	norm := strings.ToLower(strings.TrimSpace(query))
	tokens := tokenize(query)

	scores := map[string]int{}
	const phraseScore = 100

	for id := range idx.productPhrase[norm] {
		scores[id] += phraseScore
	}
	for id := range idx.aliasPhrase[norm] {
		scores[id] += phraseScore
	}

	if len(tokens) > 0 {
		addConjunctive(scores, idx.productTokens, tokens, 10)
		addConjunctive(scores, idx.aliasTokens, tokens, 10)
	}

	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.SliceStable(ids, func(i, j int) bool { return scores[ids[i]] > scores[ids[j]] })
	return ids
}

// addConjunctive credits ids that contain every token in the query (a
// conjunctive match), weighted by score.
func addConjunctive(scores map[string]int, tokenIndex map[string]map[string]bool, tokens []string, score int) {
	if len(tokens) == 0 {
		return
	}
	candidates := tokenIndex[tokens[0]]
	for id := range candidates {
		matchesAll := true
		for _, tok := range tokens[1:] {
			if !tokenIndex[tok][id] {
				matchesAll = false
				break
			}
		}
		if matchesAll {
			scores[id] += score
		}
	}
}

// clone returns a shallow copy suitable for a request-scoped overlay: the
// inner maps are copied one level deep so additions never mutate the shared
// instance.
func (idx invertedIndex) clone() invertedIndex {
	out := newInvertedIndex()
	for k, v := range idx.productTokens {
		out.productTokens[k] = copySet(v)
	}
	for k, v := range idx.aliasTokens {
		out.aliasTokens[k] = copySet(v)
	}
	for k, v := range idx.productPhrase {
		out.productPhrase[k] = copySet(v)
	}
	for k, v := range idx.aliasPhrase {
		out.aliasPhrase[k] = copySet(v)
	}
	for k, v := range idx.productText {
		out.productText[k] = v
	}
	for k, v := range idx.deviceText {
		out.deviceText[k] = v
	}
	for k, v := range idx.aliasText {
		out.aliasText[k] = append([]string(nil), v...)
	}
	return out
}

func copySet(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
