package chainengine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/medsync-ai/orchestrator/pkg/models"
)

// ChainTextBuilder renders already-computed chain results into the three
// narrative shapes spec.md §9 names (spec.md §4.6 step 8). It calls no LLM
// and performs pure string formatting, ported in spirit from
// chain_text_builder.py.
type ChainTextBuilder struct{}

// NewChainTextBuilder constructs a builder. It carries no state of its own
// — every call is handed its inputs directly, unlike the Python original's
// instance-cached specs index, since Go callers already hold typed structs
// rather than untyped dicts and need no re-indexing pass.
func NewChainTextBuilder() *ChainTextBuilder {
	return &ChainTextBuilder{}
}

// Build dispatches to the narrative formatter for resultType.
func (b *ChainTextBuilder) Build(resultType models.ResultType, chains []*models.ChainResult, decision models.Decision, n1 []models.N1SubsetResult) string {
	var body string
	switch resultType {
	case models.ResultDeviceDiscovery:
		body = b.buildDeviceDiscovery(chains)
	case models.ResultStackValidation:
		body = b.buildStackValidation(chains)
	default:
		body = b.buildCompatibilityCheck(chains)
	}
	if decision == models.DecisionFlagGentleCorrect {
		body += "\n\nNote: this combination appears uncommon; please confirm the devices before proceeding."
	}
	if len(n1) > 0 {
		body += "\n\n" + b.formatSubsetAnalysis(n1)
	}
	return body
}

func statusLabel(passed bool) string {
	if passed {
		return "COMPATIBLE"
	}
	return "NOT COMPATIBLE"
}

// buildCompatibilityCheck implements the compatibility_check narrative:
// per-chain, per-path headers, variant pass/fail counts per connection, and
// failure reasons drawn straight from the analyzer's extracted text.
func (b *ChainTextBuilder) buildCompatibilityCheck(chains []*models.ChainResult) string {
	if len(chains) == 0 {
		return "No chain configurations were evaluated."
	}
	var passing, failing int
	for _, c := range chains {
		if c.Passed {
			passing++
		} else {
			failing++
		}
	}

	var sections []string
	sections = append(sections, fmt.Sprintf("Chains tested: %d | Passing: %d | Failing: %d", len(chains), passing, failing))

	for _, chain := range chains {
		for _, path := range chain.Paths {
			var lines []string
			lines = append(lines, fmt.Sprintf("%s: %s", statusLabel(path.Passed), strings.Join(path.Products, " -> ")))
			for _, conn := range path.Connections {
				lines = append(lines, connectionLines(conn)...)
			}
			sections = append(sections, strings.Join(lines, "\n"))
		}
	}
	return strings.Join(sections, "\n\n")
}

func connectionLines(conn *models.ConnectionResult) []string {
	var lines []string
	for _, combo := range conn.Combinations {
		if combo.TotalVariants > 1 {
			lines = append(lines, fmt.Sprintf("  %s -> %s: %d of %d variants compatible",
				combo.InnerProduct, combo.OuterProduct, combo.PassingVariants, combo.TotalVariants))
		}
		if combo.Passed {
			lines = append(lines, fmt.Sprintf("  %s -> %s: Compatible", combo.InnerProduct, combo.OuterProduct))
			continue
		}
		lines = append(lines, fmt.Sprintf("  %s -> %s: Not Compatible", combo.InnerProduct, combo.OuterProduct))
		lines = append(lines, failureReasonLines(combo, 3)...)
	}
	return lines
}

// failureReasonLines renders up to limit representative failure reasons for
// one failing product combination, preferring compatibility-rule failures
// over geometry failures (spec.md §4.5's extracted-reason contract).
func failureReasonLines(combo *models.ProductCombinationResult, limit int) []string {
	var lines []string
	for _, pair := range combo.Pairs {
		if pair.Pair.OverallStatus == models.OverallPass || pair.Pair.OverallStatus == models.OverallPassWithWarning {
			continue
		}
		for _, cf := range pair.CompatibilityFailures {
			lines = append(lines, "    "+cf.Reason)
			if len(lines) >= limit {
				return lines
			}
		}
		for _, gf := range pair.GeometryFailures {
			lines = append(lines, "    "+gf.Reason)
			if len(lines) >= limit {
				return lines
			}
		}
	}
	return lines
}

// buildDeviceDiscovery implements the device_discovery narrative: source
// devices (the first, most distal product of each passing path), then every
// distinct outer product of a passing connection that is not itself a source.
func (b *ChainTextBuilder) buildDeviceDiscovery(chains []*models.ChainResult) string {
	sources := map[string]struct{}{}
	compatible := map[string]struct{}{}
	var anyPassed bool

	for _, chain := range chains {
		for _, path := range chain.Paths {
			if !path.Passed || len(path.Products) == 0 {
				continue
			}
			anyPassed = true
			sources[path.Products[0]] = struct{}{}
			for _, conn := range path.Connections {
				if !conn.Passed {
					continue
				}
				if _, isSource := sources[conn.OuterProduct]; !isSource {
					compatible[conn.OuterProduct] = struct{}{}
				}
			}
		}
	}
	if !anyPassed {
		return "No compatible devices found."
	}

	var sections []string
	sections = append(sections, "SOURCE DEVICE(S):\n"+strings.Join(sortedKeys(sources), "\n"))
	if len(compatible) > 0 {
		sections = append(sections, fmt.Sprintf("COMPATIBLE DEVICES (%d found):\n%s", len(compatible), strings.Join(sortedKeys(compatible), "\n")))
	}

	var incompatible []string
	for _, chain := range chains {
		for _, path := range chain.Paths {
			if path.Passed {
				continue
			}
			incompatible = append(incompatible, fmt.Sprintf("  NOT COMPATIBLE: %s", strings.Join(path.Products, " -> ")))
		}
	}
	if len(incompatible) > 0 {
		sections = append(sections, "INCOMPATIBLE CONFIGURATIONS:\n"+strings.Join(incompatible, "\n"))
	}
	return strings.Join(sections, "\n\n")
}

// buildStackValidation implements the stack_validation narrative: every
// ordered stack tested, each connection's variant pass counts, and for
// invalid stacks the specific failing connection.
func (b *ChainTextBuilder) buildStackValidation(chains []*models.ChainResult) string {
	if len(chains) == 0 {
		return "No chain configurations were tested."
	}

	var sections []string
	for _, chain := range chains {
		for _, path := range chain.Paths {
			var lines []string
			if path.Passed {
				lines = append(lines, fmt.Sprintf("VALID STACK: %s", strings.Join(path.Products, " -> ")))
				for _, conn := range path.Connections {
					for _, combo := range conn.Combinations {
						if combo.TotalVariants > 1 {
							lines = append(lines, fmt.Sprintf("    %d of %d variants compatible", combo.PassingVariants, combo.TotalVariants))
						}
					}
				}
			} else {
				lines = append(lines, fmt.Sprintf("INVALID CONFIGURATION: %s", strings.Join(path.Products, " -> ")))
				for _, conn := range path.Connections {
					if conn.Passed {
						continue
					}
					lines = append(lines, fmt.Sprintf("  Failing connection: %s -> %s", conn.InnerProduct, conn.OuterProduct))
					for _, combo := range conn.Combinations {
						if combo.Passed {
							continue
						}
						lines = append(lines, failureReasonLines(combo, 2)...)
					}
				}
			}
			sections = append(sections, strings.Join(lines, "\n"))
		}
	}
	return strings.Join(sections, "\n\n")
}

// formatSubsetAnalysis renders N-1 retry results (spec.md §4.6 step 7).
func (b *ChainTextBuilder) formatSubsetAnalysis(n1 []models.N1SubsetResult) string {
	lines := []string{"N-1 SUBSET CONFIGURATIONS:"}
	for _, subset := range n1 {
		label := "Invalid"
		if subset.Passed {
			label = "Valid"
		}
		lines = append(lines, fmt.Sprintf("  Excluding %s: %s", subset.ExcludedDevice, label))
		if subset.Passed && subset.Result != nil && len(subset.Result.Paths) > 0 {
			lines = append(lines, fmt.Sprintf("    Order: %s", strings.Join(subset.Result.Paths[0].Products, " -> ")))
		}
	}
	return strings.Join(lines, "\n")
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, "  "+k)
	}
	sort.Strings(out)
	return out
}
