// Package eligibility defines the clinical eligibility contract the
// clinical-support engine consults. The rule set itself is data, not
// design (spec.md Non-goals), so this package provides only the interface,
// the YAML-backed rule registry, and criterion evaluation against a parsed
// patient record — never hardcoded clinical logic.
package eligibility

import (
	"fmt"
	"sync"
)

// Operator is one comparison a criterion applies to a patient record field.
type Operator string

const (
	OpGTE     Operator = "gte"
	OpLTE     Operator = "lte"
	OpEquals  Operator = "eq"
	OpPresent Operator = "present"
	OpAbsent  Operator = "absent"
)

// Criterion is one data-driven eligibility check, e.g. "age >= 18" or
// "last_known_well_hours <= 24".
type Criterion struct {
	Field    string   `yaml:"field" validate:"required"`
	Operator Operator `yaml:"operator" validate:"required,oneof=gte lte eq present absent"`
	Value    any      `yaml:"value,omitempty"`
	Reason   string   `yaml:"reason" validate:"required"`
}

// Pathway is a named treatment pathway (e.g. "mechanical_thrombectomy") and
// the criteria that gate it, loaded entirely from configuration.
type Pathway struct {
	Name       string      `yaml:"name" validate:"required"`
	Criteria   []Criterion `yaml:"criteria" validate:"required,min=1,dive"`
	Disclaimer string      `yaml:"disclaimer,omitempty"`
}

// RuleSet is the full loaded eligibility configuration.
type RuleSet struct {
	Pathways []Pathway `yaml:"pathways" validate:"required,min=1,dive"`
}

// Finding is the outcome of evaluating one criterion.
type Finding struct {
	Criterion Criterion
	Met       bool
	Reason    string
}

// Assessment is the evaluated result for one pathway.
type Assessment struct {
	Pathway  string
	Eligible bool
	Findings []Finding
}

// Registry holds the loaded rule set with thread-safe access, the same
// defensive-copy pattern teacher's config registries use.
type Registry struct {
	mu       sync.RWMutex
	pathways map[string]Pathway
}

// NewRegistry builds a registry from an already-parsed rule set.
func NewRegistry(rules RuleSet) *Registry {
	pathways := make(map[string]Pathway, len(rules.Pathways))
	for _, p := range rules.Pathways {
		pathways[p.Name] = p
	}
	return &Registry{pathways: pathways}
}

// Pathway returns a copy of the named pathway's criteria.
func (r *Registry) Pathway(name string) (Pathway, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pathways[name]
	if !ok {
		return Pathway{}, fmt.Errorf("eligibility: unknown pathway %q", name)
	}
	return p, nil
}

// Names returns every loaded pathway name.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.pathways))
	for name := range r.pathways {
		out = append(out, name)
	}
	return out
}

// Evaluate implements spec.md's clinical-eligibility interface: check a
// named pathway's criteria against a parsed patient record. Record fields no
// criterion names are ignored. A criterion on a field the record doesn't
// carry is "not met" rather than an error (except the absent operator, which
// is met exactly then), since the clinical engine must still return a
// clarification, not fail, on incomplete data.
func (r *Registry) Evaluate(pathwayName string, record map[string]any) (Assessment, error) {
	pathway, err := r.Pathway(pathwayName)
	if err != nil {
		return Assessment{}, err
	}

	findings := make([]Finding, 0, len(pathway.Criteria))
	allMet := true
	for _, c := range pathway.Criteria {
		met := evaluateCriterion(c, record)
		if !met {
			allMet = false
		}
		findings = append(findings, Finding{Criterion: c, Met: met, Reason: c.Reason})
	}
	return Assessment{Pathway: pathway.Name, Eligible: allMet, Findings: findings}, nil
}

func evaluateCriterion(c Criterion, record map[string]any) bool {
	val, present := record[c.Field]
	switch c.Operator {
	case OpPresent:
		return present
	case OpAbsent:
		return !present
	}
	if !present {
		return false
	}
	switch c.Operator {
	case OpEquals:
		return fmt.Sprintf("%v", val) == fmt.Sprintf("%v", c.Value)
	case OpGTE, OpLTE:
		a, aok := toFloat(val)
		b, bok := toFloat(c.Value)
		if !aok || !bok {
			return false
		}
		if c.Operator == OpGTE {
			return a >= b
		}
		return a <= b
	default:
		return false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
