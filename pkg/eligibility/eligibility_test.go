package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRuleSet() RuleSet {
	return RuleSet{Pathways: []Pathway{
		{
			Name: "example_pathway",
			Criteria: []Criterion{
				{Field: "age", Operator: OpGTE, Value: 18.0, Reason: "age threshold"},
				{Field: "last_known_well_hours", Operator: OpLTE, Value: 24.0, Reason: "time window"},
				{Field: "contraindication", Operator: OpAbsent, Reason: "no contraindication on file"},
			},
		},
	}}
}

func TestRegistry_EvaluateAllCriteriaMet(t *testing.T) {
	r := NewRegistry(testRuleSet())
	assessment, err := r.Evaluate("example_pathway", map[string]any{
		"age":                   72.0,
		"last_known_well_hours": 6.0,
	})
	require.NoError(t, err)
	assert.True(t, assessment.Eligible)
	assert.Len(t, assessment.Findings, 3)
}

func TestRegistry_EvaluateMissingFieldNotMet(t *testing.T) {
	r := NewRegistry(testRuleSet())
	assessment, err := r.Evaluate("example_pathway", map[string]any{"age": 72.0})
	require.NoError(t, err)
	assert.False(t, assessment.Eligible)
}

func TestRegistry_EvaluateThresholdFails(t *testing.T) {
	r := NewRegistry(testRuleSet())
	assessment, err := r.Evaluate("example_pathway", map[string]any{
		"age":                   16.0,
		"last_known_well_hours": 6.0,
	})
	require.NoError(t, err)
	assert.False(t, assessment.Eligible)
}

func TestRegistry_UnknownPathway(t *testing.T) {
	r := NewRegistry(testRuleSet())
	_, err := r.Evaluate("not_a_pathway", map[string]any{})
	assert.Error(t, err)
}

func TestRegistry_PresentAbsentOperators(t *testing.T) {
	r := NewRegistry(RuleSet{Pathways: []Pathway{{
		Name: "p",
		Criteria: []Criterion{
			{Field: "consent_on_file", Operator: OpPresent, Reason: "consent required"},
		},
	}}})
	assessment, err := r.Evaluate("p", map[string]any{"consent_on_file": true})
	require.NoError(t, err)
	assert.True(t, assessment.Eligible)
}
