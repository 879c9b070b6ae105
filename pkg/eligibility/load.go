package eligibility

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var ruleValidator = validator.New()

// LoadRuleSetFromFile reads a YAML rule set from path, then validates it
// with the same struct-tag validator teacher config loaders run against
// parsed YAML before accepting it. The file's content is operational data
// owned by clinical staff, not this package, so malformed criteria (a
// pathway with no criteria, an operator outside the supported set, a
// criterion with no field name) fail at load time rather than surfacing as
// a silently-always-false eligibility check at request time.
func LoadRuleSetFromFile(path string) (RuleSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("eligibility: read rule file: %w", err)
	}
	var rules RuleSet
	if err := yaml.Unmarshal(raw, &rules); err != nil {
		return RuleSet{}, fmt.Errorf("eligibility: parse rule file: %w", err)
	}
	if err := ruleValidator.Struct(rules); err != nil {
		return RuleSet{}, fmt.Errorf("eligibility: invalid rule file: %w", err)
	}
	return rules, nil
}
