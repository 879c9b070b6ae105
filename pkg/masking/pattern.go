package masking

import (
	"log/slog"
	"regexp"
)

// CompiledPattern holds a pre-compiled regex pattern with its replacement.
type CompiledPattern struct {
	Name        string
	Regex       *regexp.Regexp
	Replacement string
	Description string
}

// patternSpec is the declarative form compiled into CompiledPattern at
// startup, the same shape teacher's config.BuiltinConfig.MaskingPatterns
// holds — here a fixed built-in table instead of config-driven, since the
// identifier shapes below are structural (MRN/DOB/phone formats), not
// clinical logic, and are not excluded by the eligibility-content Non-goal.
type patternSpec struct {
	name        string
	pattern     string
	replacement string
	description string
}

var builtinPatterns = []patternSpec{
	{
		name:        "mrn",
		pattern:     `\bMRN[-:\s]*\d{5,10}\b`,
		replacement: "[MASKED_MRN]",
		description: "medical record number",
	},
	{
		name:        "dob",
		pattern:     `\b(0[1-9]|1[0-2])[/-](0[1-9]|[12]\d|3[01])[/-](19|20)\d{2}\b`,
		replacement: "[MASKED_DOB]",
		description: "date of birth, MM/DD/YYYY or MM-DD-YYYY",
	},
	{
		name:        "ssn",
		pattern:     `\b\d{3}-\d{2}-\d{4}\b`,
		replacement: "[MASKED_SSN]",
		description: "US social security number",
	},
	{
		name:        "phone",
		pattern:     `\b(\+1[-.\s]?)?\(?\d{3}\)?[-.\s]\d{3}[-.\s]\d{4}\b`,
		replacement: "[MASKED_PHONE]",
		description: "US phone number",
	},
}

// compileBuiltinPatterns compiles every built-in pattern. Invalid patterns
// are logged and skipped, never a startup failure.
func compileBuiltinPatterns() map[string]*CompiledPattern {
	compiled := make(map[string]*CompiledPattern, len(builtinPatterns))
	for _, spec := range builtinPatterns {
		re, err := regexp.Compile(spec.pattern)
		if err != nil {
			slog.Error("failed to compile built-in masking pattern, skipping", "pattern", spec.name, "error", err)
			continue
		}
		compiled[spec.name] = &CompiledPattern{
			Name:        spec.name,
			Regex:       re,
			Replacement: spec.replacement,
			Description: spec.description,
		}
	}
	return compiled
}
