package masking

import (
	"encoding/json"
	"strings"
)

// MaskedFieldValue is the replacement string for masked patient-record
// fields.
const MaskedFieldValue = "[MASKED_PHI]"

// patientRecordFields are the keys PatientRecordMasker redacts wherever
// they appear in a parsed JSON object, case-insensitively.
var patientRecordFields = map[string]bool{
	"patient_name": true,
	"name":         true,
	"dob":          true,
	"date_of_birth": true,
	"mrn":          true,
	"ssn":          true,
	"phone":        true,
	"address":      true,
}

// PatientRecordMasker masks identifying fields inside a parsed patient
// record JSON blob while leaving structural/clinical fields (pathway
// flags, last-known-well timestamps, criteria results) untouched — the
// same structural-awareness-over-regex-sweep approach teacher's
// KubernetesSecretMasker uses for Secret resources, re-targeted from
// Kubernetes resource kinds to clinical record shape.
type PatientRecordMasker struct{}

func (m *PatientRecordMasker) Name() string { return "patient_record" }

func (m *PatientRecordMasker) AppliesTo(data string) bool {
	trimmed := strings.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	lower := strings.ToLower(data)
	return strings.Contains(lower, "patient_name") || strings.Contains(lower, "\"mrn\"") || strings.Contains(lower, "\"dob\"")
}

// Mask parses data as a JSON object, redacts identifying fields at every
// nesting level, and re-serializes. Returns the original data on any parse
// error (defensive, per the Masker contract).
func (m *PatientRecordMasker) Mask(data string) string {
	var doc map[string]any
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return data
	}
	maskRecordFields(doc)
	out, err := json.Marshal(doc)
	if err != nil {
		return data
	}
	return string(out)
}

func maskRecordFields(doc map[string]any) {
	for key, val := range doc {
		if patientRecordFields[strings.ToLower(key)] {
			doc[key] = MaskedFieldValue
			continue
		}
		switch v := val.(type) {
		case map[string]any:
			maskRecordFields(v)
		case []any:
			for _, item := range v {
				if nested, ok := item.(map[string]any); ok {
					maskRecordFields(nested)
				}
			}
		}
	}
}
