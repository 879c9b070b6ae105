package models

import "time"

// TurnRole identifies the speaker of one conversation-history entry.
type TurnRole string

const (
	TurnRoleUser      TurnRole = "user"
	TurnRoleAssistant TurnRole = "assistant"
	TurnRoleSystem    TurnRole = "system"
)

// Turn is one append-only conversation-history entry (spec.md §3).
type Turn struct {
	Role      TurnRole  `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// TokenCounters accumulates LLM usage for one user across all sessions.
type TokenCounters struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// ClinicalClarification is the pending-state marker set when the clinical
// engine asked a follow-up question, consumed by the next turn's clinical
// follow-up detection (spec.md §4.7).
type ClinicalClarification struct {
	ParsedPatientRecord map[string]any `json:"parsed_patient_record"`
	AskedAt             time.Time      `json:"asked_at"`
}

// ClinicalAssessment is the last clinical-support engine output, consumed by
// guideline enrichment on a later turn (spec.md §4.7).
type ClinicalAssessment struct {
	PreStrokeStatus string    `json:"pre_stroke_status,omitempty"`
	LastKnownWell   time.Time `json:"last_known_well,omitempty"`
	FlaggedPathways []string  `json:"flagged_pathways,omitempty"`
	AssessedAt      time.Time `json:"assessed_at"`
}

// Session is the per-user conversation state owned by the Session Store
// (spec.md §3, §4.2).
type Session struct {
	UID                           string
	SessionID                     string
	ConversationHistory           []Turn
	PendingClinicalClarification  *ClinicalClarification
	LastClinicalAssessment        *ClinicalAssessment
	TokenCounters                 TokenCounters
}

// RequestContext is the per-request bundle threaded through the pipeline
// (spec.md §3): owner identity and the raw query. The request's broker is
// passed to Orchestrator.Run separately, not carried here.
type RequestContext struct {
	UID       string
	SessionID string
	RawQuery  string
}
