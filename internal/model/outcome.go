package model

import "time"

// OutcomeType names a stage of the sales funnel or a calibration report.
type OutcomeType string

const (
	OutcomeContacted  OutcomeType = "contacted"
	OutcomeReplied    OutcomeType = "replied"
	OutcomeBooked     OutcomeType = "booked"
	OutcomeClosed     OutcomeType = "closed"
	OutcomeRevenue    OutcomeType = "revenue_reported"
	OutcomeConversion OutcomeType = "conversion_reported"
)

// ValidOutcomeType reports whether t is a recognized outcome type.
func ValidOutcomeType(t OutcomeType) bool {
	switch t {
	case OutcomeContacted, OutcomeReplied, OutcomeBooked, OutcomeClosed,
		OutcomeRevenue, OutcomeConversion:
		return true
	}
	return false
}

// Outcome is one append-only ledger entry, keyed by the content hash of
// the canonical summary the sales touch was based on.
type Outcome struct {
	ID          string         `json:"id"`
	SummaryHash string         `json:"summary_hash"`
	Type        OutcomeType    `json:"outcome_type"`
	Data        map[string]any `json:"outcome_data,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Diagnostic is one stored triage result.
type Diagnostic struct {
	ID          string           `json:"id"`
	LeadID      string           `json:"lead_id"`
	LeadName    string           `json:"lead_name"`
	SummaryHash string           `json:"summary_hash"`
	Decision    DecisionLayer    `json:"decision"`
	Summary     CanonicalSummary `json:"summary"`
	CreatedAt   time.Time        `json:"created_at"`
}
