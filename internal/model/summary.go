package model

// Verdict is the human-facing pursue recommendation.
type Verdict string

const (
	VerdictYes   Verdict = "Yes"
	VerdictMaybe Verdict = "Maybe"
	VerdictNo    Verdict = "No"
)

// RevenueBand is an annual revenue range in whole dollars, plus the gap a
// stronger organic presence could plausibly close.
type RevenueBand struct {
	Lower           int64   `json:"lower"`
	Upper           int64   `json:"upper"`
	OrganicGapLower int64   `json:"organic_gap_lower"`
	OrganicGapUpper int64   `json:"organic_gap_upper"`
	IndicativeOnly  bool    `json:"indicative_only"`
	Confidence      int     `json:"confidence"` // 0-100
	ModelVersion    string  `json:"model_version"`
	Multiplier      float64 `json:"multiplier"`
}

// EvidenceBuckets groups supporting evidence for the summary, capped per
// category so the report stays one page.
type EvidenceBuckets struct {
	Reputation []string `json:"reputation_signals"`
	Market     []string `json:"market_signals"`
	Digital    []string `json:"digital_signals"`
	Revenue    []string `json:"revenue_signals"`
}

// CanonicalSummary is the single source of truth the report renderer and
// outcome ledger consume. Identical triage inputs must produce a
// byte-identical summary: the ledger keys idempotency on its content hash.
type CanonicalSummary struct {
	LeadName        string          `json:"lead_name"`
	Bottleneck      Bottleneck      `json:"bottleneck"`
	WhyRootCause    string          `json:"why_root_cause"`
	WorthPursuing   Verdict         `json:"worth_pursuing"`
	PursuitReason   string          `json:"pursuit_reason"`
	MarketPosition  string          `json:"market_position"`
	RightLever      string          `json:"right_lever"`
	PriorityScore   int             `json:"priority_score"`
	RevenueBand     *RevenueBand    `json:"revenue_band,omitempty"`
	Evidence        EvidenceBuckets `json:"supporting_evidence"`
	ConfidenceLevel string          `json:"confidence_level"` // High, Medium, Low
	ConfidenceNotes []string        `json:"confidence_notes"`
	Disclaimers     []string        `json:"disclaimers"`
}
