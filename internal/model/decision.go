package model

// Status is the three-way grading of one growth dimension.
type Status string

const (
	StatusStrong   Status = "Strong"
	StatusModerate Status = "Moderate"
	StatusWeak     Status = "Weak"
)

// Valid reports whether s is one of the three recognized statuses.
func (s Status) Valid() bool {
	return s == StatusStrong || s == StatusModerate || s == StatusWeak
}

// Bottleneck is the single diagnosed growth constraint for a lead.
type Bottleneck string

const (
	TrustLimited           Bottleneck = "trust_limited"
	VisibilityLimited      Bottleneck = "visibility_limited"
	ConversionLimited      Bottleneck = "conversion_limited"
	DemandLimited          Bottleneck = "demand_limited"
	SaturationLimited      Bottleneck = "saturation_limited"
	DifferentiationLimited Bottleneck = "differentiation_limited"
)

// Bottlenecks lists every recognized value, in diagnostic priority order.
var Bottlenecks = []Bottleneck{
	TrustLimited,
	VisibilityLimited,
	ConversionLimited,
	DemandLimited,
	SaturationLimited,
	DifferentiationLimited,
}

// Valid reports whether b is one of the six recognized bottlenecks.
func (b Bottleneck) Valid() bool {
	for _, k := range Bottlenecks {
		if b == k {
			return true
		}
	}
	return false
}

// SignalBlock is a categorical assessment of one growth dimension with
// supporting evidence and a confidence in [0,1].
type SignalBlock struct {
	Status     Status   `json:"status"`
	Evidence   []string `json:"evidence"`
	Confidence float64  `json:"confidence"`
}

// Signals holds the four signal blocks of one evaluation.
type Signals struct {
	Demand     SignalBlock `json:"demand"`
	Capture    SignalBlock `json:"capture"`
	Conversion SignalBlock `json:"conversion"`
	Trust      SignalBlock `json:"trust"`
}

// RootCause is the resolved bottleneck with its rationale.
type RootCause struct {
	Bottleneck      Bottleneck `json:"bottleneck"`
	WhyRootCause    string     `json:"why_root_cause"`
	Evidence        []string   `json:"evidence"`
	WhatWouldChange string     `json:"what_would_change"`
	Confidence      float64    `json:"confidence"`
}

// LeverAssessment judges whether organic-visibility work is the right
// first lever for the diagnosed bottleneck.
type LeverAssessment struct {
	Applicable       bool    `json:"applicable"`
	Reasoning        string  `json:"reasoning"`
	Confidence       float64 `json:"confidence"`
	AlternativeLever string  `json:"alternative_lever,omitempty"`
}

// SalesAnchor is the single issue a pitch should open with.
type SalesAnchor struct {
	Issue        string  `json:"issue"`
	WhyThisFirst string  `json:"why_this_first"`
	IfIgnored    string  `json:"what_happens_if_ignored"`
	Confidence   float64 `json:"confidence"`
}

// Intervention is one entry of the ordered remediation plan.
type Intervention struct {
	Priority         int     `json:"priority"`
	Action           string  `json:"action"`
	Category         string  `json:"category"` // Demand, Capture, Conversion, Trust
	ExpectedImpact   string  `json:"expected_impact"`
	TimeToSignalDays int     `json:"time_to_signal_days"`
	Confidence       float64 `json:"confidence"`
	WhyNotSecondYet  string  `json:"why_not_secondaries_yet,omitempty"`
}

// AccessRequest names one access grant to ask for before work starts.
type AccessRequest struct {
	InterventionRef string `json:"intervention_ref"`
	AccessType      string `json:"access_type"`
	WhyNeeded       string `json:"why_needed"`
	RiskLevel       string `json:"risk_level"`
	WhenToAsk       string `json:"when_to_ask"`
}

// OpportunityLabel classifies the competitive upside.
type OpportunityLabel string

const (
	HighLeverage     OpportunityLabel = "High-Leverage"
	ModerateLeverage OpportunityLabel = "Moderate"
	LowLeverage      OpportunityLabel = "Low-Leverage"
)

// ComparativeContext frames the lead against its sampled local market.
type ComparativeContext struct {
	Opportunity OpportunityLabel `json:"opportunity_label"`
	Why         string           `json:"why"`
	Sentence    string           `json:"sentence"`
}

// MaxDeRiskingQuestions bounds the clarifying-question list.
const MaxDeRiskingQuestions = 3

// DecisionLayer is the assembled triage verdict for one lead. The zero
// value is the explicit "no profile, not applicable" result. Instances are
// built fresh per evaluation and never mutated afterwards.
type DecisionLayer struct {
	RootCause     RootCause          `json:"root_bottleneck_classification"`
	Lever         LeverAssessment    `json:"seo_lever_assessment"`
	Signals       Signals            `json:"signals"`
	Comparative   ComparativeContext `json:"comparative_context"`
	Anchor        SalesAnchor        `json:"primary_sales_anchor"`
	Plan          []Intervention     `json:"intervention_plan"`
	Access        []AccessRequest    `json:"access_request_plan"`
	Questions     []string           `json:"de_risking_questions"`
	PriorityScore int                `json:"priority_score"`
}

// IsZero reports whether d is the empty "not applicable" record.
func (d DecisionLayer) IsZero() bool {
	return d.RootCause.Bottleneck == ""
}
