package model

// Tier is a generic High/Moderate/Low grading used across profile and
// context blocks (booking friction, chair-fill risk, map-pack
// competitiveness, market density, revenue asymmetry).
type Tier string

const (
	TierHigh     Tier = "High"
	TierModerate Tier = "Moderate"
	TierLow      Tier = "Low"
)

// tierRank orders tiers for comparison; higher rank means a stronger grade.
var tierRank = map[Tier]int{
	TierLow:      0,
	TierModerate: 1,
	TierHigh:     2,
}

// AtLeast reports whether t grades at or above other. Unrecognized values
// rank below Low.
func (t Tier) AtLeast(other Tier) bool {
	return tierRank[t] >= tierRank[other]
}

// ReviewVsMarket positions a lead's review count against its market.
type ReviewVsMarket string

const (
	ReviewsAboveAverage ReviewVsMarket = "Above Average"
	ReviewsAverage      ReviewVsMarket = "Average"
	ReviewsBelowAverage ReviewVsMarket = "Below Average"
)

// VisibilityGap classifies the local visibility opportunity.
type VisibilityGap string

const (
	GapSaturated     VisibilityGap = "Saturated"
	GapCompetitive   VisibilityGap = "Competitive"
	GapUnderutilized VisibilityGap = "Underutilized"
)

// PracticeProfile is the externally produced practice profile: six named
// sub-profiles, each carrying its own confidence. Zero-valued sub-profiles
// (confidence 0) are valid and degrade downstream classification to
// neutral answers rather than errors.
type PracticeProfile struct {
	Classification PracticeClassification `json:"practice_classification"`
	Acquisition    AcquisitionReadiness   `json:"acquisition_readiness"`
	LocalSearch    LocalSearchPositioning `json:"local_search_positioning"`
	TrustSignals   TrustConversionSignals `json:"trust_conversion_signals"`
	ReviewIntent   ReviewIntentAnalysis   `json:"review_intent_analysis"`
	AgencyFit      AgencyFitReasoning     `json:"agency_fit_reasoning"`
}

// PracticeClassification identifies practice type and revenue character.
type PracticeClassification struct {
	PracticeType   string   `json:"practice_type"` // general_dentistry, cosmetic, orthodontic, multi_specialty, unknown
	ProcedureFocus []string `json:"procedure_focus_detected"`
	EstimatedLTV   Tier     `json:"estimated_ltv_class"`
	Confidence     float64  `json:"confidence"`
}

// AcquisitionReadiness grades how ready the practice is to absorb new
// patient demand.
type AcquisitionReadiness struct {
	BookingFriction Tier     `json:"booking_friction"`
	ConversionLeaks []string `json:"conversion_leaks"`
	ChairFillRisk   Tier     `json:"chair_fill_risk"`
	Confidence      float64  `json:"confidence"`
}

// LocalSearchPositioning places the practice in its local search market.
type LocalSearchPositioning struct {
	ReviewCountVsMarket ReviewVsMarket `json:"review_count_vs_market"`
	RatingStrength      Status         `json:"rating_strength"`
	MapPackCompet       Tier           `json:"map_pack_competitiveness"`
	VisibilityGap       VisibilityGap  `json:"visibility_gap"`
	Confidence          float64        `json:"confidence"`
}

// TrustConversionSignals are website trust markers found by the site scan.
type TrustConversionSignals struct {
	InsuranceVisible   bool    `json:"insurance_accepted_visible"`
	BeforeAfterGallery bool    `json:"before_after_gallery"`
	CredentialsVisible bool    `json:"doctor_credentials_visible"`
	Confidence         float64 `json:"confidence"`
}

// ReviewIntentAnalysis summarizes patient intent surfaced in review text.
type ReviewIntentAnalysis struct {
	ProcedureMentions []string `json:"procedure_mentions"`
	UrgencyLanguage   bool     `json:"urgency_language_detected"`
	InsuranceMentions bool     `json:"insurance_mentions"`
	Confidence        float64  `json:"confidence"`
}

// AgencyFitReasoning is the profiler's own read on outreach fit.
type AgencyFitReasoning struct {
	IdealForOutreach bool     `json:"ideal_for_seo_outreach"`
	Why              []string `json:"why"`
	RiskFlags        []string `json:"risk_flags"`
	Confidence       float64  `json:"confidence"`
}
