package model

// ServiceIntelligence is the website service-depth scan result: which
// high-ticket procedures the site serves, which are only mentioned, and
// which dedicated pages are missing.
type ServiceIntelligence struct {
	HighTicketProcedures []string `json:"high_ticket_procedures_detected"`
	GeneralServices      []string `json:"general_services_detected"`
	MissingHighValue     []string `json:"missing_high_value_pages"`
	SchemaDetected       bool     `json:"schema_detected"`
	Confidence           float64  `json:"procedure_confidence"`
}

// CompetitiveSnapshot aggregates a small sample of nearby competitors.
type CompetitiveSnapshot struct {
	Sampled           int     `json:"dentists_sampled"`
	AvgReviewCount    float64 `json:"avg_review_count"`
	AvgRating         float64 `json:"avg_rating"`
	LeadReviewCount   int     `json:"lead_review_count"`
	ReviewPositioning string  `json:"review_positioning"` // vs sample average
	MarketDensity     Tier    `json:"market_density_score"`
	Confidence        float64 `json:"confidence"`
}

// Review positioning labels. Small samples get no percentile, only a
// position relative to the sample average.
const (
	PositionAboveAverage = "Above sample average"
	PositionBelowAverage = "Below sample average"
	PositionInLine       = "In line with sample average"
)

// RevenueLeverage describes where revenue asymmetry sits for the practice.
type RevenueLeverage struct {
	PrimaryDriver string  `json:"primary_revenue_driver_detected"` // implants, cosmetic, general, unknown
	Asymmetry     Tier    `json:"estimated_revenue_asymmetry"`
	GrowthVector  string  `json:"highest_leverage_growth_vector"`
	Confidence    float64 `json:"confidence"`
}

// TriageContext bundles the optional collaborator inputs to an evaluation.
// Nil members mean the corresponding upstream step did not run.
type TriageContext struct {
	Service     *ServiceIntelligence `json:"service_intelligence,omitempty"`
	Competitive *CompetitiveSnapshot `json:"competitive_snapshot,omitempty"`
	Revenue     *RevenueLeverage     `json:"revenue_leverage,omitempty"`
}
