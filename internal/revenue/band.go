package revenue

import (
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/triage-cli/internal/model"
)

// ModelVersion identifies the band model; stored with every estimate so
// outcome calibration can segment by version.
const ModelVersion = "v2"

// Operating floor for a practice that is actually seeing patients.
const (
	revenueFloorLower = 300_000
	revenueFloorUpper = 400_000
	maxGapShare       = 0.30
)

// BandInput carries everything the band model reads.
type BandInput struct {
	Lead            *model.Lead
	Service         *model.ServiceIntelligence
	HighIncomeMetro bool
	PricingPage     bool
}

// EstimateBand computes the tier-based annual revenue band and the capped
// organic gap. Not linear in review count: tiers, then proportional
// modifiers, then the operating floor.
func EstimateBand(in BandInput) model.RevenueBand {
	lower, upper := baseBand(in.Lead.ReviewCount)

	highTicket := false
	missing := false
	if in.Service != nil {
		highTicket = highTicketEmphasized(in.Service.HighTicketProcedures)
		missing = len(in.Service.MissingHighValue) > 0
	}

	mult := 1.0
	if highTicket {
		mult += 0.15
	}
	if in.Lead.MultipleLocations {
		mult += 0.20
	}
	if in.Lead.StaffCount != nil && *in.Lead.StaffCount >= 3 {
		mult += 0.10
	}
	if in.HighIncomeMetro {
		mult += 0.10
	}

	lower = int64(math.Round(float64(lower) * mult))
	upper = int64(math.Round(float64(upper) * mult))
	if lower < revenueFloorLower {
		lower = revenueFloorLower
	}
	if upper < revenueFloorUpper {
		upper = revenueFloorUpper
	}
	if lower > upper {
		upper = lower
	}

	gapLower, gapUpper := organicGap(lower, upper, missing, in.Lead.RunsPaidAds)

	conf := confidenceScore(in)

	band := model.RevenueBand{
		Lower:           lower,
		Upper:           upper,
		OrganicGapLower: gapLower,
		OrganicGapUpper: gapUpper,
		IndicativeOnly:  conf < 40,
		Confidence:      conf,
		ModelVersion:    ModelVersion,
		Multiplier:      mult,
	}

	zap.L().Debug("revenue: band estimated",
		zap.String("lead", in.Lead.Name),
		zap.Int64("lower", lower),
		zap.Int64("upper", upper),
		zap.Int("confidence", conf),
		zap.Float64("multiplier", mult),
	)
	return band
}

// baseBand returns the tier band for a review count.
func baseBand(reviewCount int) (int64, int64) {
	switch {
	case reviewCount < 30:
		return 400_000, 900_000
	case reviewCount < 150:
		return 900_000, 1_800_000
	case reviewCount < 400:
		return 1_500_000, 2_800_000
	default:
		return 2_500_000, 4_000_000
	}
}

func highTicketEmphasized(procedures []string) bool {
	for _, p := range procedures {
		if strings.Contains(p, "implant") || strings.Contains(p, "invisalign") {
			return true
		}
	}
	return false
}

// organicGap estimates the revenue a stronger organic presence could
// close, hard-capped at maxGapShare of the band's upper bound.
func organicGap(lower, upper int64, missingPages, adsActive bool) (int64, int64) {
	var pctLo, pctHi float64
	switch {
	case missingPages && adsActive:
		pctLo, pctHi = 0.15, 0.20
	case missingPages:
		pctLo, pctHi = 0.08, 0.12
	default:
		pctLo, pctHi = 0.03, 0.07
	}

	gapCap := int64(float64(upper) * maxGapShare)
	gapLo := int64(math.Round(float64(lower) * pctLo))
	gapHi := int64(math.Round(float64(upper) * pctHi))
	if gapHi > gapCap {
		gapHi = gapCap
	}
	if gapLo > gapHi {
		gapLo = gapHi
	}
	return gapLo, gapHi
}

// confidenceScore grades how much to trust the band, 0-100.
func confidenceScore(in BandInput) int {
	score := 50
	if in.Lead.StaffCount != nil {
		score += 10
	}
	if in.Lead.MultipleLocations {
		score += 10
	}
	if in.PricingPage {
		score += 10
	}
	if in.Service != nil && highTicketEmphasized(in.Service.HighTicketProcedures) {
		score += 10
	}
	if !in.Lead.HasWebsite {
		score -= 25
	}
	switch {
	case in.Lead.ReviewCount < 15:
		score -= 15
	case in.Lead.ReviewCount < 30:
		score -= 5
	}
	if in.Service == nil ||
		(len(in.Service.HighTicketProcedures) == 0 && len(in.Service.GeneralServices) == 0) {
		score -= 15
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}
