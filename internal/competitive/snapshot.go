// Package competitive aggregates a small nearby-competitor sample into a
// market snapshot. Samples are small by design; positioning is relative to
// the sample average, never a percentile.
package competitive

import (
	"github.com/sells-group/triage-cli/internal/model"
)

// Competitor is one sampled nearby practice.
type Competitor struct {
	PlaceID     string   `json:"place_id,omitempty"`
	Name        string   `json:"name"`
	Rating      *float64 `json:"rating,omitempty"`
	ReviewCount int      `json:"review_count"`
}

// BuildSnapshot aggregates competitors into a competitive snapshot for the
// lead. An empty sample yields the zero-confidence snapshot.
func BuildSnapshot(lead *model.Lead, competitors []Competitor) model.CompetitiveSnapshot {
	out := model.CompetitiveSnapshot{MarketDensity: model.TierLow}
	if len(competitors) == 0 {
		return out
	}

	out.Sampled = len(competitors)
	out.LeadReviewCount = lead.ReviewCount

	var countSum int
	var ratingSum float64
	var rated int
	for _, c := range competitors {
		countSum += c.ReviewCount
		if c.Rating != nil {
			ratingSum += *c.Rating
			rated++
		}
	}

	out.AvgReviewCount = round1(float64(countSum) / float64(len(competitors)))
	if rated > 0 {
		out.AvgRating = round2(ratingSum / float64(rated))
	}

	switch {
	case float64(lead.ReviewCount) > out.AvgReviewCount:
		out.ReviewPositioning = model.PositionAboveAverage
	case float64(lead.ReviewCount) < out.AvgReviewCount:
		out.ReviewPositioning = model.PositionBelowAverage
	default:
		out.ReviewPositioning = model.PositionInLine
	}

	switch {
	case len(competitors) >= 5 && out.AvgReviewCount >= 80:
		out.MarketDensity = model.TierHigh
	case len(competitors) >= 3 || out.AvgReviewCount >= 40:
		out.MarketDensity = model.TierModerate
	}

	conf := 0.4 + 0.15*float64(len(competitors))
	if conf > 1.0 {
		conf = 1.0
	}
	out.Confidence = round2(conf)
	return out
}

func round1(f float64) float64 { return float64(int(f*10+0.5)) / 10 }
func round2(f float64) float64 { return float64(int(f*100+0.5)) / 100 }
