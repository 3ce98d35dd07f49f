package decision

import (
	"fmt"

	"github.com/sells-group/triage-cli/internal/model"
)

// BuildComparativeContext classifies the competitive opportunity and
// produces the one-line market framing. No missing high-value pages means
// there is nothing to build, regardless of density or schema; missing
// pages in a dense market without schema is the strongest upside.
func BuildComparativeContext(lead *model.Lead, svc *model.ServiceIntelligence, snap *model.CompetitiveSnapshot) model.ComparativeContext {
	label, why := classifyOpportunity(svc, snap)
	return model.ComparativeContext{
		Opportunity: label,
		Why:         why,
		Sentence:    marketSentence(lead, snap),
	}
}

func classifyOpportunity(svc *model.ServiceIntelligence, snap *model.CompetitiveSnapshot) (model.OpportunityLabel, string) {
	var missing int
	schema := false
	if svc != nil {
		missing = len(svc.MissingHighValue)
		schema = svc.SchemaDetected
	}
	if missing == 0 {
		return model.LowLeverage, "No missing high-value pages; the service surface is already built out."
	}

	density := model.Tier("")
	if snap != nil {
		density = snap.MarketDensity
	}
	if !schema && density == model.TierHigh {
		return model.HighLeverage, fmt.Sprintf("%d high-value pages missing and no structured data in a high-density market.", missing)
	}
	return model.ModerateLeverage, fmt.Sprintf("%d high-value pages missing; moderate competitive upside.", missing)
}

// marketSentence frames the lead against the sampled market, or against
// typical local patterns when no sample exists.
func marketSentence(lead *model.Lead, snap *model.CompetitiveSnapshot) string {
	if snap != nil && snap.Sampled > 0 {
		return fmt.Sprintf(
			"Among %d nearby dentists, this practice has %d reviews (sample avg %.0f); %s. Market density: %s.",
			snap.Sampled, lead.ReviewCount, snap.AvgReviewCount, snap.ReviewPositioning, snap.MarketDensity,
		)
	}

	const (
		typicalVolume  = 50
		typicalRecency = 90
	)
	belowVolume := lead.ReviewCount < typicalVolume
	stale := lead.LastReviewDaysAgo != nil && *lead.LastReviewDaysAgo > typicalRecency

	switch {
	case belowVolume && stale:
		return fmt.Sprintf(
			"Practices with strong map visibility typically have higher review volume and recent activity; this profile is below that pattern (review count %d, last review %d days ago).",
			lead.ReviewCount, *lead.LastReviewDaysAgo,
		)
	case belowVolume:
		return fmt.Sprintf(
			"This profile has below-typical review volume (%d reviews) but recent activity; visibility could improve with more consistent engagement.",
			lead.ReviewCount,
		)
	case stale:
		return fmt.Sprintf(
			"This profile has solid review volume (%d) but review activity has slowed (last review %d days ago); refreshing engagement could help visibility.",
			lead.ReviewCount, *lead.LastReviewDaysAgo,
		)
	default:
		return fmt.Sprintf(
			"This profile is consistent with typical local visibility patterns based on review count (%d) and recency.",
			lead.ReviewCount,
		)
	}
}
