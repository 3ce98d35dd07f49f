package decision

import (
	"fmt"

	"github.com/sells-group/triage-cli/internal/model"
)

// anchorIssue maps each bottleneck to the single issue a pitch opens with.
var anchorIssue = map[model.Bottleneck]string{
	model.DemandLimited:          "Validate demand before scaling visibility",
	model.VisibilityLimited:      "Improve local visibility and review presence",
	model.ConversionLimited:      "Reduce booking or intake friction",
	model.TrustLimited:           "Strengthen reputation and trust signals first",
	model.SaturationLimited:      "Amplify the high-value niche before buying more visibility",
	model.DifferentiationLimited: "Build clear service or niche positioning",
}

// BuildAnchor produces the primary sales anchor aligned to the diagnosed
// bottleneck.
func BuildAnchor(root model.RootCause) model.SalesAnchor {
	return model.SalesAnchor{
		Issue:        anchorIssue[root.Bottleneck],
		WhyThisFirst: root.WhyRootCause,
		IfIgnored:    "Revenue or patient flow remains constrained.",
		Confidence:   root.Confidence,
	}
}

// planStep is one templated intervention before ordering is applied.
type planStep struct {
	action   string
	category string
	impact   string
	days     int
}

// PlanInterventions produces the ordered remediation plan for the
// diagnosed bottleneck. The first entry is always the fastest-to-signal
// action addressing the root cause; later entries reinforce secondary
// weak blocks.
func PlanInterventions(in Input, root model.RootCause) []model.Intervention {
	firstMissing := "high-value procedure"
	if svc := in.Ctx.Service; svc != nil && len(svc.MissingHighValue) > 0 {
		firstMissing = svc.MissingHighValue[0]
	}

	steps := planSteps(root.Bottleneck, firstMissing)
	steps = append(steps, secondarySteps(in.Signals, root.Bottleneck)...)

	plan := make([]model.Intervention, 0, len(steps))
	for i, s := range steps {
		entry := model.Intervention{
			Priority:         i + 1,
			Action:           s.action,
			Category:         s.category,
			ExpectedImpact:   s.impact,
			TimeToSignalDays: s.days,
			Confidence:       0.5,
		}
		if i == 0 {
			entry.WhyNotSecondYet = "Addressing the root bottleneck first avoids spreading effort."
		}
		plan = append(plan, entry)
	}
	return plan
}

func planSteps(b model.Bottleneck, firstMissing string) []planStep {
	switch b {
	case model.TrustLimited:
		return []planStep{
			{"Set up a post-visit review request (email or SMS) and track review velocity; surface ratings and credentials above the fold on key pages.", "Trust", "Rebuilds the trust baseline every other lever depends on.", 30},
			{"Add LocalBusiness and AggregateRating schema where eligible; improve business-profile Q&A and service attributes.", "Trust", "Improves how reputation renders in local results.", 45},
			{"Improve on-page trust content (credentials, insurance, before/after where applicable) and add a contact conversion goal to measure impact.", "Conversion", "Converts restored trust into booked visits.", 45},
		}
	case model.ConversionLimited:
		return []planStep{
			{"Add a conversion-tracked booking CTA above the fold on high-value service pages and set a goal for form or booking completions.", "Conversion", "Directly removes the intake bottleneck.", 30},
			{"Add LocalBusiness schema and a clear phone-plus-booking CTA to every service page.", "Conversion", "Reduces friction on every entry path.", 45},
			{"Optimize the business profile for booking: booking link, hours, services; add a review request to the post-visit flow.", "Capture", "Captures intent that currently leaks at the profile.", 45},
		}
	case model.DemandLimited:
		return []planStep{
			{"Validate demand and channel mix with a simple tracking setup before investing in new pages.", "Demand", "Confirms where patients actually come from.", 30},
			{"Add LocalBusiness (and MedicalBusiness where applicable) schema and verify rich results.", "Demand", "Ensures existing demand can find the practice.", 45},
			{fmt.Sprintf("Create or optimize one high-intent %s landing page and add a conversion goal to measure demand capture.", firstMissing), "Capture", "Measures whether built demand converts.", 45},
		}
	case model.SaturationLimited:
		return []planStep{
			{fmt.Sprintf("Create a dedicated %s landing page with local intent and schema; target one high-value procedure, not a generic services page.", firstMissing), "Capture", "Concentrates effort where the niche edge is sellable.", 30},
			{"Add schema to new and existing service pages; optimize the business-profile primary category and service attributes for the procedure.", "Capture", "Sharpens positioning in a crowded map pack.", 45},
			{"Add a conversion goal and above-the-fold CTA on the new high-value page.", "Conversion", "Proves the niche page produces patients, not just traffic.", 45},
		}
	case model.DifferentiationLimited:
		return []planStep{
			{fmt.Sprintf("Create a dedicated %s landing page with local keywords and MedicalBusiness or Service schema.", firstMissing), "Capture", "Gives the practice a distinct position to rank and sell on.", 30},
			{"Add MedicalBusiness/Service schema to the new page and key service URLs; submit the sitemap.", "Capture", "Makes the differentiation machine-readable.", 45},
			{"Add conversion tracking and a clear CTA on the new page; optimize the business-profile primary category for the procedure.", "Conversion", "Connects the new positioning to booked visits.", 45},
		}
	default: // visibility_limited
		return []planStep{
			{fmt.Sprintf("Create a dedicated %s landing page with local keywords and LocalBusiness schema; submit the URL for indexing.", firstMissing), "Capture", "Addresses the root visibility constraint; measurable in 60 days.", 30},
			{"Add MedicalBusiness or Service schema to the site and fix any rich-result errors.", "Capture", "Improves local pack and SERP visibility.", 45},
			{"Optimize the business profile: primary category, service attributes, one post per month; add a review request to the post-visit flow.", "Capture", "Compounds visibility with review velocity.", 45},
		}
	}
}

// secondarySteps appends one reinforcing action per secondary weak block,
// in descending severity order (trust, capture, conversion, demand),
// skipping the block the root cause already covers.
func secondarySteps(signals model.Signals, b model.Bottleneck) []planStep {
	rootBlock := map[model.Bottleneck]string{
		model.TrustLimited:           "Trust",
		model.VisibilityLimited:      "Capture",
		model.SaturationLimited:      "Capture",
		model.DifferentiationLimited: "Capture",
		model.ConversionLimited:      "Conversion",
		model.DemandLimited:          "Demand",
	}[b]

	weak := []struct {
		name  string
		block model.SignalBlock
		step  planStep
	}{
		{"Trust", signals.Trust, planStep{"Stand up a review request flow and respond to recent negative reviews.", "Trust", "Shores up the weak trust block.", 60}},
		{"Capture", signals.Capture, planStep{"Audit service-page coverage and business-profile categories against local competitors.", "Capture", "Shores up the weak capture block.", 60}},
		{"Conversion", signals.Conversion, planStep{"Add a contact form or booking link to the highest-traffic pages.", "Conversion", "Shores up the weak conversion block.", 60}},
		{"Demand", signals.Demand, planStep{"Add lightweight channel tracking to learn where current patients originate.", "Demand", "Shores up the weak demand block.", 60}},
	}

	var out []planStep
	for _, w := range weak {
		if w.name == rootBlock || w.block.Status != model.StatusWeak {
			continue
		}
		out = append(out, w.step)
	}
	return out
}

// PlanAccessRequests lists the access grants needed before the plan can
// start.
func PlanAccessRequests(b model.Bottleneck) []model.AccessRequest {
	out := []model.AccessRequest{{
		InterventionRef: "Primary lever",
		AccessType:      "Google Business Profile - Manager",
		WhyNeeded:       "To implement visibility or reputation actions.",
		RiskLevel:       "Low",
		WhenToAsk:       "After initial agreement",
	}}
	switch b {
	case model.TrustLimited:
		out = append(out, model.AccessRequest{
			InterventionRef: "Review request flow",
			AccessType:      "Review platform or patient-communication tool",
			WhyNeeded:       "To set up post-visit review requests.",
			RiskLevel:       "Low",
			WhenToAsk:       "Before the first sprint",
		})
	default:
		out = append(out, model.AccessRequest{
			InterventionRef: "Landing page and schema work",
			AccessType:      "Website admin",
			WhyNeeded:       "To publish pages, schema, and conversion tracking.",
			RiskLevel:       "Moderate",
			WhenToAsk:       "Before the first sprint",
		})
	}
	return out
}
