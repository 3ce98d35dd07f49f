// Package summary assembles the canonical lead summary from already
// computed objects. It derives no new numbers: every field is pulled or
// phrased from the decision layer, the revenue band, and the lead
// signals, so identical inputs always yield an identical summary.
package summary

import (
	"fmt"
	"strings"

	"github.com/sells-group/triage-cli/internal/model"
)

const (
	maxEvidencePerBucket = 4
	lowReviewThreshold   = 15
)

// Input carries everything the summary pulls from.
type Input struct {
	Lead     *model.Lead
	Decision *model.DecisionLayer
	Band     *model.RevenueBand
	Ctx      model.TriageContext
}

// Build produces the canonical summary. Decision must be non-zero;
// Band and Ctx members may be nil and degrade to indicative wording.
func Build(in Input) *model.CanonicalSummary {
	if in.Lead == nil || in.Decision == nil || in.Decision.IsZero() {
		return nil
	}

	verdict, reason := worthPursuing(in)

	s := &model.CanonicalSummary{
		LeadName:        in.Lead.Name,
		Bottleneck:      in.Decision.RootCause.Bottleneck,
		WhyRootCause:    truncate(in.Decision.RootCause.WhyRootCause, 400),
		WorthPursuing:   verdict,
		PursuitReason:   reason,
		MarketPosition:  marketPosition(in.Ctx.Competitive),
		RightLever:      rightLever(in.Decision.Lever),
		PriorityScore:   in.Decision.PriorityScore,
		RevenueBand:     in.Band,
		Evidence:        buildEvidence(in),
		ConfidenceLevel: confidenceLevel(in),
		ConfidenceNotes: confidenceNotes(in),
		Disclaimers:     disclaimers(in.Band),
	}
	return s
}

// worthPursuing returns the pursue verdict and a one-line reason. Rules
// run in order; the first match wins.
func worthPursuing(in Input) (model.Verdict, string) {
	bandConf := 50
	if in.Band != nil {
		bandConf = in.Band.Confidence
	}

	switch {
	case !in.Lead.HasWebsite:
		return model.VerdictMaybe, "Limited data; no website. Verify before outreach."
	case in.Decision.RootCause.Bottleneck == model.TrustLimited && bandConf < 40:
		return model.VerdictMaybe, "Trust and reputation are the main constraint; verify readiness before pitching search work."
	case in.Decision.RootCause.Bottleneck == model.SaturationLimited && !in.Decision.Lever.Applicable:
		return model.VerdictMaybe, "Market saturated; differentiation or conversion may matter more than search visibility."
	case in.Decision.PriorityScore >= 70 && in.Decision.Lever.Applicable:
		return model.VerdictYes, "Strong fit: organic search is the primary lever with clear upside."
	case in.Decision.PriorityScore < 35:
		return model.VerdictNo, "Low fit for search-first outreach; consider pass or a different angle."
	}

	if why := in.Decision.RootCause.WhyRootCause; why != "" {
		return model.VerdictMaybe, truncate(why, 200)
	}
	return model.VerdictMaybe, "Worth a closer look; constraint and lever above."
}

func marketPosition(cs *model.CompetitiveSnapshot) string {
	if cs == nil || cs.Sampled == 0 {
		return "No competitive sample available."
	}
	pos := cs.ReviewPositioning
	if pos == "" {
		pos = "Unknown position"
	}
	density := strings.ToLower(string(cs.MarketDensity))
	if density == "" {
		density = "unknown"
	}
	return fmt.Sprintf("%s in a %s density market.", pos, density)
}

func rightLever(lever model.LeverAssessment) string {
	if lever.Applicable {
		return "Organic search is the primary growth lever."
	}
	if alt := strings.TrimSpace(lever.AlternativeLever); alt != "" {
		return fmt.Sprintf("Organic search is secondary; focus on %s first.", alt)
	}
	return "Organic search may not be the highest-impact lever; see constraint above."
}

func confidenceLevel(in Input) string {
	conf := 50
	if in.Band != nil {
		conf = in.Band.Confidence
	}
	var level string
	switch {
	case conf >= 70:
		level = "High"
	case conf >= 40:
		level = "Medium"
	default:
		level = "Low"
	}

	var limits []string
	if !in.Lead.HasWebsite {
		limits = append(limits, "no website")
	}
	if in.Lead.ReviewCount < lowReviewThreshold {
		limits = append(limits, "very low review count")
	}
	if len(limits) > 0 {
		return fmt.Sprintf("%s (limited by: %s)", level, strings.Join(limits, ", "))
	}
	return level
}

func confidenceNotes(in Input) []string {
	var notes []string
	if !in.Lead.HasWebsite {
		notes = append(notes, "No website; estimates are indicative.")
	}
	if in.Lead.ReviewCount < lowReviewThreshold {
		notes = append(notes, "Very low review count; revenue band is indicative.")
	}
	if svc := in.Ctx.Service; svc == nil ||
		(len(svc.HighTicketProcedures) == 0 && len(svc.GeneralServices) == 0) {
		notes = append(notes, "No services detected; revenue and gap are indicative.")
	}
	if in.Band != nil && in.Band.IndicativeOnly {
		notes = append(notes, "Revenue band is indicative only (limited data).")
	}
	return notes
}

func buildEvidence(in Input) model.EvidenceBuckets {
	return model.EvidenceBuckets{
		Reputation: capBucket(reputationSignals(in.Lead)),
		Market:     capBucket(marketSignals(in.Ctx.Competitive, in.Lead.Profile)),
		Digital:    capBucket(digitalSignals(in.Lead, in.Ctx.Service)),
		Revenue:    capBucket(revenueSignals(in.Band)),
	}
}

func reputationSignals(lead *model.Lead) []string {
	var out []string
	rating := lead.RatingValue()
	switch {
	case rating > 0 && lead.ReviewCount > 0:
		out = append(out, fmt.Sprintf("Rating %.1f from %d reviews", rating, lead.ReviewCount))
	case lead.ReviewCount > 0:
		out = append(out, fmt.Sprintf("%d reviews", lead.ReviewCount))
	}
	if lead.LastReviewDaysAgo != nil {
		if d := *lead.LastReviewDaysAgo; d <= 30 {
			out = append(out, "Last review within last 30 days")
		} else {
			out = append(out, fmt.Sprintf("Last review %d days ago", d))
		}
	}
	if rating > 0 && rating < 4.0 {
		out = append(out, fmt.Sprintf("Below-market rating (%.1f)", rating))
	}
	return out
}

func marketSignals(cs *model.CompetitiveSnapshot, profile *model.PracticeProfile) []string {
	var out []string
	if cs != nil && cs.Sampled > 0 {
		if cs.ReviewPositioning != "" {
			out = append(out, fmt.Sprintf("%s (%d vs %.0f)", cs.ReviewPositioning, cs.LeadReviewCount, cs.AvgReviewCount))
		}
		if cs.MarketDensity != "" {
			out = append(out, fmt.Sprintf("%s market density", cs.MarketDensity))
		}
	}
	if profile != nil && profile.LocalSearch.VisibilityGap == model.GapSaturated {
		out = append(out, "Market saturation detected")
	}
	return out
}

func digitalSignals(lead *model.Lead, svc *model.ServiceIntelligence) []string {
	var out []string
	if lead.RunsPaidAds {
		var labels []string
		for _, c := range lead.PaidAdsChannels {
			switch strings.ToLower(c) {
			case "google":
				labels = append(labels, "Google Ads")
			case "meta":
				labels = append(labels, "Meta Ads")
			}
		}
		if len(labels) > 0 {
			out = append(out, strings.Join(labels, " and ")+" active")
		} else {
			out = append(out, "Paid ads active")
		}
	}
	var missing []string
	if svc != nil {
		missing = svc.MissingHighValue
	}
	for i, m := range missing {
		if i == 3 {
			break
		}
		out = append(out, fmt.Sprintf("Missing dedicated %s page", m))
	}
	if !lead.HasScheduling && (len(missing) > 0 || lead.RunsPaidAds) {
		out = append(out, "No online booking detected")
	}
	if svc != nil && !svc.SchemaDetected {
		out = append(out, "No schema markup")
	}
	if !lead.HasWebsite {
		out = append(out, "No website")
	}
	return out
}

func revenueSignals(band *model.RevenueBand) []string {
	if band == nil {
		return nil
	}
	var out []string
	if band.Lower > 0 && band.Upper > 0 {
		out = append(out, fmt.Sprintf("Revenue band: $%.1fM-$%.1fM (annual)",
			float64(band.Lower)/1e6, float64(band.Upper)/1e6))
	}
	if band.OrganicGapLower > 0 || band.OrganicGapUpper > 0 {
		out = append(out, "Organic revenue gap estimated (missing pages / baseline)")
	}
	if band.IndicativeOnly {
		out = append(out, "Revenue indicative only (limited data)")
	}
	return out
}

func disclaimers(band *model.RevenueBand) []string {
	var out []string
	if band != nil && band.IndicativeOnly {
		out = append(out, "Revenue band is indicative where data is limited (no website, low reviews, or no services detected).")
	}
	return out
}

func capBucket(s []string) []string {
	if len(s) > maxEvidencePerBucket {
		return s[:maxEvidencePerBucket]
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
