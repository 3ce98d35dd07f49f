// Package decision implements the objective decision layer: pure,
// deterministic rule evaluation that turns lead signals and the practice
// profile into one diagnosed growth bottleneck, a lever verdict, a
// priority score, and an ordered intervention plan.
//
// Nothing in this package performs I/O, logs, or returns errors. Missing
// inputs degrade to neutral answers (Moderate status, confidence 0) so an
// evaluation never fails. Identical inputs always produce identical
// output; callers rely on that for content-hash idempotency.
package decision

import (
	"fmt"

	"github.com/sells-group/triage-cli/internal/model"
)

const maxEvidence = 5

// ClassifySignals derives the four signal blocks (demand, capture,
// conversion, trust) from a lead and its practice profile.
func ClassifySignals(lead *model.Lead, profile *model.PracticeProfile) model.Signals {
	return model.Signals{
		Demand:     classifyDemand(lead, profile),
		Capture:    classifyCapture(lead, profile),
		Conversion: classifyConversion(lead, profile),
		Trust:      classifyTrust(lead, profile),
	}
}

func classifyDemand(lead *model.Lead, profile *model.PracticeProfile) model.SignalBlock {
	var evidence []string
	score := 0.0

	if lead.RunsPaidAds {
		evidence = append(evidence, "Paid ads running (demand investment)")
		score += 0.4
	}
	switch {
	case lead.ReviewCount >= 30:
		evidence = append(evidence, "Solid review volume suggests local interest")
		score += 0.3
	case lead.ReviewCount >= 10:
		evidence = append(evidence, "Some review activity indicates demand")
		score += 0.15
	}
	if focus := profile.Classification.ProcedureFocus; len(focus) > 0 {
		evidence = append(evidence, "Service intent detected: "+joinFirst(focus, 3))
		score += 0.2
	}
	if profile.ReviewIntent.UrgencyLanguage {
		evidence = append(evidence, "Urgency language in reviews (high-intent demand)")
		score += 0.15
	}

	status := model.StatusWeak
	switch {
	case score >= 0.6:
		status = model.StatusStrong
	case score >= 0.25:
		status = model.StatusModerate
	}
	return block(status, evidence)
}

func classifyCapture(lead *model.Lead, profile *model.PracticeProfile) model.SignalBlock {
	local := profile.LocalSearch
	var evidence []string

	if local.ReviewCountVsMarket != "" {
		evidence = append(evidence, fmt.Sprintf("Review count vs market: %s", local.ReviewCountVsMarket))
	}
	if local.RatingStrength != "" {
		evidence = append(evidence, fmt.Sprintf("Rating strength: %s", local.RatingStrength))
	}
	if local.VisibilityGap != "" {
		evidence = append(evidence, fmt.Sprintf("Visibility gap: %s", local.VisibilityGap))
	}
	if lead.HasWebsite {
		evidence = append(evidence, "Website present (visibility channel)")
	}
	if profile.TrustSignals.CredentialsVisible || profile.TrustSignals.BeforeAfterGallery {
		evidence = append(evidence, "Service/trust content on site (capture support)")
	}
	if d := lead.LastReviewDaysAgo; d != nil {
		if *d <= 90 {
			evidence = append(evidence, "Recent review activity")
		} else if *d > 180 {
			evidence = append(evidence, "Stale review velocity")
		}
	}

	status := model.StatusModerate
	switch {
	case local.ReviewCountVsMarket == model.ReviewsBelowAverage,
		local.VisibilityGap == model.GapUnderutilized:
		status = model.StatusWeak
	case local.ReviewCountVsMarket == model.ReviewsAboveAverage &&
		local.MapPackCompet == model.TierHigh:
		status = model.StatusStrong
	}
	return block(status, evidence)
}

func classifyConversion(lead *model.Lead, profile *model.PracticeProfile) model.SignalBlock {
	readiness := profile.Acquisition
	var evidence []string

	if lead.HasScheduling {
		evidence = append(evidence, "Online booking present")
	} else {
		evidence = append(evidence, "No online booking")
	}
	if lead.HasContactForm {
		evidence = append(evidence, "Contact form present")
	} else {
		evidence = append(evidence, "No contact form detected")
	}
	if lead.HasPhone {
		evidence = append(evidence, "Phone available for intake")
	}
	for _, leak := range firstN(readiness.ConversionLeaks, 3) {
		evidence = append(evidence, leak)
	}

	status := model.StatusModerate
	switch {
	case readiness.BookingFriction == model.TierHigh && !lead.HasContactChannel():
		status = model.StatusWeak
	case readiness.BookingFriction == model.TierLow && lead.HasContactChannel():
		status = model.StatusStrong
	}
	return block(status, evidence)
}

func classifyTrust(lead *model.Lead, profile *model.PracticeProfile) model.SignalBlock {
	ts := profile.TrustSignals
	rating := lead.RatingValue()
	var evidence []string

	if lead.Rating != nil {
		evidence = append(evidence, fmt.Sprintf("Rating: %.1f", rating))
	}
	if rs := profile.LocalSearch.RatingStrength; rs != "" {
		evidence = append(evidence, fmt.Sprintf("Rating strength: %s", rs))
	}
	if lead.ReviewCount > 0 && lead.ReviewCount < 10 {
		evidence = append(evidence, "Low review count (trust signal weak)")
	} else if lead.ReviewCount >= 20 {
		evidence = append(evidence, "Sufficient review volume for trust")
	}
	if d := lead.LastReviewDaysAgo; d != nil {
		if *d > 365 {
			evidence = append(evidence, "Very stale reviews")
		} else if *d <= 90 {
			evidence = append(evidence, "Recent review activity")
		}
	}
	if ts.InsuranceVisible {
		evidence = append(evidence, "Insurance info visible on site")
	}
	if ts.CredentialsVisible {
		evidence = append(evidence, "Doctor credentials visible")
	}

	trustFlags := 0
	for _, f := range []bool{ts.InsuranceVisible, ts.BeforeAfterGallery, ts.CredentialsVisible} {
		if f {
			trustFlags++
		}
	}

	// The site-scan clauses only apply when a scan actually ran
	// (confidence > 0); a lead without a scan degrades to Moderate.
	status := model.StatusModerate
	switch {
	case lead.Rating != nil && rating < 4.0:
		status = model.StatusWeak
	case ts.Confidence > 0 && (ts.Confidence < 0.3 || trustFlags <= 1):
		status = model.StatusWeak
	case rating >= 4.5 && ts.Confidence >= 0.8 && trustFlags >= 2:
		status = model.StatusStrong
	}
	return block(status, evidence)
}

// block assembles a SignalBlock. No evidence means no grounds for the
// classification: degrade to Moderate with confidence 0.
func block(status model.Status, evidence []string) model.SignalBlock {
	if len(evidence) == 0 {
		return model.SignalBlock{Status: model.StatusModerate, Confidence: 0}
	}
	return model.SignalBlock{
		Status:     status,
		Evidence:   firstN(evidence, maxEvidence),
		Confidence: round2(minF(1.0, 0.5+0.1*float64(len(evidence)))),
	}
}

func firstN(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func joinFirst(s []string, n int) string {
	out := ""
	for i, v := range firstN(s, n) {
		if i > 0 {
			out += ", "
		}
		out += v
	}
	return out
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
