package decision

import "github.com/sells-group/triage-cli/internal/model"

// baseScore is the neutral starting point; malformed or out-of-range
// inputs default back to it rather than failing.
const baseScore = 50

// ScorePriority composes the 0-100 engagement priority score. Higher means
// more asymmetry to sell: missing pages, weak capture, below-market review
// position. A healthy practice with nothing to fix scores low even when
// every signal block is strong.
func ScorePriority(in Input, root model.RootCause, lever model.LeverAssessment) int {
	score := baseScore

	if lever.Applicable {
		score += 5
	}

	if rev := in.Ctx.Revenue; rev != nil {
		switch rev.Asymmetry {
		case model.TierHigh:
			score += 15
		case model.TierModerate:
			score += 8
		}
	}

	switch in.Signals.Capture.Status {
	case model.StatusWeak:
		score += 12
	case model.StatusModerate:
		score += 5
	}

	var missing int
	if svc := in.Ctx.Service; svc != nil {
		missing = len(svc.MissingHighValue)
		switch {
		case missing >= 2:
			score += 10
		case missing == 1:
			score += 5
		}
	}

	if snap := in.Ctx.Competitive; snap != nil {
		switch snap.ReviewPositioning {
		case model.PositionBelowAverage:
			score += 10
		case model.PositionInLine:
			score += 4
		}
		switch snap.MarketDensity {
		case model.TierLow:
			score += 8
		case model.TierModerate:
			score += 2
		}
	}

	// Saturated market with a strong reputation: little left to sell.
	if root.Bottleneck == model.SaturationLimited && in.Signals.Trust.Status == model.StatusStrong {
		score -= 25
	}
	// No asymmetry and no page gaps: nothing to sell even if healthy.
	if rev := in.Ctx.Revenue; rev != nil && rev.Asymmetry == model.TierLow && missing == 0 {
		score -= 10
	}
	// Already converting, advertising, and trusted: low urgency.
	if in.Signals.Conversion.Status == model.StatusStrong &&
		in.Signals.Trust.Status == model.StatusStrong &&
		in.Lead.RunsPaidAds {
		score -= 20
	}

	return clampScore(score)
}

// clampScore bounds a score to [0,100].
func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// NormalizeScoreInput clamps an externally supplied score to [0,100],
// defaulting NaN-ish or out-of-band values to the neutral base.
func NormalizeScoreInput(v float64) int {
	if v != v || v < 0 || v > 100 {
		return baseScore
	}
	return int(v)
}
