package decision

import "github.com/sells-group/triage-cli/internal/model"

// alternativeLever names the better first lever when organic-visibility
// work is not it.
var alternativeLever = map[model.Bottleneck]string{
	model.TrustLimited:      "Reputation / trust",
	model.ConversionLimited: "Conversion / booking",
	model.SaturationLimited: "Differentiation or conversion",
}

// EvaluateLever judges whether organic-visibility work is the correct
// first lever for the diagnosed bottleneck. niche carries the saturation
// branch's differentiating-edge finding from the cascade.
func EvaluateLever(b model.Bottleneck, signals model.Signals, niche bool) model.LeverAssessment {
	trustOK := signals.Trust.Status != model.StatusWeak

	switch b {
	case model.TrustLimited:
		return model.LeverAssessment{
			Applicable:       false,
			Reasoning:        "Reputation and trust are the root bottleneck; organic content cannot fix reputation, so address trust before visibility work.",
			Confidence:       0.85,
			AlternativeLever: alternativeLever[b],
		}
	case model.ConversionLimited:
		return model.LeverAssessment{
			Applicable:       false,
			Reasoning:        "The constraint is on-site intake and booking friction, not traffic volume; fix conversion before investing in more visibility.",
			Confidence:       0.8,
			AlternativeLever: alternativeLever[b],
		}
	case model.SaturationLimited:
		if niche {
			return model.LeverAssessment{
				Applicable: true,
				Reasoning:  "The market is saturated, but a differentiating high-value niche makes content-led differentiation viable.",
				Confidence: 0.7,
			}
		}
		return model.LeverAssessment{
			Applicable:       false,
			Reasoning:        "The market is saturated and no differentiating edge was detected; more visibility volume alone will not win.",
			Confidence:       0.75,
			AlternativeLever: alternativeLever[b],
		}
	case model.VisibilityLimited:
		if trustOK {
			return model.LeverAssessment{
				Applicable: true,
				Reasoning:  "Visibility is the root bottleneck and trust is adequate; organic visibility is a strong next lever to capture more demand.",
				Confidence: signals.Capture.Confidence,
			}
		}
	case model.DemandLimited:
		if trustOK {
			return model.LeverAssessment{
				Applicable: true,
				Reasoning:  "Demand signals are soft but trust is adequate; procedure-level organic presence surfaces and validates latent demand.",
				Confidence: 0.6,
			}
		}
	case model.DifferentiationLimited:
		if trustOK {
			return model.LeverAssessment{
				Applicable: true,
				Reasoning:  "Differentiation is the constraint; dedicated service pages and local positioning help the practice stand out in a competitive market.",
				Confidence: 0.75,
			}
		}
	}

	return model.LeverAssessment{
		Applicable:       false,
		Reasoning:        "Insufficient signal to recommend organic visibility as the best next lever.",
		Confidence:       0.5,
		AlternativeLever: alternativeLever[b],
	}
}
