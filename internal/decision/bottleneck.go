package decision

import "github.com/sells-group/triage-cli/internal/model"

// Input bundles everything the cascade can look at. Context members may be
// nil when the corresponding upstream step did not run.
type Input struct {
	Lead    *model.Lead
	Profile *model.PracticeProfile
	Signals model.Signals
	Ctx     model.TriageContext
}

// nicheDetected reports whether the practice has a sellable edge worth
// amplifying: a high-ticket procedure focus on the site, or meaningful
// revenue asymmetry.
func (in Input) nicheDetected() bool {
	if svc := in.Ctx.Service; svc != nil && len(svc.HighTicketProcedures) > 0 {
		return true
	}
	if rev := in.Ctx.Revenue; rev != nil && rev.Asymmetry.AtLeast(model.TierModerate) {
		return true
	}
	return false
}

// highValueFocus reports whether high-value procedure demand is visible
// for this practice (profile LTV class or detected high-ticket services).
func (in Input) highValueFocus() bool {
	if in.Profile.Classification.EstimatedLTV == model.TierHigh {
		return true
	}
	svc := in.Ctx.Service
	return svc != nil && len(svc.HighTicketProcedures) > 0
}

// crowdedMarket reports whether the local market reads as saturated.
func (in Input) crowdedMarket() bool {
	local := in.Profile.LocalSearch
	return local.VisibilityGap == model.GapSaturated || local.MapPackCompet == model.TierHigh
}

// rule is one row of the classification cascade: the first matching row
// wins, so the slice order is the tie-break policy.
type rule struct {
	name string
	when func(in Input) bool
	emit func(in Input) model.RootCause
}

// cascade is the ordered classification table. Reordering rows changes
// diagnostic priority; the order here is load-bearing and covered by
// tests. Trust outranks everything: no acquisition work is productive
// until reputation is repaired.
var cascade = []rule{
	{
		name: "trust_weak",
		when: func(in Input) bool { return in.Signals.Trust.Status == model.StatusWeak },
		emit: func(in Input) model.RootCause {
			return model.RootCause{
				Bottleneck:      model.TrustLimited,
				WhyRootCause:    "Reputation or trust signals are weak; patients are less likely to choose this practice before visibility or conversion fixes matter.",
				Evidence:        in.Signals.Trust.Evidence,
				WhatWouldChange: "Stronger rating, more recent positive reviews, or clearer trust signals on the website would shift this classification.",
				Confidence:      in.Signals.Trust.Confidence,
			}
		},
	},
	{
		name: "saturated_with_niche",
		when: func(in Input) bool { return in.crowdedMarket() && in.nicheDetected() },
		emit: func(in Input) model.RootCause {
			return model.RootCause{
				Bottleneck:      model.SaturationLimited,
				WhyRootCause:    "The market is crowded, but the practice has a sellable high-value edge to amplify; saturation, not a single fix, is the constraint.",
				Evidence:        in.Signals.Capture.Evidence,
				WhatWouldChange: "A drop in competitor activity or a clearly underutilized channel (new service pages, new location) would shift this.",
				Confidence:      in.Signals.Capture.Confidence,
			}
		},
	},
	{
		name: "saturated_no_niche",
		when: func(in Input) bool { return in.crowdedMarket() && !in.nicheDetected() },
		emit: func(in Input) model.RootCause {
			return model.RootCause{
				Bottleneck:      model.DifferentiationLimited,
				WhyRootCause:    "Reviews and visibility are solid but the market is competitive; the practice lacks clear service or niche positioning to stand out.",
				Evidence:        in.Signals.Capture.Evidence,
				WhatWouldChange: "Strong high-ticket or niche service positioning (e.g. dedicated implant or cosmetic pages) would shift this.",
				Confidence:      in.Signals.Capture.Confidence,
			}
		},
	},
	{
		name: "capture_weak",
		when: func(in Input) bool { return in.Signals.Capture.Status == model.StatusWeak },
		emit: visibilityLimited("Demand appears present but the practice is not capturing it well; visibility, review volume, or local presence is the limit."),
	},
	{
		name: "latent_high_value_demand",
		when: func(in Input) bool {
			return in.Profile.LocalSearch.ReviewCountVsMarket == model.ReviewsBelowAverage &&
				in.highValueFocus()
		},
		emit: visibilityLimited("High-value procedure demand exists but review presence trails the market; latent demand is not being surfaced."),
	},
	{
		name: "conversion_weak_with_site",
		when: func(in Input) bool {
			return in.Signals.Conversion.Status == model.StatusWeak && in.Lead.HasWebsite
		},
		emit: conversionLimited("Demand and visibility are adequate, but intake or booking friction is limiting how many leads become patients."),
	},
	// Fallback rows: fixed priority trust > visibility > conversion >
	// demand. Trust and capture weakness are already consumed above, so
	// only the tail of the order remains reachable.
	{
		name: "fallback_conversion_weak",
		when: func(in Input) bool { return in.Signals.Conversion.Status == model.StatusWeak },
		emit: conversionLimited("Conversion is the primary constraint; demand and visibility are relatively stronger."),
	},
	{
		name: "fallback_demand_weak",
		when: func(in Input) bool { return in.Signals.Demand.Status == model.StatusWeak },
		emit: func(in Input) model.RootCause {
			return model.RootCause{
				Bottleneck:      model.DemandLimited,
				WhyRootCause:    "Demand signals are weak; the priority is validating or building demand before heavy investment in capture or conversion.",
				Evidence:        in.Signals.Demand.Evidence,
				WhatWouldChange: "Stronger local interest signals, paid demand, or procedure-specific demand would shift this.",
				Confidence:      in.Signals.Demand.Confidence,
			}
		},
	},
	{
		name: "default_ambiguous",
		when: func(in Input) bool { return true },
		emit: func(in Input) model.RootCause {
			return model.RootCause{
				Bottleneck:      model.DemandLimited,
				WhyRootCause:    "No single dominant constraint; demand validation is the default next step for ambiguous, middling signals.",
				Evidence:        in.Signals.Demand.Evidence,
				WhatWouldChange: "Clear weakness in trust, capture, or conversion would shift this.",
				Confidence:      0.5,
			}
		},
	},
}

func visibilityLimited(why string) func(in Input) model.RootCause {
	return func(in Input) model.RootCause {
		return model.RootCause{
			Bottleneck:      model.VisibilityLimited,
			WhyRootCause:    why,
			Evidence:        in.Signals.Capture.Evidence,
			WhatWouldChange: "Higher review volume, stronger local visibility, or better service-page coverage would shift this classification.",
			Confidence:      in.Signals.Capture.Confidence,
		}
	}
}

func conversionLimited(why string) func(in Input) model.RootCause {
	return func(in Input) model.RootCause {
		return model.RootCause{
			Bottleneck:      model.ConversionLimited,
			WhyRootCause:    why,
			Evidence:        in.Signals.Conversion.Evidence,
			WhatWouldChange: "Online booking, a contact form, or a smoother intake process would shift this classification.",
			Confidence:      in.Signals.Conversion.Confidence,
		}
	}
}

// ClassifyBottleneck resolves exactly one root bottleneck via the ordered
// cascade. The final row always matches, so a result is guaranteed.
func ClassifyBottleneck(in Input) model.RootCause {
	for _, r := range cascade {
		if r.when(in) {
			return r.emit(in)
		}
	}
	// Unreachable: default_ambiguous matches everything.
	return cascade[len(cascade)-1].emit(in)
}
