package decision

import "github.com/sells-group/triage-cli/internal/model"

// Assemble runs the full decision layer for one lead. A lead without a
// practice profile yields the zero DecisionLayer: an explicit "not
// applicable" result, not an error. Every populated result carries all
// sub-component outputs.
func Assemble(lead *model.Lead, ctx model.TriageContext) model.DecisionLayer {
	if lead == nil || lead.Profile == nil {
		return model.DecisionLayer{}
	}

	in := Input{
		Lead:    lead,
		Profile: lead.Profile,
		Signals: ClassifySignals(lead, lead.Profile),
		Ctx:     ctx,
	}

	root := ClassifyBottleneck(in)
	lever := EvaluateLever(root.Bottleneck, in.Signals, in.nicheDetected())

	return model.DecisionLayer{
		RootCause:     root,
		Lever:         lever,
		Signals:       in.Signals,
		Comparative:   BuildComparativeContext(lead, ctx.Service, ctx.Competitive),
		Anchor:        BuildAnchor(root),
		Plan:          PlanInterventions(in, root),
		Access:        PlanAccessRequests(root.Bottleneck),
		Questions:     DeRiskingQuestions(in),
		PriorityScore: ScorePriority(in, root, lever),
	}
}
