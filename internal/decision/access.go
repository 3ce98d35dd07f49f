package decision

import (
	"sort"

	"github.com/sells-group/triage-cli/internal/model"
)

// questionThreshold is the confidence below which an input is uncertain
// enough to warrant a clarifying question before committing resources.
const questionThreshold = 0.6

// uncertainInput is one candidate source of diagnostic uncertainty.
type uncertainInput struct {
	source     string
	order      int // fixed tie-break order for equal confidences
	confidence float64
	question   string
}

// DeRiskingQuestions selects up to MaxDeRiskingQuestions clarifying
// questions from the lowest-confidence inputs. All-high confidence yields
// an empty list. Equal confidences break on a fixed source order so the
// output is deterministic.
func DeRiskingQuestions(in Input) []string {
	candidates := []uncertainInput{
		{"demand", 0, in.Signals.Demand.Confidence,
			"How are new patients finding you today?"},
		{"capture", 1, in.Signals.Capture.Confidence,
			"Where do you show up today when someone searches for a dentist nearby?"},
		{"conversion", 2, in.Signals.Conversion.Confidence,
			"How does a new patient actually book with you, start to finish?"},
		{"trust", 3, in.Signals.Trust.Confidence,
			"How do you currently ask patients for reviews after a visit?"},
	}
	if svc := in.Ctx.Service; svc != nil {
		candidates = append(candidates, uncertainInput{"services", 4, svc.Confidence,
			"Which procedures do you most want to grow, and do they have their own pages?"})
	}
	if snap := in.Ctx.Competitive; snap != nil {
		candidates = append(candidates, uncertainInput{"market", 5, snap.Confidence,
			"Which nearby practices do you consider your real competition?"})
	}
	if rev := in.Ctx.Revenue; rev != nil {
		candidates = append(candidates, uncertainInput{"revenue", 6, rev.Confidence,
			"Which services drive most of your revenue today?"})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].confidence != candidates[j].confidence {
			return candidates[i].confidence < candidates[j].confidence
		}
		return candidates[i].order < candidates[j].order
	})

	var out []string
	for _, c := range candidates {
		if c.confidence >= questionThreshold {
			break
		}
		out = append(out, c.question)
		if len(out) == model.MaxDeRiskingQuestions {
			break
		}
	}
	return out
}
