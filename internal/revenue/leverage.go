// Package revenue holds the revenue-side collaborators: leverage analysis
// (where the asymmetry sits) and the tier-based annual revenue band model.
package revenue

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/triage-cli/internal/model"
)

// highAsymmetryProcedures mark real revenue asymmetry when present.
var highAsymmetryProcedures = []string{
	"implant", "invisalign", "veneer", "cosmetic", "sedation",
	"emergency", "same day crown", "sleep apnea", "orthodontic",
}

// BuildLeverage derives the revenue leverage analysis from the service
// intelligence. A nil service block yields the zero-confidence default.
func BuildLeverage(svc *model.ServiceIntelligence) model.RevenueLeverage {
	out := model.RevenueLeverage{
		PrimaryDriver: "unknown",
		Asymmetry:     model.TierLow,
	}
	if svc == nil {
		return out
	}

	highTicket := svc.HighTicketProcedures
	missing := svc.MissingHighValue

	joined := strings.ToLower(strings.Join(highTicket, " "))
	switch {
	case strings.Contains(joined, "implant"):
		out.PrimaryDriver = "implants"
	case strings.Contains(joined, "cosmetic"),
		strings.Contains(joined, "veneer"),
		strings.Contains(joined, "invisalign"):
		out.PrimaryDriver = "cosmetic"
	case len(highTicket) > 0 || len(svc.GeneralServices) > 0:
		out.PrimaryDriver = "general"
	}

	hasHigh := false
	for _, k := range highAsymmetryProcedures {
		if strings.Contains(joined, k) {
			hasHigh = true
			break
		}
	}
	switch {
	case hasHigh && (len(highTicket) >= 2 || len(missing) == 0):
		out.Asymmetry = model.TierHigh
	case hasHigh || len(missing) > 0:
		out.Asymmetry = model.TierModerate
	}

	switch {
	case len(missing) > 0:
		out.GrowthVector = fmt.Sprintf("Add dedicated service presence for %s to capture high-intent demand.", missing[0])
	case out.Asymmetry == model.TierHigh:
		out.GrowthVector = "Strengthen visibility for existing high-ticket services in local search."
	case out.PrimaryDriver == "general":
		out.GrowthVector = "Differentiate with targeted service pages or local positioning to improve capture."
	default:
		out.GrowthVector = "Clarify service focus and local visibility to improve demand capture."
	}

	conf := 0.3 + svc.Confidence*0.5
	if conf > 1.0 {
		conf = 1.0
	}
	out.Confidence = float64(int(conf*100+0.5)) / 100

	zap.L().Debug("revenue: leverage built",
		zap.String("primary_driver", out.PrimaryDriver),
		zap.String("asymmetry", string(out.Asymmetry)),
	)
	return out
}
