package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/triage-cli/internal/model"
)

func TestAssemble_NilLeadOrProfileIsNotApplicable(t *testing.T) {
	assert.True(t, Assemble(nil, model.TriageContext{}).IsZero())

	lead := moderateLead()
	lead.Profile = nil
	assert.True(t, Assemble(lead, model.TriageContext{}).IsZero())
}

func TestAssemble_PopulatesEverySubComponent(t *testing.T) {
	lead := moderateLead()
	lead.Profile = moderateProfile()
	ctx := model.TriageContext{
		Service: &model.ServiceIntelligence{
			HighTicketProcedures: []string{"implant"},
			MissingHighValue:     []string{"invisalign"},
			Confidence:           0.7,
		},
		Competitive: &model.CompetitiveSnapshot{
			Sampled:           4,
			AvgReviewCount:    150,
			ReviewPositioning: model.PositionBelowAverage,
			MarketDensity:     model.TierModerate,
			Confidence:        0.6,
		},
		Revenue: &model.RevenueLeverage{
			PrimaryDriver: "implants",
			Asymmetry:     model.TierHigh,
			Confidence:    0.7,
		},
	}

	d := Assemble(lead, ctx)
	require.False(t, d.IsZero())

	assert.True(t, d.RootCause.Bottleneck.Valid())
	assert.NotEmpty(t, d.Lever.Reasoning)
	assert.True(t, d.Signals.Demand.Status.Valid())
	assert.NotEmpty(t, d.Comparative.Sentence)
	assert.NotEmpty(t, d.Anchor.Issue)
	assert.NotEmpty(t, d.Plan)
	assert.Len(t, d.Access, 2)
	assert.LessOrEqual(t, len(d.Questions), model.MaxDeRiskingQuestions)
	assert.GreaterOrEqual(t, d.PriorityScore, 0)
	assert.LessOrEqual(t, d.PriorityScore, 100)
}

func TestAssemble_Deterministic(t *testing.T) {
	lead := moderateLead()
	lead.Profile = moderateProfile()
	ctx := model.TriageContext{
		Service: &model.ServiceIntelligence{HighTicketProcedures: []string{"implant"}},
	}

	first := Assemble(lead, ctx)
	for range 5 {
		assert.Equal(t, first, Assemble(lead, ctx))
	}
}
