package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/triage-cli/internal/model"
)

func confidentSignals() model.Signals {
	s := moderateSignals()
	s.Demand.Confidence = 0.9
	s.Capture.Confidence = 0.9
	s.Conversion.Confidence = 0.9
	s.Trust.Confidence = 0.9
	return s
}

func TestDeRiskingQuestions_EmptyWhenAllConfident(t *testing.T) {
	in := moderateInput()
	in.Signals = confidentSignals()

	assert.Empty(t, DeRiskingQuestions(in))
}

func TestDeRiskingQuestions_LowestConfidenceFirst(t *testing.T) {
	in := moderateInput()
	in.Signals = confidentSignals()
	in.Signals.Conversion.Confidence = 0.2
	in.Signals.Trust.Confidence = 0.4

	questions := DeRiskingQuestions(in)
	require.Len(t, questions, 2)
	assert.Contains(t, questions[0], "book with you")
	assert.Contains(t, questions[1], "reviews after a visit")
}

func TestDeRiskingQuestions_CapsAtThree(t *testing.T) {
	in := moderateInput()
	in.Signals.Demand.Confidence = 0.1
	in.Signals.Capture.Confidence = 0.1
	in.Signals.Conversion.Confidence = 0.1
	in.Signals.Trust.Confidence = 0.1
	in.Ctx.Service = &model.ServiceIntelligence{Confidence: 0.1}
	in.Ctx.Revenue = &model.RevenueLeverage{Confidence: 0.1}

	questions := DeRiskingQuestions(in)
	assert.Len(t, questions, model.MaxDeRiskingQuestions)
}

func TestDeRiskingQuestions_TieBreaksOnFixedOrder(t *testing.T) {
	in := moderateInput()
	in.Signals = confidentSignals()
	in.Signals.Capture.Confidence = 0.3
	in.Signals.Trust.Confidence = 0.3

	first := DeRiskingQuestions(in)
	require.Len(t, first, 2)
	// Capture precedes trust at equal confidence.
	assert.Contains(t, first[0], "searches for a dentist")

	for range 10 {
		assert.Equal(t, first, DeRiskingQuestions(in))
	}
}

func TestDeRiskingQuestions_CollaboratorUncertainty(t *testing.T) {
	in := moderateInput()
	in.Signals = confidentSignals()
	in.Ctx.Competitive = &model.CompetitiveSnapshot{Sampled: 2, Confidence: 0.2}

	questions := DeRiskingQuestions(in)
	require.Len(t, questions, 1)
	assert.Contains(t, questions[0], "real competition")
}
