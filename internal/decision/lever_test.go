package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/triage-cli/internal/model"
)

func TestEvaluateLever_TrustAndConversionNeverGetSeo(t *testing.T) {
	signals := moderateSignals()

	lever := EvaluateLever(model.TrustLimited, signals, false)
	assert.False(t, lever.Applicable)
	assert.Equal(t, "Reputation / trust", lever.AlternativeLever)

	lever = EvaluateLever(model.ConversionLimited, signals, true)
	assert.False(t, lever.Applicable)
	assert.Equal(t, "Conversion / booking", lever.AlternativeLever)
}

func TestEvaluateLever_SaturationDependsOnNiche(t *testing.T) {
	signals := moderateSignals()

	lever := EvaluateLever(model.SaturationLimited, signals, true)
	assert.True(t, lever.Applicable)
	assert.Empty(t, lever.AlternativeLever)

	lever = EvaluateLever(model.SaturationLimited, signals, false)
	assert.False(t, lever.Applicable)
	assert.Equal(t, "Differentiation or conversion", lever.AlternativeLever)
}

func TestEvaluateLever_VisibilityRequiresAdequateTrust(t *testing.T) {
	signals := moderateSignals()

	lever := EvaluateLever(model.VisibilityLimited, signals, false)
	assert.True(t, lever.Applicable)
	assert.Equal(t, signals.Capture.Confidence, lever.Confidence)

	weak(&signals.Trust)
	lever = EvaluateLever(model.VisibilityLimited, signals, false)
	assert.False(t, lever.Applicable)
	assert.Equal(t, 0.5, lever.Confidence)
}

func TestEvaluateLever_DemandAndDifferentiation(t *testing.T) {
	signals := moderateSignals()

	for _, b := range []model.Bottleneck{model.DemandLimited, model.DifferentiationLimited} {
		lever := EvaluateLever(b, signals, false)
		assert.True(t, lever.Applicable, "bottleneck %s", b)
		assert.NotEmpty(t, lever.Reasoning)
	}
}

func TestEvaluateLever_AlwaysExplains(t *testing.T) {
	for _, b := range model.Bottlenecks {
		for _, niche := range []bool{true, false} {
			lever := EvaluateLever(b, moderateSignals(), niche)
			assert.NotEmpty(t, lever.Reasoning, "bottleneck %s niche %v", b, niche)
			assert.Greater(t, lever.Confidence, 0.0)
			if !lever.Applicable {
				assert.NotEmpty(t, lever.Reasoning)
			}
		}
	}
}
