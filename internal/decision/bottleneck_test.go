package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/triage-cli/internal/model"
)

func TestClassifyBottleneck_AlwaysResolvesOneValidBottleneck(t *testing.T) {
	root := ClassifyBottleneck(moderateInput())
	assert.True(t, root.Bottleneck.Valid())
	assert.NotEmpty(t, root.WhyRootCause)
	assert.NotEmpty(t, root.WhatWouldChange)
}

func TestClassifyBottleneck_TrustOutranksEverything(t *testing.T) {
	// Every other rule's trigger is present; weak trust must still win.
	in := moderateInput()
	weak(&in.Signals.Trust)
	weak(&in.Signals.Capture)
	weak(&in.Signals.Conversion)
	weak(&in.Signals.Demand)
	in.Profile.LocalSearch.VisibilityGap = model.GapSaturated
	in.Ctx.Service = &model.ServiceIntelligence{
		HighTicketProcedures: []string{"implant"},
		Confidence:           0.8,
	}

	root := ClassifyBottleneck(in)
	assert.Equal(t, model.TrustLimited, root.Bottleneck)
	assert.Equal(t, in.Signals.Trust.Confidence, root.Confidence)
}

func TestClassifyBottleneck_SaturatedMarketSplitsOnNiche(t *testing.T) {
	t.Run("with niche", func(t *testing.T) {
		in := moderateInput()
		in.Profile.LocalSearch.MapPackCompet = model.TierHigh
		in.Ctx.Service = &model.ServiceIntelligence{
			HighTicketProcedures: []string{"implant", "invisalign"},
		}

		root := ClassifyBottleneck(in)
		assert.Equal(t, model.SaturationLimited, root.Bottleneck)
	})

	t.Run("asymmetry counts as niche", func(t *testing.T) {
		in := moderateInput()
		in.Profile.LocalSearch.VisibilityGap = model.GapSaturated
		in.Ctx.Revenue = &model.RevenueLeverage{Asymmetry: model.TierModerate}

		root := ClassifyBottleneck(in)
		assert.Equal(t, model.SaturationLimited, root.Bottleneck)
	})

	t.Run("without niche", func(t *testing.T) {
		in := moderateInput()
		in.Profile.LocalSearch.VisibilityGap = model.GapSaturated

		root := ClassifyBottleneck(in)
		assert.Equal(t, model.DifferentiationLimited, root.Bottleneck)
	})
}

func TestClassifyBottleneck_WeakCaptureIsVisibility(t *testing.T) {
	in := moderateInput()
	weak(&in.Signals.Capture)

	root := ClassifyBottleneck(in)
	assert.Equal(t, model.VisibilityLimited, root.Bottleneck)
}

func TestClassifyBottleneck_LatentHighValueDemand(t *testing.T) {
	// Capture reads moderate overall, but review presence trails the
	// market and the practice serves high-LTV work.
	in := moderateInput()
	in.Profile.LocalSearch.ReviewCountVsMarket = model.ReviewsBelowAverage
	in.Profile.Classification.EstimatedLTV = model.TierHigh

	root := ClassifyBottleneck(in)
	assert.Equal(t, model.VisibilityLimited, root.Bottleneck)
	assert.Contains(t, root.WhyRootCause, "latent demand")
}

func TestClassifyBottleneck_WeakConversionWithSite(t *testing.T) {
	in := moderateInput()
	weak(&in.Signals.Conversion)

	root := ClassifyBottleneck(in)
	assert.Equal(t, model.ConversionLimited, root.Bottleneck)
}

func TestClassifyBottleneck_FallbackOrder(t *testing.T) {
	t.Run("conversion without site", func(t *testing.T) {
		in := moderateInput()
		weak(&in.Signals.Conversion)
		in.Lead.HasWebsite = false

		root := ClassifyBottleneck(in)
		assert.Equal(t, model.ConversionLimited, root.Bottleneck)
	})

	t.Run("conversion beats demand", func(t *testing.T) {
		in := moderateInput()
		weak(&in.Signals.Conversion)
		weak(&in.Signals.Demand)
		in.Lead.HasWebsite = false

		root := ClassifyBottleneck(in)
		assert.Equal(t, model.ConversionLimited, root.Bottleneck)
	})

	t.Run("demand weak alone", func(t *testing.T) {
		in := moderateInput()
		weak(&in.Signals.Demand)

		root := ClassifyBottleneck(in)
		assert.Equal(t, model.DemandLimited, root.Bottleneck)
	})
}

func TestClassifyBottleneck_AmbiguousDefaultsToDemand(t *testing.T) {
	root := ClassifyBottleneck(moderateInput())
	assert.Equal(t, model.DemandLimited, root.Bottleneck)
	assert.Equal(t, 0.5, root.Confidence)
	assert.Contains(t, root.WhyRootCause, "No single dominant constraint")
}

func TestClassifyBottleneck_Deterministic(t *testing.T) {
	in := moderateInput()
	weak(&in.Signals.Capture)
	in.Ctx.Competitive = &model.CompetitiveSnapshot{
		Sampled: 5, MarketDensity: model.TierHigh, Confidence: 0.6,
	}

	first := ClassifyBottleneck(in)
	for range 10 {
		require.Equal(t, first, ClassifyBottleneck(in))
	}
}
