package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/triage-cli/internal/model"
)

func leadNamed(name, reviews string) *model.Lead {
	rating := 4.5
	return &model.Lead{
		Name:          name,
		Rating:        &rating,
		ReviewCount:   60,
		HasWebsite:    true,
		HasPhone:      true,
		ReviewSummary: reviews,
	}
}

func TestIsDentalPractice(t *testing.T) {
	tests := []struct {
		name string
		lead *model.Lead
		want bool
	}{
		{"by name", leadNamed("Bright Smile Dental", ""), true},
		{"by name keyword", leadNamed("Scottsdale Smile Studio", ""), true},
		{"by review text", leadNamed("Bright Care Group", "best dentist in town"), true},
		{"plumber", leadNamed("Joe's Plumbing", "fast pipe repair"), false},
		{"empty", leadNamed("Acme LLC", ""), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDentalPractice(tt.lead))
		})
	}
}

func TestBuild_NonDentalReturnsNil(t *testing.T) {
	assert.Nil(t, Build(leadNamed("Joe's Plumbing", "fixed my sink"), model.TrustConversionSignals{}))
}

func TestBuild_Classification(t *testing.T) {
	lead := leadNamed("Bright Smile Dental",
		"got my dental implant here, also did invisalign for my daughter")

	p := Build(lead, model.TrustConversionSignals{})
	require.NotNil(t, p)

	assert.Equal(t, model.TierHigh, p.Classification.EstimatedLTV)
	assert.Contains(t, p.Classification.ProcedureFocus, "implant")
	assert.Contains(t, p.Classification.ProcedureFocus, "invisalign")
	assert.Positive(t, p.Classification.Confidence)
}

func TestBuild_PracticeType(t *testing.T) {
	ortho := Build(leadNamed("Valley Dental", "braces and invisalign for the kids"), model.TrustConversionSignals{})
	require.NotNil(t, ortho)
	assert.Equal(t, "orthodontic", ortho.Classification.PracticeType)

	cosmetic := Build(leadNamed("Valley Dental", "veneer work and whitening, amazing results"), model.TrustConversionSignals{})
	require.NotNil(t, cosmetic)
	assert.Equal(t, "cosmetic", cosmetic.Classification.PracticeType)

	unknown := Build(leadNamed("Valley Dental", ""), model.TrustConversionSignals{})
	require.NotNil(t, unknown)
	assert.Equal(t, "unknown", unknown.Classification.PracticeType)
}

func TestBuild_AcquisitionFriction(t *testing.T) {
	lead := leadNamed("Bright Smile Dental", "")
	lead.HasScheduling = false
	lead.HasContactForm = false
	lead.HasPhone = true

	p := Build(lead, model.TrustConversionSignals{})
	require.NotNil(t, p)
	assert.Equal(t, model.TierHigh, p.Acquisition.BookingFriction)
	assert.Contains(t, p.Acquisition.ConversionLeaks, "Phone-only intake; no online booking")
}

func TestBuild_LocalSearchPositioning(t *testing.T) {
	t.Run("low volume reads below market", func(t *testing.T) {
		lead := leadNamed("Bright Smile Dental", "")
		lead.ReviewCount = 20

		p := Build(lead, model.TrustConversionSignals{})
		require.NotNil(t, p)
		assert.Equal(t, model.ReviewsBelowAverage, p.LocalSearch.ReviewCountVsMarket)
		assert.Equal(t, model.GapUnderutilized, p.LocalSearch.VisibilityGap)
	})

	t.Run("heavy volume reads saturated", func(t *testing.T) {
		lead := leadNamed("Bright Smile Dental", "")
		rating := 4.9
		lead.Rating = &rating
		lead.ReviewCount = 250

		p := Build(lead, model.TrustConversionSignals{})
		require.NotNil(t, p)
		assert.Equal(t, model.StatusStrong, p.LocalSearch.RatingStrength)
		assert.Equal(t, model.TierHigh, p.LocalSearch.MapPackCompet)
		assert.Equal(t, model.GapSaturated, p.LocalSearch.VisibilityGap)
	})
}

func TestBuild_ReviewIntentAndTrustPassthrough(t *testing.T) {
	lead := leadNamed("Bright Smile Dental",
		"needed an emergency appointment asap, they took my insurance too")
	trust := model.TrustConversionSignals{InsuranceVisible: true, Confidence: 0.5}

	p := Build(lead, trust)
	require.NotNil(t, p)
	assert.True(t, p.ReviewIntent.UrgencyLanguage)
	assert.True(t, p.ReviewIntent.InsuranceMentions)
	assert.Equal(t, trust, p.TrustSignals)
}

func TestBuild_AgencyFitPopulated(t *testing.T) {
	p := Build(leadNamed("Bright Smile Dental", "implant consults all week"), model.TrustConversionSignals{})
	require.NotNil(t, p)
	assert.NotEmpty(t, p.AgencyFit.Why)
	assert.Positive(t, p.AgencyFit.Confidence)
}
