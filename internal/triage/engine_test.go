package triage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/triage-cli/internal/competitive"
	"github.com/sells-group/triage-cli/internal/model"
	"github.com/sells-group/triage-cli/internal/store"
	"github.com/sells-group/triage-cli/pkg/google"
	"github.com/sells-group/triage-cli/pkg/google/mocks"
)

// stubScanner returns canned website intelligence without network access.
type stubScanner struct {
	trust   model.TrustConversionSignals
	svc     model.ServiceIntelligence
	pricing bool
	calls   int
}

func (s *stubScanner) ScanTrust(_ context.Context, _ string) model.TrustConversionSignals {
	s.calls++
	return s.trust
}

func (s *stubScanner) ScanServices(_ context.Context, _ string, _ []string) model.ServiceIntelligence {
	s.calls++
	return s.svc
}

func (s *stubScanner) ScanPricing(_ context.Context, _ string) bool {
	s.calls++
	return s.pricing
}

func dentalLead() model.Lead {
	rating := 4.6
	staff := 4
	days := 9
	return model.Lead{
		Name:              "Bright Smile Dental",
		PlaceID:           "place-1",
		City:              "Scottsdale",
		State:             "AZ",
		Website:           "https://brightsmile.example.com",
		HasWebsite:        true,
		Rating:            &rating,
		ReviewCount:       120,
		LastReviewDaysAgo: &days,
		HasPhone:          true,
		HasContactForm:    true,
		StaffCount:        &staff,
		ReviewSummary:     "Great dentist, the implant consult was thorough and friendly",
	}
}

func dentalRequest() Request {
	r1, r2 := 4.4, 4.8
	return Request{
		Lead: dentalLead(),
		Competitors: []competitive.Competitor{
			{Name: "Mesa Smiles", Rating: &r1, ReviewCount: 200},
			{Name: "Valley Dental", Rating: &r2, ReviewCount: 340},
			{Name: "Desert Dental", ReviewCount: 95},
		},
	}
}

func TestRun_RequiresLeadName(t *testing.T) {
	eng := New(nil, nil, nil, nil)
	_, err := eng.Run(context.Background(), Request{Lead: model.Lead{Name: "   "}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lead name is required")
}

func TestRun_NonDentalLeadOutOfScope(t *testing.T) {
	eng := New(nil, nil, nil, nil)
	res, err := eng.Run(context.Background(), Request{Lead: model.Lead{
		Name:          "Joe's Plumbing Supply",
		ReviewCount:   50,
		ReviewSummary: "Fast pipe repair, fair prices",
	}})
	require.NoError(t, err)
	assert.True(t, res.Decision.IsZero())
	assert.Nil(t, res.Summary)
	assert.Empty(t, res.SummaryHash)
}

func TestRun_FullEvaluation(t *testing.T) {
	scanner := &stubScanner{
		trust: model.TrustConversionSignals{
			InsuranceVisible:   true,
			CredentialsVisible: true,
			Confidence:         0.7,
		},
		svc: model.ServiceIntelligence{
			HighTicketProcedures: []string{"implant", "invisalign"},
			GeneralServices:      []string{"cleaning", "checkup"},
			Confidence:           0.8,
		},
		pricing: true,
	}
	eng := New(nil, scanner, nil, nil)

	res, err := eng.Run(context.Background(), dentalRequest())
	require.NoError(t, err)
	require.NotNil(t, res.Summary)

	assert.False(t, res.Decision.IsZero())
	assert.Contains(t, model.Bottlenecks, res.Decision.RootCause.Bottleneck)
	assert.GreaterOrEqual(t, res.Decision.PriorityScore, 0)
	assert.LessOrEqual(t, res.Decision.PriorityScore, 100)
	assert.Len(t, res.SummaryHash, 64)
	assert.NotNil(t, res.Summary.RevenueBand)
	assert.Greater(t, res.Summary.RevenueBand.Upper, res.Summary.RevenueBand.Lower)
	assert.GreaterOrEqual(t, scanner.calls, 3)
}

func TestRun_Deterministic(t *testing.T) {
	eng := New(nil, nil, nil, nil)

	a, err := eng.Run(context.Background(), dentalRequest())
	require.NoError(t, err)
	b, err := eng.Run(context.Background(), dentalRequest())
	require.NoError(t, err)

	require.NotNil(t, a.Summary)
	assert.Equal(t, a.SummaryHash, b.SummaryHash)
	assert.Equal(t, a.Decision, b.Decision)
}

func TestRun_NoScannerSkipsWebsiteIntelligence(t *testing.T) {
	eng := New(nil, nil, nil, nil)
	res, err := eng.Run(context.Background(), Request{Lead: dentalLead()})
	require.NoError(t, err)
	require.NotNil(t, res.Summary)
	assert.NotEmpty(t, res.Decision.Comparative.Sentence)
}

func TestRun_DiscoversCompetitorsWhenNoneProvided(t *testing.T) {
	r := 4.7
	client := mocks.NewMockClient(t)
	client.On("TextSearch", mock.Anything, "dentist in Scottsdale, AZ").
		Return(&google.TextSearchResponse{Places: []google.Place{
			{ID: "c1", DisplayName: google.DisplayName{Text: "Desert Ridge Dental"}, Rating: r, UserRatingCount: 211},
			{ID: "c2", DisplayName: google.DisplayName{Text: "Canyon Family Dentistry"}, UserRatingCount: 42},
		}}, nil).
		Once()

	eng := New(nil, nil, nil, client)
	res, err := eng.Run(context.Background(), Request{Lead: dentalLead()})
	require.NoError(t, err)
	require.NotNil(t, res.Summary)
	assert.NotEqual(t, "No competitive sample available.", res.Summary.MarketPosition)
}

func TestRun_DiscoveryFailureIsNonFatal(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("TextSearch", mock.Anything, mock.Anything).
		Return(nil, assert.AnError)

	eng := New(nil, nil, nil, client)
	res, err := eng.Run(context.Background(), Request{Lead: dentalLead()})
	require.NoError(t, err)
	require.NotNil(t, res.Summary)
	assert.Equal(t, "No competitive sample available.", res.Summary.MarketPosition)
}

func TestRun_ProvidedCompetitorsSkipDiscovery(t *testing.T) {
	client := &mocks.MockClient{}

	eng := New(nil, nil, nil, client)
	res, err := eng.Run(context.Background(), dentalRequest())
	require.NoError(t, err)
	require.NotNil(t, res.Summary)
	assert.NotEqual(t, "No competitive sample available.", res.Summary.MarketPosition)
	client.AssertNotCalled(t, "TextSearch")
}

func TestRun_PersistsDiagnostic(t *testing.T) {
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "triage.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	eng := New(st, nil, nil, nil)
	res, err := eng.Run(context.Background(), dentalRequest())
	require.NoError(t, err)
	require.NotEmpty(t, res.DiagnosticID)

	diag, err := st.GetDiagnostic(context.Background(), res.SummaryHash)
	require.NoError(t, err)
	require.NotNil(t, diag)
	assert.Equal(t, "Bright Smile Dental", diag.LeadName)
	assert.Equal(t, res.Decision.RootCause.Bottleneck, diag.Decision.RootCause.Bottleneck)
}
