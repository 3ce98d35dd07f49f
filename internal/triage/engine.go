// Package triage orchestrates one lead evaluation end to end: website
// scans, profile build, collaborator intelligence, the decision layer,
// the canonical summary, and diagnostic persistence. The decision math
// itself lives in internal/decision; this package only sequences it and
// does the I/O around it.
package triage

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/triage-cli/internal/competitive"
	"github.com/sells-group/triage-cli/internal/decision"
	"github.com/sells-group/triage-cli/internal/geo"
	"github.com/sells-group/triage-cli/internal/model"
	"github.com/sells-group/triage-cli/internal/profile"
	"github.com/sells-group/triage-cli/internal/revenue"
	"github.com/sells-group/triage-cli/internal/store"
	"github.com/sells-group/triage-cli/internal/summary"
	"github.com/sells-group/triage-cli/pkg/google"
)

// SiteScanner is the website intelligence surface the engine needs.
// *webscan.Scanner satisfies it; tests substitute a stub.
type SiteScanner interface {
	ScanTrust(ctx context.Context, website string) model.TrustConversionSignals
	ScanServices(ctx context.Context, website string, reviewMentions []string) model.ServiceIntelligence
	ScanPricing(ctx context.Context, website string) bool
}

// Request is one triage evaluation input. Competitors are an optional
// sample of nearby practices from the caller's own data.
type Request struct {
	Lead        model.Lead               `json:"lead"`
	Competitors []competitive.Competitor `json:"competitors,omitempty"`
}

// Result is the full outcome of one evaluation. Summary is nil when the
// lead is out of scope (no profile, not a dental practice); Decision is
// then the zero "not applicable" layer.
type Result struct {
	Lead         *model.Lead             `json:"lead"`
	Decision     model.DecisionLayer     `json:"decision"`
	Summary      *model.CanonicalSummary `json:"summary,omitempty"`
	SummaryHash  string                  `json:"summary_hash,omitempty"`
	DiagnosticID string                  `json:"diagnostic_id,omitempty"`
}

// Engine runs triage evaluations.
type Engine struct {
	store   store.Store
	scanner SiteScanner
	metro   *geo.MetroTable
	places  google.Client
}

// New creates an Engine. store may be nil (no persistence), scanner may
// be nil (no website scans), metro may be nil (built-in table), places
// may be nil (no competitor discovery).
func New(st store.Store, scanner SiteScanner, metro *geo.MetroTable, places google.Client) *Engine {
	if metro == nil {
		metro = geo.DefaultMetroTable()
	}
	return &Engine{store: st, scanner: scanner, metro: metro, places: places}
}

// Run evaluates one lead. Out-of-scope leads produce a Result with a
// zero decision, not an error; errors mean the evaluation itself could
// not complete (bad input, persistence failure).
func (e *Engine) Run(ctx context.Context, req Request) (*Result, error) {
	lead := req.Lead
	if strings.TrimSpace(lead.Name) == "" {
		return nil, eris.New("triage: lead name is required")
	}

	log := zap.L().With(zap.String("lead", lead.Name))
	log.Info("triage: starting evaluation",
		zap.Int("review_count", lead.ReviewCount),
		zap.Bool("has_website", lead.HasWebsite),
	)

	var trust model.TrustConversionSignals
	pricing := false
	scannable := e.scanner != nil && lead.HasWebsite && lead.Website != ""
	if scannable {
		trust = e.scanner.ScanTrust(ctx, lead.Website)
		pricing = e.scanner.ScanPricing(ctx, lead.Website)
	}

	if lead.Profile == nil {
		lead.Profile = profile.Build(&lead, trust)
	}

	var svc *model.ServiceIntelligence
	if scannable && lead.Profile != nil {
		si := e.scanner.ScanServices(ctx, lead.Website, lead.Profile.ReviewIntent.ProcedureMentions)
		svc = &si
	}

	comps := req.Competitors
	if len(comps) == 0 && e.places != nil {
		found, err := competitive.Discover(ctx, e.places, &lead, competitive.DefaultSampleSize)
		if err != nil {
			// Discovery is best effort; triage proceeds without a sample.
			log.Warn("triage: competitor discovery failed", zap.Error(err))
		} else {
			comps = found
		}
	}

	var snap *model.CompetitiveSnapshot
	if len(comps) > 0 {
		s := competitive.BuildSnapshot(&lead, comps)
		snap = &s
	}

	var lev *model.RevenueLeverage
	if svc != nil {
		l := revenue.BuildLeverage(svc)
		lev = &l
	}

	tctx := model.TriageContext{Service: svc, Competitive: snap, Revenue: lev}
	dec := decision.Assemble(&lead, tctx)

	var band *model.RevenueBand
	if !dec.IsZero() {
		b := revenue.EstimateBand(revenue.BandInput{
			Lead:            &lead,
			Service:         svc,
			HighIncomeMetro: e.metro.IsHighIncome(lead.City, lead.State),
			PricingPage:     pricing,
		})
		band = &b
	}

	sum := summary.Build(summary.Input{Lead: &lead, Decision: &dec, Band: band, Ctx: tctx})

	res := &Result{Lead: &lead, Decision: dec, Summary: sum}
	if sum == nil {
		log.Info("triage: lead out of scope, no decision rendered")
		return res, nil
	}
	res.SummaryHash = summary.ContentHash(sum)

	if e.store != nil {
		diag := &model.Diagnostic{
			LeadID:      lead.ID,
			LeadName:    lead.Name,
			SummaryHash: res.SummaryHash,
			Decision:    dec,
			Summary:     *sum,
		}
		if err := e.store.SaveDiagnostic(ctx, diag); err != nil {
			return nil, eris.Wrap(err, "triage: save diagnostic")
		}
		res.DiagnosticID = diag.ID
	}

	log.Info("triage: evaluation complete",
		zap.String("bottleneck", string(dec.RootCause.Bottleneck)),
		zap.Int("priority_score", dec.PriorityScore),
		zap.String("worth_pursuing", string(sum.WorthPursuing)),
		zap.String("summary_hash", res.SummaryHash[:12]),
	)
	return res, nil
}
