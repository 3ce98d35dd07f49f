// Package store persists leads, triage diagnostics, and the append-only
// outcome ledger. Two backends exist: SQLite for single-operator use and
// Postgres for shared deployments.
package store

import (
	"context"

	"github.com/sells-group/triage-cli/internal/model"
)

// LeadFilter specifies criteria for listing leads.
type LeadFilter struct {
	City   string `json:"city,omitempty"`
	State  string `json:"state,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for the triage pipeline.
//
// RecordOutcome is idempotent: the ledger key is (summary hash, outcome
// type, payload). Recording the same triple twice returns the original
// entry with created=false and writes nothing.
type Store interface {
	// Leads
	UpsertLead(ctx context.Context, lead *model.Lead) (*model.Lead, error)
	GetLead(ctx context.Context, id string) (*model.Lead, error)
	ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error)

	// Diagnostics
	SaveDiagnostic(ctx context.Context, d *model.Diagnostic) error
	GetDiagnostic(ctx context.Context, summaryHash string) (*model.Diagnostic, error)

	// Outcome ledger
	RecordOutcome(ctx context.Context, o model.Outcome) (out *model.Outcome, created bool, err error)
	ListOutcomes(ctx context.Context, summaryHash string) ([]model.Outcome, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
