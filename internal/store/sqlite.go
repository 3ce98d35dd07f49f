package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/triage-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id         TEXT PRIMARY KEY,
	place_id   TEXT UNIQUE,
	name       TEXT NOT NULL,
	city       TEXT NOT NULL DEFAULT '',
	state      TEXT NOT NULL DEFAULT '',
	data       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS diagnostics (
	id           TEXT PRIMARY KEY,
	lead_id      TEXT NOT NULL,
	lead_name    TEXT NOT NULL,
	summary_hash TEXT NOT NULL,
	decision     TEXT NOT NULL,
	summary      TEXT NOT NULL,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS outcomes (
	id           TEXT PRIMARY KEY,
	summary_hash TEXT NOT NULL,
	outcome_type TEXT NOT NULL,
	payload      TEXT,
	payload_hash TEXT NOT NULL,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (summary_hash, outcome_type, payload_hash)
);

CREATE INDEX IF NOT EXISTS idx_leads_city_state ON leads(city, state);
CREATE INDEX IF NOT EXISTS idx_diagnostics_hash ON diagnostics(summary_hash);
CREATE INDEX IF NOT EXISTS idx_diagnostics_lead ON diagnostics(lead_id);
CREATE INDEX IF NOT EXISTS idx_outcomes_hash ON outcomes(summary_hash);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertLead(ctx context.Context, lead *model.Lead) (*model.Lead, error) {
	if lead == nil || lead.Name == "" {
		return nil, eris.New("sqlite: lead requires a name")
	}
	stored := *lead
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	now := time.Now().UTC()

	dataJSON, err := json.Marshal(&stored)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal lead")
	}

	// place_id is the natural key when present; ID otherwise.
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO leads (id, place_id, name, city, state, data, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(place_id) DO UPDATE SET
		   name = excluded.name, city = excluded.city, state = excluded.state,
		   data = excluded.data, updated_at = excluded.updated_at`,
		stored.ID, nullIfEmpty(stored.PlaceID), stored.Name, stored.City, stored.State,
		string(dataJSON), now, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: upsert lead %s", stored.Name)
	}

	// After an update the surviving row keeps its original id.
	if stored.PlaceID != "" {
		row := s.db.QueryRowContext(ctx, `SELECT id FROM leads WHERE place_id = ?`, stored.PlaceID)
		if err := row.Scan(&stored.ID); err != nil {
			return nil, eris.Wrap(err, "sqlite: resolve lead id")
		}
	}
	return &stored, nil
}

func (s *SQLiteStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, data FROM leads WHERE id = ?`, id)

	var rowID, dataJSON string
	err := row.Scan(&rowID, &dataJSON)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("lead not found: %s", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get lead")
	}

	var lead model.Lead
	if err := json.Unmarshal([]byte(dataJSON), &lead); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal lead")
	}
	lead.ID = rowID
	return &lead, nil
}

func (s *SQLiteStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `SELECT id, data FROM leads WHERE 1=1`
	var args []any

	if filter.City != "" {
		query += ` AND city = ?`
		args = append(args, filter.City)
	}
	if filter.State != "" {
		query += ` AND state = ?`
		args = append(args, filter.State)
	}
	query += ` ORDER BY name`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		var rowID, dataJSON string
		if err := rows.Scan(&rowID, &dataJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		var lead model.Lead
		if err := json.Unmarshal([]byte(dataJSON), &lead); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal lead")
		}
		lead.ID = rowID
		leads = append(leads, lead)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: list leads iterate")
}

func (s *SQLiteStore) SaveDiagnostic(ctx context.Context, d *model.Diagnostic) error {
	if d == nil || d.SummaryHash == "" {
		return eris.New("sqlite: diagnostic requires a summary hash")
	}
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	decisionJSON, err := json.Marshal(d.Decision)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal decision")
	}
	summaryJSON, err := json.Marshal(d.Summary)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal summary")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO diagnostics (id, lead_id, lead_name, summary_hash, decision, summary, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.LeadID, d.LeadName, d.SummaryHash,
		string(decisionJSON), string(summaryJSON), d.CreatedAt,
	)
	return eris.Wrapf(err, "sqlite: insert diagnostic for %s", d.LeadName)
}

func (s *SQLiteStore) GetDiagnostic(ctx context.Context, summaryHash string) (*model.Diagnostic, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, lead_id, lead_name, summary_hash, decision, summary, created_at
		 FROM diagnostics WHERE summary_hash = ?
		 ORDER BY created_at DESC LIMIT 1`,
		summaryHash,
	)

	var d model.Diagnostic
	var decisionJSON, summaryJSON string
	err := row.Scan(&d.ID, &d.LeadID, &d.LeadName, &d.SummaryHash, &decisionJSON, &summaryJSON, &d.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get diagnostic")
	}
	if err := json.Unmarshal([]byte(decisionJSON), &d.Decision); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal decision")
	}
	if err := json.Unmarshal([]byte(summaryJSON), &d.Summary); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal summary")
	}
	return &d, nil
}

func (s *SQLiteStore) RecordOutcome(ctx context.Context, o model.Outcome) (*model.Outcome, bool, error) {
	if o.SummaryHash == "" {
		return nil, false, eris.New("sqlite: outcome requires a summary hash")
	}
	if !model.ValidOutcomeType(o.Type) {
		return nil, false, eris.Errorf("sqlite: invalid outcome type %q", o.Type)
	}

	payloadJSON, err := json.Marshal(o.Data)
	if err != nil {
		return nil, false, eris.Wrap(err, "sqlite: marshal outcome payload")
	}
	pHash := payloadHash(payloadJSON)

	id := uuid.New().String()
	now := time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO outcomes (id, summary_hash, outcome_type, payload, payload_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(summary_hash, outcome_type, payload_hash) DO NOTHING`,
		id, o.SummaryHash, string(o.Type), string(payloadJSON), pHash, now,
	)
	if err != nil {
		return nil, false, eris.Wrap(err, "sqlite: record outcome")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, eris.Wrap(err, "sqlite: rows affected")
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at FROM outcomes
		 WHERE summary_hash = ? AND outcome_type = ? AND payload_hash = ?`,
		o.SummaryHash, string(o.Type), pHash,
	)
	stored := o
	if err := row.Scan(&stored.ID, &stored.CreatedAt); err != nil {
		return nil, false, eris.Wrap(err, "sqlite: read back outcome")
	}
	return &stored, n > 0, nil
}

func (s *SQLiteStore) ListOutcomes(ctx context.Context, summaryHash string) ([]model.Outcome, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, summary_hash, outcome_type, payload, created_at
		 FROM outcomes WHERE summary_hash = ? ORDER BY created_at, id`,
		summaryHash,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list outcomes")
	}
	defer rows.Close()

	var out []model.Outcome
	for rows.Next() {
		var o model.Outcome
		var typ string
		var payload sql.NullString
		if err := rows.Scan(&o.ID, &o.SummaryHash, &typ, &payload, &o.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan outcome")
		}
		o.Type = model.OutcomeType(typ)
		if payload.Valid && payload.String != "" && payload.String != "null" {
			if err := json.Unmarshal([]byte(payload.String), &o.Data); err != nil {
				return nil, eris.Wrap(err, "sqlite: unmarshal outcome payload")
			}
		}
		out = append(out, o)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list outcomes iterate")
}

// helpers

// payloadHash hashes the canonical payload encoding. Map keys are sorted
// by the JSON encoder, so equal payloads hash equal.
func payloadHash(payloadJSON []byte) string {
	h := sha256.Sum256(payloadJSON)
	return fmt.Sprintf("%x", h[:16])
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
