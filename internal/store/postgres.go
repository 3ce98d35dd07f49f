package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/triage-cli/internal/db"
	"github.com/sells-group/triage-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"get_lead":         `SELECT id, data FROM leads WHERE id = $1`,
	"get_diagnostic":   `SELECT id, lead_id, lead_name, summary_hash, decision, summary, created_at FROM diagnostics WHERE summary_hash = $1 ORDER BY created_at DESC LIMIT 1`,
	"list_outcomes":    `SELECT id, summary_hash, outcome_type, payload, created_at FROM outcomes WHERE summary_hash = $1 ORDER BY created_at, id`,
	"insert_outcome":   `INSERT INTO outcomes (id, summary_hash, outcome_type, payload, payload_hash, created_at) VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (summary_hash, outcome_type, payload_hash) DO NOTHING`,
	"readback_outcome": `SELECT id, created_at FROM outcomes WHERE summary_hash = $1 AND outcome_type = $2 AND payload_hash = $3`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pgxCfg.MaxConns, pgxCfg.MinConns = poolSizing(poolCfg)
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// poolSizing resolves pool bounds, keeping the defaults for nil or
// zero-valued tuning.
func poolSizing(poolCfg *PoolConfig) (maxConns, minConns int32) {
	maxConns, minConns = 10, 2
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	return maxConns, minConns
}

// NewPostgresWithPool wraps an existing pool. Tests inject pgxmock here.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, closeFn: pool.Close}
}

// Pool returns the underlying database pool for subsystems that need
// direct query access (e.g., the bulk lead importer).
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	place_id   TEXT UNIQUE,
	name       TEXT NOT NULL,
	city       TEXT NOT NULL DEFAULT '',
	state      TEXT NOT NULL DEFAULT '',
	data       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS diagnostics (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	lead_id      TEXT NOT NULL,
	lead_name    TEXT NOT NULL,
	summary_hash TEXT NOT NULL,
	decision     JSONB NOT NULL,
	summary      JSONB NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS outcomes (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	summary_hash TEXT NOT NULL,
	outcome_type TEXT NOT NULL,
	payload      JSONB,
	payload_hash TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (summary_hash, outcome_type, payload_hash)
);

CREATE INDEX IF NOT EXISTS idx_leads_city_state ON leads(city, state);
CREATE INDEX IF NOT EXISTS idx_diagnostics_hash ON diagnostics(summary_hash);
CREATE INDEX IF NOT EXISTS idx_diagnostics_lead ON diagnostics(lead_id);
CREATE INDEX IF NOT EXISTS idx_outcomes_hash ON outcomes(summary_hash);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) UpsertLead(ctx context.Context, lead *model.Lead) (*model.Lead, error) {
	if lead == nil || lead.Name == "" {
		return nil, eris.New("postgres: lead requires a name")
	}
	stored := *lead
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	now := time.Now().UTC()

	dataJSON, err := json.Marshal(&stored)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal lead")
	}

	var row pgx.Row
	if stored.PlaceID != "" {
		row = s.pool.QueryRow(ctx,
			`INSERT INTO leads (id, place_id, name, city, state, data, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (place_id) DO UPDATE SET
			   name = EXCLUDED.name, city = EXCLUDED.city, state = EXCLUDED.state,
			   data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
			 RETURNING id`,
			stored.ID, stored.PlaceID, stored.Name, stored.City, stored.State, dataJSON, now, now,
		)
	} else {
		row = s.pool.QueryRow(ctx,
			`INSERT INTO leads (id, place_id, name, city, state, data, created_at, updated_at)
			 VALUES ($1, NULL, $2, $3, $4, $5, $6, $7)
			 RETURNING id`,
			stored.ID, stored.Name, stored.City, stored.State, dataJSON, now, now,
		)
	}
	if err := row.Scan(&stored.ID); err != nil {
		return nil, eris.Wrapf(err, "postgres: upsert lead %s", stored.Name)
	}
	return &stored, nil
}

func (s *PostgresStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	var rowID string
	var dataJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, data FROM leads WHERE id = $1`, id,
	).Scan(&rowID, &dataJSON)
	if err == pgx.ErrNoRows {
		return nil, eris.Errorf("lead not found: %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get lead %s", id)
	}

	var lead model.Lead
	if err := json.Unmarshal(dataJSON, &lead); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal lead")
	}
	lead.ID = rowID
	return &lead, nil
}

func (s *PostgresStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `SELECT id, data FROM leads WHERE true`
	args := []any{}
	argIdx := 1

	if filter.City != "" {
		query += fmt.Sprintf(` AND city = $%d`, argIdx)
		args = append(args, filter.City)
		argIdx++
	}
	if filter.State != "" {
		query += fmt.Sprintf(` AND state = $%d`, argIdx)
		args = append(args, filter.State)
		argIdx++
	}
	query += ` ORDER BY name`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		var rowID string
		var dataJSON []byte
		if err := rows.Scan(&rowID, &dataJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		var lead model.Lead
		if err := json.Unmarshal(dataJSON, &lead); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal lead")
		}
		lead.ID = rowID
		leads = append(leads, lead)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: list leads iterate")
}

func (s *PostgresStore) SaveDiagnostic(ctx context.Context, d *model.Diagnostic) error {
	if d == nil || d.SummaryHash == "" {
		return eris.New("postgres: diagnostic requires a summary hash")
	}
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	decisionJSON, err := json.Marshal(d.Decision)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal decision")
	}
	summaryJSON, err := json.Marshal(d.Summary)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal summary")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO diagnostics (id, lead_id, lead_name, summary_hash, decision, summary, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		d.ID, d.LeadID, d.LeadName, d.SummaryHash, decisionJSON, summaryJSON, d.CreatedAt,
	)
	return eris.Wrapf(err, "postgres: insert diagnostic for %s", d.LeadName)
}

func (s *PostgresStore) GetDiagnostic(ctx context.Context, summaryHash string) (*model.Diagnostic, error) {
	var d model.Diagnostic
	var decisionJSON, summaryJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, lead_id, lead_name, summary_hash, decision, summary, created_at
		 FROM diagnostics WHERE summary_hash = $1
		 ORDER BY created_at DESC LIMIT 1`,
		summaryHash,
	).Scan(&d.ID, &d.LeadID, &d.LeadName, &d.SummaryHash, &decisionJSON, &summaryJSON, &d.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get diagnostic")
	}

	if err := json.Unmarshal(decisionJSON, &d.Decision); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal decision")
	}
	if err := json.Unmarshal(summaryJSON, &d.Summary); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal summary")
	}
	return &d, nil
}

func (s *PostgresStore) RecordOutcome(ctx context.Context, o model.Outcome) (*model.Outcome, bool, error) {
	if o.SummaryHash == "" {
		return nil, false, eris.New("postgres: outcome requires a summary hash")
	}
	if !model.ValidOutcomeType(o.Type) {
		return nil, false, eris.Errorf("postgres: invalid outcome type %q", o.Type)
	}

	payloadJSON, err := json.Marshal(o.Data)
	if err != nil {
		return nil, false, eris.Wrap(err, "postgres: marshal outcome payload")
	}
	pHash := payloadHash(payloadJSON)

	id := uuid.New().String()
	now := time.Now().UTC()

	tag, err := s.pool.Exec(ctx,
		`INSERT INTO outcomes (id, summary_hash, outcome_type, payload, payload_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (summary_hash, outcome_type, payload_hash) DO NOTHING`,
		id, o.SummaryHash, string(o.Type), payloadJSON, pHash, now,
	)
	if err != nil {
		return nil, false, eris.Wrap(err, "postgres: record outcome")
	}
	created := tag.RowsAffected() > 0

	stored := o
	err = s.pool.QueryRow(ctx,
		`SELECT id, created_at FROM outcomes
		 WHERE summary_hash = $1 AND outcome_type = $2 AND payload_hash = $3`,
		o.SummaryHash, string(o.Type), pHash,
	).Scan(&stored.ID, &stored.CreatedAt)
	if err != nil {
		return nil, false, eris.Wrap(err, "postgres: read back outcome")
	}
	return &stored, created, nil
}

func (s *PostgresStore) ListOutcomes(ctx context.Context, summaryHash string) ([]model.Outcome, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, summary_hash, outcome_type, payload, created_at
		 FROM outcomes WHERE summary_hash = $1 ORDER BY created_at, id`,
		summaryHash,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list outcomes")
	}
	defer rows.Close()

	var out []model.Outcome
	for rows.Next() {
		var o model.Outcome
		var typ string
		var payload []byte
		if err := rows.Scan(&o.ID, &o.SummaryHash, &typ, &payload, &o.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan outcome")
		}
		o.Type = model.OutcomeType(typ)
		if len(payload) > 0 && string(payload) != "null" {
			if err := json.Unmarshal(payload, &o.Data); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal outcome payload")
			}
		}
		out = append(out, o)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list outcomes iterate")
}
