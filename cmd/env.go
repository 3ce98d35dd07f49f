package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/triage-cli/internal/competitive"
	"github.com/sells-group/triage-cli/internal/geo"
	"github.com/sells-group/triage-cli/internal/store"
	"github.com/sells-group/triage-cli/internal/triage"
	"github.com/sells-group/triage-cli/internal/webscan"
	"github.com/sells-group/triage-cli/pkg/google"
	"github.com/sells-group/triage-cli/pkg/narrator"
)

// triageEnv holds the initialized store, engine, and narrator for the
// triage/batch/serve commands.
type triageEnv struct {
	Store    store.Store
	Engine   *triage.Engine
	Narrator *narrator.Narrator
}

// Close releases resources held by the environment.
func (e *triageEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		path := cfg.Store.Path
		if path == "" {
			path = "triage.db"
		}
		return store.NewSQLite(path)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initEnv validates config for the given mode, opens and migrates the
// store, and builds the engine. Callers should defer env.Close().
func initEnv(ctx context.Context, mode string) (*triageEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	var scanner triage.SiteScanner
	if cfg.Scan.Enabled {
		scanner = webscan.New(webscan.Options{
			Timeout:         time.Duration(cfg.Scan.TimeoutSecs) * time.Second,
			RequestsPerSec:  cfg.Scan.RatePerSecond,
			UserAgent:       cfg.Scan.UserAgent,
			MaxServicePages: cfg.Scan.MaxServicePages,
		})
	} else {
		zap.L().Info("website scanning disabled")
	}

	metro := geo.DefaultMetroTable()
	if cfg.Revenue.MetroTablePath != "" {
		metro, err = geo.LoadMetroTable(cfg.Revenue.MetroTablePath)
		if err != nil {
			_ = st.Close()
			return nil, eris.Wrap(err, "load metro table")
		}
		zap.L().Info("metro income table loaded",
			zap.String("path", cfg.Revenue.MetroTablePath),
		)
	}

	var places google.Client
	if cfg.Google.Key != "" {
		// Page headroom so filtering the lead itself keeps a full sample.
		places = google.NewClient(cfg.Google.Key,
			google.WithPageSize(competitive.DefaultSampleSize+2))
		zap.L().Info("competitor discovery enabled")
	}

	n := narrator.New(cfg.Anthropic.Key, cfg.Anthropic.Model)
	if n.Generated() {
		zap.L().Info("narrative generation enabled", zap.String("model", cfg.Anthropic.Model))
	}

	return &triageEnv{
		Store:    st,
		Engine:   triage.New(st, scanner, metro, places),
		Narrator: n,
	}, nil
}
