package main

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/triage-cli/internal/db"
	"github.com/sells-group/triage-cli/internal/fetcher"
	"github.com/sells-group/triage-cli/internal/model"
	"github.com/sells-group/triage-cli/internal/store"
)

var importPath string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import leads from a CSV or XLSX file into the store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "import")
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := fetcher.ImportLeads(ctx, importPath)
		if err != nil {
			return eris.Wrap(err, "import leads")
		}

		stored, err := storeLeads(ctx, env.Store, result.Leads)
		if err != nil {
			return err
		}

		zap.L().Info("import complete",
			zap.Int("stored", stored),
			zap.Int("skipped", result.Skipped),
			zap.String("file", importPath),
		)
		return nil
	},
}

// storeLeads persists imported leads. The Postgres backend takes the
// COPY-based bulk path; SQLite upserts one at a time.
func storeLeads(ctx context.Context, st store.Store, leads []model.Lead) (int, error) {
	if len(leads) == 0 {
		return 0, nil
	}

	if ps, ok := st.(*store.PostgresStore); ok {
		n, err := bulkStoreLeads(ctx, ps, leads)
		if err != nil {
			return 0, eris.Wrap(err, "bulk store leads")
		}
		return n, nil
	}

	for i := range leads {
		if _, err := st.UpsertLead(ctx, &leads[i]); err != nil {
			return 0, eris.Wrapf(err, "store lead %q", leads[i].Name)
		}
	}
	return len(leads), nil
}

func bulkStoreLeads(ctx context.Context, ps *store.PostgresStore, leads []model.Lead) (int, error) {
	rows := make([][]any, 0, len(leads))
	for i := range leads {
		lead := &leads[i]
		if lead.ID == "" {
			lead.ID = uuid.New().String()
		}
		data, err := json.Marshal(lead)
		if err != nil {
			return 0, eris.Wrapf(err, "encode lead %q", lead.Name)
		}
		// NULL place_id rows never conflict, so placeless leads always insert.
		var placeID any
		if lead.PlaceID != "" {
			placeID = lead.PlaceID
		}
		rows = append(rows, []any{lead.ID, placeID, lead.Name, lead.City, lead.State, data})
	}

	n, err := db.BulkUpsert(ctx, ps.Pool(), db.UpsertConfig{
		Table:        "leads",
		Columns:      []string{"id", "place_id", "name", "city", "state", "data"},
		ConflictKeys: []string{"place_id"},
		UpdateCols:   []string{"name", "city", "state", "data"},
	}, rows)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func init() {
	importCmd.Flags().StringVar(&importPath, "file", "", "path to lead file, .csv or .xlsx (required)")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}
