package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/triage-cli/internal/model"
)

var (
	outcomeHash string
	outcomeType string
	outcomeData string
)

var outcomesCmd = &cobra.Command{
	Use:   "outcomes",
	Short: "Record and inspect the outcome ledger",
}

var outcomesRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Append an outcome for a triaged lead",
	Long:  "Appends an outcome keyed by summary content hash. Recording the same hash, type, and payload twice is a no-op.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "outcomes")
		if err != nil {
			return err
		}
		defer env.Close()

		o := model.Outcome{
			SummaryHash: outcomeHash,
			Type:        model.OutcomeType(outcomeType),
		}
		if !model.ValidOutcomeType(o.Type) {
			return eris.Errorf("unknown outcome type %q", outcomeType)
		}
		if outcomeData != "" {
			if err := json.Unmarshal([]byte(outcomeData), &o.Data); err != nil {
				return eris.Wrap(err, "parse outcome data")
			}
		}

		stored, created, err := env.Store.RecordOutcome(ctx, o)
		if err != nil {
			return eris.Wrap(err, "record outcome")
		}

		zap.L().Info("outcome recorded",
			zap.String("id", stored.ID),
			zap.String("type", string(stored.Type)),
			zap.Bool("created", created),
		)
		return nil
	},
}

var outcomesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List outcomes for a summary hash",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "outcomes")
		if err != nil {
			return err
		}
		defer env.Close()

		outcomes, err := env.Store.ListOutcomes(ctx, outcomeHash)
		if err != nil {
			return eris.Wrap(err, "list outcomes")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(outcomes)
	},
}

func init() {
	outcomesRecordCmd.Flags().StringVar(&outcomeHash, "hash", "", "summary content hash (required)")
	outcomesRecordCmd.Flags().StringVar(&outcomeType, "type", "", "outcome type: contacted, replied, booked, closed, revenue_reported, conversion_reported (required)")
	outcomesRecordCmd.Flags().StringVar(&outcomeData, "data", "", "outcome payload as JSON")
	_ = outcomesRecordCmd.MarkFlagRequired("hash")
	_ = outcomesRecordCmd.MarkFlagRequired("type")

	outcomesListCmd.Flags().StringVar(&outcomeHash, "hash", "", "summary content hash (required)")
	_ = outcomesListCmd.MarkFlagRequired("hash")

	outcomesCmd.AddCommand(outcomesRecordCmd, outcomesListCmd)
	rootCmd.AddCommand(outcomesCmd)
}
