package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/triage-cli/internal/report"
	"github.com/sells-group/triage-cli/internal/triage"
)

var (
	triageFile      string
	triageLeadID    string
	triageJSON      bool
	triageNarrative bool
)

var triageCmd = &cobra.Command{
	Use:   "triage",
	Short: "Evaluate a single lead",
	Long:  "Runs the full evaluation for one lead, from a request JSON file or a stored lead ID, and prints the triage brief.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "triage")
		if err != nil {
			return err
		}
		defer env.Close()

		req, err := loadRequest(ctx, env)
		if err != nil {
			return err
		}

		result, err := env.Engine.Run(ctx, req)
		if err != nil {
			return eris.Wrap(err, "triage run")
		}

		if triageJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		fmt.Println(report.Render(result.Summary, &result.Decision))

		if triageNarrative && result.Summary != nil {
			fmt.Println("OUTREACH OPENER")
			fmt.Println(env.Narrator.Narrate(ctx, result.Summary))
		}
		return nil
	},
}

// loadRequest reads the triage request from --file or the store.
func loadRequest(ctx context.Context, env *triageEnv) (triage.Request, error) {
	if triageFile != "" {
		data, err := os.ReadFile(triageFile)
		if err != nil {
			return triage.Request{}, eris.Wrap(err, "read request file")
		}
		var req triage.Request
		if err := json.Unmarshal(data, &req); err != nil {
			return triage.Request{}, eris.Wrap(err, "parse request file")
		}
		return req, nil
	}

	lead, err := env.Store.GetLead(ctx, triageLeadID)
	if err != nil {
		return triage.Request{}, eris.Wrap(err, "load lead")
	}
	return triage.Request{Lead: *lead}, nil
}

func init() {
	triageCmd.Flags().StringVar(&triageFile, "file", "", "path to triage request JSON (lead plus optional competitors)")
	triageCmd.Flags().StringVar(&triageLeadID, "lead-id", "", "stored lead ID to evaluate")
	triageCmd.Flags().BoolVar(&triageJSON, "json", false, "print the full result as JSON instead of the brief")
	triageCmd.Flags().BoolVar(&triageNarrative, "narrative", false, "append a generated outreach opener")
	triageCmd.MarkFlagsOneRequired("file", "lead-id")
	triageCmd.MarkFlagsMutuallyExclusive("file", "lead-id")
	rootCmd.AddCommand(triageCmd)
}
