package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/triage-cli/internal/model"
	"github.com/sells-group/triage-cli/internal/report"
	"github.com/sells-group/triage-cli/internal/store"
	"github.com/sells-group/triage-cli/internal/triage"
)

var (
	batchCity      string
	batchState     string
	batchLimit     int
	batchOutDir    string
	batchNarrative bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Triage stored leads concurrently",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, "batch")
		if err != nil {
			return err
		}
		defer env.Close()

		leads, err := env.Store.ListLeads(ctx, store.LeadFilter{
			City:  batchCity,
			State: batchState,
			Limit: batchLimit,
		})
		if err != nil {
			return eris.Wrap(err, "list leads")
		}

		results, err := processBatch(ctx, leads, cfg.Batch.MaxConcurrentLeads, env.Engine.Run)
		if err != nil {
			return err
		}

		if batchOutDir == "" {
			return nil
		}
		return writeBriefs(ctx, env, results)
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchCity, "city", "", "filter stored leads by city")
	batchCmd.Flags().StringVar(&batchState, "state", "", "filter stored leads by state")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 100, "max number of leads to process")
	batchCmd.Flags().StringVar(&batchOutDir, "out", "", "directory to write triage briefs into")
	batchCmd.Flags().BoolVar(&batchNarrative, "narrative", false, "append generated outreach openers to briefs")
	rootCmd.AddCommand(batchCmd)
}

// triageFunc is the callback signature for evaluating one lead.
type triageFunc func(ctx context.Context, req triage.Request) (*triage.Result, error)

// processBatch evaluates leads concurrently. Individual failures are
// logged and counted, never abort the batch.
func processBatch(ctx context.Context, leads []model.Lead, concurrency int, run triageFunc) ([]*triage.Result, error) {
	if len(leads) == 0 {
		zap.L().Info("no leads matched")
		return nil, nil
	}
	if concurrency < 1 {
		concurrency = 1
	}

	zap.L().Info("processing batch",
		zap.Int("leads", len(leads)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed, outOfScope atomic.Int64
	var mu sync.Mutex
	var results []*triage.Result

	for _, lead := range leads {
		g.Go(func() error {
			log := zap.L().With(zap.String("lead", lead.Name))

			result, err := run(gctx, triage.Request{Lead: lead})
			if err != nil {
				failed.Add(1)
				log.Error("triage failed", zap.Error(err))
				return nil // don't abort batch on individual failure
			}
			if result.Summary == nil {
				outOfScope.Add(1)
				return nil
			}

			succeeded.Add(1)
			log.Info("triage complete",
				zap.String("bottleneck", string(result.Decision.RootCause.Bottleneck)),
				zap.Int("priority_score", result.Decision.PriorityScore),
			)
			mu.Lock()
			results = append(results, result)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "batch processing")
	}

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
		zap.Int64("out_of_scope", outOfScope.Load()),
	)
	return results, nil
}

// writeBriefs renders one brief file per result, with batch-generated
// outreach openers when requested.
func writeBriefs(ctx context.Context, env *triageEnv, results []*triage.Result) error {
	if err := os.MkdirAll(batchOutDir, 0o755); err != nil {
		return eris.Wrap(err, "create output dir")
	}

	var openers map[string]string
	if batchNarrative {
		summaries := make(map[string]*model.CanonicalSummary, len(results))
		for _, r := range results {
			summaries[r.SummaryHash] = r.Summary
		}
		var err error
		openers, err = env.Narrator.NarrateBatch(ctx, summaries)
		if err != nil {
			zap.L().Warn("narrative batch failed, briefs written without openers", zap.Error(err))
		}
	}

	for _, r := range results {
		text := report.Render(r.Summary, &r.Decision)
		if opener, ok := openers[r.SummaryHash]; ok {
			text += "\nOUTREACH OPENER\n" + opener + "\n"
		}
		path := filepath.Join(batchOutDir, briefFilename(r.Summary.LeadName, r.SummaryHash))
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			return eris.Wrap(err, fmt.Sprintf("write brief %s", path))
		}
	}

	zap.L().Info("briefs written",
		zap.Int("count", len(results)),
		zap.String("dir", batchOutDir),
	)
	return nil
}

var unsafeFilename = regexp.MustCompile(`[^a-z0-9]+`)

func briefFilename(leadName, hash string) string {
	slug := unsafeFilename.ReplaceAllString(strings.ToLower(leadName), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "lead"
	}
	short := hash
	if len(short) > 12 {
		short = short[:12]
	}
	return slug + "-" + short + ".txt"
}
