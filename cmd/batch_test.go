package main

import (
	"context"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/triage-cli/internal/model"
	"github.com/sells-group/triage-cli/internal/triage"
)

func TestProcessBatch_Empty(t *testing.T) {
	results, err := processBatch(context.Background(), nil, 4, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestProcessBatch_IsolatesFailures(t *testing.T) {
	leads := []model.Lead{
		{Name: "Bright Smile Dental"},
		{Name: "broken lead"},
		{Name: "Joe's Plumbing Supply"},
		{Name: "Mesa Smiles Dentistry"},
	}

	run := func(_ context.Context, req triage.Request) (*triage.Result, error) {
		switch {
		case req.Lead.Name == "broken lead":
			return nil, eris.New("boom")
		case strings.Contains(req.Lead.Name, "Plumbing"):
			// Out of scope: zero decision, no summary.
			return &triage.Result{Lead: &req.Lead}, nil
		default:
			return &triage.Result{
				Lead:        &req.Lead,
				Summary:     &model.CanonicalSummary{LeadName: req.Lead.Name},
				SummaryHash: strings.Repeat("a", 64),
			}, nil
		}
	}

	results, err := processBatch(context.Background(), leads, 2, run)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestProcessBatch_ConcurrencyFloor(t *testing.T) {
	run := func(_ context.Context, req triage.Request) (*triage.Result, error) {
		return &triage.Result{
			Lead:    &req.Lead,
			Summary: &model.CanonicalSummary{LeadName: req.Lead.Name},
		}, nil
	}

	results, err := processBatch(context.Background(), []model.Lead{{Name: "Solo Dental"}}, 0, run)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestBriefFilename(t *testing.T) {
	hash := strings.Repeat("1f", 32)
	assert.Equal(t, "bright-smile-dental-1f1f1f1f1f1f.txt", briefFilename("Bright Smile Dental", hash))
	assert.Equal(t, "dr-lee-s-implants-co-1f1f1f1f1f1f.txt", briefFilename("Dr. Lee's Implants & Co", hash))
	assert.Equal(t, "lead-1f1f1f1f1f1f.txt", briefFilename("!!!", hash))
}
