package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/triage-cli/internal/model"
	"github.com/sells-group/triage-cli/internal/store"
	"github.com/sells-group/triage-cli/internal/triage"
	"github.com/sells-group/triage-cli/pkg/narrator"
)

func newTestEnv(t *testing.T) *triageEnv {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "triage.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	return &triageEnv{
		Store:    st,
		Engine:   triage.New(st, nil, nil, nil),
		Narrator: narrator.New("", "claude-haiku-4-5-20251001"),
	}
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestServe_Health(t *testing.T) {
	router := newRouter(newTestEnv(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServe_TriageEndpoint(t *testing.T) {
	router := newRouter(newTestEnv(t))

	rec := postJSON(t, router, "/triage", map[string]any{
		"lead": map[string]any{
			"name":                "Bright Smile Dental",
			"review_count":        80,
			"rating":              4.5,
			"has_website":         true,
			"has_phone":           true,
			"review_summary_text": "wonderful dentist, smooth cleaning visits",
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result triage.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.NotNil(t, result.Summary)
	assert.Len(t, result.SummaryHash, 64)
	assert.False(t, result.Decision.IsZero())
}

func TestServe_TriageRejectsBadRequests(t *testing.T) {
	router := newRouter(newTestEnv(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/triage", strings.NewReader("{not json")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, router, "/triage", map[string]any{"lead": map[string]any{"review_count": 10}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "lead.name is required")
}

func TestServe_TriageOutOfScopeLead(t *testing.T) {
	router := newRouter(newTestEnv(t))

	rec := postJSON(t, router, "/triage", map[string]any{
		"lead": map[string]any{
			"name":                "Joe's Plumbing Supply",
			"review_summary_text": "fast pipe repair",
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result triage.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Nil(t, result.Summary)
	assert.True(t, result.Decision.IsZero())
}

func TestServe_OutcomeLifecycle(t *testing.T) {
	router := newRouter(newTestEnv(t))
	hash := strings.Repeat("ab", 32)

	body := map[string]any{
		"summary_hash": hash,
		"outcome_type": "contacted",
		"outcome_data": map[string]any{"channel": "email"},
	}

	rec := postJSON(t, router, "/outcomes", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var first model.Outcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	assert.NotEmpty(t, first.ID)

	// Same hash, type, and payload again: idempotent, 200 with the
	// original record.
	rec = postJSON(t, router, "/outcomes", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var second model.Outcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.Equal(t, first.ID, second.ID)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/outcomes/"+hash, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var outcomes []model.Outcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &outcomes))
	require.Len(t, outcomes, 1)
	assert.Equal(t, model.OutcomeContacted, outcomes[0].Type)
}

func TestServe_OutcomeValidation(t *testing.T) {
	router := newRouter(newTestEnv(t))

	rec := postJSON(t, router, "/outcomes", map[string]any{
		"outcome_type": "contacted",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "summary_hash is required")

	rec = postJSON(t, router, "/outcomes", map[string]any{
		"summary_hash": "abc",
		"outcome_type": "ghosted",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown outcome_type")
}
