package fetcher

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/triage-cli/internal/model"
)

// ImportResult reports what a file import produced.
type ImportResult struct {
	Leads   []model.Lead
	Skipped int // rows without a usable name
}

// ImportLeads reads a lead file (.csv or .xlsx) into lead records. The
// first row must be a header; unknown columns are ignored.
func ImportLeads(ctx context.Context, path string) (*ImportResult, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return importCSV(ctx, path)
	case ".xlsx":
		return importXLSX(path)
	default:
		return nil, eris.Errorf("fetcher: unsupported lead file %s (want .csv or .xlsx)", path)
	}
}

func importCSV(ctx context.Context, path string) (*ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: open %s", path)
	}
	defer f.Close()

	headerCh := make(chan []string, 1)
	rowCh, errCh := StreamCSV(ctx, f, CSVOptions{
		HasHeader: true,
		HeaderCh:  headerCh,
		TrimSpace: true,
	})

	var rows [][]string
	for row := range rowCh {
		rows = append(rows, row)
	}
	for err := range errCh {
		if err != nil {
			return nil, err
		}
	}

	select {
	case header := <-headerCh:
		return mapRows(header, rows), nil
	default:
		return &ImportResult{}, nil
	}
}

func importXLSX(path string) (*ImportResult, error) {
	rows, err := ReadXLSX(path, XLSXOptions{})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &ImportResult{}, nil
	}
	return mapRows(rows[0], rows[1:]), nil
}

// mapRows converts raw rows to leads using the header for column lookup.
func mapRows(header []string, rows [][]string) *ImportResult {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[normalizeHeader(h)] = i
	}

	res := &ImportResult{}
	for _, row := range rows {
		lead, ok := mapRow(idx, row)
		if !ok {
			res.Skipped++
			continue
		}
		res.Leads = append(res.Leads, lead)
	}
	if res.Skipped > 0 {
		zap.L().Warn("skipped unusable lead rows",
			zap.Int("skipped", res.Skipped),
			zap.Int("imported", len(res.Leads)))
	}
	return res
}

func mapRow(idx map[string]int, row []string) (model.Lead, bool) {
	get := func(col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	name := get("name")
	if name == "" {
		return model.Lead{}, false
	}

	lead := model.Lead{
		Name:    name,
		PlaceID: get("place_id"),
		City:    get("city"),
		State:   get("state"),
		Website: get("website"),
	}
	lead.HasWebsite = lead.Website != "" || parseBool(get("has_website"))
	lead.HasPhone = parseBool(get("has_phone"))
	lead.HasContactForm = parseBool(get("has_contact_form"))
	lead.HasScheduling = parseBool(get("has_automated_scheduling"))
	lead.RunsPaidAds = parseBool(get("runs_paid_ads"))
	lead.MultipleLocations = parseBool(get("multiple_locations"))
	lead.ReviewSummary = get("review_summary_text")

	if v, err := strconv.ParseFloat(get("rating"), 64); err == nil {
		lead.Rating = &v
	}
	if v, err := strconv.Atoi(get("review_count")); err == nil {
		lead.ReviewCount = v
	}
	if v, err := strconv.Atoi(get("last_review_days_ago")); err == nil {
		lead.LastReviewDaysAgo = &v
	}
	if v, err := strconv.Atoi(get("review_velocity_30d")); err == nil {
		lead.ReviewVelocity30d = &v
	}
	if v, err := strconv.Atoi(get("staff_count")); err == nil {
		lead.StaffCount = &v
	}
	if channels := get("paid_ads_channels"); channels != "" {
		for _, c := range strings.Split(channels, ";") {
			if c = strings.TrimSpace(c); c != "" {
				lead.PaidAdsChannels = append(lead.PaidAdsChannels, c)
			}
		}
	}
	return lead, true
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.ReplaceAll(h, " ", "_")
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "yes", "y", "1":
		return true
	}
	return false
}
