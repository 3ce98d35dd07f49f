package webscan

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/triage-cli/internal/model"
)

// High-ticket procedures: a dedicated page for one of these drives revenue
// asymmetry; a mention without a page is a gap worth selling.
var highTicketKeywords = []string{
	"dental implant", "implant", "invisalign", "veneer", "veneers",
	"cosmetic dentistry", "cosmetic", "sedation dentistry", "sedation",
	"emergency dentist", "emergency dental", "same day crown",
	"same-day crown", "sleep apnea", "orthodontic", "orthodontics", "braces",
}

var highTicketSlugs = []string{
	"implant", "implants", "invisalign", "veneer", "veneers",
	"cosmetic", "sedation", "emergency", "crown", "orthodontic",
	"orthodontics", "braces",
}

var generalKeywords = []string{
	"cleaning", "family dentist", "checkup", "filling", "fillings",
	"general dentistry", "preventive", "exam", "x-ray", "hygiene",
}

func isServiceLikePath(pageURL string) bool {
	slugs := pathSlugs(pageURL)
	for _, s := range append([]string{"service", "services", "treatment", "treatments"}, highTicketSlugs...) {
		if slugs[s] {
			return true
		}
	}
	return false
}

// ScanServices builds the service-depth intelligence for a website:
// detected high-ticket and general services, missing high-value pages
// (high-ticket procedures mentioned on site or in reviews without a
// dedicated page), and whether structured data is present.
// reviewMentions carries procedure mentions from the review intent scan.
// An empty or unreachable website yields the zero intelligence.
func (s *Scanner) ScanServices(ctx context.Context, website string, reviewMentions []string) model.ServiceIntelligence {
	var out model.ServiceIntelligence
	if strings.TrimSpace(website) == "" {
		return out
	}

	pages := s.fetchPages(ctx, website)
	if len(pages) == 0 {
		return out
	}

	dedicated := make(map[string]bool)
	mentioned := make(map[string]bool)
	general := make(map[string]bool)
	schema := false

	for _, p := range pages {
		for _, kw := range highTicketKeywords {
			slug := strings.ReplaceAll(kw, " ", "-")
			if p.slugs[slug] || p.slugs[strings.ReplaceAll(kw, " ", "")] {
				dedicated[kw] = true
			}
			if strings.Contains(p.titleH1, kw) && len(p.titleH1) < 200 {
				dedicated[kw] = true
			}
			if strings.Contains(p.text, kw) {
				mentioned[kw] = true
			}
		}
		for _, kw := range generalKeywords {
			if strings.Contains(p.text, kw) {
				general[kw] = true
			}
		}
		if strings.Contains(p.raw, "application/ld+json") || strings.Contains(p.text, "schema.org") {
			schema = true
		}
	}

	out.HighTicketProcedures = sortedKeys(union(dedicated, mentioned), 15)
	out.GeneralServices = sortedKeys(general, 10)
	out.SchemaDetected = schema

	// Missing pages: high-ticket interest (site mention or review mention)
	// with no dedicated page behind it.
	interest := union(mentioned, nil)
	for _, m := range reviewMentions {
		m = strings.ToLower(m)
		for _, kw := range highTicketKeywords {
			if kw == m {
				interest[kw] = true
			}
		}
	}
	for _, kw := range sortedKeys(interest, len(interest)) {
		if !dedicated[kw] {
			out.MissingHighValue = append(out.MissingHighValue, kw)
		}
	}
	if len(out.MissingHighValue) > 10 {
		out.MissingHighValue = out.MissingHighValue[:10]
	}

	conf := 0.3 + 0.15*float64(len(pages)) + 0.1*float64(len(out.HighTicketProcedures))
	if conf > 1.0 {
		conf = 1.0
	}
	out.Confidence = float64(int(conf*100+0.5)) / 100

	zap.L().Debug("webscan: service scan complete",
		zap.String("website", website),
		zap.Int("pages", len(pages)),
		zap.Int("high_ticket", len(out.HighTicketProcedures)),
		zap.Int("missing_pages", len(out.MissingHighValue)),
		zap.Bool("schema", schema),
	)
	return out
}

func union(a, b map[string]bool) map[string]bool {
	out := make(map[string]bool, len(a)+len(b))
	for k := range a {
		out[k] = true
	}
	for k := range b {
		out[k] = true
	}
	return out
}

func sortedKeys(m map[string]bool, limit int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > limit {
		keys = keys[:limit]
	}
	return keys
}
