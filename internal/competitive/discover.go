package competitive

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/triage-cli/internal/model"
	"github.com/sells-group/triage-cli/pkg/google"
)

// DefaultSampleSize bounds a discovered competitor sample. Small samples
// are intentional; positioning is relative to the sample average.
const DefaultSampleSize = 6

// Discover samples nearby competitor practices through a Places text
// search. The lead itself is filtered out by place ID when known,
// otherwise by name. A lead with no city cannot be sampled and yields
// an empty result.
func Discover(ctx context.Context, client google.Client, lead *model.Lead, limit int) ([]Competitor, error) {
	if client == nil || strings.TrimSpace(lead.City) == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultSampleSize
	}

	query := fmt.Sprintf("dentist in %s, %s", lead.City, lead.State)
	resp, err := client.TextSearch(ctx, query)
	if err != nil {
		return nil, eris.Wrapf(err, "competitive: places search %q", query)
	}

	var out []Competitor
	for _, p := range resp.Places {
		if isSelf(p, lead) {
			continue
		}
		c := Competitor{
			PlaceID:     p.ID,
			Name:        p.DisplayName.Text,
			ReviewCount: p.UserRatingCount,
		}
		if p.Rating > 0 {
			r := p.Rating
			c.Rating = &r
		}
		out = append(out, c)
		if len(out) >= limit {
			break
		}
	}

	zap.L().Debug("competitive: sample discovered",
		zap.String("query", query),
		zap.Int("sampled", len(out)),
	)
	return out, nil
}

func isSelf(p google.Place, lead *model.Lead) bool {
	if lead.PlaceID != "" && p.ID == lead.PlaceID {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(p.DisplayName.Text), strings.TrimSpace(lead.Name))
}
