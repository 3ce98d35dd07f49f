// Package webscan fetches a practice website and derives service
// intelligence and trust signals from its pages. All failures degrade to
// empty results; a dead website never stops triage.
package webscan

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/triage-cli/internal/resilience"
)

const (
	defaultUserAgent       = "Mozilla/5.0 (compatible; SellsTriage/1.0)"
	maxBodyBytes           = 512 * 1024
	defaultMaxServicePages = 5
)

// Scanner fetches pages from a single practice website with polite rate
// limiting.
type Scanner struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	maxPages  int
	retry     resilience.RetryConfig
}

// Options configures a Scanner. Zero values get usable defaults.
type Options struct {
	Timeout         time.Duration
	RequestsPerSec  float64
	UserAgent       string
	MaxServicePages int
}

// New creates a Scanner.
func New(opts Options) *Scanner {
	if opts.Timeout == 0 {
		opts.Timeout = 12 * time.Second
	}
	if opts.RequestsPerSec == 0 {
		opts.RequestsPerSec = 2
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.MaxServicePages == 0 {
		opts.MaxServicePages = defaultMaxServicePages
	}
	return &Scanner{
		client:    &http.Client{Timeout: opts.Timeout},
		limiter:   rate.NewLimiter(rate.Limit(opts.RequestsPerSec), 1),
		userAgent: opts.UserAgent,
		maxPages:  opts.MaxServicePages,
		retry: resilience.RetryConfig{
			MaxAttempts:    2,
			InitialBackoff: 300 * time.Millisecond,
			MaxBackoff:     2 * time.Second,
			OnRetry:        resilience.RetryLogger("webscan", "fetch"),
		},
	}
}

// fetch retrieves one page body, capped at maxBodyBytes. Transient
// failures (timeouts, 5xx, 429) are retried once with a short backoff.
func (s *Scanner) fetch(ctx context.Context, pageURL string) (string, error) {
	return resilience.DoVal(ctx, s.retry, func(ctx context.Context) (string, error) {
		return s.fetchOnce(ctx, pageURL)
	})
}

func (s *Scanner) fetchOnce(ctx context.Context, pageURL string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", eris.Wrap(err, "webscan: rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", eris.Wrapf(err, "webscan: build request %s", pageURL)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", eris.Wrapf(err, "webscan: fetch %s", pageURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("webscan: fetch %s: status %d", pageURL, resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return "", resilience.NewTransientError(err, resp.StatusCode)
		}
		return "", err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", eris.Wrapf(err, "webscan: read body %s", pageURL)
	}
	return string(body), nil
}

// normalizeBase ensures the website URL has a scheme.
func normalizeBase(website string) string {
	if strings.HasPrefix(website, "http://") || strings.HasPrefix(website, "https://") {
		return website
	}
	return "https://" + website
}

var hrefPattern = regexp.MustCompile(`(?i)href\s*=\s*["']([^"']+)["']`)

// extractLinks returns same-domain links found in html, capped at 30.
func extractLinks(html, baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var links []string
	for _, m := range hrefPattern.FindAllStringSubmatch(html, -1) {
		ref, err := url.Parse(strings.TrimSpace(m[1]))
		if err != nil {
			continue
		}
		full := base.ResolveReference(ref)
		if full.Scheme != "http" && full.Scheme != "https" {
			continue
		}
		if !strings.EqualFold(full.Host, base.Host) {
			continue
		}
		u := full.String()
		if seen[u] {
			continue
		}
		seen[u] = true
		links = append(links, u)
		if len(links) >= 30 {
			break
		}
	}
	return links
}

var (
	scriptPattern = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	stylePattern  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	tagPattern    = regexp.MustCompile(`<[^>]+>`)
	spacePattern  = regexp.MustCompile(`\s+`)
	titlePattern  = regexp.MustCompile(`(?i)<title[^>]*>([^<]+)</title>`)
	h1Pattern     = regexp.MustCompile(`(?i)<h1[^>]*>([^<]+)</h1>`)
	slugPattern   = regexp.MustCompile(`[a-z0-9]+`)
)

// stripHTML reduces a page to lowercased text for keyword scanning.
func stripHTML(html string) string {
	text := scriptPattern.ReplaceAllString(html, " ")
	text = stylePattern.ReplaceAllString(text, " ")
	text = tagPattern.ReplaceAllString(text, " ")
	text = spacePattern.ReplaceAllString(text, " ")
	return strings.ToLower(text)
}

// titleH1 returns the lowercased title and first h1 joined.
func titleH1(html string) string {
	var parts []string
	if m := titlePattern.FindStringSubmatch(html); m != nil {
		parts = append(parts, strings.TrimSpace(m[1]))
	}
	if m := h1Pattern.FindStringSubmatch(html); m != nil {
		parts = append(parts, strings.TrimSpace(m[1]))
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// pathSlugs returns lowercase alphanumeric path segments of a URL.
func pathSlugs(pageURL string) map[string]bool {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}
	slugs := make(map[string]bool)
	for _, s := range slugPattern.FindAllString(strings.ToLower(u.Path), -1) {
		slugs[s] = true
	}
	return slugs
}

// page is one fetched, pre-processed page.
type page struct {
	url     string
	text    string
	titleH1 string
	slugs   map[string]bool
	raw     string
}

// fetchPages retrieves the homepage and up to maxPages service-like
// pages. Fetch failures are logged and skipped.
func (s *Scanner) fetchPages(ctx context.Context, website string) []page {
	base := normalizeBase(website)
	home, err := s.fetch(ctx, base)
	if err != nil {
		zap.L().Debug("webscan: homepage fetch failed",
			zap.String("url", base),
			zap.Error(err),
		)
		return nil
	}

	pages := []page{{
		url:     base,
		text:    stripHTML(home),
		titleH1: titleH1(home),
		slugs:   pathSlugs(base),
		raw:     home,
	}}

	var serviceLinks []string
	for _, link := range extractLinks(home, base) {
		if link != base && isServiceLikePath(link) {
			serviceLinks = append(serviceLinks, link)
		}
		if len(serviceLinks) >= s.maxPages {
			break
		}
	}

	for _, link := range serviceLinks {
		body, err := s.fetch(ctx, link)
		if err != nil {
			zap.L().Debug("webscan: service page fetch failed",
				zap.String("url", link),
				zap.Error(err),
			)
			continue
		}
		pages = append(pages, page{
			url:     link,
			text:    stripHTML(body),
			titleH1: titleH1(body),
			slugs:   pathSlugs(link),
			raw:     body,
		})
	}
	return pages
}
