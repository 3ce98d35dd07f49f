package webscan

import (
	"context"
	"regexp"
	"strings"

	"github.com/sells-group/triage-cli/internal/model"
)

var (
	trustInsurancePattern = regexp.MustCompile(
		`(?i)insurance|in-?network|ppo|hmo|dental\s+plans?|coverage`)
	trustGalleryPattern = regexp.MustCompile(
		`(?i)before\s*and\s*after|before\s*&\s*after|before/after|gallery|results|transform`)
	trustCredentialsPattern = regexp.MustCompile(
		`(?i)doctor|dr\.|dds|dmd|credentials|education|residency|specialty|board\s+certified`)
	pricingPattern = regexp.MustCompile(
		`(?i)pricing|fee\s+schedule|cost\s+of|payment\s+plans?|financing|membership\s+plan`)
)

// trustScanCap bounds how much of a page the trust patterns scan.
const trustScanCap = 50000

// ScanTrust fetches the homepage and scans it for trust and conversion
// markers. A missing or unreachable site yields the zero value
// (confidence 0), which downstream classification treats as "no scan".
func (s *Scanner) ScanTrust(ctx context.Context, website string) model.TrustConversionSignals {
	if strings.TrimSpace(website) == "" {
		return model.TrustConversionSignals{}
	}
	html, err := s.fetch(ctx, normalizeBase(website))
	if err != nil {
		return model.TrustConversionSignals{}
	}
	return ScanTrustHTML(html)
}

// ScanTrustHTML scans already-fetched HTML for trust markers.
func ScanTrustHTML(html string) model.TrustConversionSignals {
	if strings.TrimSpace(html) == "" {
		return model.TrustConversionSignals{}
	}
	if len(html) > trustScanCap {
		html = html[:trustScanCap]
	}

	out := model.TrustConversionSignals{
		InsuranceVisible:   trustInsurancePattern.MatchString(html),
		BeforeAfterGallery: trustGalleryPattern.MatchString(html),
		CredentialsVisible: trustCredentialsPattern.MatchString(html),
	}

	n := 0
	for _, f := range []bool{out.InsuranceVisible, out.BeforeAfterGallery, out.CredentialsVisible} {
		if f {
			n++
		}
	}
	out.Confidence = 0.3 + 0.2*float64(n)
	if out.Confidence > 1.0 {
		out.Confidence = 1.0
	}
	return out
}

// ScanPricing reports whether the homepage shows pricing or financing
// content. Feeds the revenue band confidence only.
func (s *Scanner) ScanPricing(ctx context.Context, website string) bool {
	if strings.TrimSpace(website) == "" {
		return false
	}
	html, err := s.fetch(ctx, normalizeBase(website))
	if err != nil {
		return false
	}
	return ScanPricingHTML(html)
}

// ScanPricingHTML scans already-fetched HTML for pricing markers.
func ScanPricingHTML(html string) bool {
	if len(html) > trustScanCap {
		html = html[:trustScanCap]
	}
	return pricingPattern.MatchString(html)
}
