// Package profile builds the practice profile from lead signals and an
// optional website trust scan. Only dental practices get a profile;
// everything else stays profileless and is skipped by triage.
package profile

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/triage-cli/internal/model"
)

var dentalNamePattern = regexp.MustCompile(
	`(?i)\b(dentist|dental|orthodont|cosmetic\s*dentist|oral\s*surgery|periodont|endodont|dds|dmd|teeth|smile)\b`,
)

// Procedure keyword sets. High-LTV procedures drive revenue asymmetry.
var (
	proceduresHighLTV = []string{"implant", "invisalign", "cosmetic", "veneer", "orthodontic", "whitening", "bonding", "braces"}
	proceduresMedium  = []string{"cleaning", "general dentistry", "checkup", "filling", "crown", "root canal", "extraction", "x-ray"}
	urgencyKeywords   = []string{"emergency", "same day", "urgent", "walk-in", "pain", "toothache"}
	insuranceKeywords = []string{"insurance", "accepts", "in-network", "ppo", "hmo", "coverage"}
)

// IsDentalPractice reports whether the lead looks like a dental practice,
// by name or by review context.
func IsDentalPractice(lead *model.Lead) bool {
	if dentalNamePattern.MatchString(lead.Name) {
		return true
	}
	text := strings.ToLower(lead.ReviewText())
	for _, k := range []string{"dentist", "dental", "teeth", "implant", "cleaning", "orthodont"} {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// Build constructs the practice profile for a dental lead. trust carries
// the website trust scan when one ran; the zero value is a valid "no
// scan" input. Returns nil for non-dental leads.
func Build(lead *model.Lead, trust model.TrustConversionSignals) *model.PracticeProfile {
	if !IsDentalPractice(lead) {
		zap.L().Debug("profile: not a dental practice, skipping",
			zap.String("name", lead.Name),
		)
		return nil
	}

	classification := buildClassification(lead)
	intent := buildReviewIntent(lead)
	p := &model.PracticeProfile{
		Classification: classification,
		Acquisition:    buildAcquisition(lead),
		LocalSearch:    buildLocalSearch(lead),
		TrustSignals:   trust,
		ReviewIntent:   intent,
	}
	p.AgencyFit = buildAgencyFit(lead, classification, p.LocalSearch, intent)

	zap.L().Debug("profile: built",
		zap.String("name", lead.Name),
		zap.String("practice_type", classification.PracticeType),
		zap.String("ltv_class", string(classification.EstimatedLTV)),
	)
	return p
}

func detectProcedures(lead *model.Lead) []string {
	text := strings.ToLower(lead.ReviewText())
	var found []string
	for _, kw := range append(append([]string{}, proceduresHighLTV...), proceduresMedium...) {
		if strings.Contains(text, kw) {
			found = append(found, kw)
		}
	}
	if len(found) > 10 {
		found = found[:10]
	}
	return found
}

func hasHighLTV(procedures []string) bool {
	for _, p := range procedures {
		for _, h := range proceduresHighLTV {
			if p == h {
				return true
			}
		}
	}
	return false
}

func buildClassification(lead *model.Lead) model.PracticeClassification {
	focus := detectProcedures(lead)

	ltv := model.TierLow
	switch {
	case hasHighLTV(focus):
		ltv = model.TierHigh
	case len(focus) > 0:
		ltv = model.TierModerate
	}

	return model.PracticeClassification{
		PracticeType:   practiceType(focus),
		ProcedureFocus: focus,
		EstimatedLTV:   ltv,
		Confidence:     signalConfidence(lead),
	}
}

func practiceType(focus []string) string {
	has := func(keys ...string) bool {
		for _, f := range focus {
			for _, k := range keys {
				if f == k {
					return true
				}
			}
		}
		return false
	}
	switch {
	case has("orthodontic", "braces", "invisalign"):
		return "orthodontic"
	case has("cosmetic", "veneer", "whitening", "bonding"):
		return "cosmetic"
	case len(focus) > 3:
		return "multi_specialty"
	case len(focus) > 0:
		return "general_dentistry"
	}
	return "unknown"
}

func buildAcquisition(lead *model.Lead) model.AcquisitionReadiness {
	friction := model.TierLow
	switch {
	case !lead.HasScheduling && lead.HasPhone && !lead.HasContactForm:
		friction = model.TierHigh
	case !lead.HasScheduling:
		friction = model.TierModerate
	}

	var leaks []string
	if !lead.HasContactForm && lead.HasWebsite {
		leaks = append(leaks, "No contact form for web leads")
	}
	if !lead.HasScheduling && lead.HasPhone {
		leaks = append(leaks, "Phone-only intake; no online booking")
	}

	risk := model.TierLow
	switch {
	case lead.RatingValue() >= 4.0 && lead.ReviewCount >= 5 && !lead.HasScheduling:
		risk = model.TierModerate
	case !lead.HasScheduling:
		risk = model.TierHigh
	}

	return model.AcquisitionReadiness{
		BookingFriction: friction,
		ConversionLeaks: leaks,
		ChairFillRisk:   risk,
		Confidence:      signalConfidence(lead),
	}
}

func buildLocalSearch(lead *model.Lead) model.LocalSearchPositioning {
	count := lead.ReviewCount
	rating := lead.RatingValue()
	lastDays := lead.LastReviewDaysAgo

	vsMarket := model.ReviewsAboveAverage
	switch {
	case count < 50:
		vsMarket = model.ReviewsBelowAverage
	case count < 150:
		vsMarket = model.ReviewsAverage
	}

	strength := model.StatusWeak
	switch {
	case rating >= 4.8 && count >= 20:
		strength = model.StatusStrong
	case rating >= 4.0:
		strength = model.StatusModerate
	}

	mapPack := model.TierModerate
	switch {
	case count < 30 && lastDays != nil && *lastDays > 180:
		mapPack = model.TierLow
	case count >= 100:
		mapPack = model.TierHigh
	}

	gap := model.GapCompetitive
	switch {
	case vsMarket == model.ReviewsBelowAverage && strength != model.StatusWeak:
		gap = model.GapUnderutilized
	case mapPack == model.TierHigh:
		gap = model.GapSaturated
	}

	return model.LocalSearchPositioning{
		ReviewCountVsMarket: vsMarket,
		RatingStrength:      strength,
		MapPackCompet:       mapPack,
		VisibilityGap:       gap,
		Confidence:          signalConfidence(lead),
	}
}

func buildReviewIntent(lead *model.Lead) model.ReviewIntentAnalysis {
	text := strings.ToLower(lead.ReviewText())
	mentions := detectProcedures(lead)
	if len(mentions) > 8 {
		mentions = mentions[:8]
	}
	return model.ReviewIntentAnalysis{
		ProcedureMentions: mentions,
		UrgencyLanguage:   containsAny(text, urgencyKeywords),
		InsuranceMentions: containsAny(text, insuranceKeywords),
		Confidence:        signalConfidence(lead),
	}
}

func buildAgencyFit(lead *model.Lead, class model.PracticeClassification, local model.LocalSearchPositioning, intent model.ReviewIntentAnalysis) model.AgencyFitReasoning {
	strongRep := lead.RatingValue() >= 4.0 && lead.ReviewCount >= 5
	lowVolume := lead.ReviewCount < 80
	noBooking := !lead.HasScheduling
	highIntent := len(intent.ProcedureMentions) > 0 || class.EstimatedLTV == model.TierHigh

	var why []string
	if strongRep && lowVolume && noBooking {
		why = append(why, "Strong reputation with room to grow review volume")
	}
	if noBooking {
		why = append(why, "No online booking funnel; organic visibility can capture demand")
	}
	if highIntent {
		why = append(why, "High-intent procedures detected; strong ROI potential")
	}
	if local.VisibilityGap == model.GapUnderutilized {
		why = append(why, "Underutilized local visibility; map pack opportunity")
	}

	var risks []string
	if lead.ReviewCount < 10 {
		risks = append(risks, "Very low review volume")
	}
	if lead.LastReviewDaysAgo != nil && *lead.LastReviewDaysAgo > 365 {
		risks = append(risks, "Stale reviews")
	}
	if !lead.HasWebsite {
		risks = append(risks, "No website")
	}
	if lead.RunsPaidAds {
		risks = append(risks, "Existing paid spend; may already have an agency")
	}

	ideal := strongRep && (noBooking || lowVolume) &&
		(highIntent || local.VisibilityGap == model.GapUnderutilized)

	return model.AgencyFitReasoning{
		IdealForOutreach: ideal,
		Why:              why,
		RiskFlags:        risks,
		Confidence:       signalConfidence(lead),
	}
}

// signalConfidence counts the populated base signals; each is worth 0.25.
func signalConfidence(lead *model.Lead) float64 {
	n := 0
	if strings.TrimSpace(lead.ReviewSummary) != "" {
		n++
	}
	if lead.ReviewCount > 0 {
		n++
	}
	if lead.HasWebsite {
		n++
	}
	if lead.Rating != nil {
		n++
	}
	c := float64(n) * 0.25
	if c > 1.0 {
		c = 1.0
	}
	return c
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
