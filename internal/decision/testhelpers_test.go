package decision

import (
	"github.com/sells-group/triage-cli/internal/model"
)

// moderateProfile returns a profile whose every sub-block reads as
// middling: no rule in the cascade should fire on it except the default.
func moderateProfile() *model.PracticeProfile {
	return &model.PracticeProfile{
		Classification: model.PracticeClassification{
			PracticeType: "general_dentistry",
			EstimatedLTV: model.TierModerate,
			Confidence:   0.7,
		},
		Acquisition: model.AcquisitionReadiness{
			BookingFriction: model.TierModerate,
			ChairFillRisk:   model.TierModerate,
			Confidence:      0.7,
		},
		LocalSearch: model.LocalSearchPositioning{
			ReviewCountVsMarket: model.ReviewsAverage,
			RatingStrength:      model.StatusModerate,
			MapPackCompet:       model.TierModerate,
			VisibilityGap:       model.GapCompetitive,
			Confidence:          0.7,
		},
		ReviewIntent: model.ReviewIntentAnalysis{Confidence: 0.7},
	}
}

// moderateLead returns a lead with unremarkable mid-range signals.
func moderateLead() *model.Lead {
	rating := 4.4
	days := 30
	return &model.Lead{
		Name:              "Bright Smile Dental",
		City:              "Mesa",
		State:             "AZ",
		Website:           "https://brightsmile.example.com",
		HasWebsite:        true,
		Rating:            &rating,
		ReviewCount:       60,
		LastReviewDaysAgo: &days,
		HasPhone:          true,
		HasContactForm:    true,
		ReviewSummary:     "friendly dentist, painless cleaning",
	}
}

func moderateBlock() model.SignalBlock {
	return model.SignalBlock{
		Status:     model.StatusModerate,
		Evidence:   []string{"mid-range signal"},
		Confidence: 0.7,
	}
}

func moderateSignals() model.Signals {
	return model.Signals{
		Demand:     moderateBlock(),
		Capture:    moderateBlock(),
		Conversion: moderateBlock(),
		Trust:      moderateBlock(),
	}
}

// moderateInput builds a fully-moderate Input; tests mutate the copies
// it returns.
func moderateInput() Input {
	return Input{
		Lead:    moderateLead(),
		Profile: moderateProfile(),
		Signals: moderateSignals(),
	}
}

func weak(b *model.SignalBlock) {
	b.Status = model.StatusWeak
}
