// Package model defines the shared data types for dental lead triage.
package model

// Lead is a raw local-business record assembled upstream (places data,
// website probe, review scrape). It is read-only to every consumer.
type Lead struct {
	ID                string   `json:"id,omitempty"`
	Name              string   `json:"name"`
	PlaceID           string   `json:"place_id,omitempty"`
	City              string   `json:"city,omitempty"`
	State             string   `json:"state,omitempty"`
	Website           string   `json:"website,omitempty"`
	HasWebsite        bool     `json:"has_website"`
	Rating            *float64 `json:"rating,omitempty"`
	ReviewCount       int      `json:"review_count"`
	LastReviewDaysAgo *int     `json:"last_review_days_ago,omitempty"`
	ReviewVelocity30d *int     `json:"review_velocity_30d,omitempty"`
	HasPhone          bool     `json:"has_phone"`
	HasContactForm    bool     `json:"has_contact_form"`
	HasScheduling     bool     `json:"has_automated_scheduling"`
	RunsPaidAds       bool     `json:"runs_paid_ads"`
	PaidAdsChannels   []string `json:"paid_ads_channels,omitempty"`
	ReviewSummary     string   `json:"review_summary_text,omitempty"`
	ReviewSnippets    []string `json:"review_snippets,omitempty"`
	MultipleLocations bool     `json:"multiple_locations,omitempty"`
	StaffCount        *int     `json:"staff_count,omitempty"`

	// Profile is the externally produced practice profile. Nil is a valid
	// state: triage of a profileless lead yields the empty DecisionLayer.
	Profile *PracticeProfile `json:"practice_profile,omitempty"`
}

// RatingValue returns the rating or 0 when absent.
func (l *Lead) RatingValue() float64 {
	if l.Rating == nil {
		return 0
	}
	return *l.Rating
}

// HasContactChannel reports whether any web intake path exists.
func (l *Lead) HasContactChannel() bool {
	return l.HasContactForm || l.HasScheduling
}

// ReviewText returns the review summary and snippets joined for keyword
// scanning, lowercasing left to the caller.
func (l *Lead) ReviewText() string {
	out := l.ReviewSummary
	for _, s := range l.ReviewSnippets {
		out += " " + s
	}
	return out
}
