package profile

import (
	"fmt"
	"time"
)

// UserProfile is the engine's read-only view of a platform user. The field
// set is exhaustive: scoring consumes nothing beyond what is declared here,
// and absence of a field is expressed by its zero value rather than by
// defensive map probing at each call site.
type UserProfile struct {
	ID      string `json:"id"`
	Version int    `json:"version"`

	// Free-text life philosophy ("what drives you").
	Philosophy string `json:"philosophy,omitempty"`

	// CoreValues maps a value category (e.g. "family", "growth") to one or
	// more statements the user wrote for it.
	CoreValues map[string][]string `json:"core_values,omitempty"`

	Interests []string `json:"interests,omitempty"`

	// Traits maps a personality trait name to the user's own description
	// of how it shows up for them.
	Traits map[string]string `json:"personality_traits,omitempty"`

	// Communication maps a preference aspect (medium, depth,
	// emotional_expression, conflict_style) to the chosen preference.
	Communication map[string]string `json:"communication_style,omitempty"`

	// Responses holds onboarding question → answer pairs.
	Responses map[string]string `json:"responses,omitempty"`

	BirthDate time.Time `json:"birth_date,omitempty"`
	Location  string    `json:"location,omitempty"`

	// Lifestyle holds dietary and lifestyle tags ("vegan", "non-smoker").
	Lifestyle []string `json:"lifestyle,omitempty"`
}

// Validate checks the invariants the engine relies on. It is called once at
// the boundary; scorers may assume a validated profile.
func (p *UserProfile) Validate() error {
	if p == nil {
		return fmt.Errorf("profile is nil")
	}
	if p.ID == "" {
		return fmt.Errorf("profile id is required")
	}
	if p.Version < 0 {
		return fmt.Errorf("profile %s: version must be >= 0", p.ID)
	}
	return nil
}

// Age returns the user's age in whole years at the given instant, or -1
// when the birth date is unknown.
func (p *UserProfile) Age(now time.Time) int {
	if p.BirthDate.IsZero() {
		return -1
	}
	years := now.Year() - p.BirthDate.Year()
	// Birthday not yet reached this year.
	anniversary := p.BirthDate.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	if years < 0 {
		return -1
	}
	return years
}

// completenessChecks is the fixed confidence checklist: each item
// contributes equally to profile completeness.
var completenessChecks = []func(*UserProfile) bool{
	func(p *UserProfile) bool { return p.Philosophy != "" },
	func(p *UserProfile) bool { return len(p.CoreValues) > 0 },
	func(p *UserProfile) bool { return len(p.Interests) >= 3 },
	func(p *UserProfile) bool { return len(p.Traits) > 0 },
	func(p *UserProfile) bool { return len(p.Communication) > 0 },
	func(p *UserProfile) bool { return len(p.Responses) > 0 },
}

// Completeness returns the fraction of the confidence checklist this
// profile satisfies, in [0,1]. It backs the result's confidence value: a
// score computed mostly from neutral defaults should not look trustworthy.
func (p *UserProfile) Completeness() float64 {
	if p == nil {
		return 0
	}
	met := 0
	for _, check := range completenessChecks {
		if check(p) {
			met++
		}
	}
	return float64(met) / float64(len(completenessChecks))
}
