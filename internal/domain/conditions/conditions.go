// Package conditions holds the per-request QueryConditions value.
package conditions

import (
	"fmt"
	"slices"

	"github.com/kailas-cloud/skinrec/internal/domain"
	"github.com/kailas-cloud/skinrec/internal/domain/tagging"
)

// ElderAge is the age from which the elder catalog and profile apply.
const ElderAge = 50

// DefaultElderlyAge is assumed when text mentions elderly users without a number.
const DefaultElderlyAge = 60

const maxAge = 150

// ValidAge reports whether n is an age Validate accepts.
func ValidAge(n int) bool { return n >= 0 && n <= maxAge }

// QueryConditions is the structured form of a user request. Never persisted.
type QueryConditions struct {
	Age       *int           `json:"age,omitempty"`
	Gender    tagging.Gender `json:"gender"`
	SkinType  string         `json:"skin_type,omitempty"`
	Concerns  []string       `json:"concerns"`
	Elder     bool           `json:"elder,omitempty"`
	Sensitive bool           `json:"sensitive,omitempty"`
}

// Validate rejects conditions that no extractor would produce.
func (c QueryConditions) Validate() error {
	if c.Age != nil && !ValidAge(*c.Age) {
		return fmt.Errorf("age %d out of range: %w", *c.Age, domain.ErrInvalidConditions)
	}
	switch c.Gender {
	case "", tagging.GenderFemale, tagging.GenderMale, tagging.GenderUnknown:
	default:
		return fmt.Errorf("gender %q: %w", c.Gender, domain.ErrInvalidConditions)
	}
	for _, concern := range c.Concerns {
		if concern == "" {
			return fmt.Errorf("empty concern: %w", domain.ErrInvalidConditions)
		}
	}
	return nil
}

// Normalize maps free-form skin type and concern values onto tags, fills the
// unknown gender and derives the profile flags. The receiver is not modified.
func (c QueryConditions) Normalize() QueryConditions {
	out := c
	if out.Gender == "" {
		out.Gender = tagging.GenderUnknown
	}
	if out.SkinType != "" {
		out.SkinType = tagging.DetectSkinType(out.SkinType)
	}
	concerns := make([]string, 0, len(c.Concerns))
	for _, raw := range c.Concerns {
		tags := tagging.DetectConcerns(raw)
		if len(tags) == 0 {
			tags = []string{raw}
		}
		for _, tag := range tags {
			if !slices.Contains(concerns, tag) {
				concerns = append(concerns, tag)
			}
		}
	}
	out.Concerns = concerns
	if out.Age != nil && *out.Age >= ElderAge {
		out.Elder = true
	}
	if out.SkinType == tagging.SkinSensitive {
		out.Sensitive = true
	}
	return out
}

// HasAge reports whether an age is known.
func (c QueryConditions) HasAge() bool { return c.Age != nil }

// AgeOrZero returns the age or 0.
func (c QueryConditions) AgeOrZero() int {
	if c.Age == nil {
		return 0
	}
	return *c.Age
}

// IntPtr is a convenience for building conditions literals.
func IntPtr(v int) *int { return &v }
