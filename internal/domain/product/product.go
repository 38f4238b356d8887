// Package product holds the catalog Product value and its normalizer.
package product

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultSuitableAge applies when a record has no age range.
const DefaultSuitableAge = "0+"

// Usage describes how a product is applied.
type Usage struct {
	Frequency   string `json:"frequency,omitempty"`
	Method      string `json:"method,omitempty"`
	Timing      string `json:"timing,omitempty"`
	Precautions string `json:"precautions,omitempty"`
}

// Product is a catalog entry after normalization. Every list-like field is a
// list, possibly empty, never a scalar.
type Product struct {
	Name              string            `json:"name"`
	Brand             string            `json:"brand,omitempty"`
	Category          string            `json:"category,omitempty"`
	Price             string            `json:"price,omitempty"`
	Link              string            `json:"link,omitempty"`
	Description       string            `json:"description,omitempty"`
	SuitableAge       string            `json:"suitable_age"`
	SuitableSkinTypes []string          `json:"suitable_skin_types"`
	TargetConcerns    []string          `json:"target_concerns"`
	Tags              []string          `json:"tags"`
	KeyIngredients    []string          `json:"key_ingredients"`
	Benefits          []string          `json:"benefits"`
	Usage             Usage             `json:"usage"`
	ExpectedResults   string            `json:"expected_results,omitempty"`
	LifestyleTips     []string          `json:"lifestyle_tips"`
	ElderFriendly     map[string]string `json:"elder_friendly,omitempty"`
}

var ageBoundRegex = regexp.MustCompile(`(\d+)`)

// Identity is a stable key for the product within a catalog.
func (p Product) Identity() string {
	if p.Brand == "" {
		return p.Name
	}
	return p.Brand + "|" + p.Name
}

// AgeLowerBound parses the first integer of SuitableAge, 0 when absent.
func (p Product) AgeLowerBound() int {
	m := ageBoundRegex.FindStringSubmatch(p.SuitableAge)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// GenderText is the text scanned for audience markers.
func (p Product) GenderText() string {
	return p.Name + " " + p.Description
}

// ConcernText joins the fields searched for concern overlap.
func (p Product) ConcernText() string {
	var b strings.Builder
	for _, group := range [][]string{p.Benefits, p.Tags, p.TargetConcerns, p.KeyIngredients} {
		for _, s := range group {
			b.WriteString(s)
			b.WriteByte(' ')
		}
	}
	b.WriteString(p.Category)
	return b.String()
}

// IsElderFriendly reports whether the product carries elder-friendly features.
func (p Product) IsElderFriendly() bool { return len(p.ElderFriendly) > 0 }
