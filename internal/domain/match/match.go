// Package match holds the scoring outcome for one product.
package match

import (
	"strings"

	"github.com/kailas-cloud/skinrec/internal/domain/product"
)

// VetoScore is assigned to a product excluded outright.
const VetoScore = -100.0

// VetoThreshold is the score at or below which a result counts as vetoed.
const VetoThreshold = -50.0

// ReasonSeparator joins reasons into the display text.
const ReasonSeparator = "；"

// Result is a scored product with the reasons that fired, in rule order.
type Result struct {
	Product product.Product `json:"product"`
	Score   float64         `json:"score"`
	Reasons []string        `json:"reasons"`
}

// Vetoed reports whether the result must never be recommended.
func (r Result) Vetoed() bool { return r.Score <= VetoThreshold }

// ReasonText joins the reasons for display.
func (r Result) ReasonText() string { return strings.Join(r.Reasons, ReasonSeparator) }

// Recommendation is one selected product as served to a user.
type Recommendation struct {
	Product product.Product `json:"product"`
	Score   float64         `json:"score"`
	Reasons []string        `json:"reasons"`
	Reason  string          `json:"reason"`
}

// Set is the final recommendation list. Personalized is false when the
// static default list was served.
type Set struct {
	Items        []Recommendation `json:"items"`
	Personalized bool             `json:"personalized"`
	Relaxed      bool             `json:"relaxed,omitempty"`
}
