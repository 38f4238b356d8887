// Package matcher scores catalog products against query conditions.
package matcher

import (
	"fmt"

	domcond "github.com/kailas-cloud/skinrec/internal/domain/conditions"
	"github.com/kailas-cloud/skinrec/internal/domain/match"
	"github.com/kailas-cloud/skinrec/internal/domain/product"
	"github.com/kailas-cloud/skinrec/internal/domain/random"
	"github.com/kailas-cloud/skinrec/internal/domain/tagging"
)

// Mode selects how strictly audience markers are enforced.
type Mode int

const (
	// Strict vetoes any product marked for the opposite gender.
	Strict Mode = iota
	// Relaxed vetoes only explicit single-audience product lines.
	Relaxed
)

func (m Mode) String() string {
	if m == Relaxed {
		return "relaxed"
	}
	return "strict"
}

// Reason strings, in rule order.
const (
	reasonVeto        = "性别不符"
	reasonSameGender  = "性别匹配"
	reasonNeutral     = "男女通用"
	reasonMarked      = "特定性别产品"
	reasonAgeFit      = "适合您的年龄"
	reasonAgeMiss     = "年龄段略有差异"
	reasonAgeUnknown  = "年龄未知"
	reasonSkinMatch   = "适合您的肤质"
	reasonSkinMiss    = "肤质一般适配"
	reasonConcernNone = "基础护理"
	reasonConcernHitF = "满足%s需求"
	reasonNameEchoF   = "产品名称契合%s"
)

// Matcher scores products. Safe for concurrent use when its Source is.
type Matcher struct {
	w   Weights
	rnd random.Source
}

// New creates a Matcher. A nil Source disables jitter.
func New(w Weights, rnd random.Source) *Matcher {
	if rnd == nil {
		rnd = random.None{}
	}
	return &Matcher{w: w, rnd: rnd}
}

// Weights returns the weights in use.
func (m *Matcher) Weights() Weights { return m.w }

// Score applies the scoring rules in order. A vetoed product scores
// match.VetoScore and no later rule runs.
func (m *Matcher) Score(p product.Product, c domcond.QueryConditions, mode Mode) match.Result {
	res := match.Result{Product: p, Score: m.w.Base}
	add := func(v float64, reason string) {
		res.Score += v
		res.Reasons = append(res.Reasons, reason)
	}

	if veto := m.gender(p, c, mode, add); veto {
		return match.Result{Product: p, Score: match.VetoScore, Reasons: []string{reasonVeto}}
	}

	switch {
	case !c.HasAge():
		add(m.w.AgeUnknown, reasonAgeUnknown)
	case c.AgeOrZero() >= p.AgeLowerBound():
		add(m.w.AgeFit, reasonAgeFit)
	default:
		add(m.w.AgeMiss, reasonAgeMiss)
	}

	if c.SkinType != "" && suitsSkin(p, c.SkinType) {
		add(m.w.SkinMatch, reasonSkinMatch)
	} else {
		add(m.w.SkinMiss, reasonSkinMiss)
	}

	text := p.ConcernText()
	hits := 0
	for _, concern := range c.Concerns {
		if tagging.MentionsConcern(text, concern) {
			hits++
			add(m.w.ConcernHit, fmt.Sprintf(reasonConcernHitF, concern))
		}
	}
	if hits == 0 {
		add(m.w.ConcernNone, reasonConcernNone)
	}

	for _, concern := range c.Concerns {
		if tagging.MentionsConcern(p.Name, concern) {
			add(m.w.NameEcho, fmt.Sprintf(reasonNameEchoF, concern))
		}
	}

	res.Score += m.rnd.Jitter(p.Identity(), m.w.Jitter)
	return res
}

// ScoreAll scores every product in catalog order.
func (m *Matcher) ScoreAll(products []product.Product, c domcond.QueryConditions, mode Mode) []match.Result {
	out := make([]match.Result, len(products))
	for i := range products {
		out[i] = m.Score(products[i], c, mode)
	}
	return out
}

// gender applies the audience rule and reports a veto.
func (m *Matcher) gender(p product.Product, c domcond.QueryConditions, mode Mode, add func(float64, string)) bool {
	text := p.GenderText()
	marked := tagging.ClassifyGender(text)

	if !c.Gender.Known() {
		if marked.Known() {
			add(m.w.UnknownUserMarked, reasonMarked)
		} else {
			add(m.w.UnknownUserNeutral, reasonNeutral)
		}
		return false
	}

	opposite := c.Gender.Opposite()
	if mode == Relaxed {
		if tagging.ClassifyExclusive(text) == opposite {
			return true
		}
		switch marked {
		case c.Gender:
			add(m.w.SameGender, reasonSameGender)
		case opposite:
			// marked but not exclusive: allowed without a bonus
		default:
			add(m.w.NeutralGender, reasonNeutral)
		}
		return false
	}

	switch marked {
	case opposite:
		return true
	case c.Gender:
		add(m.w.SameGender, reasonSameGender)
	default:
		add(m.w.NeutralGender, reasonNeutral)
	}
	return false
}

func suitsSkin(p product.Product, skin string) bool {
	for _, s := range p.SuitableSkinTypes {
		if tagging.IsAllSkinTypes(s) || tagging.DetectSkinType(s) == skin {
			return true
		}
	}
	return false
}
