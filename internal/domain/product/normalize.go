package product

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kailas-cloud/skinrec/internal/domain"
	"github.com/kailas-cloud/skinrec/internal/domain/knowledge"
)

// Normalize coerces a raw catalog record into a Product. Missing lists become
// empty, scalars become one-element lists and nulls are ignored. A record
// without a name is malformed.
func Normalize(raw map[string]any) (Product, error) {
	if raw == nil {
		return Product{}, fmt.Errorf("nil product record: %w", domain.ErrMalformedDocument)
	}
	name := text(raw, "name", "product_name")
	if name == "" {
		return Product{}, fmt.Errorf("product name is required: %w", domain.ErrMalformedDocument)
	}

	tags := list(raw, "tags")
	benefits := list(raw, "benefits")
	if len(benefits) == 0 {
		benefits = slices.Clone(tags)
	}
	concerns := list(raw, "target_concerns")
	if len(concerns) == 0 {
		concerns = slices.Clone(benefits)
	}

	p := Product{
		Name:              name,
		Brand:             text(raw, "brand"),
		Category:          text(raw, "category", "product_type"),
		Price:             text(raw, "price"),
		Link:              text(raw, "link", "url"),
		Description:       text(raw, "description"),
		SuitableAge:       text(raw, "suitable_age"),
		SuitableSkinTypes: list(raw, "suitable_skin_types", "skin_type"),
		TargetConcerns:    concerns,
		Tags:              tags,
		KeyIngredients:    list(raw, "key_ingredients", "ingredients"),
		Benefits:          benefits,
		Usage:             usage(raw),
		ExpectedResults:   text(raw, "expected_results"),
		LifestyleTips:     list(raw, "lifestyle_tips"),
		ElderFriendly:     features(raw, "elder_friendly_features", "elder_friendly"),
	}
	if p.SuitableAge == "" {
		p.SuitableAge = DefaultSuitableAge
	}
	return p, nil
}

// NormalizeAll normalizes records, returning the valid products and one error per skipped record.
func NormalizeAll(raws []map[string]any) ([]Product, []error) {
	products := make([]Product, 0, len(raws))
	var errs []error
	for i, raw := range raws {
		p, err := Normalize(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		products = append(products, p)
	}
	return products, errs
}

// text returns the first non-empty scalar among keys. Lists are joined.
func text(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		if s, ok := knowledge.Scalar(v); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
			continue
		}
		if l := knowledge.StringList(v); len(l) > 0 {
			return strings.Join(l, "，")
		}
	}
	return ""
}

// list returns the first non-empty list among keys, never nil.
func list(raw map[string]any, keys ...string) []string {
	for _, k := range keys {
		if l := knowledge.StringList(raw[k]); len(l) > 0 {
			return l
		}
	}
	return []string{}
}

func usage(raw map[string]any) Usage {
	u := Usage{
		Frequency:   text(raw, "usage_frequency"),
		Method:      text(raw, "usage_method"),
		Timing:      text(raw, "usage_timing"),
		Precautions: text(raw, "precautions"),
	}
	switch nested := raw["usage"].(type) {
	case map[string]any:
		u.Frequency = firstNonEmpty(text(nested, "frequency"), u.Frequency)
		u.Method = firstNonEmpty(text(nested, "method"), u.Method)
		u.Timing = firstNonEmpty(text(nested, "timing"), u.Timing)
		u.Precautions = firstNonEmpty(text(nested, "precautions"), u.Precautions)
	case string:
		u.Method = firstNonEmpty(u.Method, nested)
	}
	return u
}

func features(raw map[string]any, keys ...string) map[string]string {
	for _, k := range keys {
		switch t := raw[k].(type) {
		case map[string]any:
			out := make(map[string]string, len(t))
			for fk, fv := range t {
				if s, ok := knowledge.Scalar(fv); ok && s != "" {
					out[fk] = s
				} else if l := knowledge.StringList(fv); len(l) > 0 {
					out[fk] = strings.Join(l, "，")
				}
			}
			if len(out) > 0 {
				return out
			}
		case []any:
			if l := knowledge.StringList(t); len(l) > 0 {
				out := make(map[string]string, len(l))
				for i, s := range l {
					out[fmt.Sprintf("feature_%d", i+1)] = s
				}
				return out
			}
		}
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
