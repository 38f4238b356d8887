package knowledge

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/skinrec/internal/domain"
)

// Normalize converts a raw JSON record into a Document. The category comes
// from the record's "category" field when fallback is empty.
func Normalize(raw map[string]any, fallback Category, now time.Time) (Document, error) {
	if raw == nil {
		return Document{}, fmt.Errorf("nil record: %w", domain.ErrMalformedDocument)
	}
	category := fallback
	if category == "" {
		s, _ := raw["category"].(string)
		c, err := ParseCategory(s)
		if err != nil {
			return Document{}, err
		}
		category = c
	}

	content := strings.Join(Flatten(raw), " ")
	source, _ := raw["source"].(string)

	return New(content, category, extractMetadata(raw, category), source, now)
}

// Flatten collects every scalar of a decoded JSON value in document order.
// Object keys are visited in sorted order.
func Flatten(v any) []string {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		var parts []string
		for _, k := range keys {
			parts = append(parts, Flatten(t[k])...)
		}
		return parts
	case []any:
		var parts []string
		for _, item := range t {
			parts = append(parts, Flatten(item)...)
		}
		return parts
	default:
		if s, ok := Scalar(v); ok {
			return []string{s}
		}
		return nil
	}
}

// Scalar renders a JSON scalar as text. Null and containers report false.
func Scalar(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

// StringList coerces a scalar or a list of scalars into a list of non-empty strings.
func StringList(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []string:
		return slices.DeleteFunc(slices.Clone(t), func(s string) bool { return s == "" })
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := Scalar(item); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		if s, ok := Scalar(v); ok && s != "" {
			return []string{s}
		}
		return nil
	}
}

func extractMetadata(raw map[string]any, category Category) map[string][]string {
	md := map[string][]string{}
	switch category {
	case CategorySkinConditions:
		md[KeyConditionType] = StringList(raw["condition"])
		if levels, ok := raw["severity_levels"].(map[string]any); ok {
			keys := make([]string, 0, len(levels))
			for k := range levels {
				keys = append(keys, k)
			}
			slices.Sort(keys)
			md[KeySeverity] = keys
		}
		md[KeyRelatedConditions] = StringList(raw["related_conditions"])
	case CategoryProducts:
		md[KeyProductType] = StringList(raw["category"])
		md[KeySuitableFor] = StringList(raw["suitable_for"])
		md[KeyIngredients] = StringList(raw["ingredients"])
	}
	return md
}
