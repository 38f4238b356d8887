package advisor

import (
	"bytes"
	"encoding/json"
	"regexp"
	"slices"
	"strings"

	"github.com/kailas-cloud/skinrec/internal/domain/knowledge"
	"github.com/kailas-cloud/skinrec/internal/domain/match"
	"github.com/kailas-cloud/skinrec/internal/usecase/conditions"
	knowuc "github.com/kailas-cloud/skinrec/internal/usecase/knowledge"
)

// MaxQuestions caps the follow-up questions returned to the user.
const MaxQuestions = 5

// FieldRawTrust holds a trust reply that did not decode as JSON.
const FieldRawTrust = "raw_reasoning"

const (
	maxBriefSnippet  = 120
	briefEmptyMarker = "无"
)

// Brief is the consultation context handed to the follow-up model steps.
type Brief struct {
	Profile         map[string]any
	Knowledge       []knowuc.Result
	Recommendations []match.Recommendation
}

// ProfileText renders the profile as "- key: value" lines in key order.
func (b Brief) ProfileText() string {
	keys := make([]string, 0, len(b.Profile))
	for k := range b.Profile {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		v := strings.Join(knowledge.Flatten(b.Profile[k]), "，")
		if v != "" {
			lines = append(lines, "- "+k+": "+v)
		}
	}
	return orEmpty(lines)
}

// KnowledgeText renders the retrieved documents, each cut to a short snippet.
func (b Brief) KnowledgeText() string {
	lines := make([]string, 0, len(b.Knowledge))
	for _, d := range b.Knowledge {
		lines = append(lines, "- "+snippet(d.Content, maxBriefSnippet))
	}
	return orEmpty(lines)
}

// RecommendationText renders "- name: reason" per recommended product.
func (b Brief) RecommendationText() string {
	lines := make([]string, 0, len(b.Recommendations))
	for _, r := range b.Recommendations {
		lines = append(lines, "- "+r.Product.Name+": "+r.Reason)
	}
	return orEmpty(lines)
}

var listPrefix = regexp.MustCompile(`^\s*(?:[-*•]|\d+\s*[.、)）:：])\s*`)

// ParseQuestions reads a JSON array of questions (strings or objects with a
// "content" field), fenced or bare. Anything else is split into lines with
// list markers stripped. At most MaxQuestions are kept.
func ParseQuestions(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var out []string
	if items, ok := decodeArray(raw); ok {
		for _, item := range items {
			switch t := item.(type) {
			case string:
				out = appendQuestion(out, t)
			case map[string]any:
				if s, ok := t["content"].(string); ok {
					out = appendQuestion(out, s)
				} else if s, ok := t["question"].(string); ok {
					out = appendQuestion(out, s)
				}
			}
		}
	} else {
		for _, line := range strings.Split(raw, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "```") {
				continue
			}
			out = appendQuestion(out, listPrefix.ReplaceAllString(line, ""))
		}
	}

	if len(out) > MaxQuestions {
		out = out[:MaxQuestions]
	}
	return out
}

// ParseTrust decodes the trust explanation object. A reply that is not a
// JSON object is kept whole under raw_reasoning.
func ParseTrust(raw string) map[string]any {
	obj, err := conditions.ParseModelOutput(raw)
	if err != nil {
		return map[string]any{FieldRawTrust: strings.TrimSpace(raw)}
	}
	return obj
}

func decodeArray(raw string) ([]any, bool) {
	candidates := []string{raw}
	if i, j := strings.Index(raw, "["), strings.LastIndex(raw, "]"); i >= 0 && j > i {
		candidates = append(candidates, raw[i:j+1])
	}
	for _, c := range candidates {
		dec := json.NewDecoder(bytes.NewReader([]byte(c)))
		var items []any
		if err := dec.Decode(&items); err == nil {
			return items, true
		}
	}
	return nil, false
}

func appendQuestion(out []string, q string) []string {
	q = strings.TrimSpace(q)
	if q == "" || slices.Contains(out, q) {
		return out
	}
	return append(out, q)
}

func snippet(s string, n int) string {
	r := []rune(strings.Join(strings.Fields(s), " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "…"
}

func orEmpty(lines []string) string {
	if len(lines) == 0 {
		return briefEmptyMarker
	}
	return strings.Join(lines, "\n")
}
