package conditions

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/kailas-cloud/skinrec/internal/domain"
)

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// ParseModelOutput decodes the JSON object a model returned, either inside a
// fenced block or as the whole reply. When nothing decodes, the text is kept
// under raw_profile and ErrExtractionAmbiguous is returned alongside it.
func ParseModelOutput(text string) (map[string]any, error) {
	candidates := make([]string, 0, 3)
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		candidates = append(candidates, m[1])
	}
	candidates = append(candidates, strings.TrimSpace(text))
	if i, j := strings.Index(text, "{"), strings.LastIndex(text, "}"); i >= 0 && j > i {
		candidates = append(candidates, text[i:j+1])
	}

	for _, c := range candidates {
		if obj, ok := decodeObject(c); ok {
			return obj, nil
		}
	}
	return map[string]any{FieldRawProfile: text},
		fmt.Errorf("no json object in model output: %w", domain.ErrExtractionAmbiguous)
}

func decodeObject(s string) (map[string]any, bool) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}
