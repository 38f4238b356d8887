package knowledge

import (
	"time"

	domknow "github.com/kailas-cloud/skinrec/internal/domain/knowledge"
)

// DefaultTopK is used by callers that leave the result count unset.
const DefaultTopK = 5

// Options narrows a search. Category and every filter value are AND-ed.
type Options struct {
	Category string
	Filters  map[string][]string
	TopK     int
	UseCache bool
}

// Result is one ranked document.
type Result struct {
	ID       string              `json:"id"`
	Content  string              `json:"content"`
	Metadata map[string][]string `json:"metadata"`
	Category domknow.Category    `json:"category"`
	Source   string              `json:"source"`
	Score    float64             `json:"score"`
}

// Stats summarizes the indexed corpus.
type Stats struct {
	TotalDocuments int            `json:"total_documents"`
	Categories     map[string]int `json:"categories"`
	MetadataTypes  []string       `json:"metadata_types"`
	LastUpdated    *time.Time     `json:"last_updated"`
}

// UpdateReport describes the outcome of UpdateKnowledge.
type UpdateReport struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
	Total   int `json:"total"`
}
