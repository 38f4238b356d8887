package skinrec

import "time"

// SearchOptions narrows a knowledge search. Category is one of
// skin_conditions, products or skincare_rules; Filters are AND-ed
// metadata terms. A zero TopK means 5.
type SearchOptions struct {
	Category string
	Filters  map[string][]string
	TopK     int
	NoCache  bool
}

// SearchResult is one knowledge hit.
type SearchResult struct {
	ID       string
	Content  string
	Category string
	Source   string
	Score    float64
	Metadata map[string][]string
}

// Stats summarizes the loaded corpus.
type Stats struct {
	TotalDocuments int
	Categories     map[string]int
	MetadataTypes  []string
	LastUpdated    *time.Time
}

// UpdateReport is the outcome of AddKnowledge.
type UpdateReport struct {
	Added   int
	Skipped int
	Total   int
}

// Conditions describe the user a recommendation is for. Gender is
// "female", "male" or empty; free-form skin type and concerns in Chinese or
// English are mapped onto tags.
type Conditions struct {
	Age      *int
	Gender   string
	SkinType string
	Concerns []string
}

// Recommendation is one recommended product.
type Recommendation struct {
	Name     string
	Brand    string
	Category string
	Price    string
	Link     string
	Score    float64
	Reasons  []string
	Reason   string
}

// RecommendationSet is the final list. Personalized is false when the
// static default list was served.
type RecommendationSet struct {
	Items        []Recommendation
	Personalized bool
	Relaxed      bool
}
