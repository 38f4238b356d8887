package knowledge

import (
	"slices"
	"strings"
	"time"

	domknow "github.com/kailas-cloud/skinrec/internal/domain/knowledge"
	"github.com/kailas-cloud/skinrec/internal/vectorindex"
)

// snapshot is an immutable corpus view: documents, their vectors and the
// inverted metadata index. Rebuilds create a new snapshot.
type snapshot struct {
	docs     []domknow.Document
	index    *vectorindex.Index
	postings map[string][]int
	builtAt  time.Time
}

func newSnapshot(docs []domknow.Document, index *vectorindex.Index, builtAt time.Time) *snapshot {
	postings := make(map[string][]int)
	for pos := range docs {
		for _, key := range docs[pos].IndexKeys() {
			postings[key] = append(postings[key], pos)
		}
	}
	return &snapshot{docs: docs, index: index, postings: postings, builtAt: builtAt}
}

// allowed returns the positions matching the category and every filter
// value, or nil with all=true when nothing constrains the search.
func (s *snapshot) allowed(category string, filters map[string][]string) (set map[int]struct{}, all bool) {
	var terms []string
	if category != "" {
		terms = append(terms, domknow.IndexKey(domknow.KeyCategory, category))
	}
	for key, vals := range filters {
		for _, v := range vals {
			terms = append(terms, domknow.IndexKey(key, v))
		}
	}
	if len(terms) == 0 {
		return nil, true
	}

	set = make(map[int]struct{})
	for _, pos := range s.postings[terms[0]] {
		set[pos] = struct{}{}
	}
	for _, term := range terms[1:] {
		if len(set) == 0 {
			break
		}
		next := make(map[int]struct{}, len(set))
		for _, pos := range s.postings[term] {
			if _, ok := set[pos]; ok {
				next[pos] = struct{}{}
			}
		}
		set = next
	}
	return set, false
}

func (s *snapshot) stats() Stats {
	st := Stats{
		TotalDocuments: len(s.docs),
		Categories:     map[string]int{},
		MetadataTypes:  []string{},
	}
	for i := range s.docs {
		st.Categories[string(s.docs[i].Category())]++
	}
	seen := map[string]bool{}
	for term := range s.postings {
		key, _, _ := strings.Cut(term, ":")
		if !seen[key] {
			seen[key] = true
			st.MetadataTypes = append(st.MetadataTypes, key)
		}
	}
	slices.Sort(st.MetadataTypes)
	if len(s.docs) > 0 {
		t := s.builtAt
		st.LastUpdated = &t
	}
	return st
}
