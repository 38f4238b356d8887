// Package knowledge holds the knowledge-base Document aggregate and the
// normalizer that turns raw JSON records into Documents.
package knowledge

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/skinrec/internal/domain"
)

// Category partitions the knowledge corpus.
type Category string

// Known categories.
const (
	CategorySkinConditions Category = "skin_conditions"
	CategoryProducts       Category = "products"
	CategorySkincareRules  Category = "skincare_rules"
)

// Categories lists every known category in load order.
var Categories = []Category{CategorySkinConditions, CategoryProducts, CategorySkincareRules}

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if slices.Contains(Categories, c) {
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q: %w", s, domain.ErrMalformedDocument)
}

// Metadata keys.
const (
	KeyCategory          = "category"
	KeyConditionType     = "condition_type"
	KeySeverity          = "severity"
	KeyRelatedConditions = "related_conditions"
	KeyProductType       = "product_type"
	KeySuitableFor       = "suitable_for"
	KeyIngredients       = "ingredients"
)

// DefaultSource is used when a record carries no source.
const DefaultSource = "unknown"

// Document is an immutable knowledge unit.
type Document struct {
	id        string
	content   string
	metadata  map[string][]string
	category  Category
	source    string
	createdAt time.Time
}

// New validates and creates a Document with a fresh ID.
func New(content string, category Category, metadata map[string][]string, source string, now time.Time) (Document, error) {
	if content == "" {
		return Document{}, fmt.Errorf("content is required: %w", domain.ErrMalformedDocument)
	}
	if _, err := ParseCategory(string(category)); err != nil {
		return Document{}, err
	}
	if source == "" {
		source = DefaultSource
	}
	md := cloneMetadata(metadata)
	md[KeyCategory] = []string{string(category)}
	return Document{
		id:        uuid.NewString(),
		content:   content,
		metadata:  md,
		category:  category,
		source:    source,
		createdAt: now,
	}, nil
}

// Reconstruct creates a Document without validation.
func Reconstruct(id, content string, category Category, metadata map[string][]string, source string, createdAt time.Time) Document {
	return Document{id: id, content: content, metadata: metadata, category: category, source: source, createdAt: createdAt}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Content returns the flattened text.
func (d *Document) Content() string { return d.content }

// Metadata returns the filterable fields. Callers must not mutate it.
func (d *Document) Metadata() map[string][]string { return d.metadata }

// Category returns the document category.
func (d *Document) Category() Category { return d.category }

// Source returns where the record came from.
func (d *Document) Source() string { return d.source }

// CreatedAt returns the time the document was normalized.
func (d *Document) CreatedAt() time.Time { return d.createdAt }

// IndexKeys returns the "key:value" terms of the inverted metadata index.
func (d *Document) IndexKeys() []string {
	keys := make([]string, 0, len(d.metadata))
	for k, vs := range d.metadata {
		for _, v := range vs {
			keys = append(keys, IndexKey(k, v))
		}
	}
	slices.Sort(keys)
	return keys
}

// IndexKey builds one inverted index term.
func IndexKey(key, value string) string { return key + ":" + value }

func cloneMetadata(m map[string][]string) map[string][]string {
	c := make(map[string][]string, len(m)+1)
	for k, v := range m {
		if len(v) == 0 {
			continue
		}
		c[k] = slices.Clone(v)
	}
	return c
}
