// Package source loads knowledge records and product catalogs from JSON files.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/skinrec/internal/domain"
	"github.com/kailas-cloud/skinrec/internal/domain/knowledge"
	"github.com/kailas-cloud/skinrec/internal/metrics"
)

// KnowledgeDir reads <dir>/<category>/*.json. Each file holds one record or
// an array of records.
type KnowledgeDir struct {
	dir    string
	now    func() time.Time
	logger *zap.Logger
}

// NewKnowledgeDir creates a directory-backed knowledge source.
func NewKnowledgeDir(dir string, logger *zap.Logger) *KnowledgeDir {
	return &KnowledgeDir{dir: dir, now: time.Now, logger: logger}
}

// LoadAll normalizes every readable record. Unreadable files and malformed
// records are logged and skipped; only cancellation is returned as an error.
func (k *KnowledgeDir) LoadAll(ctx context.Context) ([]knowledge.Document, error) {
	var docs []knowledge.Document
	for _, category := range knowledge.Categories {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("load knowledge: %w", err)
		}
		sub := filepath.Join(k.dir, string(category))
		files, err := filepath.Glob(filepath.Join(sub, "*.json"))
		if err != nil || len(files) == 0 {
			if _, statErr := os.Stat(sub); errors.Is(statErr, fs.ErrNotExist) {
				k.logger.Warn("Knowledge subdirectory missing", zap.String("path", sub))
			}
			continue
		}
		slices.Sort(files)
		for _, file := range files {
			docs = append(docs, k.loadFile(file, category)...)
		}
	}
	k.logger.Info("Knowledge loaded", zap.String("dir", k.dir), zap.Int("documents", len(docs)))
	return docs, nil
}

func (k *KnowledgeDir) loadFile(path string, category knowledge.Category) []knowledge.Document {
	records, err := readRecords(path)
	if err != nil {
		k.logger.Error("Failed to read knowledge file", zap.String("file", path), zap.Error(err))
		metrics.KnowledgeSkippedRecordsTotal.Inc()
		return nil
	}
	now := k.now()
	docs := make([]knowledge.Document, 0, len(records))
	for i, raw := range records {
		doc, err := knowledge.Normalize(raw, category, now)
		if err != nil {
			k.logger.Warn("Skipping malformed knowledge record",
				zap.String("file", path), zap.Int("record", i), zap.Error(err))
			metrics.KnowledgeSkippedRecordsTotal.Inc()
			continue
		}
		docs = append(docs, doc)
	}
	return docs
}

// readRecords decodes a file holding an object, an array of objects, or an
// object wrapping the array under "products". Non-object array items are dropped.
func readRecords(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return decodeRecords(data)
}

func decodeRecords(data []byte) ([]map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode json: %w: %w", domain.ErrMalformedDocument, err)
	}

	switch t := v.(type) {
	case map[string]any:
		if list, ok := t["products"].([]any); ok && len(t) == 1 {
			return objects(list), nil
		}
		return []map[string]any{t}, nil
	case []any:
		return objects(t), nil
	default:
		return nil, fmt.Errorf("top-level %T: %w", v, domain.ErrMalformedDocument)
	}
}

func objects(items []any) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
