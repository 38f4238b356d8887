package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"go.uber.org/zap"

	"github.com/kailas-cloud/skinrec/internal/domain/product"
)

// CatalogFiles reads the general and elder product catalogs. Either path may be
// empty or missing, which yields an empty assortment.
type CatalogFiles struct {
	generalPath string
	elderPath   string
	logger      *zap.Logger
}

// NewCatalogFiles creates a file-backed catalog source.
func NewCatalogFiles(generalPath, elderPath string, logger *zap.Logger) *CatalogFiles {
	return &CatalogFiles{generalPath: generalPath, elderPath: elderPath, logger: logger}
}

// LoadCatalog reads both catalogs. Malformed products are skipped.
func (c *CatalogFiles) LoadCatalog(ctx context.Context) (product.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return product.Catalog{}, fmt.Errorf("load catalog: %w", err)
	}
	return product.Catalog{
		General: c.load(c.generalPath, "general"),
		Elder:   c.load(c.elderPath, "elder"),
	}, nil
}

func (c *CatalogFiles) load(path, assortment string) []product.Product {
	if path == "" {
		return nil
	}
	records, err := readRecords(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn("Catalog file missing", zap.String("assortment", assortment), zap.String("path", path))
		} else {
			c.logger.Error("Failed to read catalog", zap.String("path", path), zap.Error(err))
		}
		return nil
	}
	products, errs := product.NormalizeAll(records)
	for _, e := range errs {
		c.logger.Warn("Skipping malformed product", zap.String("path", path), zap.Error(e))
	}
	c.logger.Info("Catalog loaded", zap.String("assortment", assortment), zap.Int("products", len(products)))
	return products
}
