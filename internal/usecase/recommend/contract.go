package recommend

import (
	"context"

	domcond "github.com/kailas-cloud/skinrec/internal/domain/conditions"
	"github.com/kailas-cloud/skinrec/internal/domain/match"
	"github.com/kailas-cloud/skinrec/internal/domain/product"
	"github.com/kailas-cloud/skinrec/internal/usecase/matcher"
	"github.com/kailas-cloud/skinrec/internal/usecase/selector"
)

// CatalogSource loads the product assortment.
type CatalogSource interface {
	LoadCatalog(ctx context.Context) (product.Catalog, error)
}

// Scorer scores products against conditions.
type Scorer interface {
	ScoreAll(products []product.Product, c domcond.QueryConditions, mode matcher.Mode) []match.Result
}

// Picker selects a diverse top-K subset.
type Picker interface {
	Select(results []match.Result, k int) selector.Outcome
}
