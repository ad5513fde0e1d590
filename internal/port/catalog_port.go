package port

import (
	"context"

	"github.com/nikolayk812/storefront/internal/domain"
)

// ProductCatalog is the read-only product source. Limit <= 0 means no limit.
type ProductCatalog interface {
	Products(ctx context.Context, limit int) ([]domain.Product, error)
	ProductsByCategory(ctx context.Context, category string) ([]domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Product(ctx context.Context, id int64) (domain.Product, error)
}
