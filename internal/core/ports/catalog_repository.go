package ports

import (
	"context"
	"errors"
	"io"

	"github.com/bikerlight/store-api/internal/core/domain"
)

// ErrCacheMiss is returned by caches when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// ProductRepository defines persistence operations for catalog products.
type ProductRepository interface {
	// ListByCategory returns products of a category ordered by id. When
	// inStockOnly is true, products with zero stock are skipped.
	ListByCategory(ctx context.Context, category domain.Category, inStockOnly bool) ([]*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	FindBySKU(ctx context.Context, sku string) (*domain.Product, error)
	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id int64) error
	OutOfStock(ctx context.Context) ([]*domain.Product, error)
}

// CatalogCache caches the public jacket listing.
type CatalogCache interface {
	GetJackets(ctx context.Context) ([]*domain.Product, error)
	SetJackets(ctx context.Context, products []*domain.Product) error
	Invalidate(ctx context.Context) error
}

// ImageStore persists uploaded product images and returns their public URL.
type ImageStore interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
}
