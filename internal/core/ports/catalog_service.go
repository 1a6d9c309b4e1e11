package ports

import (
	"context"
	"io"

	"github.com/shopspring/decimal"

	"github.com/bikerlight/store-api/internal/core/domain"
)

// ProductInput carries the writable fields of a product.
type ProductInput struct {
	SKU         string
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	ImageURL    string
	Category    domain.Category
}

// UploadInput is an image received from the admin back-office.
type UploadInput struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type CatalogService interface {
	ListJackets(ctx context.Context) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListSubscriptionPlans(ctx context.Context) ([]*domain.Product, error)
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, in ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	StockAlerts(ctx context.Context) ([]*domain.Product, error)
	UploadImage(ctx context.Context, in UploadInput) (string, error)
}
