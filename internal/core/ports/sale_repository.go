package ports

import (
	"context"

	"github.com/bikerlight/store-api/internal/core/domain"
)

// SaleRepository provides read access to recorded sales.
type SaleRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]*domain.Sale, error)
	// FindByID returns the sale with its lines.
	FindByID(ctx context.Context, id int64) (*domain.Sale, error)
	// Latest returns the user's most recent sale with its lines, or
	// domain.ErrSaleNotFound.
	Latest(ctx context.Context, userID int64) (*domain.Sale, error)
	HasPurchasedCategory(ctx context.Context, userID int64, category domain.Category) (bool, error)
}
