package ports

import (
	"context"

	"github.com/bikerlight/store-api/internal/core/domain"
)

// CartRepository defines persistence operations for cart lines.
type CartRepository interface {
	Lines(ctx context.Context, userID int64) ([]domain.CartLine, error)
	// Quantity returns 0 when the product is not in the cart.
	Quantity(ctx context.Context, userID, productID int64) (int, error)
	// Set stores the absolute quantity for the line, creating it if needed.
	Set(ctx context.Context, userID, productID int64, quantity int) error
	Remove(ctx context.Context, userID, productID int64) error
}
