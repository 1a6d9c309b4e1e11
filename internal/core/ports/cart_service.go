package ports

import (
	"context"

	"github.com/bikerlight/store-api/internal/core/domain"
)

type CartService interface {
	Get(ctx context.Context, userID int64) (*domain.Cart, error)
	Add(ctx context.Context, userID, productID int64, quantity int) (*domain.Cart, error)
	Update(ctx context.Context, userID, productID int64, quantity int) (*domain.Cart, error)
	Remove(ctx context.Context, userID, productID int64) (*domain.Cart, error)
}
