package ports

import (
	"context"

	"github.com/bikerlight/store-api/internal/core/domain"
)

type SaleService interface {
	History(ctx context.Context, userID int64) ([]*domain.Sale, error)
	Detail(ctx context.Context, userID int64, role string, saleID int64) (*domain.Sale, error)
	// Latest returns nil without error when the user has no sales.
	Latest(ctx context.Context, userID int64) (*domain.Sale, error)
}
