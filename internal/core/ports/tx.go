package ports

import (
	"context"

	"github.com/bikerlight/store-api/internal/core/domain"
)

// Tx is the set of operations available inside a sales unit of work. Every
// call runs against the same database transaction.
type Tx interface {
	// ProductForUpdate reads a product and locks its row until the
	// transaction ends where the database supports row locks.
	ProductForUpdate(ctx context.Context, id int64) (*domain.Product, error)
	ProductBySKU(ctx context.Context, sku string) (*domain.Product, error)
	CartLines(ctx context.Context, userID int64) ([]domain.CartLine, error)
	InsertSale(ctx context.Context, sale *domain.Sale) (int64, error)
	InsertSaleLine(ctx context.Context, saleID int64, line domain.SaleLine) error
	// DecrementStock subtracts qty only if enough stock remains. It reports
	// false when the row was not updated.
	DecrementStock(ctx context.Context, productID int64, qty int) (bool, error)
	ClearCart(ctx context.Context, userID int64) error
	// LatestSubscription serialises subscription purchases per user for the
	// rest of the transaction.
	LatestSubscription(ctx context.Context, userID int64) (*domain.Subscription, error)
	InsertSubscription(ctx context.Context, sub *domain.Subscription) (int64, error)
	InsertOutbox(ctx context.Context, event domain.OutboxEvent) error
}

// TxManager runs fn inside a single atomic unit of work. The transaction is
// committed when fn returns nil and rolled back otherwise.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
