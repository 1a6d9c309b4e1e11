package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/bikerlight/store-api/internal/core/domain"
)

// CheckoutLine is one requested product. ExpectedPrice is the unit price the
// client saw; when set it must match the current price.
type CheckoutLine struct {
	ProductID     int64
	Quantity      int
	ExpectedPrice *decimal.Decimal
}

// CheckoutInput carries a checkout request. When Lines is empty the user's
// cart is checked out. ExpectedTotal, when set, must equal the computed total.
type CheckoutInput struct {
	UserID        int64
	Lines         []CheckoutLine
	PaymentRef    string
	ExpectedTotal *decimal.Decimal
}

type CheckoutService interface {
	Checkout(ctx context.Context, in CheckoutInput) (*domain.Sale, error)
}
