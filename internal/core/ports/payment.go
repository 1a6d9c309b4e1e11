package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/bikerlight/store-api/internal/core/domain"
)

// PaymentOrder is an order created at the payment provider.
type PaymentOrder struct {
	ID       string
	Status   string
	Amount   decimal.Decimal
	Currency string
}

// PaymentCapture is the result of capturing an approved order.
type PaymentCapture struct {
	OrderID   string
	CaptureID string
	Status    string
	Amount    decimal.Decimal
	Currency  string
}

// PaymentGateway talks to the external payment provider.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount decimal.Decimal, reference string) (*PaymentOrder, error)
	CaptureOrder(ctx context.Context, orderID string) (*PaymentCapture, error)
}

type PaymentService interface {
	CreateOrder(ctx context.Context, userID int64) (*PaymentOrder, error)
	CaptureOrder(ctx context.Context, userID int64, orderID string) (*domain.Sale, error)
}
