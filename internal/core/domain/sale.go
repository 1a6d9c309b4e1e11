package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrSaleNotFound     = errors.New("sale not found")
	ErrDuplicatePayment = errors.New("payment already registered")
)

// Sale is the immutable header of a purchase.
type Sale struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user_id"`
	Total      decimal.Decimal `json:"total"`
	PaymentRef string          `json:"payment_ref,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	Lines      []SaleLine      `json:"lines,omitempty"`
}

// SaleLine is one product's quantity and unit price within a sale.
type SaleLine struct {
	ProductID   int64           `json:"product_id"`
	Name        string          `json:"name,omitempty"`
	Description string          `json:"description,omitempty"`
	Category    Category        `json:"category,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Total returns quantity × unit price.
func (l SaleLine) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// SumLines returns the sale total implied by lines.
func SumLines(lines []SaleLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Total())
	}
	return total
}

// ErrTransactionAborted wraps unexpected failures inside a sales transaction.
var ErrTransactionAborted = errors.New("transaction aborted")
