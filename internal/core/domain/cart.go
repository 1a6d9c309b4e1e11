package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrInvalidQuantity  = errors.New("quantity must be greater than zero")
)

// CartLine is one pending product/quantity pair for a user.
type CartLine struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	ImageURL  string          `json:"image_url"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Cart is the aggregated view of a user's cart lines.
type Cart struct {
	UserID int64           `json:"user_id"`
	Lines  []CartLine      `json:"lines"`
	Total  decimal.Decimal `json:"total"`
}

// NewCart builds a Cart and computes its total from the line subtotals.
func NewCart(userID int64, lines []CartLine) *Cart {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal)
	}
	if lines == nil {
		lines = []CartLine{}
	}
	return &Cart{UserID: userID, Lines: lines, Total: total}
}
