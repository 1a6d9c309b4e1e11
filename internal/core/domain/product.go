package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Category groups products in the catalog.
type Category string

const (
	CategorySmartJacket  Category = "SMART_JACKET"
	CategoryAccessory    Category = "ACCESSORY"
	CategorySubscription Category = "SUBSCRIPTION"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrProductInUse      = errors.New("product is referenced by existing sales")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrPriceMismatch     = errors.New("price changed")
	ErrInvalidProduct    = errors.New("invalid product")
)

// Product is a sellable catalog item.
type Product struct {
	ID          int64           `json:"id"`
	SKU         string          `json:"sku,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImageURL    string          `json:"image_url"`
	Category    Category        `json:"category"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ValidCategory reports whether c is a known category.
func ValidCategory(c Category) bool {
	switch c {
	case CategorySmartJacket, CategoryAccessory, CategorySubscription:
		return true
	}
	return false
}

// InsufficientStockError names the product that could not cover a request.
type InsufficientStockError struct {
	ProductID int64
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	name := e.Name
	if name == "" {
		name = fmt.Sprintf("#%d", e.ProductID)
	}
	return fmt.Sprintf("insufficient stock for product %s", name)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// PriceMismatchError is returned when the client expected a different price.
type PriceMismatchError struct {
	ProductID int64
	Name      string
	Expected  decimal.Decimal
	Current   decimal.Decimal
}

func (e *PriceMismatchError) Error() string {
	return fmt.Sprintf("price changed for product %s: expected %s, current %s",
		e.Name, e.Expected.StringFixed(2), e.Current.StringFixed(2))
}

func (e *PriceMismatchError) Unwrap() error { return ErrPriceMismatch }
