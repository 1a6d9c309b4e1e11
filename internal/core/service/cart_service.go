package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bikerlight/store-api/internal/core/domain"
	"github.com/bikerlight/store-api/internal/core/ports"
)

type CartService struct {
	cart     ports.CartRepository
	products ports.ProductRepository
	log      zerolog.Logger
}

func NewCartService(cart ports.CartRepository, products ports.ProductRepository, log zerolog.Logger) *CartService {
	return &CartService{cart: cart, products: products, log: log}
}

func (s *CartService) Get(ctx context.Context, userID int64) (*domain.Cart, error) {
	lines, err := s.cart.Lines(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return domain.NewCart(userID, lines), nil
}

// Add increments the quantity of a product in the cart. The resulting
// quantity may not exceed the product's current stock.
func (s *CartService) Add(ctx context.Context, userID, productID int64, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	current, err := s.cart.Quantity(ctx, userID, productID)
	if err != nil {
		return nil, fmt.Errorf("add to cart: %w", err)
	}
	if err := s.set(ctx, userID, productID, current+quantity); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// Update replaces the quantity of a product already in the cart.
func (s *CartService) Update(ctx context.Context, userID, productID int64, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	current, err := s.cart.Quantity(ctx, userID, productID)
	if err != nil {
		return nil, fmt.Errorf("update cart: %w", err)
	}
	if current == 0 {
		return nil, domain.ErrCartItemNotFound
	}
	if err := s.set(ctx, userID, productID, quantity); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *CartService) Remove(ctx context.Context, userID, productID int64) (*domain.Cart, error) {
	if err := s.cart.Remove(ctx, userID, productID); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *CartService) set(ctx context.Context, userID, productID int64, quantity int) error {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return err
	}
	if quantity > product.Stock {
		return &domain.InsufficientStockError{
			ProductID: product.ID,
			Name:      product.Name,
			Requested: quantity,
			Available: product.Stock,
		}
	}
	if err := s.cart.Set(ctx, userID, productID, quantity); err != nil {
		return fmt.Errorf("set cart line: %w", err)
	}
	s.log.Debug().Int64("user_id", userID).Int64("product_id", productID).Int("quantity", quantity).Msg("cart line set")
	return nil
}
