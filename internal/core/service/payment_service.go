package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bikerlight/store-api/internal/core/domain"
	"github.com/bikerlight/store-api/internal/core/ports"
)

const captureCompleted = "COMPLETED"

// PaymentService bridges the payment provider and the checkout workflow.
type PaymentService struct {
	gateway  ports.PaymentGateway
	cart     ports.CartRepository
	checkout ports.CheckoutService
	log      zerolog.Logger
}

func NewPaymentService(gateway ports.PaymentGateway, cart ports.CartRepository, checkout ports.CheckoutService, log zerolog.Logger) *PaymentService {
	return &PaymentService{gateway: gateway, cart: cart, checkout: checkout, log: log}
}

// CreateOrder prices the user's cart on the server and opens an order at the
// provider for that amount.
func (s *PaymentService) CreateOrder(ctx context.Context, userID int64) (*ports.PaymentOrder, error) {
	lines, err := s.cart.Lines(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("create payment order: %w", err)
	}
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}
	cart := domain.NewCart(userID, lines)

	order, err := s.gateway.CreateOrder(ctx, cart.Total, fmt.Sprintf("user-%d", userID))
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("user_id", userID).Str("order_id", order.ID).Str("amount", cart.Total.StringFixed(2)).Msg("payment order created")
	return order, nil
}

// CaptureOrder captures an approved order and checks out the cart with the
// capture id as payment reference. The captured amount must match the total.
func (s *PaymentService) CaptureOrder(ctx context.Context, userID int64, orderID string) (*domain.Sale, error) {
	capture, err := s.gateway.CaptureOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if capture.Status != captureCompleted {
		s.log.Warn().Str("order_id", orderID).Str("status", capture.Status).Msg("payment capture not completed")
		return nil, domain.ErrPaymentNotCompleted
	}

	amount := capture.Amount
	sale, err := s.checkout.Checkout(ctx, ports.CheckoutInput{
		UserID:        userID,
		PaymentRef:    capture.CaptureID,
		ExpectedTotal: &amount,
	})
	if err != nil {
		// TODO: refund through /v2/payments/captures/{id}/refund once the
		// gateway exposes it; until then support reconciles from this log line.
		s.log.Error().
			Err(err).
			Int64("user_id", userID).
			Str("order_id", orderID).
			Str("capture_id", capture.CaptureID).
			Str("amount", amount.StringFixed(2)).
			Msg("payment captured but checkout failed")
		return nil, err
	}
	return sale, nil
}
