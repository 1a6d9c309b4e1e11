package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/bikerlight/store-api/internal/api/metrics"
	"github.com/bikerlight/store-api/internal/core/domain"
	"github.com/bikerlight/store-api/internal/core/ports"
)

// CatalogInvalidator is notified after stock changes so cached listings are refreshed.
type CatalogInvalidator interface {
	InvalidateJackets(ctx context.Context)
}

// CheckoutService turns a cart or an explicit list of lines into a sale.
type CheckoutService struct {
	txm     ports.TxManager
	catalog CatalogInvalidator
	log     zerolog.Logger
	now     func() time.Time
}

func NewCheckoutService(txm ports.TxManager, catalog CatalogInvalidator, log zerolog.Logger) *CheckoutService {
	return &CheckoutService{
		txm:     txm,
		catalog: catalog,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

type saleEventLine struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type saleCompletedEvent struct {
	SaleID      int64           `json:"sale_id"`
	UserID      int64           `json:"user_id"`
	Total       decimal.Decimal `json:"total"`
	PaymentRef  string          `json:"payment_ref,omitempty"`
	Lines       []saleEventLine `json:"lines"`
	CompletedAt time.Time       `json:"completed_at"`
}

// Checkout validates stock, records the sale with its lines, decrements stock
// and empties the cart in one transaction. Either all of it is committed or
// nothing is.
func (s *CheckoutService) Checkout(ctx context.Context, in ports.CheckoutInput) (*domain.Sale, error) {
	start := time.Now()

	lines, err := normalizeLines(in.Lines)
	if err != nil {
		return nil, err
	}

	var sale *domain.Sale
	err = s.txm.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		requested := lines
		if len(requested) == 0 {
			cart, err := tx.CartLines(ctx, in.UserID)
			if err != nil {
				return fmt.Errorf("read cart: %w", err)
			}
			if len(cart) == 0 {
				return domain.ErrEmptyCart
			}
			requested = linesFromCart(cart)
		}

		saleLines, err := priceLines(ctx, tx, requested)
		if err != nil {
			return err
		}

		total := domain.SumLines(saleLines)
		if in.ExpectedTotal != nil && !in.ExpectedTotal.Equal(total) {
			return fmt.Errorf("%w: expected %s, computed %s", domain.ErrPaymentMismatch,
				in.ExpectedTotal.StringFixed(2), total.StringFixed(2))
		}

		sale = &domain.Sale{
			UserID:     in.UserID,
			Total:      total,
			PaymentRef: in.PaymentRef,
			CreatedAt:  s.now().Truncate(time.Second),
		}
		id, err := tx.InsertSale(ctx, sale)
		if err != nil {
			return err
		}
		sale.ID = id

		for _, l := range saleLines {
			if err := tx.InsertSaleLine(ctx, id, l); err != nil {
				return err
			}
			ok, err := tx.DecrementStock(ctx, l.ProductID, l.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return &domain.InsufficientStockError{ProductID: l.ProductID, Name: l.Name, Requested: l.Quantity}
			}
		}

		if err := tx.ClearCart(ctx, in.UserID); err != nil {
			return err
		}

		sale.Lines = saleLines
		return tx.InsertOutbox(ctx, saleOutboxEvent(sale))
	})
	if err != nil {
		reason := checkoutFailureReason(err)
		metrics.CheckoutsTotal.WithLabelValues(reason).Inc()
		if reason == "error" {
			s.log.Error().Err(err).Int64("user_id", in.UserID).Msg("checkout aborted")
			return nil, fmt.Errorf("%w: %w", domain.ErrTransactionAborted, err)
		}
		s.log.Info().Err(err).Int64("user_id", in.UserID).Str("reason", reason).Msg("checkout rejected")
		return nil, err
	}

	if s.catalog != nil {
		s.catalog.InvalidateJackets(ctx)
	}

	metrics.CheckoutsTotal.WithLabelValues("success").Inc()
	metrics.CheckoutDuration.Observe(time.Since(start).Seconds())
	revenue, _ := sale.Total.Float64()
	metrics.SalesRevenueTotal.Add(revenue)

	s.log.Info().
		Int64("sale_id", sale.ID).
		Int64("user_id", sale.UserID).
		Str("total", sale.Total.StringFixed(2)).
		Int("lines", len(sale.Lines)).
		Msg("sale completed")

	return sale, nil
}

// priceLines reads every product inside the transaction, checks stock and the
// client's expected price, and returns sale lines at the server price.
func priceLines(ctx context.Context, tx ports.Tx, lines []ports.CheckoutLine) ([]domain.SaleLine, error) {
	out := make([]domain.SaleLine, 0, len(lines))
	for _, l := range lines {
		p, err := tx.ProductForUpdate(ctx, l.ProductID)
		if err != nil {
			return nil, err
		}
		if l.Quantity > p.Stock {
			return nil, &domain.InsufficientStockError{
				ProductID: p.ID,
				Name:      p.Name,
				Requested: l.Quantity,
				Available: p.Stock,
			}
		}
		if l.ExpectedPrice != nil && !l.ExpectedPrice.Equal(p.Price) {
			return nil, &domain.PriceMismatchError{
				ProductID: p.ID,
				Name:      p.Name,
				Expected:  *l.ExpectedPrice,
				Current:   p.Price,
			}
		}
		out = append(out, domain.SaleLine{
			ProductID:   p.ID,
			Name:        p.Name,
			Description: p.Description,
			Category:    p.Category,
			Quantity:    l.Quantity,
			UnitPrice:   p.Price,
		})
	}
	return out, nil
}

// normalizeLines merges repeated products and sorts by product id so that
// concurrent checkouts lock rows in the same order.
func normalizeLines(lines []ports.CheckoutLine) ([]ports.CheckoutLine, error) {
	merged := make(map[int64]ports.CheckoutLine, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		if cur, ok := merged[l.ProductID]; ok {
			cur.Quantity += l.Quantity
			if cur.ExpectedPrice == nil {
				cur.ExpectedPrice = l.ExpectedPrice
			}
			merged[l.ProductID] = cur
			continue
		}
		merged[l.ProductID] = l
	}

	out := make([]ports.CheckoutLine, 0, len(merged))
	for _, l := range merged {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func linesFromCart(cart []domain.CartLine) []ports.CheckoutLine {
	out := make([]ports.CheckoutLine, 0, len(cart))
	for _, c := range cart {
		out = append(out, ports.CheckoutLine{ProductID: c.ProductID, Quantity: c.Quantity})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

func saleOutboxEvent(sale *domain.Sale) domain.OutboxEvent {
	ev := saleCompletedEvent{
		SaleID:      sale.ID,
		UserID:      sale.UserID,
		Total:       sale.Total,
		PaymentRef:  sale.PaymentRef,
		CompletedAt: sale.CreatedAt,
	}
	for _, l := range sale.Lines {
		ev.Lines = append(ev.Lines, saleEventLine{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	payload, _ := json.Marshal(ev)
	return domain.OutboxEvent{
		AggregateID: strconv.FormatInt(sale.ID, 10),
		EventType:   domain.EventSaleCompleted,
		Payload:     payload,
		CreatedAt:   sale.CreatedAt,
	}
}

func checkoutFailureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, domain.ErrPriceMismatch):
		return "price_mismatch"
	case errors.Is(err, domain.ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, domain.ErrPaymentMismatch):
		return "payment_mismatch"
	case errors.Is(err, domain.ErrDuplicatePayment):
		return "duplicate_payment"
	}
	return "error"
}
