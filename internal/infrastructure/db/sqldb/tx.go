package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bikerlight/store-api/internal/core/domain"
	"github.com/bikerlight/store-api/internal/core/ports"
)

// TxManager implements ports.TxManager with a database/sql transaction.
type TxManager struct {
	db *DB
}

func NewTxManager(db *DB) *TxManager {
	return &TxManager{db: db}
}

// WithinTx commits when fn succeeds and rolls back on any error.
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.Tx) error) error {
	sqlTx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = sqlTx.Rollback() }()

	if err := fn(ctx, &txStore{tx: sqlTx, dialect: m.db.Dialect}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type txStore struct {
	tx      *sql.Tx
	dialect Dialect
}

func (s *txStore) ProductForUpdate(ctx context.Context, id int64) (*domain.Product, error) {
	return productByID(ctx, s.tx, id, s.dialect.ForUpdate)
}

func (s *txStore) ProductBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	return productBySKU(ctx, s.tx, sku)
}

func (s *txStore) CartLines(ctx context.Context, userID int64) ([]domain.CartLine, error) {
	return cartLines(ctx, s.tx, userID)
}

func (s *txStore) InsertSale(ctx context.Context, sale *domain.Sale) (int64, error) {
	var id int64
	err := s.tx.QueryRowContext(ctx, `
		INSERT INTO sales (user_id, total, payment_ref, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		sale.UserID, sale.Total, nullString(sale.PaymentRef), sale.CreatedAt.UTC(),
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, domain.ErrDuplicatePayment
		}
		return 0, fmt.Errorf("insert sale: %w", err)
	}
	return id, nil
}

func (s *txStore) InsertSaleLine(ctx context.Context, saleID int64, line domain.SaleLine) error {
	_, err := s.tx.ExecContext(ctx, `
		INSERT INTO sale_lines (sale_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4)`,
		saleID, line.ProductID, line.Quantity, line.UnitPrice,
	)
	if err != nil {
		return fmt.Errorf("insert sale line: %w", err)
	}
	return nil
}

func (s *txStore) DecrementStock(ctx context.Context, productID int64, qty int) (bool, error) {
	res, err := s.tx.ExecContext(ctx,
		`UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $3`,
		qty, productID, qty,
	)
	if err != nil {
		return false, fmt.Errorf("decrement stock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("decrement stock: %w", err)
	}
	return n == 1, nil
}

func (s *txStore) ClearCart(ctx context.Context, userID int64) error {
	if _, err := s.tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// LatestSubscription locks the user's row first so concurrent renewals for
// the same user queue up and each one starts where the previous ended.
func (s *txStore) LatestSubscription(ctx context.Context, userID int64) (*domain.Subscription, error) {
	if err := s.lockUser(ctx, userID); err != nil {
		return nil, err
	}
	return latestSubscription(ctx, s.tx, userID)
}

func (s *txStore) lockUser(ctx context.Context, userID int64) error {
	if s.dialect.ForUpdate == "" {
		return nil
	}
	var id int64
	err := s.tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id = $1`+s.dialect.ForUpdate, userID).Scan(&id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("lock user: %w", err)
	}
	return nil
}

func (s *txStore) InsertSubscription(ctx context.Context, sub *domain.Subscription) (int64, error) {
	var id int64
	err := s.tx.QueryRowContext(ctx, `
		INSERT INTO subscriptions (user_id, plan, starts_at, ends_at, duration_days, sale_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		sub.UserID, string(sub.Plan), sub.StartsAt.UTC(), sub.EndsAt.UTC(), sub.DurationDays, sub.SaleID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert subscription: %w", err)
	}
	return id, nil
}

func (s *txStore) InsertOutbox(ctx context.Context, event domain.OutboxEvent) error {
	_, err := s.tx.ExecContext(ctx, `
		INSERT INTO outbox_events (aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4)`,
		event.AggregateID, event.EventType, string(event.Payload), event.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}
