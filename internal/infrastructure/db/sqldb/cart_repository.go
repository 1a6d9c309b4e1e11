package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bikerlight/store-api/internal/core/domain"
	"github.com/bikerlight/store-api/internal/core/ports"
)

// CartRepository implements ports.CartRepository on cart_items and cart_view.
type CartRepository struct {
	db *DB
}

func NewCartRepository(db *DB) ports.CartRepository {
	return &CartRepository{db: db}
}

func (r *CartRepository) Lines(ctx context.Context, userID int64) ([]domain.CartLine, error) {
	return cartLines(ctx, r.db, userID)
}

func (r *CartRepository) Quantity(ctx context.Context, userID, productID int64) (int, error) {
	var qty int
	err := r.db.QueryRowContext(ctx,
		`SELECT quantity FROM cart_items WHERE user_id = $1 AND product_id = $2`, userID, productID,
	).Scan(&qty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cart quantity: %w", err)
	}
	return qty, nil
}

func (r *CartRepository) Set(ctx context.Context, userID, productID int64, quantity int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cart_items (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = excluded.quantity`,
		userID, productID, quantity,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrProductNotFound
		}
		return fmt.Errorf("set cart line: %w", err)
	}
	return nil
}

func (r *CartRepository) Remove(ctx context.Context, userID, productID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return fmt.Errorf("remove cart line: %w", err)
	}
	return expectOneRow(res, domain.ErrCartItemNotFound)
}

func cartLines(ctx context.Context, q querier, userID int64) ([]domain.CartLine, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT product_id, name, price, stock, image_url, quantity, subtotal
		FROM cart_view
		WHERE user_id = $1
		ORDER BY product_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var l domain.CartLine
		if err := rows.Scan(&l.ProductID, &l.Name, &l.Price, &l.Stock, &l.ImageURL, &l.Quantity, &l.Subtotal); err != nil {
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return lines, nil
}
