package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bikerlight/store-api/internal/core/domain"
	"github.com/bikerlight/store-api/internal/core/ports"
)

const saleColumns = `id, user_id, total, payment_ref, created_at`

// SaleRepository implements ports.SaleRepository.
type SaleRepository struct {
	db *DB
}

func NewSaleRepository(db *DB) ports.SaleRepository {
	return &SaleRepository{db: db}
}

// ListByUser returns the sale headers of a user, newest first.
func (r *SaleRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Sale, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+saleColumns+` FROM sales
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	sales := []*domain.Sale{}
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return sales, nil
}

func (r *SaleRepository) FindByID(ctx context.Context, id int64) (*domain.Sale, error) {
	sale, err := scanSale(r.db.QueryRowContext(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if sale.Lines, err = r.lines(ctx, sale.ID); err != nil {
		return nil, err
	}
	return sale, nil
}

func (r *SaleRepository) Latest(ctx context.Context, userID int64) (*domain.Sale, error) {
	sale, err := scanSale(r.db.QueryRowContext(ctx, `
		SELECT `+saleColumns+` FROM sales
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, userID))
	if err != nil {
		return nil, err
	}
	if sale.Lines, err = r.lines(ctx, sale.ID); err != nil {
		return nil, err
	}
	return sale, nil
}

func (r *SaleRepository) HasPurchasedCategory(ctx context.Context, userID int64, category domain.Category) (bool, error) {
	var found int
	err := r.db.QueryRowContext(ctx, `
		SELECT 1
		FROM sale_lines sl
		JOIN sales s ON s.id = sl.sale_id
		JOIN products p ON p.id = sl.product_id
		WHERE s.user_id = $1 AND p.category = $2
		LIMIT 1`, userID, string(category)).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("purchased category: %w", err)
	}
	return true, nil
}

func (r *SaleRepository) lines(ctx context.Context, saleID int64) ([]domain.SaleLine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT sl.product_id, p.name, p.description, p.category, sl.quantity, sl.unit_price
		FROM sale_lines sl
		JOIN products p ON p.id = sl.product_id
		WHERE sl.sale_id = $1
		ORDER BY sl.product_id`, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sale lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.SaleLine
	for rows.Next() {
		var (
			l        domain.SaleLine
			category string
		)
		if err := rows.Scan(&l.ProductID, &l.Name, &l.Description, &category, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan sale line: %w", err)
		}
		l.Category = domain.Category(category)
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return lines, nil
}

func scanSale(row rowScanner) (*domain.Sale, error) {
	var (
		s   domain.Sale
		ref sql.NullString
	)
	err := row.Scan(&s.ID, &s.UserID, &s.Total, &ref, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSaleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan sale: %w", err)
	}
	s.PaymentRef = ref.String
	s.CreatedAt = s.CreatedAt.UTC()
	return &s, nil
}
