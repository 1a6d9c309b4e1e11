package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bikerlight/store-api/internal/core/domain"
	"github.com/bikerlight/store-api/internal/core/ports"
)

const productColumns = `id, sku, name, description, price, stock, image_url, category, created_at`

// ProductRepository implements ports.ProductRepository.
type ProductRepository struct {
	db *DB
}

func NewProductRepository(db *DB) ports.ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) ListByCategory(ctx context.Context, category domain.Category, inStockOnly bool) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE category = $1`
	if inStockOnly {
		query += ` AND stock > 0`
	}
	return queryProducts(ctx, r.db, query+` ORDER BY id`, string(category))
}

func (r *ProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	return queryProducts(ctx, r.db, `SELECT `+productColumns+` FROM products ORDER BY id`)
}

func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	return productByID(ctx, r.db, id, "")
}

func (r *ProductRepository) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	return productBySKU(ctx, r.db, sku)
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	created := *p
	created.CreatedAt = time.Now().UTC().Truncate(time.Second)

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO products (sku, name, description, price, stock, image_url, category, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		nullString(created.SKU), created.Name, created.Description, created.Price,
		created.Stock, created.ImageURL, string(created.Category), created.CreatedAt,
	).Scan(&created.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: sku %q already exists", domain.ErrValidation, created.SKU)
		}
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return &created, nil
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET sku = $1, name = $2, description = $3, price = $4, stock = $5, image_url = $6, category = $7
		WHERE id = $8`,
		nullString(p.SKU), p.Name, p.Description, p.Price, p.Stock, p.ImageURL, string(p.Category), p.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: sku %q already exists", domain.ErrValidation, p.SKU)
		}
		return fmt.Errorf("update product: %w", err)
	}
	return expectOneRow(res, domain.ErrProductNotFound)
}

// Delete removes a product. Products referenced by a sale line cannot be
// deleted.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrProductInUse
		}
		return fmt.Errorf("delete product: %w", err)
	}
	return expectOneRow(res, domain.ErrProductNotFound)
}

// OutOfStock lists physical products whose stock reached zero.
func (r *ProductRepository) OutOfStock(ctx context.Context) ([]*domain.Product, error) {
	return queryProducts(ctx, r.db, `
		SELECT `+productColumns+` FROM products
		WHERE stock = 0 AND category <> $1
		ORDER BY id`, string(domain.CategorySubscription))
}

func productByID(ctx context.Context, q querier, id int64, suffix string) (*domain.Product, error) {
	row := q.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`+suffix, id)
	return scanProduct(row)
}

func productBySKU(ctx context.Context, q querier, sku string) (*domain.Product, error) {
	row := q.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE sku = $1`, sku)
	return scanProduct(row)
}

func queryProducts(ctx context.Context, q querier, query string, args ...any) ([]*domain.Product, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return products, nil
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		p        domain.Product
		sku      sql.NullString
		category string
	)
	err := row.Scan(
		&p.ID,
		&sku,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Stock,
		&p.ImageURL,
		&category,
		&p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}
	p.SKU = sku.String
	p.Category = domain.Category(category)
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}
