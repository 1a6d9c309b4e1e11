package sqldb

import (
	"context"
	"fmt"

	"github.com/bikerlight/store-api/internal/core/domain"
	"github.com/bikerlight/store-api/internal/core/ports"
)

// ReportRepository implements ports.ReportRepository with aggregate queries
// over sales, subscriptions and routes.
type ReportRepository struct {
	db *DB
}

func NewReportRepository(db *DB) ports.ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) SalesByCategory(ctx context.Context) ([]domain.CategorySales, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.category,
		       COALESCE(SUM(sl.quantity), 0),
		       COALESCE(ROUND(SUM(sl.quantity * sl.unit_price), 2), 0)
		FROM sale_lines sl
		JOIN products p ON p.id = sl.product_id
		GROUP BY p.category
		ORDER BY p.category`)
	if err != nil {
		return nil, fmt.Errorf("sales by category: %w", err)
	}
	defer rows.Close()

	out := []domain.CategorySales{}
	for rows.Next() {
		var (
			c        domain.CategorySales
			category string
		)
		if err := rows.Scan(&category, &c.Units, &c.Revenue); err != nil {
			return nil, fmt.Errorf("sales by category: %w", err)
		}
		c.Category = domain.Category(category)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ReportRepository) SubscriptionsByPlan(ctx context.Context) ([]domain.PlanCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT plan, COUNT(*)
		FROM subscriptions
		GROUP BY plan
		ORDER BY plan`)
	if err != nil {
		return nil, fmt.Errorf("subscriptions by plan: %w", err)
	}
	defer rows.Close()

	out := []domain.PlanCount{}
	for rows.Next() {
		var (
			p    domain.PlanCount
			plan string
		)
		if err := rows.Scan(&plan, &p.Count); err != nil {
			return nil, fmt.Errorf("subscriptions by plan: %w", err)
		}
		p.Plan = domain.Plan(plan)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ReportRepository) RevenueByDay(ctx context.Context) ([]domain.DailyRevenue, error) {
	day := r.db.Dialect.Day("created_at")
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+day+` AS day, COALESCE(ROUND(SUM(total), 2), 0)
		FROM sales
		GROUP BY `+day+`
		ORDER BY day`)
	if err != nil {
		return nil, fmt.Errorf("revenue by day: %w", err)
	}
	defer rows.Close()

	out := []domain.DailyRevenue{}
	for rows.Next() {
		var d domain.DailyRevenue
		if err := rows.Scan(&d.Day, &d.Revenue); err != nil {
			return nil, fmt.Errorf("revenue by day: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *ReportRepository) TopProducts(ctx context.Context, limit int) ([]domain.ProductUnits, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.name, COALESCE(SUM(sl.quantity), 0) AS units
		FROM sale_lines sl
		JOIN products p ON p.id = sl.product_id
		GROUP BY p.id, p.name
		ORDER BY units DESC, p.id
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	defer rows.Close()

	out := []domain.ProductUnits{}
	for rows.Next() {
		var p domain.ProductUnits
		if err := rows.Scan(&p.ProductID, &p.Name, &p.Units); err != nil {
			return nil, fmt.Errorf("top products: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ReportRepository) SubscriptionDurations(ctx context.Context) ([]domain.PlanDuration, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT plan, COALESCE(ROUND(AVG(duration_days), 2), 0)
		FROM subscriptions
		GROUP BY plan
		ORDER BY plan`)
	if err != nil {
		return nil, fmt.Errorf("subscription durations: %w", err)
	}
	defer rows.Close()

	out := []domain.PlanDuration{}
	for rows.Next() {
		var (
			d    domain.PlanDuration
			plan string
		)
		if err := rows.Scan(&plan, &d.AverageDays); err != nil {
			return nil, fmt.Errorf("subscription durations: %w", err)
		}
		d.Plan = domain.Plan(plan)
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *ReportRepository) UnitsSold(ctx context.Context, category domain.Category) (int64, error) {
	var units int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(sl.quantity), 0)
		FROM sale_lines sl
		JOIN products p ON p.id = sl.product_id
		WHERE p.category = $1`, string(category)).Scan(&units)
	if err != nil {
		return 0, fmt.Errorf("units sold: %w", err)
	}
	return units, nil
}

func (r *ReportRepository) RoutesByUser(ctx context.Context) ([]domain.UserRoutes, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.id, u.name, COUNT(rt.id), COALESCE(SUM(rt.distance_km), 0)
		FROM routes rt
		JOIN users u ON u.id = rt.user_id
		GROUP BY u.id, u.name
		ORDER BY u.id`)
	if err != nil {
		return nil, fmt.Errorf("routes by user: %w", err)
	}
	defer rows.Close()

	out := []domain.UserRoutes{}
	for rows.Next() {
		var u domain.UserRoutes
		if err := rows.Scan(&u.UserID, &u.Name, &u.Routes, &u.TotalKm); err != nil {
			return nil, fmt.Errorf("routes by user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
