package ports

import (
	"context"

	"github.com/bikerlight/store-api/internal/core/domain"
)

// ReportRepository runs the aggregate queries behind the admin dashboard.
type ReportRepository interface {
	SalesByCategory(ctx context.Context) ([]domain.CategorySales, error)
	SubscriptionsByPlan(ctx context.Context) ([]domain.PlanCount, error)
	RevenueByDay(ctx context.Context) ([]domain.DailyRevenue, error)
	TopProducts(ctx context.Context, limit int) ([]domain.ProductUnits, error)
	SubscriptionDurations(ctx context.Context) ([]domain.PlanDuration, error)
	UnitsSold(ctx context.Context, category domain.Category) (int64, error)
	RoutesByUser(ctx context.Context) ([]domain.UserRoutes, error)
}

type ReportService interface {
	Detailed(ctx context.Context) (*domain.DetailedReport, error)
}
