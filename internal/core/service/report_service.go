package service

import (
	"context"
	"fmt"

	"github.com/bikerlight/store-api/internal/core/domain"
	"github.com/bikerlight/store-api/internal/core/ports"
)

const topProductsLimit = 5

type ReportService struct {
	repo ports.ReportRepository
}

func NewReportService(repo ports.ReportRepository) *ReportService {
	return &ReportService{repo: repo}
}

// Detailed assembles the admin dashboard from independent aggregate queries.
func (s *ReportService) Detailed(ctx context.Context) (*domain.DetailedReport, error) {
	var (
		r   domain.DetailedReport
		err error
	)
	if r.SalesByCategory, err = s.repo.SalesByCategory(ctx); err != nil {
		return nil, fmt.Errorf("report sales by category: %w", err)
	}
	if r.SubscriptionsByPlan, err = s.repo.SubscriptionsByPlan(ctx); err != nil {
		return nil, fmt.Errorf("report subscriptions by plan: %w", err)
	}
	if r.RevenueByDay, err = s.repo.RevenueByDay(ctx); err != nil {
		return nil, fmt.Errorf("report revenue by day: %w", err)
	}
	if r.TopProducts, err = s.repo.TopProducts(ctx, topProductsLimit); err != nil {
		return nil, fmt.Errorf("report top products: %w", err)
	}
	if r.SubscriptionDurations, err = s.repo.SubscriptionDurations(ctx); err != nil {
		return nil, fmt.Errorf("report subscription durations: %w", err)
	}
	if r.JacketsSold, err = s.repo.UnitsSold(ctx, domain.CategorySmartJacket); err != nil {
		return nil, fmt.Errorf("report jackets sold: %w", err)
	}
	if r.RoutesByUser, err = s.repo.RoutesByUser(ctx); err != nil {
		return nil, fmt.Errorf("report routes by user: %w", err)
	}
	return &r, nil
}
