package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/bikerlight/store-api/internal/core/domain"
)

type stubReportRepo struct {
	failOn   string
	topLimit int
	unitsCat domain.Category
}

func (r *stubReportRepo) fail(name string) error {
	if r.failOn == name {
		return errors.New("query failed")
	}
	return nil
}

func (r *stubReportRepo) SalesByCategory(context.Context) ([]domain.CategorySales, error) {
	return []domain.CategorySales{{Category: domain.CategorySmartJacket, Units: 3, Revenue: decimal.NewFromInt(7500)}}, r.fail("category")
}

func (r *stubReportRepo) SubscriptionsByPlan(context.Context) ([]domain.PlanCount, error) {
	return []domain.PlanCount{{Plan: domain.PlanMonthly, Count: 2}}, r.fail("plan")
}

func (r *stubReportRepo) RevenueByDay(context.Context) ([]domain.DailyRevenue, error) {
	return []domain.DailyRevenue{{Day: "2025-01-10", Revenue: decimal.NewFromInt(40)}}, r.fail("day")
}

func (r *stubReportRepo) TopProducts(_ context.Context, limit int) ([]domain.ProductUnits, error) {
	r.topLimit = limit
	return []domain.ProductUnits{{ProductID: 1, Name: "Jacket", Units: 3}}, r.fail("top")
}

func (r *stubReportRepo) SubscriptionDurations(context.Context) ([]domain.PlanDuration, error) {
	return []domain.PlanDuration{{Plan: domain.PlanAnnual, AverageDays: 365}}, r.fail("durations")
}

func (r *stubReportRepo) UnitsSold(_ context.Context, category domain.Category) (int64, error) {
	r.unitsCat = category
	return 3, r.fail("units")
}

func (r *stubReportRepo) RoutesByUser(context.Context) ([]domain.UserRoutes, error) {
	return []domain.UserRoutes{{UserID: 7, Name: "Ana", Routes: 2, TotalKm: 12.5}}, r.fail("routes")
}

func TestReportService_Detailed(t *testing.T) {
	repo := &stubReportRepo{}
	svc := NewReportService(repo)

	report, err := svc.Detailed(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.JacketsSold != 3 || repo.unitsCat != domain.CategorySmartJacket {
		t.Fatalf("expected jacket units from SMART_JACKET, got %d (%s)", report.JacketsSold, repo.unitsCat)
	}
	if repo.topLimit != topProductsLimit {
		t.Fatalf("expected top products limit %d, got %d", topProductsLimit, repo.topLimit)
	}
	if len(report.SalesByCategory) != 1 || len(report.RoutesByUser) != 1 || len(report.RevenueByDay) != 1 {
		t.Fatalf("report sections missing: %+v", report)
	}
}

func TestReportService_Detailed_PropagatesErrors(t *testing.T) {
	for _, section := range []string{"category", "plan", "day", "top", "durations", "units", "routes"} {
		t.Run(section, func(t *testing.T) {
			svc := NewReportService(&stubReportRepo{failOn: section})
			if _, err := svc.Detailed(context.Background()); err == nil {
				t.Fatalf("expected error when %s query fails", section)
			}
		})
	}
}
