package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bikerlight/store-api/internal/core/domain"
	"github.com/bikerlight/store-api/internal/core/ports"
)

type SaleService struct {
	sales ports.SaleRepository
}

func NewSaleService(sales ports.SaleRepository) *SaleService {
	return &SaleService{sales: sales}
}

func (s *SaleService) History(ctx context.Context, userID int64) ([]*domain.Sale, error) {
	sales, err := s.sales.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("sales history: %w", err)
	}
	return sales, nil
}

// Detail returns a sale with its lines. Customers only see their own sales.
func (s *SaleService) Detail(ctx context.Context, userID int64, role string, saleID int64) (*domain.Sale, error) {
	sale, err := s.sales.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if role != domain.RoleAdmin && sale.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return sale, nil
}

func (s *SaleService) Latest(ctx context.Context, userID int64) (*domain.Sale, error) {
	sale, err := s.sales.Latest(ctx, userID)
	if errors.Is(err, domain.ErrSaleNotFound) {
		return nil, nil
	}
	return sale, err
}
