package ports

import (
	"context"

	"github.com/bikerlight/store-api/internal/core/domain"
)

type RouteRepository interface {
	Create(ctx context.Context, r *domain.Route) (*domain.Route, error)
	ListByUser(ctx context.Context, userID int64) ([]*domain.Route, error)
}

type RouteService interface {
	Record(ctx context.Context, userID int64, distanceKm float64, durationSeconds int) (*domain.Route, error)
	List(ctx context.Context, userID int64) ([]*domain.Route, error)
}
