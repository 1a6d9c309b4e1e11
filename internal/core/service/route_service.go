package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/bikerlight/store-api/internal/core/domain"
	"github.com/bikerlight/store-api/internal/core/ports"
)

type RouteService struct {
	repo ports.RouteRepository
	log  zerolog.Logger
}

func NewRouteService(repo ports.RouteRepository, log zerolog.Logger) *RouteService {
	return &RouteService{repo: repo, log: log}
}

func (s *RouteService) Record(ctx context.Context, userID int64, distanceKm float64, durationSeconds int) (*domain.Route, error) {
	if distanceKm <= 0 || durationSeconds <= 0 {
		return nil, domain.ErrInvalidRoute
	}
	route, err := s.repo.Create(ctx, &domain.Route{
		UserID:          userID,
		DistanceKm:      distanceKm,
		DurationSeconds: durationSeconds,
		RecordedAt:      time.Now().UTC().Truncate(time.Second),
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug().Int64("user_id", userID).Float64("distance_km", distanceKm).Msg("route recorded")
	return route, nil
}

func (s *RouteService) List(ctx context.Context, userID int64) ([]*domain.Route, error) {
	return s.repo.ListByUser(ctx, userID)
}
