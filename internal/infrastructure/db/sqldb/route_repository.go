package sqldb

import (
	"context"
	"fmt"

	"github.com/bikerlight/store-api/internal/core/domain"
	"github.com/bikerlight/store-api/internal/core/ports"
)

type RouteRepository struct {
	db *DB
}

func NewRouteRepository(db *DB) ports.RouteRepository {
	return &RouteRepository{db: db}
}

func (r *RouteRepository) Create(ctx context.Context, route *domain.Route) (*domain.Route, error) {
	created := *route
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO routes (user_id, distance_km, duration_seconds, recorded_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		created.UserID, created.DistanceKm, created.DurationSeconds, created.RecordedAt.UTC(),
	).Scan(&created.ID)
	if err != nil {
		return nil, fmt.Errorf("insert route: %w", err)
	}
	return &created, nil
}

// ListByUser returns the user's routes, newest first.
func (r *RouteRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Route, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, distance_km, duration_seconds, recorded_at
		FROM routes
		WHERE user_id = $1
		ORDER BY recorded_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query routes: %w", err)
	}
	defer rows.Close()

	routes := []*domain.Route{}
	for rows.Next() {
		var rt domain.Route
		if err := rows.Scan(&rt.ID, &rt.UserID, &rt.DistanceKm, &rt.DurationSeconds, &rt.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan route: %w", err)
		}
		rt.RecordedAt = rt.RecordedAt.UTC()
		routes = append(routes, &rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return routes, nil
}
