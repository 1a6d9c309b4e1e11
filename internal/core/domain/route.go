package domain

import (
	"errors"
	"time"
)

var ErrInvalidRoute = errors.New("distance and duration must be positive")

// Route is a recorded ride.
type Route struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	DistanceKm      float64   `json:"distance_km"`
	DurationSeconds int       `json:"duration_seconds"`
	RecordedAt      time.Time `json:"recorded_at"`
}
