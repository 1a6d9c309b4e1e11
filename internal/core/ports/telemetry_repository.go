package ports

import (
	"context"

	"github.com/bikerlight/store-api/internal/core/domain"
)

// TelemetryRepository persists jacket readings.
type TelemetryRepository interface {
	// UpsertLatest replaces the device's latest snapshot.
	UpsertLatest(ctx context.Context, r *domain.TelemetryReading) error
	// InsertReading appends the reading to the history collection.
	InsertReading(ctx context.Context, r *domain.TelemetryReading) error
	// Latest returns domain.ErrTelemetryNotFound when the device never reported.
	Latest(ctx context.Context, deviceID string) (*domain.TelemetryReading, error)
}
