package ports

import (
	"context"
	"time"

	"github.com/bikerlight/store-api/internal/core/domain"
)

// Vector3Input carries a three-axis sensor sample.
type Vector3Input struct {
	X float64
	Y float64
	Z float64
}

// TelemetryReadingInput is the DTO passed from the transport layer to TelemetryService.
type TelemetryReadingInput struct {
	DeviceID     string
	Timestamp    time.Time
	DistanceKm   float64
	Light        float64
	Acceleration Vector3Input
	Gyroscope    Vector3Input
}

// TelemetryService processes incoming readings and builds ride reports.
type TelemetryService interface {
	Process(ctx context.Context, in TelemetryReadingInput) error
	// Report uses the default device when deviceID is empty.
	Report(ctx context.Context, deviceID string) (*domain.TelemetryReport, error)
}
