package domain

import (
	"errors"
	"time"
)

var ErrTelemetryNotFound = errors.New("no telemetry data available")

// Vector3 is a three-axis sensor sample.
type Vector3 struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
	Z float64 `json:"z" bson:"z"`
}

// TelemetryReading is one sample pushed by a jacket.
type TelemetryReading struct {
	DeviceID     string    `bson:"device_id"`
	Timestamp    time.Time `bson:"timestamp"`
	DistanceKm   float64   `bson:"distance_km"`
	Light        float64   `bson:"light"`
	Acceleration Vector3   `bson:"acceleration"`
	Gyroscope    Vector3   `bson:"gyroscope"`
}

// TelemetryReport reshapes the latest reading into ride metrics.
type TelemetryReport struct {
	DeviceID        string    `json:"device_id"`
	DistanceKm      float64   `json:"distance_km"`
	DurationSeconds float64   `json:"duration_seconds"`
	DurationMinutes float64   `json:"duration_minutes"`
	SpeedKph        float64   `json:"speed_kph"`
	Light           float64   `json:"light"`
	Acceleration    Vector3   `json:"acceleration"`
	Gyroscope       Vector3   `json:"gyroscope"`
	RecordedAt      time.Time `json:"recorded_at"`
}
