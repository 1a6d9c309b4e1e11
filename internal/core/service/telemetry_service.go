package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/bikerlight/store-api/internal/api/metrics"
	"github.com/bikerlight/store-api/internal/core/domain"
	"github.com/bikerlight/store-api/internal/core/ports"
)

const defaultSampleWindow = 30 * time.Second

// DedupChecker abstracts the idempotency store (Redis).
type DedupChecker interface {
	IsDuplicate(ctx context.Context, deviceID string, ts time.Time) (bool, error)
	Mark(ctx context.Context, deviceID string, ts time.Time) error
}

type telemetryService struct {
	repo          ports.TelemetryRepository
	dedup         DedupChecker
	defaultDevice string
	window        time.Duration
	log           zerolog.Logger
}

// NewTelemetryService returns a TelemetryService implementation. window is the
// time span covered by one reading and drives the derived ride metrics.
func NewTelemetryService(
	repo ports.TelemetryRepository,
	dedup DedupChecker,
	defaultDevice string,
	window time.Duration,
	log zerolog.Logger,
) ports.TelemetryService {
	if window <= 0 {
		window = defaultSampleWindow
	}
	return &telemetryService{
		repo:          repo,
		dedup:         dedup,
		defaultDevice: defaultDevice,
		window:        window,
		log:           log,
	}
}

// Process deduplicates and persists a single jacket reading.
func (s *telemetryService) Process(ctx context.Context, in ports.TelemetryReadingInput) error {
	start := time.Now()
	if in.DeviceID == "" {
		metrics.TelemetryErrorsTotal.WithLabelValues("invalid_reading").Inc()
		return fmt.Errorf("process reading: %w: device_id is required", domain.ErrValidation)
	}

	// 1. Idempotency check; a failing store does not block ingestion.
	isDup, err := s.dedup.IsDuplicate(ctx, in.DeviceID, in.Timestamp)
	if err != nil {
		s.log.Warn().Err(err).Str("device", in.DeviceID).Msg("dedup check failed, processing anyway")
	} else if isDup {
		metrics.TelemetryDedupTotal.WithLabelValues("hit").Inc()
		s.log.Debug().Str("device", in.DeviceID).Time("timestamp", in.Timestamp).Msg("duplicate reading skipped")
		return nil
	}
	metrics.TelemetryDedupTotal.WithLabelValues("miss").Inc()

	// 2. Mark before writing so a retry of the same reading is skipped.
	if markErr := s.dedup.Mark(ctx, in.DeviceID, in.Timestamp); markErr != nil {
		s.log.Warn().Err(markErr).Str("device", in.DeviceID).Msg("failed to set dedup key")
	}

	reading := &domain.TelemetryReading{
		DeviceID:     in.DeviceID,
		Timestamp:    in.Timestamp.UTC(),
		DistanceKm:   in.DistanceKm,
		Light:        in.Light,
		Acceleration: domain.Vector3{X: in.Acceleration.X, Y: in.Acceleration.Y, Z: in.Acceleration.Z},
		Gyroscope:    domain.Vector3{X: in.Gyroscope.X, Y: in.Gyroscope.Y, Z: in.Gyroscope.Z},
	}

	// 3. Replace the device snapshot read by reports.
	if err := s.repo.UpsertLatest(ctx, reading); err != nil {
		metrics.TelemetryErrorsTotal.WithLabelValues("upsert_failed").Inc()
		return fmt.Errorf("process reading: upsert latest: %w", err)
	}

	// 4. Append to history (non-fatal on failure).
	if err := s.repo.InsertReading(ctx, reading); err != nil {
		s.log.Warn().Err(err).Str("device", in.DeviceID).Msg("failed to insert reading history")
	}

	metrics.TelemetryProcessedTotal.WithLabelValues(in.DeviceID).Inc()
	metrics.TelemetryProcessingDuration.Observe(time.Since(start).Seconds())
	s.log.Debug().
		Str("device", in.DeviceID).
		Float64("distance_km", in.DistanceKm).
		Msg("reading processed")

	return nil
}

// Report turns the device's latest reading into ride metrics over the sample window.
func (s *telemetryService) Report(ctx context.Context, deviceID string) (*domain.TelemetryReport, error) {
	if deviceID == "" {
		deviceID = s.defaultDevice
	}
	r, err := s.repo.Latest(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	seconds := s.window.Seconds()
	return &domain.TelemetryReport{
		DeviceID:        r.DeviceID,
		DistanceKm:      r.DistanceKm,
		DurationSeconds: seconds,
		DurationMinutes: round2(seconds / 60),
		SpeedKph:        round2(r.DistanceKm / seconds * 3600),
		Light:           r.Light,
		Acceleration:    r.Acceleration,
		Gyroscope:       r.Gyroscope,
		RecordedAt:      r.Timestamp,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
