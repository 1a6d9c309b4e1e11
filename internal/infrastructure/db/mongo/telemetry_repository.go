package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bikerlight/store-api/internal/core/domain"
	"github.com/bikerlight/store-api/internal/core/ports"
)

const (
	collectionLatest   = "telemetry_latest"
	collectionReadings = "telemetry_readings"
)

// TelemetryRepository implements ports.TelemetryRepository using MongoDB.
// telemetry_latest holds one snapshot per device; telemetry_readings is the
// append-only history.
type TelemetryRepository struct {
	latest   *mongo.Collection
	readings *mongo.Collection
}

// NewTelemetryRepository creates a new TelemetryRepository.
func NewTelemetryRepository(db *mongo.Database) *TelemetryRepository {
	return &TelemetryRepository{
		latest:   db.Collection(collectionLatest),
		readings: db.Collection(collectionReadings),
	}
}

var _ ports.TelemetryRepository = (*TelemetryRepository)(nil)

// UpsertLatest replaces the device snapshot unless a newer reading is
// already stored.
func (r *TelemetryRepository) UpsertLatest(ctx context.Context, reading *domain.TelemetryReading) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := *reading
	doc.Timestamp = reading.Timestamp.UTC()

	filter := bson.M{
		"device_id": reading.DeviceID,
		"timestamp": bson.M{"$lte": doc.Timestamp},
	}
	_, err := r.latest.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		// A newer snapshot exists; the filter missed it and the upsert hit the unique index.
		return nil
	}
	if err != nil {
		return fmt.Errorf("upsert latest reading: %w", err)
	}
	return nil
}

// InsertReading appends the reading to the history collection.
func (r *TelemetryRepository) InsertReading(ctx context.Context, reading *domain.TelemetryReading) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"device_id":    reading.DeviceID,
		"timestamp":    reading.Timestamp.UTC(),
		"distance_km":  reading.DistanceKm,
		"light":        reading.Light,
		"acceleration": reading.Acceleration,
		"gyroscope":    reading.Gyroscope,
		"processed_at": time.Now().UTC(),
	}
	if _, err := r.readings.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert reading: %w", err)
	}
	return nil
}

// Latest returns the device snapshot.
func (r *TelemetryRepository) Latest(ctx context.Context, deviceID string) (*domain.TelemetryReading, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var reading domain.TelemetryReading
	err := r.latest.FindOne(ctx, bson.M{"device_id": deviceID}).Decode(&reading)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTelemetryNotFound
		}
		return nil, fmt.Errorf("find latest reading: %w", err)
	}
	reading.Timestamp = reading.Timestamp.UTC()
	return &reading, nil
}

// EnsureIndexes creates the unique device index on the snapshot collection
// and the history lookup index.
func (r *TelemetryRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.latest.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "device_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("telemetry_latest indexes: %w", err)
	}

	_, err = r.readings.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "device_id", Value: 1}, {Key: "timestamp", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("telemetry_readings indexes: %w", err)
	}
	return nil
}
