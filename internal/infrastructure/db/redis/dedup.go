package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = time.Hour

// DedupChecker provides idempotency checks for jacket readings backed by Redis.
// Key format: dedup:telemetry:<device_id>:<unix_timestamp>
type DedupChecker struct {
	client *redis.Client
}

// NewDedupChecker creates a DedupChecker wrapping the given Redis client.
func NewDedupChecker(client *redis.Client) *DedupChecker {
	return &DedupChecker{client: client}
}

// IsDuplicate reports whether a reading for this device and second has
// already been processed.
func (d *DedupChecker) IsDuplicate(ctx context.Context, deviceID string, ts time.Time) (bool, error) {
	n, err := d.client.Exists(ctx, dedupKey(deviceID, ts)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that the reading has been processed (expires after dedupTTL).
func (d *DedupChecker) Mark(ctx context.Context, deviceID string, ts time.Time) error {
	if err := d.client.Set(ctx, dedupKey(deviceID, ts), "1", dedupTTL).Err(); err != nil {
		return fmt.Errorf("dedup mark: %w", err)
	}
	return nil
}

func dedupKey(deviceID string, ts time.Time) string {
	return fmt.Sprintf("dedup:telemetry:%s:%d", deviceID, ts.Unix())
}
