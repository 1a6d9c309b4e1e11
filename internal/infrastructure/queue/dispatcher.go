package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/bikerlight/store-api/internal/api/metrics"
	"github.com/bikerlight/store-api/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// ErrQueueFull is returned by Enqueue when the device's worker is saturated.
var ErrQueueFull = errors.New("telemetry queue is full")

// Dispatcher routes jacket readings to a fixed set of workers using
// consistent hashing on the device id, so readings of one device are
// processed in arrival order.
type Dispatcher struct {
	workers []chan ports.TelemetryReadingInput
	service ports.TelemetryService
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.TelemetryService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.TelemetryReadingInput, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.TelemetryReadingInput, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands a reading to the worker responsible for its device without
// blocking. It returns ErrQueueFull when that worker's buffer is full.
func (d *Dispatcher) Enqueue(reading ports.TelemetryReadingInput) error {
	idx := d.shardIndex(reading.DeviceID)
	select {
	case d.workers[idx] <- reading:
		metrics.TelemetryQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return nil
	default:
		metrics.TelemetryErrorsTotal.WithLabelValues("queue_full").Inc()
		return ErrQueueFull
	}
}

// EnqueueBatch enqueues readings in order and stops at the first failure.
func (d *Dispatcher) EnqueueBatch(readings []ports.TelemetryReadingInput) error {
	for _, r := range readings {
		if err := d.Enqueue(r); err != nil {
			return err
		}
	}
	return nil
}

// shardIndex maps a device id deterministically to a worker index.
func (d *Dispatcher) shardIndex(deviceID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(deviceID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.TelemetryReadingInput) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case reading, ok := <-ch:
			if !ok {
				return
			}
			metrics.TelemetryQueueDepth.WithLabelValues(label).Set(float64(len(ch)))

			if err := d.service.Process(ctx, reading); err != nil {
				d.log.Error().Err(err).
					Str("device", reading.DeviceID).
					Int("worker_id", id).
					Msg("reading processing failed")
			}
		}
	}
}
