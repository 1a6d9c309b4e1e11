package queue

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/bikerlight/store-api/internal/api/metrics"
	"github.com/bikerlight/store-api/internal/core/domain"
	"github.com/bikerlight/store-api/internal/core/ports"
)

const (
	defaultPollInterval = time.Second
	outboxBatchSize     = 100
)

// MessageWriter is the subset of *kafka.Writer used by the poller.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// OutboxPoller publishes pending outbox rows to Kafka. A row is marked
// processed only after the broker accepted it, so a failed publish is retried
// on the next tick.
type OutboxPoller struct {
	repo     ports.OutboxRepository
	writer   MessageWriter
	interval time.Duration
	log      zerolog.Logger
}

// NewKafkaWriter returns a writer for topic on brokers.
func NewKafkaWriter(topic string, brokers ...string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
}

func NewOutboxPoller(repo ports.OutboxRepository, writer MessageWriter, interval time.Duration, log zerolog.Logger) *OutboxPoller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &OutboxPoller{repo: repo, writer: writer, interval: interval, log: log}
}

// Run polls until ctx is cancelled.
func (p *OutboxPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.PublishPending(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// PublishPending publishes one batch of unprocessed events and returns how
// many were acknowledged.
func (p *OutboxPoller) PublishPending(ctx context.Context) int {
	events, err := p.repo.Unprocessed(ctx, outboxBatchSize)
	if err != nil {
		p.log.Error().Err(err).Msg("failed to fetch outbox events")
		return 0
	}

	published := 0
	for _, event := range events {
		if err := p.publish(ctx, event); err != nil {
			metrics.OutboxPublishedTotal.WithLabelValues(event.EventType, "error").Inc()
			p.log.Error().Err(err).Int64("event_id", event.ID).Str("event_type", event.EventType).Msg("failed to publish outbox event")
			continue
		}
		metrics.OutboxPublishedTotal.WithLabelValues(event.EventType, "success").Inc()

		if err := p.repo.MarkProcessed(ctx, event.ID); err != nil {
			p.log.Error().Err(err).Int64("event_id", event.ID).Msg("failed to mark outbox event as processed")
			continue
		}
		published++
	}
	return published
}

func (p *OutboxPoller) publish(ctx context.Context, event domain.OutboxEvent) error {
	msg := kafka.Message{
		Key:   []byte(event.AggregateID),
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}
