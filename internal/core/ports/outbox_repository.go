package ports

import (
	"context"

	"github.com/bikerlight/store-api/internal/core/domain"
)

// OutboxRepository reads and acknowledges pending domain events.
type OutboxRepository interface {
	Unprocessed(ctx context.Context, limit int) ([]domain.OutboxEvent, error)
	MarkProcessed(ctx context.Context, id int64) error
}
