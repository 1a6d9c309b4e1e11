package ports

import (
	"context"

	"github.com/bikerlight/store-api/internal/core/domain"
)

// SubscriptionRepository reads subscription history.
type SubscriptionRepository interface {
	// Latest returns the subscription with the furthest end date, or
	// domain.ErrSubscriptionNotFound.
	Latest(ctx context.Context, userID int64) (*domain.Subscription, error)
}
