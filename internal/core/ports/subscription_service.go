package ports

import (
	"context"
	"time"

	"github.com/bikerlight/store-api/internal/core/domain"
)

// ActiveSubscription describes the user's current subscription window.
type ActiveSubscription struct {
	Active        bool
	Plan          domain.Plan
	EndsAt        *time.Time
	DaysRemaining int
}

type SubscriptionService interface {
	Purchase(ctx context.Context, userID int64, plan domain.Plan) (*domain.Subscription, error)
	Active(ctx context.Context, userID int64) (*ActiveSubscription, error)
	Status(ctx context.Context, userID int64) (*domain.SubscriptionStatus, error)
}
