package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bikerlight/store-api/internal/core/domain"
	"github.com/bikerlight/store-api/internal/core/ports"
)

// SubscriptionRepository implements ports.SubscriptionRepository. It replaces
// the stored procedure that used to compute the active subscription.
type SubscriptionRepository struct {
	db *DB
}

func NewSubscriptionRepository(db *DB) ports.SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Latest(ctx context.Context, userID int64) (*domain.Subscription, error) {
	return latestSubscription(ctx, r.db, userID)
}

func latestSubscription(ctx context.Context, q querier, userID int64) (*domain.Subscription, error) {
	var (
		s    domain.Subscription
		plan string
	)
	err := q.QueryRowContext(ctx, `
		SELECT id, user_id, plan, starts_at, ends_at, duration_days, sale_id
		FROM subscriptions
		WHERE user_id = $1
		ORDER BY ends_at DESC, id DESC
		LIMIT 1`, userID,
	).Scan(&s.ID, &s.UserID, &plan, &s.StartsAt, &s.EndsAt, &s.DurationDays, &s.SaleID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest subscription: %w", err)
	}
	s.Plan = domain.Plan(plan)
	s.StartsAt = s.StartsAt.UTC()
	s.EndsAt = s.EndsAt.UTC()
	return &s, nil
}
