package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/bikerlight/store-api/internal/api/metrics"
	"github.com/bikerlight/store-api/internal/core/domain"
	"github.com/bikerlight/store-api/internal/core/ports"
)

type SubscriptionService struct {
	txm   ports.TxManager
	subs  ports.SubscriptionRepository
	sales ports.SaleRepository
	log   zerolog.Logger
	now   func() time.Time
}

func NewSubscriptionService(txm ports.TxManager, subs ports.SubscriptionRepository, sales ports.SaleRepository, log zerolog.Logger) *SubscriptionService {
	return &SubscriptionService{
		txm:   txm,
		subs:  subs,
		sales: sales,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

type subscriptionPurchasedEvent struct {
	SubscriptionID int64           `json:"subscription_id"`
	UserID         int64           `json:"user_id"`
	Plan           domain.Plan     `json:"plan"`
	SaleID         int64           `json:"sale_id"`
	Price          decimal.Decimal `json:"price"`
	StartsAt       time.Time       `json:"starts_at"`
	EndsAt         time.Time       `json:"ends_at"`
}

// Purchase records a new subscription period together with its sale. A
// renewal bought before the current period ends starts when it ends.
func (s *SubscriptionService) Purchase(ctx context.Context, userID int64, plan domain.Plan) (*domain.Subscription, error) {
	if !plan.Valid() {
		return nil, domain.ErrInvalidPlan
	}
	now := s.now().Truncate(time.Second)

	var sub *domain.Subscription
	err := s.txm.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		product, err := tx.ProductBySKU(ctx, plan.SKU())
		if errors.Is(err, domain.ErrProductNotFound) {
			return domain.ErrPlanProductNotDefined
		}
		if err != nil {
			return err
		}

		start := now
		latest, err := tx.LatestSubscription(ctx, userID)
		switch {
		case err == nil && latest.EndsAt.After(now):
			start = latest.EndsAt
		case err != nil && !errors.Is(err, domain.ErrSubscriptionNotFound):
			return err
		}
		end := plan.Extend(start)

		sale := &domain.Sale{UserID: userID, Total: product.Price, CreatedAt: now}
		saleID, err := tx.InsertSale(ctx, sale)
		if err != nil {
			return err
		}
		line := domain.SaleLine{ProductID: product.ID, Quantity: 1, UnitPrice: product.Price}
		if err := tx.InsertSaleLine(ctx, saleID, line); err != nil {
			return err
		}

		sub = &domain.Subscription{
			UserID:       userID,
			Plan:         plan,
			StartsAt:     start,
			EndsAt:       end,
			DurationDays: int(end.Sub(start).Hours() / 24),
			SaleID:       saleID,
		}
		id, err := tx.InsertSubscription(ctx, sub)
		if err != nil {
			return err
		}
		sub.ID = id

		payload, _ := json.Marshal(subscriptionPurchasedEvent{
			SubscriptionID: sub.ID,
			UserID:         userID,
			Plan:           plan,
			SaleID:         saleID,
			Price:          product.Price,
			StartsAt:       start,
			EndsAt:         end,
		})
		return tx.InsertOutbox(ctx, domain.OutboxEvent{
			AggregateID: strconv.FormatInt(sub.ID, 10),
			EventType:   domain.EventSubscriptionPurchased,
			Payload:     payload,
			CreatedAt:   now,
		})
	})
	if err != nil {
		if errors.Is(err, domain.ErrPlanProductNotDefined) {
			return nil, err
		}
		return nil, fmt.Errorf("purchase subscription: %w", err)
	}

	metrics.SubscriptionsPurchasedTotal.WithLabelValues(string(plan)).Inc()
	s.log.Info().
		Int64("user_id", userID).
		Str("plan", string(plan)).
		Time("ends_at", sub.EndsAt).
		Msg("subscription purchased")

	return sub, nil
}

// Active reports the user's latest subscription window.
func (s *SubscriptionService) Active(ctx context.Context, userID int64) (*ports.ActiveSubscription, error) {
	latest, err := s.subs.Latest(ctx, userID)
	if errors.Is(err, domain.ErrSubscriptionNotFound) {
		return &ports.ActiveSubscription{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("active subscription: %w", err)
	}

	days := latest.DaysRemaining(s.now())
	if days < 0 {
		days = 0
	}
	endsAt := latest.EndsAt
	return &ports.ActiveSubscription{
		Active:        days > 0,
		Plan:          latest.Plan,
		EndsAt:        &endsAt,
		DaysRemaining: days,
	}, nil
}

func (s *SubscriptionService) Status(ctx context.Context, userID int64) (*domain.SubscriptionStatus, error) {
	hasJacket, err := s.sales.HasPurchasedCategory(ctx, userID, domain.CategorySmartJacket)
	if err != nil {
		return nil, fmt.Errorf("subscription status: %w", err)
	}
	active, err := s.Active(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &domain.SubscriptionStatus{
		HasActiveSubscription: active.Active,
		HasPurchasedJacket:    hasJacket,
		Message:               domain.StatusMessage(hasJacket, active.EndsAt != nil, active.Active),
	}, nil
}
