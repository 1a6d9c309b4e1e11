package domain

import (
	"errors"
	"math"
	"time"
)

// Plan identifies a subscription length.
type Plan string

const (
	PlanMonthly Plan = "MONTHLY"
	PlanAnnual  Plan = "ANNUAL"
)

var (
	ErrInvalidPlan           = errors.New("invalid subscription plan")
	ErrSubscriptionNotFound  = errors.New("subscription not found")
	ErrPlanProductNotDefined = errors.New("subscription plan is not available in the catalog")
)

// Status messages shown to the customer after checking their subscription.
const (
	MsgBuyFirstJacket      = "Get your first smart jacket to start using the app."
	MsgActivateFirstPlan   = "Activate your first subscription to enjoy premium features."
	MsgSubscriptionExpired = "Your subscription has expired. Renew it to keep enjoying premium features."
)

// SKU returns the catalog SKU that prices the plan.
func (p Plan) SKU() string {
	switch p {
	case PlanMonthly:
		return "SUB-MONTHLY"
	case PlanAnnual:
		return "SUB-ANNUAL"
	}
	return ""
}

// Valid reports whether p is a known plan.
func (p Plan) Valid() bool { return p.SKU() != "" }

// Extend returns the end of a period of this plan starting at from.
func (p Plan) Extend(from time.Time) time.Time {
	if p == PlanAnnual {
		return from.AddDate(1, 0, 0)
	}
	return from.AddDate(0, 1, 0)
}

// Subscription is one purchased period.
type Subscription struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	Plan         Plan      `json:"plan"`
	StartsAt     time.Time `json:"starts_at"`
	EndsAt       time.Time `json:"ends_at"`
	DurationDays int       `json:"duration_days"`
	SaleID       int64     `json:"sale_id"`
}

// DaysRemaining rounds the time left up to whole days. It is zero or negative
// once the subscription has ended.
func (s Subscription) DaysRemaining(now time.Time) int {
	left := s.EndsAt.Sub(now)
	return int(math.Ceil(left.Hours() / 24))
}

// SubscriptionStatus is the combined view used by the app landing screen.
type SubscriptionStatus struct {
	HasActiveSubscription bool   `json:"has_active_subscription"`
	HasPurchasedJacket    bool   `json:"has_purchased_jacket"`
	Message               string `json:"message"`
}

// StatusMessage picks the message for the customer's situation.
func StatusMessage(hasJacket, everSubscribed, active bool) string {
	switch {
	case !hasJacket:
		return MsgBuyFirstJacket
	case !everSubscribed:
		return MsgActivateFirstPlan
	case !active:
		return MsgSubscriptionExpired
	}
	return ""
}
