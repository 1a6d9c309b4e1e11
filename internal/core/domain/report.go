package domain

import "github.com/shopspring/decimal"

// CategorySales is units and revenue for one category.
type CategorySales struct {
	Category Category        `json:"category"`
	Units    int64           `json:"units"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// PlanCount is the number of subscriptions sold for a plan.
type PlanCount struct {
	Plan  Plan  `json:"plan"`
	Count int64 `json:"count"`
}

// DailyRevenue is the revenue collected on a calendar day (UTC, YYYY-MM-DD).
type DailyRevenue struct {
	Day     string          `json:"day"`
	Revenue decimal.Decimal `json:"revenue"`
}

// ProductUnits is the number of units sold for a product.
type ProductUnits struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Units     int64  `json:"units"`
}

// PlanDuration is the average duration in days of subscriptions for a plan.
type PlanDuration struct {
	Plan        Plan    `json:"plan"`
	AverageDays float64 `json:"average_days"`
}

// UserRoutes summarises the rides of a user.
type UserRoutes struct {
	UserID  int64   `json:"user_id"`
	Name    string  `json:"name"`
	Routes  int64   `json:"routes"`
	TotalKm float64 `json:"total_km"`
}

// DetailedReport is the admin dashboard payload.
type DetailedReport struct {
	SalesByCategory       []CategorySales `json:"sales_by_category"`
	SubscriptionsByPlan   []PlanCount     `json:"subscriptions_by_plan"`
	RevenueByDay          []DailyRevenue  `json:"revenue_by_day"`
	TopProducts           []ProductUnits  `json:"top_products"`
	SubscriptionDurations []PlanDuration  `json:"subscription_durations"`
	JacketsSold           int64           `json:"jackets_sold"`
	RoutesByUser          []UserRoutes    `json:"routes_by_user"`
}
