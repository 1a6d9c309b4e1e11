package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bikerlight/store-api/internal/core/domain"
)

// errorResponse documents the error envelope rendered by the API error handler.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

// --- Auth ---

type registerRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
	Warning   string       `json:"warning,omitempty"`
}

type userResponse struct {
	User *domain.User `json:"user"`
}

type updateProfileRequest struct {
	Name      string `json:"name"       validate:"required"`
	RFC       string `json:"rfc"`
	LegalName string `json:"legal_name"`
	Address   string `json:"address"`
}

type changeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin customer"`
}

// --- Catalog ---

type productRequest struct {
	SKU         string          `json:"sku"`
	Name        string          `json:"name"        validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"       validate:"gte=0"`
	Stock       int             `json:"stock"       validate:"gte=0"`
	ImageURL    string          `json:"image_url"`
	Category    string          `json:"category"    validate:"required,oneof=SMART_JACKET ACCESSORY SUBSCRIPTION"`
}

type uploadResponse struct {
	URL string `json:"url"`
}

// --- Cart & checkout ---

type addItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity"   validate:"required,gt=0"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

type checkoutLineRequest struct {
	ProductID     int64            `json:"product_id"      validate:"required,gt=0"`
	Quantity      int              `json:"quantity"        validate:"required,gt=0"`
	ExpectedPrice *decimal.Decimal `json:"expected_price,omitempty"`
}

// checkoutRequest checks out the listed lines, or the cart when Lines is empty.
// The payment reference and expected total are only set by the PayPal
// capture flow.
type checkoutRequest struct {
	Lines []checkoutLineRequest `json:"lines" validate:"dive"`
}

type paymentOrderResponse struct {
	OrderID  string          `json:"order_id"`
	Status   string          `json:"status"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// --- Subscriptions ---

type purchaseSubscriptionRequest struct {
	Plan string `json:"plan" validate:"required,oneof=MONTHLY ANNUAL"`
}

type activeSubscriptionResponse struct {
	Active        bool        `json:"active"`
	Plan          domain.Plan `json:"plan,omitempty"`
	EndsAt        *time.Time  `json:"ends_at,omitempty"`
	DaysRemaining int         `json:"days_remaining"`
}

// --- Sales & invoices ---

type latestSaleResponse struct {
	Sale  *domain.Sale      `json:"sale"`
	Lines []domain.SaleLine `json:"lines"`
}

type invoiceRequest struct {
	SaleID    int64  `json:"sale_id,omitempty"`
	RFC       string `json:"rfc"        validate:"required"`
	LegalName string `json:"legal_name" validate:"required"`
	Address   string `json:"address"`
	CFDIUse   string `json:"cfdi_use"   validate:"required"`
}

// --- Routes ---

type recordRouteRequest struct {
	DistanceKm      float64 `json:"distance_km"      validate:"gt=0"`
	DurationSeconds int     `json:"duration_seconds" validate:"gt=0"`
}

// --- IoT ---

type valueReading struct {
	Value float64 `json:"value"`
}

type mpuReading struct {
	AccelX float64 `json:"accel_x"`
	AccelY float64 `json:"accel_y"`
	AccelZ float64 `json:"accel_z"`
	GyroX  float64 `json:"gyro_x"`
	GyroY  float64 `json:"gyro_y"`
	GyroZ  float64 `json:"gyro_z"`
}

type telemetryReadingRequest struct {
	DeviceID  string       `json:"device_id" validate:"required"`
	Timestamp time.Time    `json:"timestamp" validate:"required"`
	Distance  valueReading `json:"distance"`
	Light     valueReading `json:"light"`
	MPU       mpuReading   `json:"mpu"`
}
