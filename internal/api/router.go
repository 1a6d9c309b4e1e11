package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/bikerlight/store-api/docs"
	"github.com/bikerlight/store-api/internal/api/handler"
	"github.com/bikerlight/store-api/internal/api/middleware"
	"github.com/bikerlight/store-api/internal/core/domain"
	"github.com/bikerlight/store-api/internal/infrastructure/http/handlers"
	"github.com/bikerlight/store-api/internal/infrastructure/storage"
)

// Handlers groups every HTTP handler mounted by NewRouter.
type Handlers struct {
	Auth         *handler.AuthHandler
	Catalog      *handler.CatalogHandler
	Cart         *handler.CartHandler
	Checkout     *handler.CheckoutHandler
	Payment      *handler.PaymentHandler
	Subscription *handler.SubscriptionHandler
	Sale         *handler.SaleHandler
	Invoice      *handler.InvoiceHandler
	Route        *handler.RouteHandler
	Report       *handler.ReportHandler
	Telemetry    *handler.TelemetryHandler
	Health       *handlers.HealthHandler
	Readiness    *handlers.HealthDependenciesHandler
}

// RouterConfig carries the settings the middleware chain needs.
type RouterConfig struct {
	JWTSecret string
	DeviceKey string
	Sessions  middleware.SessionValidator
	// UploadDir is served under /uploads/ when set (local image store).
	UploadDir string
	Log       zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(cfg.Log))
	e.Use(echoprometheus.NewMiddleware("bikerlight_http"))

	// --- Operational endpoints (no auth required) ---
	e.GET("/health", h.Health.Liveness)
	e.GET("/health/ready", h.Readiness.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	if cfg.UploadDir != "" {
		e.Static(storage.LocalPublicPrefix, cfg.UploadDir)
	}

	authMiddleware := middleware.Auth(cfg.JWTSecret, cfg.Sessions)

	// --- Auth ---
	e.POST("/auth/register", h.Auth.Register)
	e.POST("/auth/login", h.Auth.Login)
	e.POST("/auth/logout", h.Auth.Logout, authMiddleware)

	v1 := e.Group("/v1")

	// --- Public catalog ---
	v1.GET("/products/jackets", h.Catalog.ListJackets)
	v1.GET("/products/:id", h.Catalog.GetProduct)
	v1.GET("/subscriptions/plans", h.Catalog.ListPlans)

	// --- Jacket telemetry ingestion (device key) ---
	iot := v1.Group("/iot/readings", middleware.DeviceKey(cfg.DeviceKey))
	iot.POST("", h.Telemetry.Ingest)
	iot.POST("/batch", h.Telemetry.IngestBatch)

	// --- Authenticated customer routes ---
	// Auth is attached per route; a "" group with middleware would answer
	// unknown /v1 paths with 401 instead of 404.
	v1.GET("/profile", h.Auth.Profile, authMiddleware)
	v1.PUT("/profile", h.Auth.UpdateProfile, authMiddleware)

	v1.GET("/cart", h.Cart.Get, authMiddleware)
	v1.POST("/cart/items", h.Cart.AddItem, authMiddleware)
	v1.PUT("/cart/items/:product_id", h.Cart.UpdateItem, authMiddleware)
	v1.DELETE("/cart/items/:product_id", h.Cart.RemoveItem, authMiddleware)

	v1.POST("/checkout", h.Checkout.Checkout, authMiddleware)
	v1.POST("/payments/paypal/orders", h.Payment.CreateOrder, authMiddleware)
	v1.POST("/payments/paypal/orders/:order_id/capture", h.Payment.CaptureOrder, authMiddleware)

	v1.POST("/subscriptions", h.Subscription.Purchase, authMiddleware)
	v1.GET("/subscriptions/active", h.Subscription.Active, authMiddleware)
	v1.GET("/subscriptions/status", h.Subscription.Status, authMiddleware)

	v1.GET("/sales", h.Sale.History, authMiddleware)
	v1.GET("/sales/latest", h.Sale.Latest, authMiddleware)
	v1.GET("/sales/:id", h.Sale.Detail, authMiddleware)
	v1.POST("/invoices", h.Invoice.Generate, authMiddleware)

	v1.POST("/routes", h.Route.Record, authMiddleware)
	v1.GET("/routes", h.Route.List, authMiddleware)
	v1.GET("/iot/report", h.Telemetry.Report, authMiddleware)

	// --- Admin back-office ---
	admin := v1.Group("/admin", authMiddleware, middleware.RBAC(domain.RoleAdmin))

	admin.GET("/products", h.Catalog.ListProducts)
	admin.POST("/products", h.Catalog.CreateProduct)
	admin.GET("/products/stock-alerts", h.Catalog.StockAlerts)
	admin.PUT("/products/:id", h.Catalog.UpdateProduct)
	admin.DELETE("/products/:id", h.Catalog.DeleteProduct)
	admin.POST("/uploads", h.Catalog.UploadImage)

	admin.GET("/users", h.Auth.ListUsers)
	admin.POST("/users", h.Auth.RegisterAdmin)
	admin.PUT("/users/:id/role", h.Auth.ChangeRole)

	admin.GET("/reports", h.Report.Detailed)

	return e
}
