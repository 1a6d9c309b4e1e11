package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bikerlight/store-api/internal/api/handler"
	"github.com/bikerlight/store-api/internal/api/middleware"
	"github.com/bikerlight/store-api/internal/core/domain"
	"github.com/bikerlight/store-api/internal/infrastructure/http/handlers"
)

const (
	testSecret    = "router-secret"
	testDeviceKey = "device-key"
)

type liveSessions struct{}

func (liveSessions) ValidateSession(context.Context, int64, string) error { return nil }

var (
	routerOnce sync.Once
	testRouter *echo.Echo
)

// router builds the Echo instance once; the Prometheus middleware registers
// its collectors globally.
func router(t *testing.T) *echo.Echo {
	t.Helper()
	routerOnce.Do(func() {
		testRouter = NewRouter(RouterConfig{
			JWTSecret: testSecret,
			DeviceKey: testDeviceKey,
			Sessions:  liveSessions{},
			Log:       zerolog.Nop(),
		}, Handlers{
			Auth:         handler.NewAuthHandler(nil),
			Catalog:      handler.NewCatalogHandler(nil),
			Cart:         handler.NewCartHandler(nil),
			Checkout:     handler.NewCheckoutHandler(nil),
			Payment:      handler.NewPaymentHandler(nil),
			Subscription: handler.NewSubscriptionHandler(nil),
			Sale:         handler.NewSaleHandler(nil),
			Invoice:      handler.NewInvoiceHandler(nil),
			Route:        handler.NewRouteHandler(nil),
			Report:       handler.NewReportHandler(nil),
			Telemetry:    handler.NewTelemetryHandler(nil, nil),
			Health:       handlers.NewHealthHandler(),
			Readiness:    handlers.NewHealthDependenciesHandler(map[string]handlers.Check{}),
		})
	})
	return testRouter
}

func bearer(t *testing.T, role string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "7",
		"role": role,
		"sid":  "sess",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return "Bearer " + tok
}

func serve(t *testing.T, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router(t).ServeHTTP(rec, req)
	return rec
}

func TestRouter_OperationalEndpoints(t *testing.T) {
	for _, path := range []string{"/health", "/health/ready", "/metrics"} {
		if rec := serve(t, http.MethodGet, path, "", nil); rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestRouter_UserRoutesRequireToken(t *testing.T) {
	routes := []struct{ method, path string }{
		{http.MethodGet, "/v1/cart"},
		{http.MethodPost, "/v1/checkout"},
		{http.MethodGet, "/v1/sales/latest"},
		{http.MethodPost, "/v1/invoices"},
		{http.MethodGet, "/v1/iot/report"},
		{http.MethodPost, "/auth/logout"},
	}
	for _, r := range routes {
		if rec := serve(t, r.method, r.path, "", nil); rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", r.method, r.path, rec.Code)
		}
	}
}

func TestRouter_UnknownV1PathIsNotFound(t *testing.T) {
	if rec := serve(t, http.MethodGet, "/v1/nope", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without token, got %d", rec.Code)
	}
	rec := serve(t, http.MethodGet, "/v1/nope", "", map[string]string{
		"Authorization": bearer(t, domain.RoleCustomer),
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 with token, got %d", rec.Code)
	}
}

func TestRouter_AdminRoutesRequireAdminRole(t *testing.T) {
	rec := serve(t, http.MethodGet, "/v1/admin/products", "", map[string]string{
		"Authorization": bearer(t, domain.RoleCustomer),
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	// An admin reaches the handler; the invalid body is rejected there.
	rec = serve(t, http.MethodPost, "/v1/admin/products", `{"name":""}`, map[string]string{
		"Authorization": bearer(t, domain.RoleAdmin),
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_ReadingsRequireDeviceKey(t *testing.T) {
	if rec := serve(t, http.MethodPost, "/v1/iot/readings", `{}`, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", rec.Code)
	}

	rec := serve(t, http.MethodPost, "/v1/iot/readings", `{}`, map[string]string{
		middleware.HeaderDeviceKey: testDeviceKey,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an empty reading, got %d", rec.Code)
	}
}

func TestRouter_ErrorEnvelope(t *testing.T) {
	rec := serve(t, http.MethodGet, "/v1/cart", "", nil)
	if !strings.Contains(rec.Body.String(), `"error"`) {
		t.Fatalf("expected JSON error envelope, got %s", rec.Body.String())
	}
}
