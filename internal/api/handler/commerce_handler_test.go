package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bikerlight/store-api/internal/core/domain"
	"github.com/bikerlight/store-api/internal/core/ports"
)

// ---- cart ----

type stubCartService struct {
	calls []string
	err   error
}

func (s *stubCartService) cart(userID int64) *domain.Cart {
	return domain.NewCart(userID, []domain.CartLine{{ProductID: 1, Quantity: 2, Subtotal: decimal.NewFromInt(20)}})
}

func (s *stubCartService) Get(_ context.Context, userID int64) (*domain.Cart, error) {
	s.calls = append(s.calls, "get")
	return s.cart(userID), s.err
}

func (s *stubCartService) Add(_ context.Context, userID, productID int64, qty int) (*domain.Cart, error) {
	s.calls = append(s.calls, "add")
	if s.err != nil {
		return nil, s.err
	}
	return s.cart(userID), nil
}

func (s *stubCartService) Update(_ context.Context, userID, productID int64, qty int) (*domain.Cart, error) {
	s.calls = append(s.calls, "update")
	if s.err != nil {
		return nil, s.err
	}
	return s.cart(userID), nil
}

func (s *stubCartService) Remove(_ context.Context, userID, productID int64) (*domain.Cart, error) {
	s.calls = append(s.calls, "remove")
	if s.err != nil {
		return nil, s.err
	}
	return s.cart(userID), nil
}

func TestCartHandler_AddItem(t *testing.T) {
	stub := &stubCartService{}
	handler := NewCartHandler(stub)

	c, rec := newTestContext(http.MethodPost, "/v1/cart/items", strings.NewReader(`{"product_id":1,"quantity":2}`), 3, domain.RoleCustomer)
	if err := handler.AddItem(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var cart domain.Cart
	if err := json.Unmarshal(rec.Body.Bytes(), &cart); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if cart.UserID != 3 || !cart.Total.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("unexpected cart: %+v", cart)
	}
}

func TestCartHandler_AddItem_ZeroQuantity(t *testing.T) {
	stub := &stubCartService{}
	handler := NewCartHandler(stub)

	c, _ := newTestContext(http.MethodPost, "/v1/cart/items", strings.NewReader(`{"product_id":1,"quantity":0}`), 3, domain.RoleCustomer)
	requireHTTPError(t, handler.AddItem(c), http.StatusBadRequest)
	if len(stub.calls) != 0 {
		t.Fatalf("service must not be called, got %v", stub.calls)
	}
}

func TestCartHandler_RemoveItem_NotInCart(t *testing.T) {
	handler := NewCartHandler(&stubCartService{err: domain.ErrCartItemNotFound})

	c, _ := newTestContext(http.MethodDelete, "/v1/cart/items/8", nil, 3, domain.RoleCustomer)
	c.SetParamNames("product_id")
	c.SetParamValues("8")

	if err := handler.RemoveItem(c); !errors.Is(err, domain.ErrCartItemNotFound) {
		t.Fatalf("expected ErrCartItemNotFound, got %v", err)
	}
}

func TestCartHandler_RequiresAuthentication(t *testing.T) {
	handler := NewCartHandler(&stubCartService{})

	c, _ := newTestContext(http.MethodGet, "/v1/cart", nil, 0, "")
	requireHTTPError(t, handler.Get(c), http.StatusUnauthorized)
}

// ---- checkout ----

type stubCheckoutService struct {
	got ports.CheckoutInput
	err error
}

func (s *stubCheckoutService) Checkout(_ context.Context, in ports.CheckoutInput) (*domain.Sale, error) {
	s.got = in
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Sale{ID: 11, UserID: in.UserID, Total: decimal.NewFromInt(40)}, nil
}

func TestCheckoutHandler_MapsLines(t *testing.T) {
	stub := &stubCheckoutService{}
	handler := NewCheckoutHandler(stub)

	body := strings.NewReader(`{"lines":[{"product_id":1,"quantity":2,"expected_price":"10.00"},{"product_id":2,"quantity":1}]}`)
	c, rec := newTestContext(http.MethodPost, "/v1/checkout", body, 4, domain.RoleCustomer)

	if err := handler.Checkout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	in := stub.got
	if in.UserID != 4 || len(in.Lines) != 2 {
		t.Fatalf("unexpected input: %+v", in)
	}
	if in.Lines[0].ExpectedPrice == nil || !in.Lines[0].ExpectedPrice.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected price not forwarded: %+v", in.Lines[0])
	}
	if in.Lines[1].ExpectedPrice != nil {
		t.Fatalf("absent expected price must stay nil")
	}
}

func TestCheckoutHandler_IgnoresClientPaymentFields(t *testing.T) {
	stub := &stubCheckoutService{}
	handler := NewCheckoutHandler(stub)

	body := strings.NewReader(`{"lines":[{"product_id":1,"quantity":1}],"payment_ref":"CAPTURE-1","expected_total":"1"}`)
	c, _ := newTestContext(http.MethodPost, "/v1/checkout", body, 4, domain.RoleCustomer)

	if err := handler.Checkout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.got.PaymentRef != "" {
		t.Fatalf("payment ref must only come from a capture, got %q", stub.got.PaymentRef)
	}
	if stub.got.ExpectedTotal != nil {
		t.Fatalf("expected total must only come from a capture, got %s", stub.got.ExpectedTotal)
	}
}

func TestCheckoutHandler_EmptyBodyChecksOutCart(t *testing.T) {
	stub := &stubCheckoutService{}
	handler := NewCheckoutHandler(stub)

	c, _ := newTestContext(http.MethodPost, "/v1/checkout", strings.NewReader(`{}`), 4, domain.RoleCustomer)
	if err := handler.Checkout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if len(stub.got.Lines) != 0 {
		t.Fatalf("expected cart checkout, got lines %+v", stub.got.Lines)
	}
}

func TestCheckoutHandler_InvalidLine(t *testing.T) {
	handler := NewCheckoutHandler(&stubCheckoutService{})

	c, _ := newTestContext(http.MethodPost, "/v1/checkout", strings.NewReader(`{"lines":[{"product_id":1,"quantity":0}]}`), 4, domain.RoleCustomer)
	requireHTTPError(t, handler.Checkout(c), http.StatusBadRequest)
}

func TestCheckoutHandler_InsufficientStock(t *testing.T) {
	stockErr := &domain.InsufficientStockError{ProductID: 2, Name: "Helmet", Requested: 3, Available: 1}
	handler := NewCheckoutHandler(&stubCheckoutService{err: stockErr})

	c, _ := newTestContext(http.MethodPost, "/v1/checkout", strings.NewReader(`{}`), 4, domain.RoleCustomer)
	err := handler.Checkout(c)
	var got *domain.InsufficientStockError
	if !errors.As(err, &got) || got.Name != "Helmet" {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
}

// ---- payments ----

type stubPaymentService struct {
	captured string
	err      error
}

func (s *stubPaymentService) CreateOrder(context.Context, int64) (*ports.PaymentOrder, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &ports.PaymentOrder{ID: "ORDER-1", Status: "CREATED", Amount: decimal.RequireFromString("40.00"), Currency: "MXN"}, nil
}

func (s *stubPaymentService) CaptureOrder(_ context.Context, userID int64, orderID string) (*domain.Sale, error) {
	s.captured = orderID
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Sale{ID: 1, UserID: userID, PaymentRef: orderID}, nil
}

func TestPaymentHandler_CreateOrder(t *testing.T) {
	handler := NewPaymentHandler(&stubPaymentService{})

	c, rec := newTestContext(http.MethodPost, "/v1/payments/paypal/orders", nil, 2, domain.RoleCustomer)
	if err := handler.CreateOrder(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var resp paymentOrderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.OrderID != "ORDER-1" || resp.Currency != "MXN" {
		t.Fatalf("unexpected order: %+v", resp)
	}
}

func TestPaymentHandler_CaptureOrder(t *testing.T) {
	stub := &stubPaymentService{}
	handler := NewPaymentHandler(stub)

	c, rec := newTestContext(http.MethodPost, "/", nil, 2, domain.RoleCustomer)
	c.SetParamNames("order_id")
	c.SetParamValues("ORDER-1")

	if err := handler.CaptureOrder(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated || stub.captured != "ORDER-1" {
		t.Fatalf("expected capture of ORDER-1 with 201, got %d / %q", rec.Code, stub.captured)
	}
}

func TestPaymentHandler_CaptureOrder_NotCompleted(t *testing.T) {
	handler := NewPaymentHandler(&stubPaymentService{err: domain.ErrPaymentNotCompleted})

	c, _ := newTestContext(http.MethodPost, "/", nil, 2, domain.RoleCustomer)
	c.SetParamNames("order_id")
	c.SetParamValues("ORDER-1")

	if err := handler.CaptureOrder(c); !errors.Is(err, domain.ErrPaymentNotCompleted) {
		t.Fatalf("expected ErrPaymentNotCompleted, got %v", err)
	}
}

// ---- subscriptions ----

type stubSubscriptionService struct {
	plan   domain.Plan
	active *ports.ActiveSubscription
}

func (s *stubSubscriptionService) Purchase(_ context.Context, userID int64, plan domain.Plan) (*domain.Subscription, error) {
	s.plan = plan
	return &domain.Subscription{ID: 1, UserID: userID, Plan: plan}, nil
}

func (s *stubSubscriptionService) Active(context.Context, int64) (*ports.ActiveSubscription, error) {
	return s.active, nil
}

func (s *stubSubscriptionService) Status(context.Context, int64) (*domain.SubscriptionStatus, error) {
	return &domain.SubscriptionStatus{HasPurchasedJacket: false, Message: domain.MsgBuyFirstJacket}, nil
}

func TestSubscriptionHandler_Purchase(t *testing.T) {
	stub := &stubSubscriptionService{}
	handler := NewSubscriptionHandler(stub)

	c, rec := newTestContext(http.MethodPost, "/v1/subscriptions", strings.NewReader(`{"plan":"ANNUAL"}`), 6, domain.RoleCustomer)
	if err := handler.Purchase(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated || stub.plan != domain.PlanAnnual {
		t.Fatalf("expected ANNUAL purchase with 201, got %d / %s", rec.Code, stub.plan)
	}
}

func TestSubscriptionHandler_Purchase_UnknownPlan(t *testing.T) {
	handler := NewSubscriptionHandler(&stubSubscriptionService{})

	c, _ := newTestContext(http.MethodPost, "/v1/subscriptions", strings.NewReader(`{"plan":"WEEKLY"}`), 6, domain.RoleCustomer)
	requireHTTPError(t, handler.Purchase(c), http.StatusBadRequest)
}

func TestSubscriptionHandler_Active(t *testing.T) {
	ends := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	handler := NewSubscriptionHandler(&stubSubscriptionService{
		active: &ports.ActiveSubscription{Active: true, Plan: domain.PlanMonthly, EndsAt: &ends, DaysRemaining: 12},
	})

	c, rec := newTestContext(http.MethodGet, "/v1/subscriptions/active", nil, 6, domain.RoleCustomer)
	if err := handler.Active(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp activeSubscriptionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !resp.Active || resp.DaysRemaining != 12 || resp.EndsAt == nil || !resp.EndsAt.Equal(ends) {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestSubscriptionHandler_Status(t *testing.T) {
	handler := NewSubscriptionHandler(&stubSubscriptionService{})

	c, rec := newTestContext(http.MethodGet, "/v1/subscriptions/status", nil, 6, domain.RoleCustomer)
	if err := handler.Status(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp domain.SubscriptionStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Message != domain.MsgBuyFirstJacket {
		t.Fatalf("unexpected message %q", resp.Message)
	}
}
