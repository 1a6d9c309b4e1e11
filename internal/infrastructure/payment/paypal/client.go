// Package paypal is a minimal PayPal REST v2 client for creating and
// capturing checkout orders.
package paypal

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"

	"github.com/bikerlight/store-api/internal/api/metrics"
	"github.com/bikerlight/store-api/internal/core/domain"
	"github.com/bikerlight/store-api/internal/core/ports"
)

const (
	defaultTimeout  = 15 * time.Second
	defaultCurrency = "MXN"
	// tokenLeeway renews the token slightly before PayPal expires it.
	tokenLeeway = time.Minute
)

// Config captures the credentials and endpoint of the PayPal account.
type Config struct {
	ClientID string
	Secret   string
	BaseURL  string
	Currency string
	Timeout  time.Duration
}

// Client implements ports.PaymentGateway. Every request goes through a
// circuit breaker; server errors and network failures count against it,
// client errors do not.
type Client struct {
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	log     zerolog.Logger
	now     func() time.Time

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

var _ ports.PaymentGateway = (*Client)(nil)

// apiError is a non-2xx response from PayPal.
type apiError struct {
	Status int
	Body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("paypal: status %d: %s", e.Status, e.Body)
}

func NewClient(cfg Config, log zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Currency == "" {
		cfg.Currency = defaultCurrency
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "paypal",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			var apiErr *apiError
			return err == nil || (errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: breaker,
		log:     log,
		now:     time.Now,
	}
}

type amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type purchaseUnit struct {
	ReferenceID string  `json:"reference_id,omitempty"`
	Amount      *amount `json:"amount,omitempty"`
	Payments    *struct {
		Captures []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
			Amount amount `json:"amount"`
		} `json:"captures"`
	} `json:"payments,omitempty"`
}

type orderRequest struct {
	Intent        string         `json:"intent"`
	PurchaseUnits []purchaseUnit `json:"purchase_units"`
}

type orderResponse struct {
	ID            string         `json:"id"`
	Status        string         `json:"status"`
	PurchaseUnits []purchaseUnit `json:"purchase_units"`
}

// CreateOrder opens a CAPTURE-intent order for amount.
func (c *Client) CreateOrder(ctx context.Context, total decimal.Decimal, reference string) (*ports.PaymentOrder, error) {
	body, err := json.Marshal(orderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnit{{
			ReferenceID: reference,
			Amount:      &amount{CurrencyCode: c.cfg.Currency, Value: total.StringFixed(2)},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("paypal create order: %w", err)
	}

	raw, err := c.authorized(ctx, "create_order", http.MethodPost, "/v2/checkout/orders", body)
	if err != nil {
		return nil, err
	}

	var resp orderResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("paypal create order: decode: %w", err)
	}
	return &ports.PaymentOrder{
		ID:       resp.ID,
		Status:   resp.Status,
		Amount:   total,
		Currency: c.cfg.Currency,
	}, nil
}

// CaptureOrder captures an order the buyer approved. An order that cannot be
// captured (not approved, already captured) is domain.ErrPaymentNotCompleted.
func (c *Client) CaptureOrder(ctx context.Context, orderID string) (*ports.PaymentCapture, error) {
	path := "/v2/checkout/orders/" + url.PathEscape(orderID) + "/capture"
	raw, err := c.authorized(ctx, "capture_order", http.MethodPost, path, []byte("{}"))
	if err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnprocessableEntity {
			return nil, fmt.Errorf("%w: %s", domain.ErrPaymentNotCompleted, apiErr.Body)
		}
		return nil, err
	}

	var resp orderResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("paypal capture order: decode: %w", err)
	}

	out := &ports.PaymentCapture{OrderID: resp.ID, Status: resp.Status}
	for _, pu := range resp.PurchaseUnits {
		if pu.Payments == nil || len(pu.Payments.Captures) == 0 {
			continue
		}
		capture := pu.Payments.Captures[0]
		value, err := decimal.NewFromString(capture.Amount.Value)
		if err != nil {
			return nil, fmt.Errorf("paypal capture order: amount %q: %w", capture.Amount.Value, err)
		}
		out.CaptureID = capture.ID
		out.Amount = value
		out.Currency = capture.Amount.CurrencyCode
		break
	}
	if out.CaptureID == "" && out.Status == "COMPLETED" {
		return nil, fmt.Errorf("paypal capture order: completed without a capture")
	}
	return out, nil
}

// authorized performs an API call with a bearer token, refreshing the token
// once when PayPal rejects it.
func (c *Client) authorized(ctx context.Context, op, method, path string, body []byte) ([]byte, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := c.call(ctx, op, method, path, body, "Bearer "+token, "application/json")
	var apiErr *apiError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		c.resetToken()
		if token, err = c.accessToken(ctx); err != nil {
			return nil, err
		}
		raw, err = c.call(ctx, op, method, path, body, "Bearer "+token, "application/json")
	}
	return raw, err
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}.Encode()
	raw, err := c.call(ctx, "token", http.MethodPost, "/v1/oauth2/token", []byte(form), basicAuth(c.cfg.ClientID, c.cfg.Secret), "application/x-www-form-urlencoded")
	if err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("%w: authentication failed: %v", domain.ErrPaymentUnavailable, err)
		}
		return "", err
	}

	var resp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("paypal token: decode: %w", err)
	}

	c.token = resp.AccessToken
	c.tokenExpiry = c.now().Add(time.Duration(resp.ExpiresIn)*time.Second - tokenLeeway)
	return c.token, nil
}

func (c *Client) resetToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// call sends one request through the circuit breaker. Open-circuit and
// transport failures come back wrapped in domain.ErrPaymentUnavailable.
func (c *Client) call(ctx context.Context, op, method, path string, body []byte, authorization, contentType string) ([]byte, error) {
	raw, err := c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", authorization)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusMultipleChoices {
			return nil, &apiError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
		}
		return data, nil
	})

	switch {
	case err == nil:
		metrics.PaymentRequestsTotal.WithLabelValues(op, "success").Inc()
		return raw, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.PaymentRequestsTotal.WithLabelValues(op, "circuit_open").Inc()
		return nil, fmt.Errorf("%w: %v", domain.ErrPaymentUnavailable, err)
	}

	metrics.PaymentRequestsTotal.WithLabelValues(op, "error").Inc()
	c.log.Error().Err(err).Str("operation", op).Msg("paypal request failed")

	var apiErr *apiError
	if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
		return nil, err
	}
	return nil, fmt.Errorf("%w: %v", domain.ErrPaymentUnavailable, err)
}

func basicAuth(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}
