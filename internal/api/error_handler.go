package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bikerlight/store-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

// statusFor maps domain errors to HTTP codes. The first match wins, so the
// more specific errors come first.
var statusFor = []struct {
	err  error
	code int
}{
	// 400
	{domain.ErrValidation, http.StatusBadRequest},
	{domain.ErrEmptyCart, http.StatusBadRequest},
	{domain.ErrInvalidQuantity, http.StatusBadRequest},
	{domain.ErrInvalidProduct, http.StatusBadRequest},
	{domain.ErrInvalidPlan, http.StatusBadRequest},
	{domain.ErrInvalidRole, http.StatusBadRequest},
	{domain.ErrInvalidCFDIUse, http.StatusBadRequest},
	{domain.ErrInvalidRoute, http.StatusBadRequest},
	// 401
	{domain.ErrInvalidCredentials, http.StatusUnauthorized},
	{domain.ErrInvalidSession, http.StatusUnauthorized},
	// 402
	{domain.ErrPaymentNotCompleted, http.StatusPaymentRequired},
	// 403
	{domain.ErrForbidden, http.StatusForbidden},
	{domain.ErrActiveSession, http.StatusForbidden},
	// 404
	{domain.ErrUserNotFound, http.StatusNotFound},
	{domain.ErrProductNotFound, http.StatusNotFound},
	{domain.ErrCartItemNotFound, http.StatusNotFound},
	{domain.ErrSaleNotFound, http.StatusNotFound},
	{domain.ErrSubscriptionNotFound, http.StatusNotFound},
	{domain.ErrPlanProductNotDefined, http.StatusNotFound},
	{domain.ErrTelemetryNotFound, http.StatusNotFound},
	// 409
	{domain.ErrUserExists, http.StatusConflict},
	{domain.ErrInsufficientStock, http.StatusConflict},
	{domain.ErrPriceMismatch, http.StatusConflict},
	{domain.ErrProductInUse, http.StatusConflict},
	{domain.ErrDuplicatePayment, http.StatusConflict},
	{domain.ErrPaymentMismatch, http.StatusConflict},
	// 502
	{domain.ErrPaymentUnavailable, http.StatusBadGateway},
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// InsufficientStockError names the product.
	var stockErr *domain.InsufficientStockError
	if errors.As(err, &stockErr) {
		return http.StatusConflict, stockErr.Error()
	}

	for _, m := range statusFor {
		if errors.Is(err, m.err) {
			return m.code, publicMessage(err, m.err)
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	if errors.Is(err, domain.ErrTransactionAborted) {
		return http.StatusInternalServerError, domain.ErrTransactionAborted.Error()
	}
	return http.StatusInternalServerError, "internal server error"
}

// publicMessage keeps the detail of validation errors and otherwise returns
// the sentinel's text, so wrapped internals are not exposed.
func publicMessage(err, sentinel error) string {
	switch sentinel {
	case domain.ErrValidation, domain.ErrPriceMismatch, domain.ErrPaymentNotCompleted:
		return err.Error()
	}
	return sentinel.Error()
}
