package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bikerlight/store-api/internal/core/ports"
)

type PaymentHandler struct {
	service ports.PaymentService
}

func NewPaymentHandler(service ports.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// CreateOrder handles POST /v1/payments/paypal/orders.
//
// @Summary      Create a PayPal order for the cart total
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Success      201  {object}  paymentOrderResponse
// @Failure      400  {object}  errorResponse
// @Failure      502  {object}  errorResponse
// @Router       /v1/payments/paypal/orders [post]
func (h *PaymentHandler) CreateOrder(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	order, err := h.service.CreateOrder(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, paymentOrderResponse{
		OrderID:  order.ID,
		Status:   order.Status,
		Amount:   order.Amount,
		Currency: order.Currency,
	})
}

// CaptureOrder handles POST /v1/payments/paypal/orders/:order_id/capture.
// A completed capture checks out the cart with the order id as payment
// reference.
//
// @Summary      Capture an approved PayPal order
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        order_id  path      string  true  "PayPal order ID"
// @Success      201       {object}  domain.Sale
// @Failure      402       {object}  errorResponse
// @Failure      409       {object}  errorResponse
// @Failure      502       {object}  errorResponse
// @Router       /v1/payments/paypal/orders/{order_id}/capture [post]
func (h *PaymentHandler) CaptureOrder(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	orderID := strings.TrimSpace(c.Param("order_id"))
	if orderID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order_id")
	}
	sale, err := h.service.CaptureOrder(c.Request().Context(), userID, orderID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, sale)
}
