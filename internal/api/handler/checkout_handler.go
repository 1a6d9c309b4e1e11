package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bikerlight/store-api/internal/core/ports"
)

type CheckoutHandler struct {
	service ports.CheckoutService
}

func NewCheckoutHandler(service ports.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

// Checkout handles POST /v1/checkout. The sale, its lines and the stock
// decrements commit together or not at all.
//
// @Summary      Check out the cart or an explicit list of lines
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      checkoutRequest  true  "Lines to buy (empty buys the cart)"
// @Success      201   {object}  domain.Sale
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /v1/checkout [post]
func (h *CheckoutHandler) Checkout(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req checkoutRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	sale, err := h.service.Checkout(c.Request().Context(), req.toInput(userID))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, sale)
}

func (r checkoutRequest) toInput(userID int64) ports.CheckoutInput {
	in := ports.CheckoutInput{UserID: userID}
	for _, l := range r.Lines {
		in.Lines = append(in.Lines, ports.CheckoutLine{
			ProductID:     l.ProductID,
			Quantity:      l.Quantity,
			ExpectedPrice: l.ExpectedPrice,
		})
	}
	return in
}
