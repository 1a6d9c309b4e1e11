package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bikerlight/store-api/internal/core/domain"
	"github.com/bikerlight/store-api/internal/core/ports"
)

type SubscriptionHandler struct {
	service ports.SubscriptionService
}

func NewSubscriptionHandler(service ports.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{service: service}
}

// Purchase handles POST /v1/subscriptions. Buying while a period is active
// extends it from its current end.
//
// @Summary      Purchase a subscription period
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      purchaseSubscriptionRequest  true  "Plan"
// @Success      201   {object}  domain.Subscription
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/subscriptions [post]
func (h *SubscriptionHandler) Purchase(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req purchaseSubscriptionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	sub, err := h.service.Purchase(c.Request().Context(), userID, domain.Plan(req.Plan))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, sub)
}

// Active handles GET /v1/subscriptions/active.
//
// @Summary      Current subscription window
// @Tags         subscriptions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  activeSubscriptionResponse
// @Router       /v1/subscriptions/active [get]
func (h *SubscriptionHandler) Active(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	active, err := h.service.Active(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, activeSubscriptionResponse{
		Active:        active.Active,
		Plan:          active.Plan,
		EndsAt:        active.EndsAt,
		DaysRemaining: active.DaysRemaining,
	})
}

// Status handles GET /v1/subscriptions/status.
//
// @Summary      Jacket and subscription status for the app
// @Tags         subscriptions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.SubscriptionStatus
// @Router       /v1/subscriptions/status [get]
func (h *SubscriptionHandler) Status(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	status, err := h.service.Status(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, status)
}
