package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bikerlight/store-api/internal/core/domain"
	"github.com/bikerlight/store-api/internal/core/ports"
)

type RouteHandler struct {
	service ports.RouteService
}

func NewRouteHandler(service ports.RouteService) *RouteHandler {
	return &RouteHandler{service: service}
}

// Record handles POST /v1/routes.
//
// @Summary      Record a ride
// @Tags         routes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      recordRouteRequest  true  "Distance and duration"
// @Success      201   {object}  domain.Route
// @Failure      400   {object}  errorResponse
// @Router       /v1/routes [post]
func (h *RouteHandler) Record(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req recordRouteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	route, err := h.service.Record(c.Request().Context(), userID, req.DistanceKm, req.DurationSeconds)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, route)
}

// List handles GET /v1/routes.
//
// @Summary      Rides recorded by the user
// @Tags         routes
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Route
// @Router       /v1/routes [get]
func (h *RouteHandler) List(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	routes, err := h.service.List(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	if routes == nil {
		routes = []*domain.Route{}
	}
	return c.JSON(http.StatusOK, routes)
}
