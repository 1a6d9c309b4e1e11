package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bikerlight/store-api/internal/core/ports"
)

type CartHandler struct {
	service ports.CartService
}

func NewCartHandler(service ports.CartService) *CartHandler {
	return &CartHandler{service: service}
}

// Get handles GET /v1/cart.
//
// @Summary      Get the cart
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Cart
// @Failure      401  {object}  errorResponse
// @Router       /v1/cart [get]
func (h *CartHandler) Get(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	cart, err := h.service.Get(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cart)
}

// AddItem handles POST /v1/cart/items. Adding a product already in the
// cart increments its quantity.
//
// @Summary      Add a product to the cart
// @Tags         cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      addItemRequest  true  "Product and quantity"
// @Success      200   {object}  domain.Cart
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/cart/items [post]
func (h *CartHandler) AddItem(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req addItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	cart, err := h.service.Add(c.Request().Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cart)
}

// UpdateItem handles PUT /v1/cart/items/:product_id.
//
// @Summary      Set the quantity of a cart line
// @Tags         cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        product_id  path      int                true  "Product ID"
// @Param        body        body      updateItemRequest  true  "Quantity"
// @Success      200         {object}  domain.Cart
// @Failure      400         {object}  errorResponse
// @Failure      404         {object}  errorResponse
// @Failure      409         {object}  errorResponse
// @Router       /v1/cart/items/{product_id} [put]
func (h *CartHandler) UpdateItem(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	productID, err := pathID(c, "product_id")
	if err != nil {
		return err
	}
	var req updateItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	cart, err := h.service.Update(c.Request().Context(), userID, productID, req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cart)
}

// RemoveItem handles DELETE /v1/cart/items/:product_id.
//
// @Summary      Remove a cart line
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Param        product_id  path      int  true  "Product ID"
// @Success      200         {object}  domain.Cart
// @Failure      404         {object}  errorResponse
// @Router       /v1/cart/items/{product_id} [delete]
func (h *CartHandler) RemoveItem(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	productID, err := pathID(c, "product_id")
	if err != nil {
		return err
	}
	cart, err := h.service.Remove(c.Request().Context(), userID, productID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cart)
}
