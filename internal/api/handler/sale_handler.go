package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bikerlight/store-api/internal/core/domain"
	"github.com/bikerlight/store-api/internal/core/ports"
)

type SaleHandler struct {
	service ports.SaleService
}

func NewSaleHandler(service ports.SaleService) *SaleHandler {
	return &SaleHandler{service: service}
}

// History handles GET /v1/sales.
//
// @Summary      Purchase history, newest first
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Sale
// @Router       /v1/sales [get]
func (h *SaleHandler) History(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	sales, err := h.service.History(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	if sales == nil {
		sales = []*domain.Sale{}
	}
	return c.JSON(http.StatusOK, sales)
}

// Latest handles GET /v1/sales/latest. A user without purchases gets a null
// sale and no lines.
//
// @Summary      Most recent purchase with its lines
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  latestSaleResponse
// @Router       /v1/sales/latest [get]
func (h *SaleHandler) Latest(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	sale, err := h.service.Latest(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	resp := latestSaleResponse{Lines: []domain.SaleLine{}}
	if sale != nil {
		resp.Sale = sale
		if len(sale.Lines) > 0 {
			resp.Lines = sale.Lines
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// Detail handles GET /v1/sales/:id. Customers only see their own sales.
//
// @Summary      Sale with its lines
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Sale ID"
// @Success      200  {object}  domain.Sale
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/sales/{id} [get]
func (h *SaleHandler) Detail(c echo.Context) error {
	userID, role, err := ctxUser(c)
	if err != nil {
		return err
	}
	saleID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	sale, err := h.service.Detail(c.Request().Context(), userID, role, saleID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sale)
}
