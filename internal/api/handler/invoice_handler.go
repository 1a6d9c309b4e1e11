package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bikerlight/store-api/internal/core/domain"
	"github.com/bikerlight/store-api/internal/core/ports"
)

type InvoiceHandler struct {
	service ports.InvoiceService
}

func NewInvoiceHandler(service ports.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{service: service}
}

// Generate handles POST /v1/invoices and streams the PDF back.
//
// @Summary      Generate an invoice PDF for a sale
// @Tags         invoices
// @Accept       json
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        body  body      invoiceRequest  true  "Sale (0 for the latest) and billing data"
// @Success      200   {file}    binary
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/invoices [post]
func (h *InvoiceHandler) Generate(c echo.Context) error {
	userID, role, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req invoiceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	doc, err := h.service.Generate(c.Request().Context(), ports.InvoiceInput{
		UserID: userID,
		Role:   role,
		SaleID: req.SaleID,
		Billing: domain.Billing{
			RFC:       req.RFC,
			LegalName: req.LegalName,
			Address:   req.Address,
		},
		CFDIUse: req.CFDIUse,
	})
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", doc.Filename))
	return c.Blob(http.StatusOK, doc.ContentType, doc.Content)
}
