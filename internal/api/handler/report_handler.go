package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bikerlight/store-api/internal/core/ports"
)

type ReportHandler struct {
	service ports.ReportService
}

func NewReportHandler(service ports.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// Detailed handles GET /v1/admin/reports.
//
// @Summary      Sales, subscription and ride aggregates
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.DetailedReport
// @Failure      403  {object}  errorResponse
// @Router       /v1/admin/reports [get]
func (h *ReportHandler) Detailed(c echo.Context) error {
	report, err := h.service.Detailed(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}
