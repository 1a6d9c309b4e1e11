package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bikerlight/store-api/internal/core/ports"
)

// ReadingEnqueuer hands readings to the asynchronous processing pipeline.
type ReadingEnqueuer interface {
	Enqueue(reading ports.TelemetryReadingInput) error
	EnqueueBatch(readings []ports.TelemetryReadingInput) error
}

type TelemetryHandler struct {
	queue   ReadingEnqueuer
	service ports.TelemetryService
}

func NewTelemetryHandler(queue ReadingEnqueuer, service ports.TelemetryService) *TelemetryHandler {
	return &TelemetryHandler{queue: queue, service: service}
}

// Ingest handles POST /v1/iot/readings.
//
// @Summary      Ingest a jacket reading
// @Tags         iot
// @Accept       json
// @Produce      json
// @Param        X-Device-Key  header    string                   true  "Device key"
// @Param        body          body      telemetryReadingRequest  true  "Sensor reading"
// @Success      202           {object}  messageResponse
// @Failure      400           {object}  errorResponse
// @Failure      401           {object}  errorResponse
// @Failure      503           {object}  errorResponse
// @Router       /v1/iot/readings [post]
func (h *TelemetryHandler) Ingest(c echo.Context) error {
	var req telemetryReadingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.queue.Enqueue(req.toInput()); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	return c.JSON(http.StatusAccepted, messageResponse{Message: "reading accepted"})
}

// IngestBatch handles POST /v1/iot/readings/batch.
//
// @Summary      Ingest a batch of jacket readings
// @Tags         iot
// @Accept       json
// @Produce      json
// @Param        X-Device-Key  header    string                     true  "Device key"
// @Param        body          body      []telemetryReadingRequest  true  "Sensor readings"
// @Success      202           {object}  messageResponse
// @Failure      400           {object}  errorResponse
// @Failure      401           {object}  errorResponse
// @Failure      503           {object}  errorResponse
// @Router       /v1/iot/readings/batch [post]
func (h *TelemetryHandler) IngestBatch(c echo.Context) error {
	var reqs []telemetryReadingRequest
	if err := c.Bind(&reqs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if len(reqs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "batch cannot be empty")
	}

	inputs := make([]ports.TelemetryReadingInput, 0, len(reqs))
	for i, req := range reqs {
		if err := c.Validate(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("reading[%d]: %s", i, err.Error()))
		}
		inputs = append(inputs, req.toInput())
	}

	if err := h.queue.EnqueueBatch(inputs); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	return c.JSON(http.StatusAccepted, messageResponse{Message: "readings accepted", Count: len(inputs)})
}

// Report handles GET /v1/iot/report?device=<id>.
//
// @Summary      Ride metrics from the latest jacket reading
// @Tags         iot
// @Produce      json
// @Security     BearerAuth
// @Param        device  query     string  false  "Device ID (defaults to the configured jacket)"
// @Success      200     {object}  domain.TelemetryReport
// @Failure      404     {object}  errorResponse
// @Router       /v1/iot/report [get]
func (h *TelemetryHandler) Report(c echo.Context) error {
	report, err := h.service.Report(c.Request().Context(), c.QueryParam("device"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

func (r telemetryReadingRequest) toInput() ports.TelemetryReadingInput {
	return ports.TelemetryReadingInput{
		DeviceID:   r.DeviceID,
		Timestamp:  r.Timestamp,
		DistanceKm: r.Distance.Value,
		Light:      r.Light.Value,
		Acceleration: ports.Vector3Input{
			X: r.MPU.AccelX,
			Y: r.MPU.AccelY,
			Z: r.MPU.AccelZ,
		},
		Gyroscope: ports.Vector3Input{
			X: r.MPU.GyroX,
			Y: r.MPU.GyroY,
			Z: r.MPU.GyroZ,
		},
	}
}
