package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/daybook/core/internal/application/services"
	"github.com/daybook/core/internal/infrastructure/logger"
)

// MaintenanceHandler exposes the background processors for manual runs.
// The scheduler triggers the same services on its own; these endpoints
// exist so a client can force a refresh without waiting for the next tick.
type MaintenanceHandler struct {
	recurrence *services.RecurrenceService
	anchors    *services.AnchorService
	logger     *logger.Logger
}

// NewMaintenanceHandler creates a new maintenance handler.
func NewMaintenanceHandler(
	recurrence *services.RecurrenceService,
	anchors *services.AnchorService,
	appLogger *logger.Logger,
) *MaintenanceHandler {
	return &MaintenanceHandler{
		recurrence: recurrence,
		anchors:    anchors,
		logger:     appLogger,
	}
}

// Generate runs the recurrence generator over the configured horizon.
func (h *MaintenanceHandler) Generate(c echo.Context) error {
	result, err := h.recurrence.Generate(c.Request().Context(), time.Now())
	if err != nil {
		h.logger.Errorw("Manual generator run failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, result)
}

// Rollover runs the anchor carry-forward processor for today.
func (h *MaintenanceHandler) Rollover(c echo.Context) error {
	result, err := h.anchors.CarryForward(c.Request().Context(), time.Now())
	if err != nil {
		h.logger.Errorw("Manual rollover run failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, result)
}
