package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/daybook/core/internal/application/services"
	"github.com/daybook/core/internal/infrastructure/logger"
	"github.com/daybook/core/internal/ports"
)

// DayLogHandler handles day-view requests.
type DayLogHandler struct {
	dayLogService *services.DayLogService
	logger        *logger.Logger
}

// NewDayLogHandler creates a new day log handler.
func NewDayLogHandler(dayLogService *services.DayLogService, appLogger *logger.Logger) *DayLogHandler {
	return &DayLogHandler{
		dayLogService: dayLogService,
		logger:        appLogger,
	}
}

// GetDay returns the log for one date with its tasks, creating the log
// on first reference.
func (h *DayLogHandler) GetDay(c echo.Context) error {
	day, err := h.dayLogService.GetDay(c.Request().Context(), c.Param("date"))
	if err != nil {
		h.logger.Errorw("Get day failed", "error", err, "date", c.Param("date"))
		return echo.NewHTTPError(domainErrorStatus(err), err.Error())
	}

	return c.JSON(http.StatusOK, day)
}

// UpdateDayNotes replaces a day's notes.
func (h *DayLogHandler) UpdateDayNotes(c echo.Context) error {
	var req ports.UpdateDayNotesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	day, err := h.dayLogService.UpdateDayNotes(c.Request().Context(), c.Param("date"), req.Notes)
	if err != nil {
		h.logger.Errorw("Update day notes failed", "error", err, "date", c.Param("date"))
		return echo.NewHTTPError(domainErrorStatus(err), err.Error())
	}

	return c.JSON(http.StatusOK, day)
}

// ListDays returns the logs between ?from= and ?to=, inclusive.
func (h *DayLogHandler) ListDays(c echo.Context) error {
	from := c.QueryParam("from")
	to := c.QueryParam("to")
	if from == "" || to == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Query parameters 'from' and 'to' are required")
	}

	days, err := h.dayLogService.ListDays(c.Request().Context(), from, to)
	if err != nil {
		return echo.NewHTTPError(domainErrorStatus(err), err.Error())
	}

	return c.JSON(http.StatusOK, days)
}
