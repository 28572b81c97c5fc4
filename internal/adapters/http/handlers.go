package http

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/daybook/core/internal/application/services"
	"github.com/daybook/core/internal/domain/entities"
	"github.com/daybook/core/internal/infrastructure/logger"
	"github.com/daybook/core/internal/ports"
)

// MessageResponse is a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// AuthHandler handles authentication requests.
type AuthHandler struct {
	authService *services.AuthService
	logger      *logger.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService *services.AuthService, appLogger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      appLogger,
	}
}

// Login handles owner login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req ports.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	response, err := h.authService.Login(c.Request().Context(), req)
	if err != nil {
		h.logger.Errorw("Login failed", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	return c.JSON(http.StatusOK, response)
}

// parseTaskID extracts a task id path parameter.
func parseTaskID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid task id")
	}
	return id, nil
}

// domainErrorStatus maps domain errors to HTTP statuses.
func domainErrorStatus(err error) int {
	switch {
	case errors.Is(err, entities.ErrTaskNotFound), errors.Is(err, entities.ErrDayLogNotFound):
		return http.StatusNotFound
	case errors.Is(err, entities.ErrRecurringAnchorConflict),
		errors.Is(err, entities.ErrRuleRequired),
		errors.Is(err, entities.ErrRuleNotAllowed),
		errors.Is(err, entities.ErrRuleDecode),
		errors.Is(err, entities.ErrInvalidStatus),
		errors.Is(err, entities.ErrNameRequired):
		return http.StatusBadRequest
	case errors.Is(err, entities.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
