package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/daybook/core/internal/application/services"
	"github.com/daybook/core/internal/domain/entities"
	"github.com/daybook/core/internal/infrastructure/logger"
	"github.com/daybook/core/internal/ports"
)

// TaskHandler handles task-related requests.
type TaskHandler struct {
	taskService *services.TaskService
	logger      *logger.Logger
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(taskService *services.TaskService, appLogger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      appLogger,
	}
}

// CreateTask handles task creation.
func (h *TaskHandler) CreateTask(c echo.Context) error {
	var req ports.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), req)
	if err != nil {
		h.logger.Errorw("Create task failed", "error", err)
		return echo.NewHTTPError(domainErrorStatus(err), err.Error())
	}

	return c.JSON(http.StatusCreated, task)
}

// GetTask handles fetching a single task.
func (h *TaskHandler) GetTask(c echo.Context) error {
	id, err := parseTaskID(c)
	if err != nil {
		return err
	}

	task, err := h.taskService.GetTask(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(domainErrorStatus(err), err.Error())
	}

	return c.JSON(http.StatusOK, task)
}

// UpdateTask handles partial task edits.
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	id, err := parseTaskID(c)
	if err != nil {
		return err
	}

	var req ports.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.UpdateTask(c.Request().Context(), id, req)
	if err != nil {
		h.logger.Errorw("Update task failed", "error", err, "task_id", id)
		return echo.NewHTTPError(domainErrorStatus(err), err.Error())
	}

	return c.JSON(http.StatusOK, task)
}

// UpdateTaskStatus handles status transitions.
func (h *TaskHandler) UpdateTaskStatus(c echo.Context) error {
	id, err := parseTaskID(c)
	if err != nil {
		return err
	}

	var req struct {
		Status entities.TaskStatus `json:"status" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	task, err := h.taskService.UpdateTaskStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return echo.NewHTTPError(domainErrorStatus(err), err.Error())
	}

	return c.JSON(http.StatusOK, task)
}

// DeleteTask handles task deletion.
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	id, err := parseTaskID(c)
	if err != nil {
		return err
	}

	if err := h.taskService.DeleteTask(c.Request().Context(), id); err != nil {
		h.logger.Errorw("Delete task failed", "error", err, "task_id", id)
		return echo.NewHTTPError(domainErrorStatus(err), err.Error())
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Task deleted"})
}
