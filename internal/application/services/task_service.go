package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/daybook/core/internal/domain/calendar"
	"github.com/daybook/core/internal/domain/entities"
	"github.com/daybook/core/internal/infrastructure/logger"
	"github.com/daybook/core/internal/ports"
)

// TaskService handles user-driven task operations.
type TaskService struct {
	dayLogs    ports.DayLogRepository
	tasks      ports.TaskRepository
	notifier   ports.NotificationScheduler
	recurrence *RecurrenceService
	cal        calendar.Calendar
	logger     *logger.Logger
}

// NewTaskService creates a new task service.
func NewTaskService(
	dayLogs ports.DayLogRepository,
	tasks ports.TaskRepository,
	notifier ports.NotificationScheduler,
	recurrence *RecurrenceService,
	cal calendar.Calendar,
	appLogger *logger.Logger,
) *TaskService {
	return &TaskService{
		dayLogs:    dayLogs,
		tasks:      tasks,
		notifier:   notifier,
		recurrence: recurrence,
		cal:        cal,
		logger:     appLogger,
	}
}

// CreateTask creates a task on the requested calendar day. Saving a
// recurring template also kicks off a generator run so future instances
// appear immediately.
func (s *TaskService) CreateTask(ctx context.Context, req ports.CreateTaskRequest) (*entities.Task, error) {
	date, err := s.parseDate(req.Date)
	if err != nil {
		return nil, err
	}

	if req.RecurrenceRule != nil {
		if _, err := entities.DecodeRecurrenceRule(*req.RecurrenceRule); err != nil {
			return nil, err
		}
	}

	day, err := s.dayLogs.GetOrCreate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("get or create day: %w", err)
	}

	task := &entities.Task{
		ID:                uuid.New(),
		DayLogID:          day.ID,
		Name:              req.Name,
		Notes:             req.Notes,
		Tags:              req.Tags,
		Status:            entities.TaskStatusNormal,
		ReminderAt:        req.ReminderAt,
		IsRecurring:       req.IsRecurring,
		RecurrenceRule:    req.RecurrenceRule,
		RecurrenceEndDate: req.RecurrenceEndDate,
		IsAnchor:          req.IsAnchor,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Infow("Task created", "task_id", task.ID, "date", req.Date, "recurring", task.IsRecurring, "anchor", task.IsAnchor)

	if task.IsTemplate() {
		if _, err := s.recurrence.Generate(ctx, time.Now()); err != nil {
			s.logger.Errorw("Generator run after template save failed", "template_id", task.ID, "error", err)
		}
	}

	return task, nil
}

// GetTask retrieves a task by ID.
func (s *TaskService) GetTask(ctx context.Context, id uuid.UUID) (*entities.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask applies a partial edit. Editing a template's rule only
// changes what future generator runs produce; instances already
// materialized are left untouched.
func (s *TaskService) UpdateTask(ctx context.Context, id uuid.UUID, req ports.UpdateTaskRequest) (*entities.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		task.Name = *req.Name
	}
	if req.Notes != nil {
		task.Notes = req.Notes
	}
	if req.Tags != nil {
		task.Tags = req.Tags
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.ReminderAt != nil {
		task.ReminderAt = req.ReminderAt
	}
	if req.IsRecurring != nil {
		task.IsRecurring = *req.IsRecurring
	}
	if req.RecurrenceRule != nil {
		if _, err := entities.DecodeRecurrenceRule(*req.RecurrenceRule); err != nil {
			return nil, err
		}
		task.RecurrenceRule = req.RecurrenceRule
	}
	if req.RecurrenceEndDate != nil {
		task.RecurrenceEndDate = req.RecurrenceEndDate
	}
	if req.IsAnchor != nil {
		task.IsAnchor = *req.IsAnchor
	}
	if !task.IsRecurring {
		task.RecurrenceRule = nil
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.logger.Infow("Task updated", "task_id", task.ID)

	if task.IsTemplate() {
		if _, err := s.recurrence.Generate(ctx, time.Now()); err != nil {
			s.logger.Errorw("Generator run after template save failed", "template_id", task.ID, "error", err)
		}
	}

	return task, nil
}

// UpdateTaskStatus updates a task's status.
func (s *TaskService) UpdateTaskStatus(ctx context.Context, id uuid.UUID, status entities.TaskStatus) (*entities.Task, error) {
	if !status.IsValid() {
		return nil, entities.ErrInvalidStatus
	}

	if err := s.tasks.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("Task status updated", "task_id", id, "status", status)

	return task, nil
}

// DeleteTask removes a task. A pending reminder is cancelled best-effort;
// cancellation failure never blocks the delete.
func (s *TaskService) DeleteTask(ctx context.Context, id uuid.UUID) error {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if task.NotificationID != nil {
		if err := s.notifier.Cancel(ctx, *task.NotificationID); err != nil {
			s.logger.Warnw("Reminder cancellation failed", "task_id", id, "error", err)
		}
	}

	if err := s.tasks.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.logger.Infow("Task deleted", "task_id", id)

	return nil
}

func (s *TaskService) parseDate(raw string) (time.Time, error) {
	date, err := time.ParseInLocation("2006-01-02", raw, s.cal.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", raw, err)
	}
	return s.cal.DayStart(date), nil
}
