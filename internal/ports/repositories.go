package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/daybook/core/internal/domain/entities"
)

// DayLogRepository is the date-indexed day registry. Dates passed in are
// expected to be day-granular already (see calendar.Calendar.DayStart).
type DayLogRepository interface {
	// GetByDate returns the log for a date or entities.ErrDayLogNotFound.
	GetByDate(ctx context.Context, date time.Time) (*entities.DayLog, error)
	// GetByID returns a log by identity or entities.ErrDayLogNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*entities.DayLog, error)
	// GetOrCreate returns the log for a date, creating it atomically on
	// first reference. Repeated calls for the same date always yield the
	// same log.
	GetOrCreate(ctx context.Context, date time.Time) (*entities.DayLog, error)
	// UpdateNotes replaces the free-text notes of a day.
	UpdateNotes(ctx context.Context, id uuid.UUID, notes *string) error
	// ListBetween returns the logs with dates in [from, to], ordered by date.
	ListBetween(ctx context.Context, from, to time.Time) ([]*entities.DayLog, error)
}

// TaskRepository defines the interface for task data operations.
type TaskRepository interface {
	Create(ctx context.Context, task *entities.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Task, error)
	Update(ctx context.Context, task *entities.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.TaskStatus) error
	// ListByDayLog returns a day's tasks in display order.
	ListByDayLog(ctx context.Context, dayLogID uuid.UUID) ([]*entities.Task, error)
	// ListTemplates returns every recurring task carrying a stored rule.
	ListTemplates(ctx context.Context) ([]*entities.Task, error)
	// HasInstanceOn reports whether the day with the given date already
	// holds an instance materialized from the template. This is the
	// generator's idempotency guard; it must not create the day.
	HasInstanceOn(ctx context.Context, date time.Time, templateID uuid.UUID) (bool, error)
	// HasAnchorCopyOn reports whether the day with the given date already
	// holds a carried-forward copy belonging to the chain root.
	HasAnchorCopyOn(ctx context.Context, date time.Time, rootID uuid.UUID) (bool, error)
}
