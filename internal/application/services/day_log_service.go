package services

import (
	"context"
	"fmt"
	"time"

	"github.com/daybook/core/internal/domain/calendar"
	"github.com/daybook/core/internal/domain/entities"
	"github.com/daybook/core/internal/infrastructure/logger"
	"github.com/daybook/core/internal/ports"
)

// DayLogService serves day views and day-level edits.
type DayLogService struct {
	dayLogs ports.DayLogRepository
	tasks   ports.TaskRepository
	cal     calendar.Calendar
	logger  *logger.Logger
}

// NewDayLogService creates a new day log service.
func NewDayLogService(
	dayLogs ports.DayLogRepository,
	tasks ports.TaskRepository,
	cal calendar.Calendar,
	appLogger *logger.Logger,
) *DayLogService {
	return &DayLogService{
		dayLogs: dayLogs,
		tasks:   tasks,
		cal:     cal,
		logger:  appLogger,
	}
}

// GetDay returns the log for a date with its tasks in display order,
// creating the log lazily on first reference.
func (s *DayLogService) GetDay(ctx context.Context, rawDate string) (*entities.DayLog, error) {
	date, err := s.parseDate(rawDate)
	if err != nil {
		return nil, err
	}

	day, err := s.dayLogs.GetOrCreate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("get or create day: %w", err)
	}

	tasks, err := s.tasks.ListByDayLog(ctx, day.ID)
	if err != nil {
		return nil, fmt.Errorf("load day tasks: %w", err)
	}

	day.Tasks = make([]entities.Task, 0, len(tasks))
	for _, task := range tasks {
		day.Tasks = append(day.Tasks, *task)
	}

	return day, nil
}

// UpdateDayNotes replaces a day's free-text notes.
func (s *DayLogService) UpdateDayNotes(ctx context.Context, rawDate string, notes *string) (*entities.DayLog, error) {
	date, err := s.parseDate(rawDate)
	if err != nil {
		return nil, err
	}

	day, err := s.dayLogs.GetOrCreate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("get or create day: %w", err)
	}

	if err := s.dayLogs.UpdateNotes(ctx, day.ID, notes); err != nil {
		return nil, err
	}
	day.Notes = notes

	s.logger.Infow("Day notes updated", "date", rawDate)

	return day, nil
}

// ListDays returns the logs between two dates, inclusive.
func (s *DayLogService) ListDays(ctx context.Context, rawFrom, rawTo string) ([]*entities.DayLog, error) {
	from, err := s.parseDate(rawFrom)
	if err != nil {
		return nil, err
	}
	to, err := s.parseDate(rawTo)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, fmt.Errorf("range end %s precedes start %s", rawTo, rawFrom)
	}

	return s.dayLogs.ListBetween(ctx, from, to)
}

func (s *DayLogService) parseDate(raw string) (time.Time, error) {
	date, err := time.ParseInLocation("2006-01-02", raw, s.cal.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", raw, err)
	}
	return s.cal.DayStart(date), nil
}
