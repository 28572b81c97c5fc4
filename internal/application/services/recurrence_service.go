package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/daybook/core/internal/domain/calendar"
	"github.com/daybook/core/internal/domain/entities"
	"github.com/daybook/core/internal/infrastructure/config"
	"github.com/daybook/core/internal/infrastructure/logger"
	"github.com/daybook/core/internal/ports"
)

// RecurrenceService materializes task instances from recurring templates.
//
// Each run recomputes desired state from scratch: for every template it
// expands the rule over the horizon window and creates whatever instances
// are missing. The idempotency key is the (template, date) pair, so
// repeated runs are safe and a failed run self-heals on the next one.
// Generation is strictly additive: it never deletes or updates instances
// that earlier runs produced, even after the template's rule is edited.
type RecurrenceService struct {
	dayLogs  ports.DayLogRepository
	tasks    ports.TaskRepository
	notifier ports.NotificationScheduler
	cal      calendar.Calendar
	cfg      config.RecurrenceConfig
	logger   *logger.Logger
	metrics  *ProcessorMetrics
}

// NewRecurrenceService creates a new recurrence generator service.
func NewRecurrenceService(
	dayLogs ports.DayLogRepository,
	tasks ports.TaskRepository,
	notifier ports.NotificationScheduler,
	cal calendar.Calendar,
	cfg config.RecurrenceConfig,
	appLogger *logger.Logger,
	metrics *ProcessorMetrics,
) *RecurrenceService {
	return &RecurrenceService{
		dayLogs:  dayLogs,
		tasks:    tasks,
		notifier: notifier,
		cal:      cal,
		cfg:      cfg,
		logger:   appLogger.WithComponent("recurrence_generator"),
		metrics:  metrics,
	}
}

// Generate ensures an instance exists for every occurrence of every
// template between now and the configured horizon. Templates are isolated
// units of work: an undecodable rule or a persistence failure skips that
// template and the run continues with the rest.
func (s *RecurrenceService) Generate(ctx context.Context, now time.Time) (*ports.GenerateResult, error) {
	start := time.Now()
	today := s.cal.Today(now)
	horizon := s.cal.AddDays(today, s.cfg.HorizonDays)

	templates, err := s.tasks.ListTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	result := &ports.GenerateResult{Templates: len(templates)}
	for _, tpl := range templates {
		created, err := s.generateForTemplate(ctx, tpl, horizon)
		result.InstancesCreated += created
		if err != nil {
			if errors.Is(err, entities.ErrRuleDecode) || errors.Is(err, entities.ErrCorruptRecord) {
				result.TemplatesSkipped++
				s.logger.Warnw("Skipping template", "template_id", tpl.ID, "error", err)
				continue
			}
			// Persistence failure aborts this template's unit of work;
			// instances already committed for it stand, and other
			// templates still proceed.
			s.logger.Errorw("Template materialization failed", "template_id", tpl.ID, "error", err)
			continue
		}
	}

	elapsed := time.Since(start)
	if s.metrics != nil {
		s.metrics.GeneratorRuns.Inc()
		s.metrics.InstancesCreated.Add(float64(result.InstancesCreated))
		s.metrics.TemplatesSkipped.Add(float64(result.TemplatesSkipped))
		s.metrics.RunDuration.WithLabelValues("generator").Observe(elapsed.Seconds())
	}
	s.logger.LogGeneratorRun(result.Templates, result.InstancesCreated, result.TemplatesSkipped, float64(elapsed.Milliseconds()))

	return result, nil
}

func (s *RecurrenceService) generateForTemplate(ctx context.Context, tpl *entities.Task, horizon time.Time) (int, error) {
	if tpl.Name == "" || tpl.RecurrenceRule == nil {
		return 0, entities.ErrCorruptRecord
	}

	rule, err := entities.DecodeRecurrenceRule(*tpl.RecurrenceRule)
	if err != nil {
		return 0, err
	}
	if rule.EndDate == nil && tpl.RecurrenceEndDate != nil {
		end := *tpl.RecurrenceEndDate
		rule.EndDate = &end
	}

	// The template's owning day is the rule's base date.
	baseLog, err := s.dayLogs.GetByID(ctx, tpl.DayLogID)
	if err != nil {
		if errors.Is(err, entities.ErrDayLogNotFound) {
			return 0, entities.ErrCorruptRecord
		}
		return 0, fmt.Errorf("load template day: %w", err)
	}
	base := s.cal.DayStart(baseLog.Date)

	created := 0
	for _, occurrence := range rule.Occurrences(s.cal, base, horizon, s.cfg.OccurrenceLimit) {
		exists, err := s.tasks.HasInstanceOn(ctx, occurrence, tpl.ID)
		if err != nil {
			return created, fmt.Errorf("check occurrence %s: %w", occurrence.Format("2006-01-02"), err)
		}
		if exists {
			continue
		}

		if err := s.materialize(ctx, tpl, occurrence); err != nil {
			return created, err
		}
		created++
	}

	return created, nil
}

// materialize creates the instance for one occurrence date. Reminder
// scheduling is fire-and-forget: a scheduler failure leaves the handle
// empty but never blocks the instance.
func (s *RecurrenceService) materialize(ctx context.Context, tpl *entities.Task, occurrence time.Time) error {
	day, err := s.dayLogs.GetOrCreate(ctx, occurrence)
	if err != nil {
		return fmt.Errorf("get or create day %s: %w", occurrence.Format("2006-01-02"), err)
	}

	instance := tpl.CopyForDay(day.ID, time.Now())
	templateID := tpl.ID
	instance.SourceTemplateID = &templateID

	if tpl.ReminderAt != nil {
		at := s.cal.At(occurrence, *tpl.ReminderAt)
		instance.ReminderAt = &at
		handle, err := s.notifier.Schedule(ctx, instance, at)
		if err != nil {
			s.logger.Warnw("Reminder scheduling failed",
				"template_id", tpl.ID,
				"date", occurrence.Format("2006-01-02"),
				"error", err,
			)
		} else if handle != "" {
			instance.NotificationID = &handle
		}
	}

	if err := s.tasks.Create(ctx, instance); err != nil {
		return fmt.Errorf("persist instance for %s: %w", occurrence.Format("2006-01-02"), err)
	}

	return nil
}
