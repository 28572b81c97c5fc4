package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/daybook/core/internal/domain/calendar"
	"github.com/daybook/core/internal/domain/entities"
	"github.com/daybook/core/internal/infrastructure/logger"
	"github.com/daybook/core/internal/ports"
)

// AnchorService migrates unfinished anchor tasks from yesterday into
// today, once per calendar day.
//
// The processor deliberately looks exactly one day back: when the host is
// inactive for several days, only the most recent incomplete state carries
// forward on the next run. Lineage is flat — each copy references the
// chain's root task plus its 1-based position, not its immediate
// predecessor.
type AnchorService struct {
	dayLogs ports.DayLogRepository
	tasks   ports.TaskRepository
	cal     calendar.Calendar
	logger  *logger.Logger
	metrics *ProcessorMetrics
}

// NewAnchorService creates a new anchor carry-forward service.
func NewAnchorService(
	dayLogs ports.DayLogRepository,
	tasks ports.TaskRepository,
	cal calendar.Calendar,
	appLogger *logger.Logger,
	metrics *ProcessorMetrics,
) *AnchorService {
	return &AnchorService{
		dayLogs: dayLogs,
		tasks:   tasks,
		cal:     cal,
		logger:  appLogger.WithComponent("anchor_carry_forward"),
		metrics: metrics,
	}
}

// CarryForward copies yesterday's incomplete anchors into today. The run
// is idempotent: a chain that already has a copy on today's day is left
// alone, so repeated same-day invocations create nothing new.
func (s *AnchorService) CarryForward(ctx context.Context, now time.Time) (*ports.CarryForwardResult, error) {
	start := time.Now()
	today := s.cal.Today(now)
	yesterday := s.cal.AddDays(today, -1)

	result := &ports.CarryForwardResult{}

	prev, err := s.dayLogs.GetByDate(ctx, yesterday)
	if err != nil {
		if errors.Is(err, entities.ErrDayLogNotFound) {
			s.logger.Debugw("No day log for yesterday, nothing to carry", "date", yesterday.Format("2006-01-02"))
			return result, nil
		}
		return nil, fmt.Errorf("load yesterday: %w", err)
	}

	candidates, err := s.tasks.ListByDayLog(ctx, prev.ID)
	if err != nil {
		return nil, fmt.Errorf("load yesterday's tasks: %w", err)
	}

	var todayLog *entities.DayLog
	for _, candidate := range candidates {
		if !candidate.CarriesForward() {
			continue
		}
		result.Candidates++

		root := candidate.AnchorRoot()
		exists, err := s.tasks.HasAnchorCopyOn(ctx, today, root)
		if err != nil {
			return result, fmt.Errorf("check chain %s: %w", root, err)
		}
		if exists {
			continue
		}

		// Today's log is created lazily, only once there is something to
		// attach to it.
		if todayLog == nil {
			todayLog, err = s.dayLogs.GetOrCreate(ctx, today)
			if err != nil {
				return result, fmt.Errorf("get or create today: %w", err)
			}
		}

		copied := candidate.CopyForDay(todayLog.ID, time.Now())
		copied.IsAnchor = true
		copied.AnchorSourceID = &root
		dayCount := candidate.NextDayCount()
		copied.AnchorDayCount = &dayCount

		if err := s.tasks.Create(ctx, copied); err != nil {
			return result, fmt.Errorf("persist carried task: %w", err)
		}
		result.Carried++
	}

	elapsed := time.Since(start)
	if s.metrics != nil {
		s.metrics.CarryForwardRuns.Inc()
		s.metrics.TasksCarried.Add(float64(result.Carried))
		s.metrics.RunDuration.WithLabelValues("carry_forward").Observe(elapsed.Seconds())
	}
	s.logger.LogCarryForwardRun(result.Candidates, result.Carried, float64(elapsed.Milliseconds()))

	return result, nil
}
