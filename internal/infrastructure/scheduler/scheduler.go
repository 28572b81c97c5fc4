package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler wraps cron-based jobs: the daily rollover trigger, the
// periodic generator refresh, and one-shot reminder deliveries.
type Scheduler struct {
	cron *cron.Cron
}

// New creates a scheduler running in the given location.
func New(loc *time.Location) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithLocation(loc), cron.WithSeconds()),
	}
}

// ScheduleDaily registers a daily job at the given HH:MM time string.
func (s *Scheduler) ScheduleDaily(timeStr string, job func()) (cron.EntryID, error) {
	spec, err := buildDailySpec(timeStr)
	if err != nil {
		return 0, err
	}
	return s.cron.AddFunc(spec, job)
}

// ScheduleInterval registers a periodic job every given duration.
func (s *Scheduler) ScheduleInterval(interval time.Duration, job func()) (cron.EntryID, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("interval must be positive")
	}
	seconds := int(interval.Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	spec := fmt.Sprintf("@every %ds", seconds)
	return s.cron.AddFunc(spec, job)
}

// ScheduleAt registers a job that fires once at the given absolute time.
// Returns the entry id as an opaque string handle.
func (s *Scheduler) ScheduleAt(at time.Time, job func()) (string, error) {
	if !at.After(time.Now()) {
		return "", fmt.Errorf("time %s is in the past", at.Format(time.RFC3339))
	}
	id := s.cron.Schedule(onceAt(at), cron.FuncJob(job))
	return strconv.Itoa(int(id)), nil
}

// Remove cancels an entry previously returned by ScheduleAt.
func (s *Scheduler) Remove(handle string) error {
	id, err := strconv.Atoi(handle)
	if err != nil {
		return fmt.Errorf("invalid schedule handle %q: %w", handle, err)
	}
	s.cron.Remove(cron.EntryID(id))
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// onceAt is a cron schedule that fires exactly once. After the time has
// passed it returns the zero time, which drops the entry.
type onceAt time.Time

func (o onceAt) Next(t time.Time) time.Time {
	if time.Time(o).After(t) {
		return time.Time(o)
	}
	return time.Time{}
}

func buildDailySpec(timeStr string) (string, error) {
	parts := strings.Split(timeStr, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time %q, expected HH:MM", timeStr)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour in %q", timeStr)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute in %q", timeStr)
	}
	// cron format: second minute hour dom month dow
	return fmt.Sprintf("0 %d %d * * *", minute, hour), nil
}
