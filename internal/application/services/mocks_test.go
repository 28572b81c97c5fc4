package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/daybook/core/internal/domain/entities"
	"github.com/daybook/core/internal/ports"
)

// memStore backs the in-memory repository fakes. Day logs are keyed by
// their date string, which is exactly the uniqueness guarantee the real
// schema enforces with UNIQUE(log_date).
type memStore struct {
	mu       sync.Mutex
	days     map[string]*entities.DayLog
	daysByID map[uuid.UUID]*entities.DayLog
	tasks    map[uuid.UUID]*entities.Task
	order    []uuid.UUID

	failTaskCreate bool
}

func newMemStore() *memStore {
	return &memStore{
		days:     make(map[string]*entities.DayLog),
		daysByID: make(map[uuid.UUID]*entities.DayLog),
		tasks:    make(map[uuid.UUID]*entities.Task),
	}
}

func dateKey(t time.Time) string { return t.Format("2006-01-02") }

type memDayLogRepo struct{ store *memStore }

func (r *memDayLogRepo) GetByDate(_ context.Context, date time.Time) (*entities.DayLog, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	day, ok := r.store.days[dateKey(date)]
	if !ok {
		return nil, entities.ErrDayLogNotFound
	}
	cp := *day
	return &cp, nil
}

func (r *memDayLogRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.DayLog, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	day, ok := r.store.daysByID[id]
	if !ok {
		return nil, entities.ErrDayLogNotFound
	}
	cp := *day
	return &cp, nil
}

func (r *memDayLogRepo) GetOrCreate(_ context.Context, date time.Time) (*entities.DayLog, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	key := dateKey(date)
	if day, ok := r.store.days[key]; ok {
		cp := *day
		return &cp, nil
	}
	day := &entities.DayLog{
		ID:         uuid.New(),
		Date:       date,
		CreatedAt:  time.Now(),
		ModifiedAt: time.Now(),
	}
	r.store.days[key] = day
	r.store.daysByID[day.ID] = day
	cp := *day
	return &cp, nil
}

func (r *memDayLogRepo) UpdateNotes(_ context.Context, id uuid.UUID, notes *string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	day, ok := r.store.daysByID[id]
	if !ok {
		return entities.ErrDayLogNotFound
	}
	day.Notes = notes
	return nil
}

func (r *memDayLogRepo) ListBetween(_ context.Context, from, to time.Time) ([]*entities.DayLog, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entities.DayLog
	for _, day := range r.store.days {
		if day.Date.Before(from) || day.Date.After(to) {
			continue
		}
		cp := *day
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

type memTaskRepo struct{ store *memStore }

func (r *memTaskRepo) Create(_ context.Context, task *entities.Task) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failTaskCreate {
		return fmt.Errorf("simulated write failure")
	}
	cp := *task
	r.store.tasks[task.ID] = &cp
	r.store.order = append(r.store.order, task.ID)
	return nil
}

func (r *memTaskRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.Task, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	task, ok := r.store.tasks[id]
	if !ok {
		return nil, entities.ErrTaskNotFound
	}
	cp := *task
	return &cp, nil
}

func (r *memTaskRepo) Update(_ context.Context, task *entities.Task) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.tasks[task.ID]; !ok {
		return entities.ErrTaskNotFound
	}
	cp := *task
	r.store.tasks[task.ID] = &cp
	return nil
}

func (r *memTaskRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.tasks[id]; !ok {
		return entities.ErrTaskNotFound
	}
	delete(r.store.tasks, id)
	return nil
}

func (r *memTaskRepo) UpdateStatus(_ context.Context, id uuid.UUID, status entities.TaskStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	task, ok := r.store.tasks[id]
	if !ok {
		return entities.ErrTaskNotFound
	}
	task.Status = status
	return nil
}

func (r *memTaskRepo) ListByDayLog(_ context.Context, dayLogID uuid.UUID) ([]*entities.Task, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entities.Task
	for _, id := range r.store.order {
		task, ok := r.store.tasks[id]
		if !ok || task.DayLogID != dayLogID {
			continue
		}
		cp := *task
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memTaskRepo) ListTemplates(_ context.Context) ([]*entities.Task, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entities.Task
	for _, id := range r.store.order {
		task, ok := r.store.tasks[id]
		if !ok || !task.IsRecurring || task.RecurrenceRule == nil {
			continue
		}
		cp := *task
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memTaskRepo) HasInstanceOn(_ context.Context, date time.Time, templateID uuid.UUID) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	day, ok := r.store.days[dateKey(date)]
	if !ok {
		return false, nil
	}
	for _, task := range r.store.tasks {
		if task.DayLogID == day.ID && task.SourceTemplateID != nil && *task.SourceTemplateID == templateID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memTaskRepo) HasAnchorCopyOn(_ context.Context, date time.Time, rootID uuid.UUID) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	day, ok := r.store.days[dateKey(date)]
	if !ok {
		return false, nil
	}
	for _, task := range r.store.tasks {
		if task.DayLogID == day.ID && task.AnchorSourceID != nil && *task.AnchorSourceID == rootID {
			return true, nil
		}
	}
	return false, nil
}

// recordingNotifier captures scheduled reminders and can be told to fail.
type recordingNotifier struct {
	mu        sync.Mutex
	scheduled []time.Time
	cancelled []string
	fail      bool
}

func (n *recordingNotifier) Schedule(_ context.Context, _ *entities.Task, at time.Time) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return "", fmt.Errorf("simulated notifier failure")
	}
	n.scheduled = append(n.scheduled, at)
	return fmt.Sprintf("handle-%d", len(n.scheduled)), nil
}

func (n *recordingNotifier) Cancel(_ context.Context, handle string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled = append(n.cancelled, handle)
	return nil
}

var (
	_ ports.DayLogRepository      = (*memDayLogRepo)(nil)
	_ ports.TaskRepository        = (*memTaskRepo)(nil)
	_ ports.NotificationScheduler = (*recordingNotifier)(nil)
)
