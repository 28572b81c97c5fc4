package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daybook/core/internal/domain/calendar"
	"github.com/daybook/core/internal/domain/entities"
	"github.com/daybook/core/internal/infrastructure/config"
	"github.com/daybook/core/internal/infrastructure/logger"
	"github.com/daybook/core/internal/ports"
)

type taskFixture struct {
	store    *memStore
	dayLogs  *memDayLogRepo
	tasks    *memTaskRepo
	notifier *recordingNotifier
	svc      *TaskService
}

func newTaskFixture(t *testing.T) *taskFixture {
	t.Helper()
	store := newMemStore()
	f := &taskFixture{
		store:    store,
		dayLogs:  &memDayLogRepo{store: store},
		tasks:    &memTaskRepo{store: store},
		notifier: &recordingNotifier{},
	}
	cal := calendar.New(time.UTC, calendar.MonthlyOverflowRollover)
	cfg := config.RecurrenceConfig{HorizonDays: 3, OccurrenceLimit: 100}
	recurrence := NewRecurrenceService(f.dayLogs, f.tasks, f.notifier, cal, cfg, logger.NewNop(), nil)
	f.svc = NewTaskService(f.dayLogs, f.tasks, f.notifier, recurrence, cal, logger.NewNop())
	return f
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func TestCreateTaskPlain(t *testing.T) {
	f := newTaskFixture(t)

	task, err := f.svc.CreateTask(context.Background(), ports.CreateTaskRequest{
		Date: "2024-01-05",
		Name: "Buy groceries",
		Tags: []string{"errand"},
	})
	require.NoError(t, err)
	assert.Equal(t, entities.TaskStatusNormal, task.Status)

	day, err := f.dayLogs.GetByDate(context.Background(), jan(5))
	require.NoError(t, err)
	assert.Equal(t, day.ID, task.DayLogID)
}

func TestCreateTaskRejectsRecurringAnchor(t *testing.T) {
	f := newTaskFixture(t)

	_, err := f.svc.CreateTask(context.Background(), ports.CreateTaskRequest{
		Date:           "2024-01-05",
		Name:           "Impossible",
		IsRecurring:    true,
		RecurrenceRule: strPtr(`{"frequency":"daily","interval":1}`),
		IsAnchor:       true,
	})
	assert.ErrorIs(t, err, entities.ErrRecurringAnchorConflict)
}

func TestCreateTaskRejectsUndecodableRule(t *testing.T) {
	f := newTaskFixture(t)

	_, err := f.svc.CreateTask(context.Background(), ports.CreateTaskRequest{
		Date:           "2024-01-05",
		Name:           "Broken",
		IsRecurring:    true,
		RecurrenceRule: strPtr(`every other day`),
	})
	assert.ErrorIs(t, err, entities.ErrRuleDecode)
}

func TestCreateTaskRejectsBadDate(t *testing.T) {
	f := newTaskFixture(t)

	_, err := f.svc.CreateTask(context.Background(), ports.CreateTaskRequest{
		Date: "05.01.2024",
		Name: "Wrong format",
	})
	assert.Error(t, err)
}

func TestCreateTemplateTriggersGeneration(t *testing.T) {
	f := newTaskFixture(t)

	tpl, err := f.svc.CreateTask(context.Background(), ports.CreateTaskRequest{
		Date:           time.Now().UTC().Format("2006-01-02"),
		Name:           "Daily standup",
		IsRecurring:    true,
		RecurrenceRule: strPtr(`{"frequency":"daily","interval":1}`),
	})
	require.NoError(t, err)

	// Instances over the horizon exist immediately after the save.
	tomorrow := time.Now().UTC().AddDate(0, 0, 1)
	exists, err := f.tasks.HasInstanceOn(context.Background(), tomorrow, tpl.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUpdateTaskDropsRuleWhenRecurrenceCleared(t *testing.T) {
	f := newTaskFixture(t)

	tpl, err := f.svc.CreateTask(context.Background(), ports.CreateTaskRequest{
		Date:           "2024-01-05",
		Name:           "Weekly review",
		IsRecurring:    true,
		RecurrenceRule: strPtr(`{"frequency":"weekly","interval":1}`),
	})
	require.NoError(t, err)

	updated, err := f.svc.UpdateTask(context.Background(), tpl.ID, ports.UpdateTaskRequest{
		IsRecurring: boolPtr(false),
	})
	require.NoError(t, err)
	assert.False(t, updated.IsRecurring)
	assert.Nil(t, updated.RecurrenceRule)
}

func TestUpdateTaskPartialEdit(t *testing.T) {
	f := newTaskFixture(t)

	task, err := f.svc.CreateTask(context.Background(), ports.CreateTaskRequest{
		Date:  "2024-01-05",
		Name:  "Original",
		Notes: strPtr("before"),
	})
	require.NoError(t, err)

	updated, err := f.svc.UpdateTask(context.Background(), task.ID, ports.UpdateTaskRequest{
		Name: strPtr("Renamed"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, "before", *updated.Notes)
}

func TestUpdateTaskStatus(t *testing.T) {
	f := newTaskFixture(t)

	task, err := f.svc.CreateTask(context.Background(), ports.CreateTaskRequest{
		Date: "2024-01-05",
		Name: "Finish report",
	})
	require.NoError(t, err)

	updated, err := f.svc.UpdateTaskStatus(context.Background(), task.ID, entities.TaskStatusComplete)
	require.NoError(t, err)
	assert.Equal(t, entities.TaskStatusComplete, updated.Status)

	_, err = f.svc.UpdateTaskStatus(context.Background(), task.ID, "paused")
	assert.ErrorIs(t, err, entities.ErrInvalidStatus)
}

func TestDeleteTaskCancelsReminder(t *testing.T) {
	f := newTaskFixture(t)

	task, err := f.svc.CreateTask(context.Background(), ports.CreateTaskRequest{
		Date: "2024-01-05",
		Name: "Dentist",
	})
	require.NoError(t, err)

	// Simulate a stored reminder handle.
	handle := "handle-42"
	stored := f.store.tasks[task.ID]
	stored.NotificationID = &handle

	require.NoError(t, f.svc.DeleteTask(context.Background(), task.ID))

	assert.Equal(t, []string{"handle-42"}, f.notifier.cancelled)
	_, err = f.tasks.GetByID(context.Background(), task.ID)
	assert.ErrorIs(t, err, entities.ErrTaskNotFound)
}

func TestDeleteTaskUnknown(t *testing.T) {
	f := newTaskFixture(t)

	task, err := f.svc.CreateTask(context.Background(), ports.CreateTaskRequest{
		Date: "2024-01-05",
		Name: "Short lived",
	})
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteTask(context.Background(), task.ID))

	err = f.svc.DeleteTask(context.Background(), task.ID)
	assert.ErrorIs(t, err, entities.ErrTaskNotFound)
}
