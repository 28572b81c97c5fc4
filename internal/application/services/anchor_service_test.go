package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daybook/core/internal/domain/calendar"
	"github.com/daybook/core/internal/domain/entities"
	"github.com/daybook/core/internal/infrastructure/logger"
)

type anchorFixture struct {
	store   *memStore
	dayLogs *memDayLogRepo
	tasks   *memTaskRepo
	svc     *AnchorService
}

func newAnchorFixture(t *testing.T) *anchorFixture {
	t.Helper()
	store := newMemStore()
	f := &anchorFixture{
		store:   store,
		dayLogs: &memDayLogRepo{store: store},
		tasks:   &memTaskRepo{store: store},
	}
	cal := calendar.New(time.UTC, calendar.MonthlyOverflowRollover)
	f.svc = NewAnchorService(f.dayLogs, f.tasks, cal, logger.NewNop(), nil)
	return f
}

func (f *anchorFixture) addTask(t *testing.T, date time.Time, mutate func(*entities.Task)) *entities.Task {
	t.Helper()
	day, err := f.dayLogs.GetOrCreate(context.Background(), date)
	require.NoError(t, err)

	task := &entities.Task{
		ID:       uuid.New(),
		DayLogID: day.ID,
		Name:     "Renew passport",
		Status:   entities.TaskStatusNormal,
	}
	if mutate != nil {
		mutate(task)
	}
	require.NoError(t, f.tasks.Create(context.Background(), task))
	return task
}

func (f *anchorFixture) tasksOn(t *testing.T, date time.Time) []*entities.Task {
	t.Helper()
	day, err := f.dayLogs.GetByDate(context.Background(), date)
	require.NoError(t, err)
	tasks, err := f.tasks.ListByDayLog(context.Background(), day.ID)
	require.NoError(t, err)
	return tasks
}

func TestCarryForwardCopiesIncompleteAnchor(t *testing.T) {
	f := newAnchorFixture(t)
	root := f.addTask(t, jan(2), func(task *entities.Task) { task.IsAnchor = true })

	result, err := f.svc.CarryForward(context.Background(), jan(3))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Candidates)
	assert.Equal(t, 1, result.Carried)

	copies := f.tasksOn(t, jan(3))
	require.Len(t, copies, 1)
	copied := copies[0]
	assert.True(t, copied.IsAnchor)
	assert.Equal(t, entities.TaskStatusNormal, copied.Status)
	require.NotNil(t, copied.AnchorSourceID)
	assert.Equal(t, root.ID, *copied.AnchorSourceID)
	require.NotNil(t, copied.AnchorDayCount)
	assert.Equal(t, 2, *copied.AnchorDayCount)
}

func TestCarryForwardSameDayRerunCreatesNothing(t *testing.T) {
	f := newAnchorFixture(t)
	f.addTask(t, jan(2), func(task *entities.Task) { task.IsAnchor = true })

	_, err := f.svc.CarryForward(context.Background(), jan(3))
	require.NoError(t, err)

	result, err := f.svc.CarryForward(context.Background(), jan(3))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Candidates)
	assert.Equal(t, 0, result.Carried)

	assert.Len(t, f.tasksOn(t, jan(3)), 1)
}

func TestCarryForwardChainKeepsFlatLineage(t *testing.T) {
	f := newAnchorFixture(t)
	root := f.addTask(t, jan(2), func(task *entities.Task) { task.IsAnchor = true })

	_, err := f.svc.CarryForward(context.Background(), jan(3))
	require.NoError(t, err)
	_, err = f.svc.CarryForward(context.Background(), jan(4))
	require.NoError(t, err)

	copies := f.tasksOn(t, jan(4))
	require.Len(t, copies, 1)
	// Day three's copy still points at the original root, not at the
	// intermediate copy.
	require.NotNil(t, copies[0].AnchorSourceID)
	assert.Equal(t, root.ID, *copies[0].AnchorSourceID)
	require.NotNil(t, copies[0].AnchorDayCount)
	assert.Equal(t, 3, *copies[0].AnchorDayCount)
}

func TestCarryForwardSkipsCompletedAnchor(t *testing.T) {
	f := newAnchorFixture(t)
	f.addTask(t, jan(2), func(task *entities.Task) {
		task.IsAnchor = true
		task.Status = entities.TaskStatusComplete
	})

	result, err := f.svc.CarryForward(context.Background(), jan(3))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Candidates)
	assert.Equal(t, 0, result.Carried)
}

func TestCarryForwardIgnoresPlainTasks(t *testing.T) {
	f := newAnchorFixture(t)
	f.addTask(t, jan(2), nil)
	f.addTask(t, jan(2), func(task *entities.Task) {
		task.Name = "Also plain"
		task.Status = entities.TaskStatusNotCompleted
	})

	result, err := f.svc.CarryForward(context.Background(), jan(3))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Candidates)
	assert.Equal(t, 0, result.Carried)
}

func TestCarryForwardNoYesterdayIsNoOp(t *testing.T) {
	f := newAnchorFixture(t)

	result, err := f.svc.CarryForward(context.Background(), jan(3))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Candidates)
	assert.Equal(t, 0, result.Carried)

	// Today's log is created lazily, so a no-op run leaves no trace.
	_, err = f.dayLogs.GetByDate(context.Background(), jan(3))
	assert.ErrorIs(t, err, entities.ErrDayLogNotFound)
}

func TestCarryForwardOnlyLooksOneDayBack(t *testing.T) {
	f := newAnchorFixture(t)
	// Anchor left behind on Jan 1; the host was off on Jan 2.
	f.addTask(t, jan(1), func(task *entities.Task) { task.IsAnchor = true })

	result, err := f.svc.CarryForward(context.Background(), jan(3))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Carried)
}

func TestCarryForwardMixedDay(t *testing.T) {
	f := newAnchorFixture(t)
	f.addTask(t, jan(2), func(task *entities.Task) { task.IsAnchor = true })
	f.addTask(t, jan(2), func(task *entities.Task) {
		task.Name = "Done already"
		task.IsAnchor = true
		task.Status = entities.TaskStatusComplete
	})
	f.addTask(t, jan(2), func(task *entities.Task) { task.Name = "Plain errand" })

	result, err := f.svc.CarryForward(context.Background(), jan(3))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Candidates)
	assert.Equal(t, 1, result.Carried)

	copies := f.tasksOn(t, jan(3))
	require.Len(t, copies, 1)
	assert.Equal(t, "Renew passport", copies[0].Name)
}
