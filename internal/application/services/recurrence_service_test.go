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
	"github.com/daybook/core/internal/infrastructure/config"
	"github.com/daybook/core/internal/infrastructure/logger"
)

type generatorFixture struct {
	store    *memStore
	dayLogs  *memDayLogRepo
	tasks    *memTaskRepo
	notifier *recordingNotifier
	svc      *RecurrenceService
}

func newGeneratorFixture(t *testing.T, horizonDays int) *generatorFixture {
	t.Helper()
	store := newMemStore()
	f := &generatorFixture{
		store:    store,
		dayLogs:  &memDayLogRepo{store: store},
		tasks:    &memTaskRepo{store: store},
		notifier: &recordingNotifier{},
	}
	cal := calendar.New(time.UTC, calendar.MonthlyOverflowRollover)
	cfg := config.RecurrenceConfig{HorizonDays: horizonDays, OccurrenceLimit: 100}
	f.svc = NewRecurrenceService(f.dayLogs, f.tasks, f.notifier, cal, cfg, logger.NewNop(), nil)
	return f
}

func (f *generatorFixture) addTemplate(t *testing.T, date time.Time, rule string, mutate func(*entities.Task)) *entities.Task {
	t.Helper()
	day, err := f.dayLogs.GetOrCreate(context.Background(), date)
	require.NoError(t, err)

	tpl := &entities.Task{
		ID:             uuid.New(),
		DayLogID:       day.ID,
		Name:           "Morning run",
		Status:         entities.TaskStatusNormal,
		IsRecurring:    true,
		RecurrenceRule: &rule,
	}
	if mutate != nil {
		mutate(tpl)
	}
	require.NoError(t, f.tasks.Create(context.Background(), tpl))
	return tpl
}

func jan(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

func TestGenerateMaterializesHorizon(t *testing.T) {
	f := newGeneratorFixture(t, 7)
	tpl := f.addTemplate(t, jan(1), `{"frequency":"daily","interval":1}`, nil)

	now := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	result, err := f.svc.Generate(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Templates)
	assert.Equal(t, 7, result.InstancesCreated)
	assert.Equal(t, 0, result.TemplatesSkipped)

	// Every day from Jan 2 through Jan 8 holds exactly one instance.
	for d := 2; d <= 8; d++ {
		day, err := f.dayLogs.GetByDate(context.Background(), jan(d))
		require.NoError(t, err, "day %d should exist", d)

		tasks, err := f.tasks.ListByDayLog(context.Background(), day.ID)
		require.NoError(t, err)
		require.Len(t, tasks, 1, "day %d", d)
		require.NotNil(t, tasks[0].SourceTemplateID)
		assert.Equal(t, tpl.ID, *tasks[0].SourceTemplateID)
		assert.Equal(t, entities.TaskStatusNormal, tasks[0].Status)
		assert.False(t, tasks[0].IsRecurring)
	}
}

func TestGenerateIsIdempotent(t *testing.T) {
	f := newGeneratorFixture(t, 7)
	f.addTemplate(t, jan(1), `{"frequency":"daily","interval":1}`, nil)

	now := jan(1)
	first, err := f.svc.Generate(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, 7, first.InstancesCreated)

	second, err := f.svc.Generate(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 0, second.InstancesCreated)

	// 1 template + 7 instances, nothing duplicated.
	assert.Len(t, f.store.tasks, 8)
}

func TestGenerateSkipsUndecodableTemplate(t *testing.T) {
	f := newGeneratorFixture(t, 3)
	f.addTemplate(t, jan(1), `not a rule`, func(tpl *entities.Task) { tpl.Name = "Broken" })
	good := f.addTemplate(t, jan(1), `{"frequency":"daily","interval":1}`, nil)

	result, err := f.svc.Generate(context.Background(), jan(1))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Templates)
	assert.Equal(t, 1, result.TemplatesSkipped)
	assert.Equal(t, 3, result.InstancesCreated)

	// The healthy template was unaffected by its broken neighbor.
	exists, err := f.tasks.HasInstanceOn(context.Background(), jan(2), good.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestGenerateSchedulesReminders(t *testing.T) {
	f := newGeneratorFixture(t, 2)
	reminder := time.Date(2024, time.January, 1, 9, 30, 0, 0, time.UTC)
	f.addTemplate(t, jan(1), `{"frequency":"daily","interval":1}`, func(tpl *entities.Task) {
		tpl.ReminderAt = &reminder
	})

	_, err := f.svc.Generate(context.Background(), jan(1))
	require.NoError(t, err)

	// One reminder per instance, carried onto the occurrence date.
	require.Len(t, f.notifier.scheduled, 2)
	assert.Equal(t, time.Date(2024, time.January, 2, 9, 30, 0, 0, time.UTC), f.notifier.scheduled[0])
	assert.Equal(t, time.Date(2024, time.January, 3, 9, 30, 0, 0, time.UTC), f.notifier.scheduled[1])
}

func TestGenerateToleratesNotifierFailure(t *testing.T) {
	f := newGeneratorFixture(t, 2)
	f.notifier.fail = true
	reminder := time.Date(2024, time.January, 1, 9, 30, 0, 0, time.UTC)
	tpl := f.addTemplate(t, jan(1), `{"frequency":"daily","interval":1}`, func(tpl *entities.Task) {
		tpl.ReminderAt = &reminder
	})

	result, err := f.svc.Generate(context.Background(), jan(1))
	require.NoError(t, err)
	assert.Equal(t, 2, result.InstancesCreated)

	// Instances exist with no stored notification handle.
	day, err := f.dayLogs.GetByDate(context.Background(), jan(2))
	require.NoError(t, err)
	tasks, err := f.tasks.ListByDayLog(context.Background(), day.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.NotNil(t, tasks[0].SourceTemplateID)
	assert.Equal(t, tpl.ID, *tasks[0].SourceTemplateID)
	assert.Nil(t, tasks[0].NotificationID)
}

func TestGenerateIsAdditiveAfterRuleEdit(t *testing.T) {
	f := newGeneratorFixture(t, 7)
	tpl := f.addTemplate(t, jan(1), `{"frequency":"daily","interval":1}`, nil)

	_, err := f.svc.Generate(context.Background(), jan(1))
	require.NoError(t, err)
	require.Len(t, f.store.tasks, 8)

	// Tighten the rule to every second day. Instances already materialized
	// under the old rule stay; the new expansion finds nothing missing.
	sparser := `{"frequency":"daily","interval":2}`
	stored := f.store.tasks[tpl.ID]
	stored.RecurrenceRule = &sparser

	result, err := f.svc.Generate(context.Background(), jan(1))
	require.NoError(t, err)
	assert.Equal(t, 0, result.InstancesCreated)
	assert.Len(t, f.store.tasks, 8)
}

func TestGenerateSurvivesPersistenceFailure(t *testing.T) {
	f := newGeneratorFixture(t, 3)
	f.addTemplate(t, jan(1), `{"frequency":"daily","interval":1}`, nil)
	f.store.failTaskCreate = true

	// The run reports no fatal error; the failed template simply created
	// nothing and the next run will catch up.
	result, err := f.svc.Generate(context.Background(), jan(1))
	require.NoError(t, err)
	assert.Equal(t, 0, result.InstancesCreated)

	f.store.failTaskCreate = false
	result, err = f.svc.Generate(context.Background(), jan(1))
	require.NoError(t, err)
	assert.Equal(t, 3, result.InstancesCreated)
}
