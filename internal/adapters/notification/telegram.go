package notification

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/daybook/core/internal/domain/entities"
	"github.com/daybook/core/internal/infrastructure/logger"
	"github.com/daybook/core/internal/infrastructure/scheduler"
	"github.com/daybook/core/internal/ports"
)

// TelegramScheduler delivers reminders as Telegram messages. Deliveries
// are queued as one-shot jobs on the shared cron scheduler; the returned
// handle is the scheduler entry id, good for cancellation until the
// reminder fires.
type TelegramScheduler struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	sched  *scheduler.Scheduler
	logger *logger.Logger
}

// NewTelegramScheduler creates a Telegram-backed notification scheduler.
func NewTelegramScheduler(token string, chatID int64, sched *scheduler.Scheduler, appLogger *logger.Logger) (*TelegramScheduler, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}

	return &TelegramScheduler{
		bot:    bot,
		chatID: chatID,
		sched:  sched,
		logger: appLogger.WithComponent("telegram_notifier"),
	}, nil
}

func (t *TelegramScheduler) Schedule(_ context.Context, task *entities.Task, at time.Time) (string, error) {
	name := task.Name
	handle, err := t.sched.ScheduleAt(at, func() {
		msg := tgbotapi.NewMessage(t.chatID, fmt.Sprintf("⏰ %s", name))
		if _, err := t.bot.Send(msg); err != nil {
			t.logger.Warnw("Reminder delivery failed", "task", name, "error", err)
		}
	})
	if err != nil {
		return "", fmt.Errorf("schedule reminder: %w", err)
	}

	t.logger.Debugw("Reminder scheduled", "task", name, "at", at.Format(time.RFC3339), "handle", handle)
	return handle, nil
}

func (t *TelegramScheduler) Cancel(_ context.Context, handle string) error {
	return t.sched.Remove(handle)
}

var _ ports.NotificationScheduler = (*TelegramScheduler)(nil)
