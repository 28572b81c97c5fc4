package notification

import (
	"context"
	"time"

	"github.com/daybook/core/internal/domain/entities"
	"github.com/daybook/core/internal/ports"
)

// NoopScheduler drops all reminders. Used when no notification channel is
// configured and by one-shot CLI runs; tasks are still created, they just
// never get a stored handle.
type NoopScheduler struct{}

// NewNoopScheduler creates a scheduler that does nothing.
func NewNoopScheduler() *NoopScheduler {
	return &NoopScheduler{}
}

func (n *NoopScheduler) Schedule(_ context.Context, _ *entities.Task, _ time.Time) (string, error) {
	return "", nil
}

func (n *NoopScheduler) Cancel(_ context.Context, _ string) error {
	return nil
}

var _ ports.NotificationScheduler = (*NoopScheduler)(nil)
