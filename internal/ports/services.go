package ports

import (
	"context"
	"time"

	"github.com/daybook/core/internal/domain/entities"
)

// NotificationScheduler is the external reminder collaborator. Scheduling
// is fire-and-forget from the processors' point of view: a failure never
// rolls back task creation, it only leaves the stored handle empty.
type NotificationScheduler interface {
	// Schedule requests a reminder for the task at an absolute timestamp
	// and returns an opaque handle for later cancellation.
	Schedule(ctx context.Context, task *entities.Task, at time.Time) (string, error)
	// Cancel revokes a previously issued handle.
	Cancel(ctx context.Context, handle string) error
}

// Request/response types shared between handlers and services.

// LoginRequest carries the owner's password.
type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries an issued access token.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreateTaskRequest creates a task on a given calendar day.
type CreateTaskRequest struct {
	Date              string     `json:"date" validate:"required"`
	Name              string     `json:"name" validate:"required,max=500"`
	Notes             *string    `json:"notes"`
	Tags              []string   `json:"tags"`
	ReminderAt        *time.Time `json:"reminder_at"`
	IsRecurring       bool       `json:"is_recurring"`
	RecurrenceRule    *string    `json:"recurrence_rule"`
	RecurrenceEndDate *time.Time `json:"recurrence_end_date"`
	IsAnchor          bool       `json:"is_anchor"`
}

// UpdateTaskRequest applies a partial edit to a task. Nil fields are left
// untouched.
type UpdateTaskRequest struct {
	Name              *string              `json:"name" validate:"omitempty,max=500"`
	Notes             *string              `json:"notes"`
	Tags              []string             `json:"tags"`
	Status            *entities.TaskStatus `json:"status"`
	ReminderAt        *time.Time           `json:"reminder_at"`
	IsRecurring       *bool                `json:"is_recurring"`
	RecurrenceRule    *string              `json:"recurrence_rule"`
	RecurrenceEndDate *time.Time           `json:"recurrence_end_date"`
	IsAnchor          *bool                `json:"is_anchor"`
}

// UpdateDayNotesRequest replaces a day's free-text notes.
type UpdateDayNotesRequest struct {
	Notes *string `json:"notes"`
}

// GenerateResult summarizes one recurrence generator run.
type GenerateResult struct {
	Templates        int `json:"templates"`
	InstancesCreated int `json:"instances_created"`
	TemplatesSkipped int `json:"templates_skipped"`
}

// CarryForwardResult summarizes one anchor carry-forward run.
type CarryForwardResult struct {
	Candidates int `json:"candidates"`
	Carried    int `json:"carried"`
}

// Claims are the validated contents of an access token.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
