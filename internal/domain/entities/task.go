package entities

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusNormal       TaskStatus = "normal"
	TaskStatusInProgress   TaskStatus = "in_progress"
	TaskStatusComplete     TaskStatus = "complete"
	TaskStatusNotCompleted TaskStatus = "not_completed"
)

// IsValid reports whether the status is a known value.
func (ts TaskStatus) IsValid() bool {
	switch ts {
	case TaskStatusNormal, TaskStatusInProgress, TaskStatusComplete, TaskStatusNotCompleted:
		return true
	default:
		return false
	}
}

// Task represents a single to-do item owned by a DayLog.
//
// A task can play one of three roles on top of a plain item: a recurring
// template (IsRecurring with a serialized RecurrenceRule; the owning
// DayLog's date is the rule's base date), a materialized instance of a
// template (SourceTemplateID set), or an anchor that is carried forward
// day by day until completed (IsAnchor, with AnchorSourceID pointing at
// the root of the chain and AnchorDayCount its 1-based position).
type Task struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	DayLogID          uuid.UUID  `json:"day_log_id" db:"day_log_id"`
	Name              string     `json:"name" db:"name"`
	Notes             *string    `json:"notes" db:"notes"`
	Tags              []string   `json:"tags" db:"tags"`
	Status            TaskStatus `json:"status" db:"status"`
	ReminderAt        *time.Time `json:"reminder_at" db:"reminder_at"`
	IsRecurring       bool       `json:"is_recurring" db:"is_recurring"`
	RecurrenceRule    *string    `json:"recurrence_rule" db:"recurrence_rule"`
	RecurrenceEndDate *time.Time `json:"recurrence_end_date" db:"recurrence_end_date"`
	SourceTemplateID  *uuid.UUID `json:"source_template_id" db:"source_template_id"`
	IsAnchor          bool       `json:"is_anchor" db:"is_anchor"`
	AnchorSourceID    *uuid.UUID `json:"anchor_source_id" db:"anchor_source_id"`
	AnchorDayCount    *int       `json:"anchor_day_count" db:"anchor_day_count"`
	NotificationID    *string    `json:"notification_id" db:"notification_id"`
	Position          int        `json:"position" db:"position"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	ModifiedAt        time.Time  `json:"modified_at" db:"modified_at"`
}

// Validate checks the invariants the engine relies on. Records failing the
// identity checks are treated as corrupt and skipped by the processors,
// never silently defaulted.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil || t.DayLogID == uuid.Nil {
		return ErrCorruptRecord
	}
	if t.Name == "" {
		return ErrNameRequired
	}
	if !t.Status.IsValid() {
		return ErrInvalidStatus
	}
	if t.IsRecurring && t.IsAnchor {
		return ErrRecurringAnchorConflict
	}
	if t.IsRecurring && (t.RecurrenceRule == nil || *t.RecurrenceRule == "") {
		return ErrRuleRequired
	}
	if !t.IsRecurring && t.RecurrenceRule != nil {
		return ErrRuleNotAllowed
	}
	return nil
}

// IsTemplate reports whether this task is a recurring template.
func (t *Task) IsTemplate() bool {
	return t.IsRecurring && t.RecurrenceRule != nil && *t.RecurrenceRule != ""
}

// IsInstance reports whether this task was materialized from a template.
func (t *Task) IsInstance() bool {
	return t.SourceTemplateID != nil
}

// CarriesForward reports whether the task is an anchor that should migrate
// to the next day. Every status except complete carries forward.
func (t *Task) CarriesForward() bool {
	return t.IsAnchor && t.Status != TaskStatusComplete
}

// AnchorRoot returns the root of the carry-forward chain: the task's
// AnchorSourceID when present, otherwise the task itself is the root.
func (t *Task) AnchorRoot() uuid.UUID {
	if t.AnchorSourceID != nil {
		return *t.AnchorSourceID
	}
	return t.ID
}

// NextDayCount returns the chain position for the next carried-forward
// copy. The root implicitly counts as day 1, so its first copy is day 2.
func (t *Task) NextDayCount() int {
	if t.AnchorDayCount != nil {
		return *t.AnchorDayCount + 1
	}
	return 2
}

// CopyForDay builds a fresh task carrying the user-visible content (name,
// tags, notes) onto another day. Status is always reset to normal; lineage
// fields are left for the caller to fill in.
func (t *Task) CopyForDay(dayLogID uuid.UUID, now time.Time) *Task {
	copied := &Task{
		ID:         uuid.New(),
		DayLogID:   dayLogID,
		Name:       t.Name,
		Status:     TaskStatusNormal,
		CreatedAt:  now,
		ModifiedAt: now,
	}
	if t.Notes != nil {
		notes := *t.Notes
		copied.Notes = &notes
	}
	if len(t.Tags) > 0 {
		copied.Tags = append([]string(nil), t.Tags...)
	}
	return copied
}
