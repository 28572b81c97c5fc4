package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/daybook/core/internal/domain/entities"
	"github.com/daybook/core/internal/ports"
)

const taskColumns = `id, day_log_id, name, notes, tags, status, reminder_at,
	is_recurring, recurrence_rule, recurrence_end_date, source_template_id,
	is_anchor, anchor_source_id, anchor_day_count, notification_id, position,
	created_at, modified_at`

// TaskRepositoryImpl implements the TaskRepository interface on Postgres.
type TaskRepositoryImpl struct {
	db *sqlx.DB
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(db *sqlx.DB) ports.TaskRepository {
	return &TaskRepositoryImpl{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanTask reads one task row. Tags is a text[] column, which needs the
// pq array adapter instead of plain struct scanning.
func scanTask(row rowScanner) (*entities.Task, error) {
	var t entities.Task
	err := row.Scan(
		&t.ID, &t.DayLogID, &t.Name, &t.Notes, pq.Array(&t.Tags), &t.Status,
		&t.ReminderAt, &t.IsRecurring, &t.RecurrenceRule, &t.RecurrenceEndDate,
		&t.SourceTemplateID, &t.IsAnchor, &t.AnchorSourceID, &t.AnchorDayCount,
		&t.NotificationID, &t.Position, &t.CreatedAt, &t.ModifiedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepositoryImpl) Create(ctx context.Context, task *entities.Task) error {
	query := `
		INSERT INTO tasks (id, day_log_id, name, notes, tags, status, reminder_at,
			is_recurring, recurrence_rule, recurrence_end_date, source_template_id,
			is_anchor, anchor_source_id, anchor_day_count, notification_id, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			COALESCE((SELECT MAX(position) + 1 FROM tasks WHERE day_log_id = $2), 0))
		RETURNING position, created_at, modified_at`

	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}

	err := r.db.QueryRowContext(ctx, query,
		task.ID, task.DayLogID, task.Name, task.Notes, pq.Array(task.Tags),
		task.Status, task.ReminderAt, task.IsRecurring, task.RecurrenceRule,
		task.RecurrenceEndDate, task.SourceTemplateID, task.IsAnchor,
		task.AnchorSourceID, task.AnchorDayCount, task.NotificationID,
	).Scan(&task.Position, &task.CreatedAt, &task.ModifiedAt)

	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	return nil
}

func (r *TaskRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task by id: %w", err)
	}

	return task, nil
}

func (r *TaskRepositoryImpl) Update(ctx context.Context, task *entities.Task) error {
	query := `
		UPDATE tasks
		SET name = $2, notes = $3, tags = $4, status = $5, reminder_at = $6,
			is_recurring = $7, recurrence_rule = $8, recurrence_end_date = $9,
			is_anchor = $10, notification_id = $11, modified_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING modified_at`

	err := r.db.QueryRowContext(ctx, query,
		task.ID, task.Name, task.Notes, pq.Array(task.Tags), task.Status,
		task.ReminderAt, task.IsRecurring, task.RecurrenceRule,
		task.RecurrenceEndDate, task.IsAnchor, task.NotificationID,
	).Scan(&task.ModifiedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return entities.ErrTaskNotFound
		}
		return fmt.Errorf("update task: %w", err)
	}

	return nil
}

func (r *TaskRepositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.TaskStatus) error {
	query := `
		UPDATE tasks
		SET status = $2, modified_at = CURRENT_TIMESTAMP
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrTaskNotFound
	}

	return nil
}

func (r *TaskRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM tasks WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrTaskNotFound
	}

	return nil
}

func (r *TaskRepositoryImpl) ListByDayLog(ctx context.Context, dayLogID uuid.UUID) ([]*entities.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE day_log_id = $1 ORDER BY position, created_at`

	return r.queryTasks(ctx, query, dayLogID)
}

func (r *TaskRepositoryImpl) ListTemplates(ctx context.Context) ([]*entities.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE is_recurring = TRUE AND recurrence_rule IS NOT NULL
		ORDER BY created_at`

	return r.queryTasks(ctx, query)
}

func (r *TaskRepositoryImpl) HasInstanceOn(ctx context.Context, date time.Time, templateID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM tasks t
			JOIN day_logs d ON d.id = t.day_log_id
			WHERE d.log_date = $1 AND t.source_template_id = $2)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, date.Format("2006-01-02"), templateID)
	if err != nil {
		return false, fmt.Errorf("check instance existence: %w", err)
	}

	return exists, nil
}

func (r *TaskRepositoryImpl) HasAnchorCopyOn(ctx context.Context, date time.Time, rootID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM tasks t
			JOIN day_logs d ON d.id = t.day_log_id
			WHERE d.log_date = $1 AND t.anchor_source_id = $2)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, date.Format("2006-01-02"), rootID)
	if err != nil {
		return false, fmt.Errorf("check anchor copy existence: %w", err)
	}

	return exists, nil
}

func (r *TaskRepositoryImpl) queryTasks(ctx context.Context, query string, args ...interface{}) ([]*entities.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*entities.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}

	return tasks, nil
}
