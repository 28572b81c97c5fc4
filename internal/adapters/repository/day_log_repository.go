package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/daybook/core/internal/domain/entities"
	"github.com/daybook/core/internal/ports"
)

// DayLogRepositoryImpl implements the DayLogRepository interface on
// Postgres. log_date is a DATE column with a unique constraint, which is
// what enforces "at most one DayLog per date" at the storage layer.
type DayLogRepositoryImpl struct {
	db *sqlx.DB
}

// NewDayLogRepository creates a new day log repository.
func NewDayLogRepository(db *sqlx.DB) ports.DayLogRepository {
	return &DayLogRepositoryImpl{db: db}
}

func (r *DayLogRepositoryImpl) GetByDate(ctx context.Context, date time.Time) (*entities.DayLog, error) {
	query := `
		SELECT id, log_date, notes, created_at, modified_at
		FROM day_logs
		WHERE log_date = $1`

	var log entities.DayLog
	err := r.db.GetContext(ctx, &log, query, date.Format("2006-01-02"))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrDayLogNotFound
		}
		return nil, fmt.Errorf("get day log by date: %w", err)
	}

	return &log, nil
}

func (r *DayLogRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.DayLog, error) {
	query := `
		SELECT id, log_date, notes, created_at, modified_at
		FROM day_logs
		WHERE id = $1`

	var log entities.DayLog
	err := r.db.GetContext(ctx, &log, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrDayLogNotFound
		}
		return nil, fmt.Errorf("get day log by id: %w", err)
	}

	return &log, nil
}

func (r *DayLogRepositoryImpl) GetOrCreate(ctx context.Context, date time.Time) (*entities.DayLog, error) {
	// Single-statement upsert so that concurrent first references to the
	// same date converge on one row. The no-op DO UPDATE makes RETURNING
	// yield the existing row on conflict.
	query := `
		INSERT INTO day_logs (id, log_date)
		VALUES ($1, $2)
		ON CONFLICT (log_date) DO UPDATE SET log_date = day_logs.log_date
		RETURNING id, log_date, notes, created_at, modified_at`

	var log entities.DayLog
	err := r.db.GetContext(ctx, &log, query, uuid.New(), date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("get or create day log: %w", err)
	}

	return &log, nil
}

func (r *DayLogRepositoryImpl) UpdateNotes(ctx context.Context, id uuid.UUID, notes *string) error {
	query := `
		UPDATE day_logs
		SET notes = $2, modified_at = CURRENT_TIMESTAMP
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, notes)
	if err != nil {
		return fmt.Errorf("update day log notes: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrDayLogNotFound
	}

	return nil
}

func (r *DayLogRepositoryImpl) ListBetween(ctx context.Context, from, to time.Time) ([]*entities.DayLog, error) {
	query := `
		SELECT id, log_date, notes, created_at, modified_at
		FROM day_logs
		WHERE log_date BETWEEN $1 AND $2
		ORDER BY log_date`

	var logs []*entities.DayLog
	err := r.db.SelectContext(ctx, &logs, query, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("list day logs: %w", err)
	}

	return logs, nil
}
