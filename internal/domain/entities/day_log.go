package entities

import (
	"time"

	"github.com/google/uuid"
)

// DayLog is the container for one calendar day. At most one DayLog exists
// per distinct date; logs are created lazily on first reference to a date
// and never deleted by the core.
type DayLog struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Date       time.Time `json:"date" db:"log_date"`
	Notes      *string   `json:"notes" db:"notes"`
	Tasks      []Task    `json:"tasks"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	ModifiedAt time.Time `json:"modified_at" db:"modified_at"`
}

// Validate checks the identity fields the engine requires.
func (d *DayLog) Validate() error {
	if d.ID == uuid.Nil {
		return ErrCorruptRecord
	}
	if d.Date.IsZero() {
		return ErrDateRequired
	}
	return nil
}
