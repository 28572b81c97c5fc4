package entities

import "errors"

// Common errors
var (
	ErrTaskNotFound   = errors.New("task not found")
	ErrDayLogNotFound = errors.New("day log not found")
	ErrRuleDecode     = errors.New("recurrence rule decode failed")
	ErrCorruptRecord  = errors.New("record is missing required fields")
	ErrInvalidStatus  = errors.New("invalid task status")
	ErrNameRequired   = errors.New("task name is required")
	ErrDateRequired   = errors.New("day log date is required")
	ErrUnauthorized   = errors.New("unauthorized")

	// A task may be a recurring template or an anchor, never both.
	ErrRecurringAnchorConflict = errors.New("task cannot be both recurring and anchor")
	ErrRuleRequired            = errors.New("recurring task requires a recurrence rule")
	ErrRuleNotAllowed          = errors.New("non-recurring task cannot carry a recurrence rule")
)
