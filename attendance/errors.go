/*
errors.go - Centralized error taxonomy for the attendance engine

PURPOSE:
  All rejection and failure types in one place. Validation failures are
  expected, recoverable, user-facing outcomes: they are returned as typed
  rejections, never as a generic failure, and callers translate them to
  user messages. Storage unavailability is the only infrastructure class;
  it aborts the current operation without partial results.

USAGE:
  Callers branch with errors.Is / errors.As:

    if errors.Is(err, attendance.ErrAlreadyCheckedToday) {
        var dup *attendance.AlreadyCheckedError
        errors.As(err, &dup)
        // dup.PriorTime carries the earlier event's timestamp
    }

SEE ALSO:
  - validator.go: Produces the rejection errors
  - aggregate.go: Propagates ErrStorageUnavailable without partial folds
*/
package attendance

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUnknownOrInactiveEmployee is returned when the employee id does not
	// resolve to an active employee.
	ErrUnknownOrInactiveEmployee = errors.New("unknown or inactive employee")

	// ErrOutsideTimeWindow is returned when an event's wall-clock time falls
	// outside the configured window for its direction.
	ErrOutsideTimeWindow = errors.New("outside allowed time window")

	// ErrAlreadyCheckedToday is returned when an event of the same direction
	// already exists for that employee on that civil date. This is the
	// engine's idempotency guarantee.
	ErrAlreadyCheckedToday = errors.New("already checked today")

	// ErrLocationNotAccepted is returned for IN events whose source channel
	// demands geofencing but whose location was not accepted.
	ErrLocationNotAccepted = errors.New("location not accepted")

	// ErrStorageUnavailable wraps persistence failures. Aggregations abort
	// on it rather than treating missing data as absence.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrInvalidMonth is returned for month numbers outside 1-12.
	ErrInvalidMonth = errors.New("invalid month")

	// ErrEmployeeNotFound is returned by directory lookups.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrDuplicateEvent is returned by the event store when the
	// (employee, date, direction) uniqueness constraint is violated.
	ErrDuplicateEvent = errors.New("duplicate check event")

	// ErrUnresolvedCredential is returned when a credential does not map to
	// any employee.
	ErrUnresolvedCredential = errors.New("credential not resolved")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// OutsideTimeWindowError carries the allowed window for display.
type OutsideTimeWindowError struct {
	Direction Direction
	Proposed  TimeOfDay
	Window    Window
}

func (e *OutsideTimeWindowError) Error() string {
	return fmt.Sprintf("%s at %s is outside the allowed window %s",
		e.Direction, e.Proposed, e.Window)
}

func (e *OutsideTimeWindowError) Unwrap() error { return ErrOutsideTimeWindow }

// AlreadyCheckedError carries the prior event's timestamp.
type AlreadyCheckedError struct {
	EmployeeID string
	Direction  Direction
	Date       Date
	PriorTime  time.Time
}

func (e *AlreadyCheckedError) Error() string {
	return fmt.Sprintf("employee %s already checked %s on %s at %s",
		e.EmployeeID, e.Direction, e.Date, e.PriorTime.Format("15:04"))
}

func (e *AlreadyCheckedError) Unwrap() error { return ErrAlreadyCheckedToday }

// StorageError wraps an underlying persistence failure while remaining
// matchable as ErrStorageUnavailable.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage unavailable during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return ErrStorageUnavailable }
