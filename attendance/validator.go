/*
validator.go - Check event acceptance

PURPOSE:
  Decides, for every proposed check event, whether it is valid. On
  acceptance it persists exactly one immutable CheckEvent; on rejection
  it returns a typed reason the caller translates to a user message.

RULES (in evaluation order):
  1. Employee must resolve to an active employee
  2. Wall-clock time must fall inside the window for the direction
  3. No event of the same direction may exist for that employee+date
  4. Bot-channel IN events must carry an accepted location

IDEMPOTENCY:
  At most one IN and one OUT accepted per employee per civil day,
  regardless of channel. The in-process duplicate check is read-then-
  decide; the store's uniqueness constraint is the real guarantee, and a
  lost race surfaces as the same AlreadyCheckedError.

CLASSIFICATION:
  Acceptance does not decide lateness by itself - classifier.go does -
  but the result is cached on the event here, and the event is stamped
  as recorded at validation time so wall-clock time is read only once.

SEE ALSO:
  - classifier.go: Flag computation
  - store.go: EventStore contract and uniqueness requirement
*/
package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CheckInput is a proposed check event as captured by a channel.
type CheckInput struct {
	EmployeeID   string
	Direction    Direction
	ProposedTime time.Time
	Channel      Channel

	Location         *GeoPoint
	LocationAccepted *bool
}

// Validator applies the acceptance rules and writes accepted events.
// Construct once at startup; safe for concurrent use.
type Validator struct {
	events    EventStore
	directory EmployeeDirectory
	clock     Clock
	shift     ShiftConfig
}

func NewValidator(events EventStore, directory EmployeeDirectory, clock Clock, shift ShiftConfig) *Validator {
	return &Validator{events: events, directory: directory, clock: clock, shift: shift}
}

// Validate applies the acceptance rules to a proposed event. On acceptance
// the returned event has been persisted and carries its cached
// classification; on rejection the error is one of the typed reasons in
// errors.go.
func (v *Validator) Validate(ctx context.Context, in CheckInput) (*CheckEvent, error) {
	emp, err := v.directory.GetEmployee(ctx, in.EmployeeID)
	if err != nil {
		if errors.Is(err, ErrEmployeeNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownOrInactiveEmployee, in.EmployeeID)
		}
		return nil, &StorageError{Op: "get employee", Err: err}
	}
	if !emp.Active {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOrInactiveEmployee, in.EmployeeID)
	}

	proposed := TimeOfDayOf(in.ProposedTime)
	window := v.shift.WindowFor(in.Direction)
	if !window.Contains(proposed) {
		return nil, &OutsideTimeWindowError{
			Direction: in.Direction,
			Proposed:  proposed,
			Window:    window,
		}
	}

	day := DateOf(in.ProposedTime)
	existing, err := v.events.EventsOn(ctx, in.EmployeeID, day)
	if err != nil {
		return nil, &StorageError{Op: "load events", Err: err}
	}
	for i := range existing {
		if existing[i].Direction == in.Direction {
			return nil, &AlreadyCheckedError{
				EmployeeID: in.EmployeeID,
				Direction:  in.Direction,
				Date:       day,
				PriorTime:  existing[i].Time,
			}
		}
	}

	if in.Direction == DirectionIn && in.Channel.RequiresGeofence() {
		if in.LocationAccepted == nil || !*in.LocationAccepted {
			return nil, fmt.Errorf("%w: channel %s requires an accepted location", ErrLocationNotAccepted, in.Channel)
		}
	}

	cls := Classification{}
	if in.Direction == DirectionIn {
		cls = ClassifyIn(proposed, v.shift)
	} else {
		cls = ClassifyOut(proposed, v.shift)
	}

	event := &CheckEvent{
		ID:         uuid.NewString(),
		EmployeeID: in.EmployeeID,
		Direction:  in.Direction,
		Time:       in.ProposedTime,
		Channel:    in.Channel,

		Location:         in.Location,
		LocationAccepted: in.LocationAccepted,

		IsLate:           cls.IsLate,
		LateMinutes:      cls.LateMinutes,
		IsEarlyDeparture: cls.IsEarlyDeparture,
		EarlyMinutes:     cls.EarlyMinutes,

		RecordedAt: v.clock.Now(),
	}

	if err := v.events.Append(ctx, event); err != nil {
		if errors.Is(err, ErrDuplicateEvent) {
			// Lost a concurrent race; same outcome as the read check.
			return nil, &AlreadyCheckedError{
				EmployeeID: in.EmployeeID,
				Direction:  in.Direction,
				Date:       day,
				PriorTime:  in.ProposedTime,
			}
		}
		return nil, &StorageError{Op: "append event", Err: err}
	}

	return event, nil
}
