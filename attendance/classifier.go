/*
classifier.go - Lateness and early-departure classification

PURPOSE:
  Computes the lateness/earliness flags and minute deltas for a check
  event against the configured shift boundaries. Pure functions of the
  event time and the shift configuration: no I/O, deterministic, and
  re-derivable from stored events at any later time.

BOUNDARIES:
  An IN at exactly work start is NOT late (strict >). An OUT at exactly
  work end is NOT early (strict <). Minute deltas are floored at 0.

CACHING:
  The Validator caches the classification on the accepted event for fast
  reads. The classifier stays the single source of truth: Classify() can
  recompute from the stored timestamp to validate cache integrity.
*/
package attendance

// Classification is the result of classifying one check event.
// For IN events only the lateness fields are meaningful; for OUT events
// only the earliness fields.
type Classification struct {
	IsLate      bool
	LateMinutes int

	IsEarlyDeparture bool
	EarlyMinutes     int
}

// ClassifyIn classifies an arrival time against the work-start boundary.
func ClassifyIn(at TimeOfDay, shift ShiftConfig) Classification {
	if !at.After(shift.WorkStart) {
		return Classification{}
	}
	return Classification{
		IsLate:      true,
		LateMinutes: MinutesBetween(shift.WorkStart, at),
	}
}

// ClassifyOut classifies a departure time against the work-end boundary.
func ClassifyOut(at TimeOfDay, shift ShiftConfig) Classification {
	if !at.Before(shift.WorkEnd) {
		return Classification{}
	}
	return Classification{
		IsEarlyDeparture: true,
		EarlyMinutes:     MinutesBetween(at, shift.WorkEnd),
	}
}

// Classify recomputes the classification for a stored event from its
// timestamp alone. Used to validate cached flags.
func Classify(event *CheckEvent, shift ShiftConfig) Classification {
	at := TimeOfDayOf(event.Time)
	if event.Direction == DirectionOut {
		return ClassifyOut(at, shift)
	}
	return ClassifyIn(at, shift)
}
