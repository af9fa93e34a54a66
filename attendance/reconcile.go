/*
reconcile.go - Daily fold of accepted events

PURPOSE:
  Folds one employee's accepted events for one civil date into a single
  DayRecord: status, worked hours, check-in/out times, and the cached
  lateness/earliness flags.

ALGORITHM:
  Earliest accepted IN, latest accepted OUT (the store returns events in
  timestamp order, which is insertion order for an append-only ledger).
  No IN at all means status=absent with zero worked hours - absence of
  data is not an error. An IN without an OUT is not_checked_out. With
  both, worked hours are OUT-IN when OUT is after IN, and the status is
  full_day / half_day / short_day by the configured thresholds.

FAILURE SEMANTICS:
  Genuine storage errors propagate as ErrStorageUnavailable; the monthly
  aggregator aborts on them rather than silently treating the day as
  absent.
*/
package attendance

import (
	"context"
	"math"
)

// DailyReconciler folds a day's events into a DayRecord.
type DailyReconciler struct {
	events EventStore
	shift  ShiftConfig
}

func NewDailyReconciler(events EventStore, shift ShiftConfig) *DailyReconciler {
	return &DailyReconciler{events: events, shift: shift}
}

// ReconcileDay recomputes the DayRecord for one employee and date.
func (r *DailyReconciler) ReconcileDay(ctx context.Context, employeeID string, day Date) (DayRecord, error) {
	events, err := r.events.EventsOn(ctx, employeeID, day)
	if err != nil {
		return DayRecord{}, &StorageError{Op: "load events", Err: err}
	}

	record := DayRecord{
		Date:       day,
		EmployeeID: employeeID,
		Status:     StatusAbsent,
	}

	// Earliest IN, latest OUT. Events arrive timestamp-ascending, so the
	// first IN seen is the earliest and the last OUT seen is the latest.
	for i := range events {
		e := &events[i]
		switch e.Direction {
		case DirectionIn:
			if record.CheckIn == nil {
				t := e.Time
				record.CheckIn = &t
				record.IsLate = e.IsLate
				record.LateMinutes = e.LateMinutes
			}
		case DirectionOut:
			t := e.Time
			record.CheckOut = &t
			record.IsEarlyDeparture = e.IsEarlyDeparture
			record.EarlyMinutes = e.EarlyMinutes
		}
	}

	switch {
	case record.CheckIn == nil:
		record.Status = StatusAbsent

	case record.CheckOut == nil:
		record.Status = StatusNotCheckedOut

	case record.CheckOut.After(*record.CheckIn):
		hours := record.CheckOut.Sub(*record.CheckIn).Hours()
		record.WorkedHours = math.Round(hours*100) / 100
		record.Status = r.statusForHours(record.WorkedHours)

	default:
		// OUT at or before IN on the same date: present, but treated as
		// zero worked hours.
		record.Status = StatusShortDay
	}

	return record, nil
}

func (r *DailyReconciler) statusForHours(hours float64) DayStatus {
	switch {
	case hours >= r.shift.FullDayThreshold:
		return StatusFullDay
	case hours >= r.shift.HalfDayThreshold:
		return StatusHalfDay
	default:
		return StatusShortDay
	}
}
