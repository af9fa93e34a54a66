/*
aggregate.go - Monthly fold of day records

PURPOSE:
  Folds a month of DayRecords per employee into totals: present/absent/
  late/early days, worked vs. expected hours, and attendance/punctuality
  rates. This is the input the payroll calculator consumes.

ALGORITHM:
  Enumerate every calendar date in the month; skip rest weekdays; call
  the daily reconciler for each remaining date and fold. Sequential
  O(daysInMonth) per employee; independent across employees, so callers
  may parallelize per employee.

FAILURE SEMANTICS:
  A storage failure aborts the whole aggregation. A partially-folded
  month is never returned.
*/
package attendance

import (
	"context"
	"fmt"
	"math"
	"time"
)

// MonthlyAggregator folds a calendar month of day records.
type MonthlyAggregator struct {
	reconciler *DailyReconciler
	shift      ShiftConfig
}

func NewMonthlyAggregator(reconciler *DailyReconciler, shift ShiftConfig) *MonthlyAggregator {
	return &MonthlyAggregator{reconciler: reconciler, shift: shift}
}

// Aggregate computes the MonthlyAggregate for one employee and month.
// Returns ErrInvalidMonth for month numbers outside 1-12.
func (a *MonthlyAggregator) Aggregate(ctx context.Context, employeeID string, year int, month time.Month) (MonthlyAggregate, error) {
	if month < time.January || month > time.December {
		return MonthlyAggregate{}, fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}

	agg := MonthlyAggregate{
		EmployeeID: employeeID,
		Year:       year,
		Month:      month,
	}

	first, last := MonthRange(year, month)
	for day := first; day.BeforeOrEqual(last); day = day.AddDays(1) {
		if !a.shift.IsWorkingDay(day) {
			continue
		}
		agg.WorkingDays++

		record, err := a.reconciler.ReconcileDay(ctx, employeeID, day)
		if err != nil {
			// Abort: never return a partially-folded month.
			return MonthlyAggregate{}, err
		}
		agg.Days = append(agg.Days, record)

		if !record.Present() {
			continue
		}
		agg.PresentDays++
		agg.WorkedHours += record.WorkedHours

		if record.IsLate {
			agg.LateDays++
			agg.TotalLateMinutes += record.LateMinutes
		}
		if record.IsEarlyDeparture {
			agg.EarlyDays++
			agg.TotalEarlyMinutes += record.EarlyMinutes
		}
	}

	agg.AbsentDays = agg.WorkingDays - agg.PresentDays
	agg.WorkedHours = round2(agg.WorkedHours)
	agg.ExpectedHours = round2(float64(agg.WorkingDays) * a.shift.DailyHours)

	// Rates are defined as 0 when the denominator is 0. workingDays == 0
	// cannot happen for a real month but must not crash.
	if agg.WorkingDays > 0 {
		agg.AttendanceRate = round2(float64(agg.PresentDays) / float64(agg.WorkingDays) * 100)
	}
	if agg.PresentDays > 0 {
		agg.PunctualityRate = round2(float64(agg.PresentDays-agg.LateDays) / float64(agg.PresentDays) * 100)
	}

	return agg, nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
