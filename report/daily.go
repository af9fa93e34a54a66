/*
Package report renders engine output for consumers: the daily attendance
breakdown with its summary line, and the monthly Excel workbook.

The engine itself only exposes plain structured values (DayRecord,
MonthlyAggregate, PayrollResult); everything in this package is a
consumer of those values.
*/
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/warp/attendance-engine/attendance"
)

// =============================================================================
// DAILY REPORT
// =============================================================================

// Arrival is one employee's check-in on the report date.
type Arrival struct {
	Employee    attendance.Employee
	CheckTime   time.Time
	Channel     attendance.Channel
	LateMinutes int
}

// Daily is the attendance breakdown for one civil date across all active
// employees.
type Daily struct {
	Date attendance.Date

	TotalEmployees int
	PresentCount   int
	AbsentCount    int
	LateCount      int
	OnTimeCount    int

	OnTime []Arrival
	Late   []Arrival
	Absent []attendance.Employee
}

// BuildDaily assembles the daily report for a date from the directory and
// the event store.
func BuildDaily(ctx context.Context, directory attendance.EmployeeDirectory, events attendance.EventStore, day attendance.Date) (Daily, error) {
	employees, err := directory.ListActive(ctx)
	if err != nil {
		return Daily{}, &attendance.StorageError{Op: "list employees", Err: err}
	}

	d := Daily{Date: day, TotalEmployees: len(employees)}

	for _, emp := range employees {
		evs, err := events.EventsOn(ctx, emp.ID, day)
		if err != nil {
			return Daily{}, &attendance.StorageError{Op: "load events", Err: err}
		}

		var checkIn *attendance.CheckEvent
		for i := range evs {
			if evs[i].Direction == attendance.DirectionIn {
				checkIn = &evs[i]
				break
			}
		}

		if checkIn == nil {
			d.AbsentCount++
			d.Absent = append(d.Absent, emp)
			continue
		}

		d.PresentCount++
		arrival := Arrival{
			Employee:    emp,
			CheckTime:   checkIn.Time,
			Channel:     checkIn.Channel,
			LateMinutes: checkIn.LateMinutes,
		}
		if checkIn.IsLate {
			d.LateCount++
			d.Late = append(d.Late, arrival)
		} else {
			d.OnTimeCount++
			d.OnTime = append(d.OnTime, arrival)
		}
	}

	return d, nil
}

// AttendanceRate returns the present percentage, 0 when no employees.
func (d Daily) AttendanceRate() float64 {
	if d.TotalEmployees == 0 {
		return 0
	}
	return float64(d.PresentCount) / float64(d.TotalEmployees) * 100
}

// SummaryLine renders the compact one-line summary. The exact format is a
// contract some consumers parse verbatim; do not change it.
func (d Daily) SummaryLine() string {
	return fmt.Sprintf("%s | %d/%d (%.0f%%) | %d late",
		d.Date, d.PresentCount, d.TotalEmployees, d.AttendanceRate(), d.LateCount)
}
