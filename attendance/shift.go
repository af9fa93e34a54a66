package attendance

import "time"

// =============================================================================
// SHIFT CONFIG - Process-wide attendance rule set
// =============================================================================

// ShiftConfig holds the attendance rule set for a deployment. Loaded at
// startup, effectively immutable for a run.
//
// Rest weekdays define the attendance accounting calendar. The report
// scheduler keeps its own, independent weekday filter; the two calendars are
// intentionally different and must not be unified.
type ShiftConfig struct {
	WorkStart TimeOfDay
	WorkEnd   TimeOfDay

	CheckInWindow  Window
	CheckOutWindow Window

	RestWeekdays map[time.Weekday]bool

	DailyHours       float64 // expected hours per working day
	FullDayThreshold float64 // worked hours for a full day
	HalfDayThreshold float64 // worked hours for a half day
}

// DefaultShiftConfig is the authoritative rule set: work 09:30-18:00,
// 6-day week with Sunday rest, check-in 07:00-11:00, check-out 16:00-20:00.
func DefaultShiftConfig() ShiftConfig {
	return ShiftConfig{
		WorkStart:      NewTimeOfDay(9, 30),
		WorkEnd:        NewTimeOfDay(18, 0),
		CheckInWindow:  Window{Start: NewTimeOfDay(7, 0), End: NewTimeOfDay(11, 0)},
		CheckOutWindow: Window{Start: NewTimeOfDay(16, 0), End: NewTimeOfDay(20, 0)},
		RestWeekdays:   map[time.Weekday]bool{time.Sunday: true},

		DailyHours:       8.5,
		FullDayThreshold: 8.5,
		HalfDayThreshold: 4,
	}
}

// WindowFor returns the acceptance window for a direction.
func (c ShiftConfig) WindowFor(dir Direction) Window {
	if dir == DirectionOut {
		return c.CheckOutWindow
	}
	return c.CheckInWindow
}

// IsWorkingDay reports whether a date counts toward attendance accounting.
func (c ShiftConfig) IsWorkingDay(d Date) bool {
	return !c.RestWeekdays[d.Weekday()]
}
