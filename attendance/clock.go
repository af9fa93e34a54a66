package attendance

import (
	"fmt"
	"time"
)

// =============================================================================
// CLOCK - Injectable time source
// =============================================================================

// Clock supplies the current local time. Handlers and the scheduler receive a
// Clock instead of calling time.Now directly so tests can pin the wall clock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock in the deployment's local zone.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant. Test use only.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time { return c.At }

// =============================================================================
// DATE - Civil date at day granularity
// =============================================================================

// Date is a civil calendar date in the deployment's fixed local timezone.
// All attendance accounting happens on civil dates, never UTC-normalized.
type Date struct {
	Time time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.Local)}
}

// DateOf truncates a timestamp to its civil date.
func DateOf(t time.Time) Date {
	return Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())}
}

// Comparison
func (d Date) Before(other Date) bool { return d.normalize().Before(other.normalize()) }
func (d Date) Equal(other Date) bool  { return d.normalize().Equal(other.normalize()) }
func (d Date) After(other Date) bool  { return d.normalize().After(other.normalize()) }
func (d Date) BeforeOrEqual(other Date) bool { return d.Before(other) || d.Equal(other) }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic and properties
func (d Date) AddDays(n int) Date       { return Date{Time: d.Time.AddDate(0, 0, n)} }
func (d Date) Year() int                { return d.Time.Year() }
func (d Date) Month() time.Month        { return d.Time.Month() }
func (d Date) Day() int                 { return d.Time.Day() }
func (d Date) Weekday() time.Weekday    { return d.Time.Weekday() }
func (d Date) IsZero() bool             { return d.Time.IsZero() }

func (d Date) String() string { return d.Time.Format("2006-01-02") }

// MonthRange returns the first and last civil dates of a calendar month.
func MonthRange(year int, month time.Month) (Date, Date) {
	first := NewDate(year, month, 1)
	last := Date{Time: time.Date(year, month+1, 1, 0, 0, 0, 0, time.Local).AddDate(0, 0, -1)}
	return first, last
}

// =============================================================================
// TIME OF DAY - Minute-resolution wall-clock time
// =============================================================================

// TimeOfDay is a wall-clock time expressed as minutes since midnight.
// Shift boundaries and check windows are all minute-resolution.
type TimeOfDay int

func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// ParseTimeOfDay parses "HH:MM" (24-hour clock).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	return NewTimeOfDay(hour, minute), nil
}

// TimeOfDayOf extracts the wall-clock time from a timestamp, dropping seconds.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return NewTimeOfDay(t.Hour(), t.Minute())
}

func (t TimeOfDay) Hour() int    { return int(t) / 60 }
func (t TimeOfDay) Minute() int  { return int(t) % 60 }
func (t TimeOfDay) Minutes() int { return int(t) }

func (t TimeOfDay) Before(other TimeOfDay) bool { return t < other }
func (t TimeOfDay) After(other TimeOfDay) bool  { return t > other }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// MinutesBetween returns to−from in minutes, floored at 0.
func MinutesBetween(from, to TimeOfDay) int {
	delta := to.Minutes() - from.Minutes()
	if delta < 0 {
		return 0
	}
	return delta
}

// =============================================================================
// WINDOW - Inclusive wall-clock interval
// =============================================================================

// Window is an inclusive [Start, End] wall-clock interval used for check-in
// and check-out acceptance.
type Window struct {
	Start TimeOfDay
	End   TimeOfDay
}

// Contains reports whether t falls within the window, boundaries included.
func (w Window) Contains(t TimeOfDay) bool {
	return t >= w.Start && t <= w.End
}

func (w Window) String() string {
	return w.Start.String() + "-" + w.End.String()
}
