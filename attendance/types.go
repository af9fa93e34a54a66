/*
Package attendance provides the core attendance evaluation engine.

PURPOSE:
  This package contains the domain types and algorithms that turn raw
  check events (employee arrived / employee left) into payroll-relevant
  facts: lateness, early departure, worked hours, and monthly attendance
  totals. Check events arrive from multiple channels (QR terminal, chat
  bot with geolocation, face terminal, mobile app) but are evaluated by
  one rule set.

KEY CONCEPTS IN THIS FILE (types.go):
  - CheckEvent: An immutable IN/OUT fact for one employee
  - Employee: The externally-owned identity this engine references
  - DayRecord: One employee's folded attendance for one civil date
  - MonthlyAggregate: One employee's folded attendance for one month

DESIGN PRINCIPLES:
  1. Immutability: Check events are written once, never updated or deleted
  2. Idempotency: At most one IN and one OUT per employee per civil day
  3. Derivability: DayRecord and MonthlyAggregate are recomputed from the
     event ledger on demand, never stored as rows of their own

SEE ALSO:
  - validator.go: Event acceptance rules
  - classifier.go: Lateness/earliness classification
  - reconcile.go: Daily fold
  - aggregate.go: Monthly fold
*/
package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DIRECTION AND CHANNEL
// =============================================================================

// Direction is the kind of check event: arrival or departure.
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// Channel identifies which capture surface produced a check event.
type Channel string

const (
	ChannelApp  Channel = "app"
	ChannelBot  Channel = "bot"
	ChannelQR   Channel = "qr"
	ChannelFace Channel = "face"
)

// RequiresGeofence reports whether IN events from this channel must carry an
// accepted location. QR and face terminals imply office presence by their
// physical placement; the chat bot does not.
func (c Channel) RequiresGeofence() bool {
	return c == ChannelBot
}

// =============================================================================
// EMPLOYEE - Referenced identity (owned externally)
// =============================================================================

// Employee is the identity this engine references. Identity resolution and
// credential management live outside the engine; it trusts the directory.
type Employee struct {
	ID         string
	UUID       string // credential for QR and face resolution
	FullName   string
	Position   string
	Phone      string
	TelegramID int64 // 0 when no chat account is linked
	BaseSalary decimal.NullDecimal
	Active     bool
	CreatedAt  time.Time
}

// =============================================================================
// CHECK EVENT - Immutable attendance fact
// =============================================================================

// GeoPoint is an optional coordinate pair attached to bot-channel events.
type GeoPoint struct {
	Latitude  float64
	Longitude float64
}

// CheckEvent is a single accepted IN or OUT fact. Created once by the
// Validator, persisted append-only, never mutated.
//
// IsLate/LateMinutes (IN) and IsEarlyDeparture/EarlyMinutes (OUT) are cached
// classification results for fast reads; the classifier remains the single
// source of truth and can recompute them from Time alone.
type CheckEvent struct {
	ID         string
	EmployeeID string
	Direction  Direction
	Time       time.Time // civil local timestamp
	Channel    Channel

	Location         *GeoPoint
	LocationAccepted *bool

	IsLate           bool
	LateMinutes      int
	IsEarlyDeparture bool
	EarlyMinutes     int

	RecordedAt time.Time // stamped once at validation time
}

// Date returns the civil date the event belongs to.
func (e *CheckEvent) Date() Date { return DateOf(e.Time) }

// =============================================================================
// DAY RECORD - One employee, one civil date
// =============================================================================

// DayStatus classifies a reconciled day.
type DayStatus string

const (
	StatusAbsent        DayStatus = "absent"
	StatusNotCheckedOut DayStatus = "not_checked_out"
	StatusComplete      DayStatus = "complete"
	StatusFullDay       DayStatus = "full_day"
	StatusHalfDay       DayStatus = "half_day"
	StatusShortDay      DayStatus = "short_day"
)

// DayRecord is the fold of one employee's accepted events on one date.
// Derived on demand from the event ledger, never persisted.
//
// Invariant: WorkedHours = CheckOut − CheckIn when both are present and
// CheckOut is after CheckIn, else 0.
type DayRecord struct {
	Date       Date
	EmployeeID string

	CheckIn  *time.Time // earliest accepted IN, nil when absent
	CheckOut *time.Time // latest accepted OUT

	Status      DayStatus
	WorkedHours float64

	IsLate           bool
	LateMinutes      int
	IsEarlyDeparture bool
	EarlyMinutes     int
}

// Present reports whether the employee checked in at all on this day.
func (d DayRecord) Present() bool { return d.CheckIn != nil }

// =============================================================================
// MONTHLY AGGREGATE - One employee, one calendar month
// =============================================================================

// MonthlyAggregate is the fold of a month of DayRecords.
//
// Invariants:
//   - PresentDays + AbsentDays == WorkingDays
//   - Rates are 0 when their denominator is 0 (defined, not a crash)
type MonthlyAggregate struct {
	EmployeeID string
	Year       int
	Month      time.Month

	WorkingDays int // days in range not matching a rest weekday
	PresentDays int
	AbsentDays  int
	LateDays    int
	EarlyDays   int

	TotalLateMinutes  int
	TotalEarlyMinutes int

	WorkedHours   float64
	ExpectedHours float64 // WorkingDays × configured daily hours

	AttendanceRate  float64 // percent, 2dp
	PunctualityRate float64 // percent, 2dp

	Days []DayRecord
}
