/*
Package payroll converts monthly attendance aggregates and a base salary
into a deduction breakdown and a final salary figure.

PURPOSE:
  Pure read-time projection: computed on request, never persisted. All
  money arithmetic uses decimal.Decimal to avoid floating-point error,
  and values are rounded to 2 decimal places at output time only, never
  during intermediate computation.

RATE POLICY:
  The daily salary divides the base salary by a FIXED standard working-
  month length (default 26 days, for a 6-day week), independent of the
  actual working days of the specific month. Attendance is measured
  against the actual month; deduction rates use the standard month. This
  decoupling is a deliberate policy choice, not a bug.

DEDUCTIONS:
  - Absence:       absent days x daily salary
  - Late arrival:  late days x daily salary x late penalty rate
  - Early leave:   early days x daily salary x early penalty rate
  - Hour shortage: shortage hours x hourly salary, only when the monthly
    shortage exceeds the configured threshold

  Each line item is added only when its amount is positive. The final
  salary is base minus total deductions, NOT floored at zero: whether to
  clamp when deductions exceed base is an unresolved stakeholder
  question, and silently clamping would hide it.

SEE ALSO:
  - attendance/aggregate.go: Produces the MonthlyAggregate input
*/
package payroll

import (
	"github.com/shopspring/decimal"

	"github.com/warp/attendance-engine/attendance"
)

// =============================================================================
// CONFIG
// =============================================================================

// Config holds the deduction-rate policy. Loaded at startup.
type Config struct {
	WorkingDaysPerMonth int64           // standard monthly divisor for the daily rate
	DailyHours          decimal.Decimal // divisor for the hourly rate
	LatePenaltyRate     decimal.Decimal // fraction of daily salary per late day
	EarlyPenaltyRate    decimal.Decimal // fraction of daily salary per early day
	ShortageThreshold   decimal.Decimal // monthly shortage hours before deduction
}

func DefaultConfig() Config {
	return Config{
		WorkingDaysPerMonth: 26,
		DailyHours:          decimal.RequireFromString("8.5"),
		LatePenaltyRate:     decimal.RequireFromString("0.02"),
		EarlyPenaltyRate:    decimal.RequireFromString("0.03"),
		ShortageThreshold:   decimal.NewFromInt(2),
	}
}

// =============================================================================
// RESULT
// =============================================================================

// Cause keys a deduction line item.
type Cause string

const (
	CauseAbsence      Cause = "absent_days"
	CauseLateArrival  Cause = "late_arrivals"
	CauseEarlyLeave   Cause = "early_departures"
	CauseHourShortage Cause = "hour_shortage"
)

// Deduction is one line item of the breakdown. Days is set for day-count
// causes, Hours for the shortage cause.
type Deduction struct {
	Cause  Cause
	Days   int
	Hours  decimal.Decimal
	Amount decimal.Decimal
}

// Result is the payroll projection for one employee and month.
// All monetary fields are rounded to 2 decimal places.
type Result struct {
	BaseSalary   decimal.Decimal
	DailySalary  decimal.Decimal
	HourlySalary decimal.Decimal

	Deductions      []Deduction
	TotalDeductions decimal.Decimal

	// FinalSalary = BaseSalary - TotalDeductions, unclamped.
	FinalSalary decimal.Decimal

	WorkedHours   decimal.Decimal
	ExpectedHours decimal.Decimal
}

// =============================================================================
// CALCULATOR
// =============================================================================

// Calculate computes the deduction breakdown and final salary. Returns an
// all-zero Result when the base salary is not positive.
func Calculate(baseSalary decimal.Decimal, agg attendance.MonthlyAggregate, cfg Config) Result {
	if !baseSalary.IsPositive() {
		return Result{}
	}

	daily := baseSalary.Div(decimal.NewFromInt(cfg.WorkingDaysPerMonth))
	hourly := daily.Div(cfg.DailyHours)

	worked := decimal.NewFromFloat(agg.WorkedHours)
	expected := decimal.NewFromFloat(agg.ExpectedHours)

	var items []Deduction
	total := decimal.Zero

	if agg.AbsentDays > 0 {
		amount := daily.Mul(decimal.NewFromInt(int64(agg.AbsentDays)))
		items = append(items, Deduction{Cause: CauseAbsence, Days: agg.AbsentDays, Amount: amount.Round(2)})
		total = total.Add(amount)
	}

	if agg.LateDays > 0 {
		amount := daily.Mul(cfg.LatePenaltyRate).Mul(decimal.NewFromInt(int64(agg.LateDays)))
		items = append(items, Deduction{Cause: CauseLateArrival, Days: agg.LateDays, Amount: amount.Round(2)})
		total = total.Add(amount)
	}

	if agg.EarlyDays > 0 {
		amount := daily.Mul(cfg.EarlyPenaltyRate).Mul(decimal.NewFromInt(int64(agg.EarlyDays)))
		items = append(items, Deduction{Cause: CauseEarlyLeave, Days: agg.EarlyDays, Amount: amount.Round(2)})
		total = total.Add(amount)
	}

	if shortage := expected.Sub(worked); shortage.GreaterThan(cfg.ShortageThreshold) {
		amount := shortage.Mul(hourly)
		items = append(items, Deduction{Cause: CauseHourShortage, Hours: shortage.Round(2), Amount: amount.Round(2)})
		total = total.Add(amount)
	}

	return Result{
		BaseSalary:   baseSalary.Round(2),
		DailySalary:  daily.Round(2),
		HourlySalary: hourly.Round(2),

		Deductions:      items,
		TotalDeductions: total.Round(2),
		FinalSalary:     baseSalary.Sub(total).Round(2),

		WorkedHours:   worked.Round(2),
		ExpectedHours: expected.Round(2),
	}
}
