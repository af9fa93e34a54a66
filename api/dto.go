/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/payroll"
	"github.com/warp/attendance-engine/report"
)

// =============================================================================
// CHECK EVENTS
// =============================================================================

// CheckRequest proposes a check event. Identity is given either directly
// (employee_id) or as a credential the directory resolves.
type CheckRequest struct {
	EmployeeID     string `json:"employee_id,omitempty"`
	CredentialKind string `json:"credential_kind,omitempty"` // qr_token | face_match | chat_account
	Credential     string `json:"credential,omitempty"`

	Direction string `json:"direction"` // IN | OUT
	Channel   string `json:"channel"`   // app | bot | qr | face

	// Optional; defaults to the server clock when empty. RFC 3339.
	ProposedTime string `json:"proposed_time,omitempty"`

	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	// Pre-gated location decision. When absent and coordinates are given,
	// the server's office geofence decides.
	LocationAccepted *bool `json:"location_accepted,omitempty"`
}

// CheckEventDTO is an accepted check event.
type CheckEventDTO struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	Direction  string `json:"direction"`
	Time       string `json:"time"`
	Channel    string `json:"channel"`

	IsLate           bool `json:"is_late"`
	LateMinutes      int  `json:"late_minutes"`
	IsEarlyDeparture bool `json:"is_early_departure"`
	EarlyMinutes     int  `json:"early_minutes"`
}

func toCheckEventDTO(e *attendance.CheckEvent) CheckEventDTO {
	return CheckEventDTO{
		ID:         e.ID,
		EmployeeID: e.EmployeeID,
		Direction:  string(e.Direction),
		Time:       e.Time.Format(time.RFC3339),
		Channel:    string(e.Channel),

		IsLate:           e.IsLate,
		LateMinutes:      e.LateMinutes,
		IsEarlyDeparture: e.IsEarlyDeparture,
		EarlyMinutes:     e.EarlyMinutes,
	}
}

// =============================================================================
// DAY RECORDS AND AGGREGATES
// =============================================================================

type DayRecordDTO struct {
	Date       string  `json:"date"`
	EmployeeID string  `json:"employee_id"`
	CheckIn    *string `json:"check_in"`
	CheckOut   *string `json:"check_out"`

	Status      string  `json:"status"`
	WorkedHours float64 `json:"worked_hours"`

	IsLate           bool `json:"is_late"`
	LateMinutes      int  `json:"late_minutes"`
	IsEarlyDeparture bool `json:"is_early_departure"`
	EarlyMinutes     int  `json:"early_minutes"`
}

func toDayRecordDTO(r attendance.DayRecord) DayRecordDTO {
	dto := DayRecordDTO{
		Date:       r.Date.String(),
		EmployeeID: r.EmployeeID,

		Status:      string(r.Status),
		WorkedHours: r.WorkedHours,

		IsLate:           r.IsLate,
		LateMinutes:      r.LateMinutes,
		IsEarlyDeparture: r.IsEarlyDeparture,
		EarlyMinutes:     r.EarlyMinutes,
	}
	if r.CheckIn != nil {
		s := r.CheckIn.Format(time.RFC3339)
		dto.CheckIn = &s
	}
	if r.CheckOut != nil {
		s := r.CheckOut.Format(time.RFC3339)
		dto.CheckOut = &s
	}
	return dto
}

type MonthlyAggregateDTO struct {
	EmployeeID string `json:"employee_id"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`

	WorkingDays int `json:"working_days"`
	PresentDays int `json:"present_days"`
	AbsentDays  int `json:"absent_days"`
	LateDays    int `json:"late_days"`
	EarlyDays   int `json:"early_departure_days"`

	TotalLateMinutes  int `json:"total_late_minutes"`
	TotalEarlyMinutes int `json:"total_early_departure_minutes"`

	WorkedHours   float64 `json:"total_worked_hours"`
	ExpectedHours float64 `json:"expected_hours"`

	AttendanceRate  float64 `json:"attendance_rate"`
	PunctualityRate float64 `json:"punctuality_rate"`

	Days []DayRecordDTO `json:"days,omitempty"`
}

func toMonthlyAggregateDTO(a attendance.MonthlyAggregate, includeDays bool) MonthlyAggregateDTO {
	dto := MonthlyAggregateDTO{
		EmployeeID: a.EmployeeID,
		Year:       a.Year,
		Month:      int(a.Month),

		WorkingDays: a.WorkingDays,
		PresentDays: a.PresentDays,
		AbsentDays:  a.AbsentDays,
		LateDays:    a.LateDays,
		EarlyDays:   a.EarlyDays,

		TotalLateMinutes:  a.TotalLateMinutes,
		TotalEarlyMinutes: a.TotalEarlyMinutes,

		WorkedHours:   a.WorkedHours,
		ExpectedHours: a.ExpectedHours,

		AttendanceRate:  a.AttendanceRate,
		PunctualityRate: a.PunctualityRate,
	}
	if includeDays {
		for _, day := range a.Days {
			dto.Days = append(dto.Days, toDayRecordDTO(day))
		}
	}
	return dto
}

// =============================================================================
// PAYROLL
// =============================================================================

type DeductionDTO struct {
	Cause  string `json:"cause"`
	Days   int    `json:"days,omitempty"`
	Hours  string `json:"hours,omitempty"`
	Amount string `json:"amount"`
}

type PayrollResultDTO struct {
	BaseSalary   string `json:"base_salary"`
	DailySalary  string `json:"daily_salary"`
	HourlySalary string `json:"hourly_salary"`

	Deductions      []DeductionDTO `json:"deduction_breakdown"`
	TotalDeductions string         `json:"total_deductions"`
	FinalSalary     string         `json:"final_salary"`

	WorkedHours   string `json:"worked_hours"`
	ExpectedHours string `json:"expected_hours"`
}

func toPayrollResultDTO(r payroll.Result) PayrollResultDTO {
	dto := PayrollResultDTO{
		BaseSalary:   r.BaseSalary.StringFixed(2),
		DailySalary:  r.DailySalary.StringFixed(2),
		HourlySalary: r.HourlySalary.StringFixed(2),

		TotalDeductions: r.TotalDeductions.StringFixed(2),
		FinalSalary:     r.FinalSalary.StringFixed(2),

		WorkedHours:   r.WorkedHours.StringFixed(2),
		ExpectedHours: r.ExpectedHours.StringFixed(2),
	}
	for _, d := range r.Deductions {
		item := DeductionDTO{
			Cause:  string(d.Cause),
			Days:   d.Days,
			Amount: d.Amount.StringFixed(2),
		}
		if !d.Hours.IsZero() {
			item.Hours = d.Hours.StringFixed(2)
		}
		dto.Deductions = append(dto.Deductions, item)
	}
	return dto
}

// =============================================================================
// EMPLOYEES
// =============================================================================

type EmployeeDTO struct {
	ID         string `json:"id"`
	UUID       string `json:"uuid"`
	FullName   string `json:"full_name"`
	Position   string `json:"position,omitempty"`
	Phone      string `json:"phone,omitempty"`
	TelegramID int64  `json:"telegram_id,omitempty"`
	BaseSalary string `json:"base_salary,omitempty"`
	Active     bool   `json:"is_active"`
}

func toEmployeeDTO(e attendance.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:         e.ID,
		UUID:       e.UUID,
		FullName:   e.FullName,
		Position:   e.Position,
		Phone:      e.Phone,
		TelegramID: e.TelegramID,
		Active:     e.Active,
	}
	if e.BaseSalary.Valid {
		dto.BaseSalary = e.BaseSalary.Decimal.StringFixed(2)
	}
	return dto
}

type CreateEmployeeRequest struct {
	ID         string `json:"id,omitempty"` // generated when empty
	FullName   string `json:"full_name"`
	Position   string `json:"position,omitempty"`
	Phone      string `json:"phone,omitempty"`
	TelegramID int64  `json:"telegram_id,omitempty"`
	BaseSalary string `json:"base_salary,omitempty"`
}

// =============================================================================
// REPORTS
// =============================================================================

type DailyReportDTO struct {
	Date    string `json:"date"`
	Summary string `json:"summary"`

	TotalEmployees int `json:"total_employees"`
	PresentCount   int `json:"present_count"`
	AbsentCount    int `json:"absent_count"`
	LateCount      int `json:"late_count"`
	OnTimeCount    int `json:"on_time_count"`

	OnTime []ArrivalDTO  `json:"on_time,omitempty"`
	Late   []ArrivalDTO  `json:"late,omitempty"`
	Absent []EmployeeDTO `json:"absent,omitempty"`
}

type ArrivalDTO struct {
	Employee    EmployeeDTO `json:"employee"`
	CheckTime   string      `json:"check_time"`
	Channel     string      `json:"channel"`
	LateMinutes int         `json:"late_minutes,omitempty"`
}

func toDailyReportDTO(d report.Daily) DailyReportDTO {
	dto := DailyReportDTO{
		Date:    d.Date.String(),
		Summary: d.SummaryLine(),

		TotalEmployees: d.TotalEmployees,
		PresentCount:   d.PresentCount,
		AbsentCount:    d.AbsentCount,
		LateCount:      d.LateCount,
		OnTimeCount:    d.OnTimeCount,
	}
	for _, a := range d.OnTime {
		dto.OnTime = append(dto.OnTime, toArrivalDTO(a))
	}
	for _, a := range d.Late {
		dto.Late = append(dto.Late, toArrivalDTO(a))
	}
	for _, emp := range d.Absent {
		dto.Absent = append(dto.Absent, toEmployeeDTO(emp))
	}
	return dto
}

func toArrivalDTO(a report.Arrival) ArrivalDTO {
	return ArrivalDTO{
		Employee:    toEmployeeDTO(a.Employee),
		CheckTime:   a.CheckTime.Format("15:04"),
		Channel:     string(a.Channel),
		LateMinutes: a.LateMinutes,
	}
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}
