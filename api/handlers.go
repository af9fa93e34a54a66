/*
handlers.go - HTTP API handlers for the attendance engine

PURPOSE:
  Exposes the attendance evaluation and payroll engine via REST. Handles
  HTTP request/response, JSON serialization, and delegates to the domain
  logic.

ENDPOINTS:
  Check events:
    POST   /api/attendance/check                 Validate & record an event

  Attendance:
    GET    /api/attendance/{id}/day/{date}       DayRecord for one date
    GET    /api/attendance/{id}/month/{year}/{month}  MonthlyAggregate

  Payroll:
    GET    /api/payroll/{id}/{year}/{month}      PayrollResult

  Reports:
    GET    /api/reports/daily?date=YYYY-MM-DD    Daily breakdown + summary
    POST   /api/reports/monthly                  Excel workbook generation

  Employees:
    GET    /api/employees                        List active employees
    POST   /api/employees                        Create employee
    GET    /api/employees/{id}                   Get employee

ERROR HANDLING:
  Rejections are returned as JSON with a machine-readable reason code:
  - 400: Malformed input, invalid month
  - 404: Unknown employee / unresolved credential
  - 409: Duplicate-direction check (already checked today)
  - 422: Outside time window, location not accepted
  - 503: Storage unavailable

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/payroll"
	"github.com/warp/attendance-engine/report"
	"github.com/warp/attendance-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      *sqlite.Store
	Validator  *attendance.Validator
	Reconciler *attendance.DailyReconciler
	Aggregator *attendance.MonthlyAggregator

	PayrollConfig payroll.Config
	Office        *attendance.Office // nil disables server-side geofencing
	Clock         attendance.Clock

	ReportsDir string
}

// NewHandler wires a handler from a store and the rule set.
func NewHandler(store *sqlite.Store, shift attendance.ShiftConfig, payrollCfg payroll.Config, clock attendance.Clock) *Handler {
	reconciler := attendance.NewDailyReconciler(store, shift)
	return &Handler{
		Store:      store,
		Validator:  attendance.NewValidator(store, store, clock, shift),
		Reconciler: reconciler,
		Aggregator: attendance.NewMonthlyAggregator(reconciler, shift),

		PayrollConfig: payrollCfg,
		Clock:         clock,

		ReportsDir: "reports",
	}
}

// =============================================================================
// CHECK EVENTS
// =============================================================================

func (h *Handler) RecordCheck(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "bad_request")
		return
	}

	employeeID := req.EmployeeID
	if employeeID == "" {
		if req.Credential == "" {
			writeError(w, http.StatusBadRequest, "employee_id or credential required", "bad_request")
			return
		}
		id, err := h.Store.ResolveCredential(r.Context(), attendance.Credential{
			Kind:  attendance.CredentialKind(req.CredentialKind),
			Value: req.Credential,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		employeeID = id
	}

	direction := attendance.Direction(req.Direction)
	if direction != attendance.DirectionIn && direction != attendance.DirectionOut {
		writeError(w, http.StatusBadRequest, "direction must be IN or OUT", "bad_request")
		return
	}

	proposedTime := h.Clock.Now()
	if req.ProposedTime != "" {
		t, err := time.Parse(time.RFC3339, req.ProposedTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "proposed_time must be RFC 3339", "bad_request")
			return
		}
		proposedTime = t
	}

	input := attendance.CheckInput{
		EmployeeID:       employeeID,
		Direction:        direction,
		ProposedTime:     proposedTime,
		Channel:          attendance.Channel(req.Channel),
		LocationAccepted: req.LocationAccepted,
	}
	if req.Latitude != nil && req.Longitude != nil {
		point := attendance.GeoPoint{Latitude: *req.Latitude, Longitude: *req.Longitude}
		input.Location = &point
		if input.LocationAccepted == nil && h.Office != nil {
			accepted, _ := h.Office.Accepts(point)
			input.LocationAccepted = &accepted
		}
	}

	event, err := h.Validator.Validate(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCheckEventDTO(event))
}

// =============================================================================
// ATTENDANCE QUERIES
// =============================================================================

func (h *Handler) GetDayRecord(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")
	day, err := time.ParseInLocation("2006-01-02", chi.URLParam(r, "date"), time.Local)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD", "bad_request")
		return
	}

	record, err := h.Reconciler.ReconcileDay(r.Context(), employeeID, attendance.DateOf(day))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDayRecordDTO(record))
}

func (h *Handler) GetMonthlyAggregate(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")
	year, month, ok := parseYearMonth(w, r)
	if !ok {
		return
	}

	agg, err := h.Aggregator.Aggregate(r.Context(), employeeID, year, month)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	includeDays := r.URL.Query().Get("days") == "true"
	writeJSON(w, http.StatusOK, toMonthlyAggregateDTO(agg, includeDays))
}

// =============================================================================
// PAYROLL
// =============================================================================

func (h *Handler) GetPayroll(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")
	year, month, ok := parseYearMonth(w, r)
	if !ok {
		return
	}

	emp, err := h.Store.GetEmployee(r.Context(), employeeID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	agg, err := h.Aggregator.Aggregate(r.Context(), employeeID, year, month)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	result := payroll.Calculate(emp.BaseSalary.Decimal, agg, h.PayrollConfig)
	writeJSON(w, http.StatusOK, toPayrollResultDTO(result))
}

// =============================================================================
// REPORTS
// =============================================================================

func (h *Handler) GetDailyReport(w http.ResponseWriter, r *http.Request) {
	day := attendance.DateOf(h.Clock.Now())
	if q := r.URL.Query().Get("date"); q != "" {
		t, err := time.ParseInLocation("2006-01-02", q, time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD", "bad_request")
			return
		}
		day = attendance.DateOf(t)
	}

	daily, err := report.BuildDaily(r.Context(), h.Store, h.Store, day)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDailyReportDTO(daily))
}

type monthlyReportRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func (h *Handler) GenerateMonthlyReport(w http.ResponseWriter, r *http.Request) {
	var req monthlyReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "bad_request")
		return
	}
	if req.Month < 1 || req.Month > 12 {
		writeError(w, http.StatusBadRequest, attendance.ErrInvalidMonth.Error(), "invalid_month")
		return
	}

	employees, err := h.Store.ListActive(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var rows []report.MonthlyRow
	for _, emp := range employees {
		agg, err := h.Aggregator.Aggregate(r.Context(), emp.ID, req.Year, time.Month(req.Month))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		rows = append(rows, report.MonthlyRow{
			Employee:  emp,
			Aggregate: agg,
			Payroll:   payroll.Calculate(emp.BaseSalary.Decimal, agg, h.PayrollConfig),
		})
	}

	path := filepath.Join(h.ReportsDir,
		fmt.Sprintf("attendance_%d_%02d.xlsx", req.Year, req.Month))
	if err := report.WriteMonthly(path, req.Year, time.Month(req.Month), rows); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "report_failed")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"path": path})
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListActive(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]EmployeeDTO, 0, len(employees))
	for _, emp := range employees {
		dtos = append(dtos, toEmployeeDTO(emp))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "bad_request")
		return
	}
	if req.FullName == "" {
		writeError(w, http.StatusBadRequest, "full_name is required", "bad_request")
		return
	}

	emp := attendance.Employee{
		ID:         req.ID,
		UUID:       uuid.NewString(),
		FullName:   req.FullName,
		Position:   req.Position,
		Phone:      req.Phone,
		TelegramID: req.TelegramID,
		Active:     true,
		CreatedAt:  h.Clock.Now(),
	}
	if emp.ID == "" {
		emp.ID = uuid.NewString()
	}
	if req.BaseSalary != "" {
		d, err := decimal.NewFromString(req.BaseSalary)
		if err != nil || d.IsNegative() {
			writeError(w, http.StatusBadRequest, "base_salary must be a non-negative decimal", "bad_request")
			return
		}
		emp.BaseSalary = decimal.NewNullDecimal(d)
	}

	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Store.GetEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// =============================================================================
// HELPERS
// =============================================================================

func parseYearMonth(w http.ResponseWriter, r *http.Request) (int, time.Month, bool) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 2000 || year > 2200 {
		writeError(w, http.StatusBadRequest, "invalid year", "bad_request")
		return 0, 0, false
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month", "invalid_month")
		return 0, 0, false
	}
	return year, time.Month(month), true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, reason string) {
	writeJSON(w, status, ErrorResponse{Error: message, Reason: reason})
}

// writeDomainError maps the engine's error taxonomy to HTTP statuses and
// machine-readable reason codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, attendance.ErrUnknownOrInactiveEmployee):
		writeError(w, http.StatusNotFound, err.Error(), "unknown_or_inactive_employee")
	case errors.Is(err, attendance.ErrEmployeeNotFound):
		writeError(w, http.StatusNotFound, err.Error(), "employee_not_found")
	case errors.Is(err, attendance.ErrUnresolvedCredential):
		writeError(w, http.StatusNotFound, err.Error(), "credential_not_resolved")
	case errors.Is(err, attendance.ErrAlreadyCheckedToday):
		writeError(w, http.StatusConflict, err.Error(), "already_checked_today")
	case errors.Is(err, attendance.ErrOutsideTimeWindow):
		writeError(w, http.StatusUnprocessableEntity, err.Error(), "outside_time_window")
	case errors.Is(err, attendance.ErrLocationNotAccepted):
		writeError(w, http.StatusUnprocessableEntity, err.Error(), "location_not_accepted")
	case errors.Is(err, attendance.ErrInvalidMonth):
		writeError(w, http.StatusBadRequest, err.Error(), "invalid_month")
	case errors.Is(err, attendance.ErrStorageUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error(), "storage_unavailable")
	default:
		writeError(w, http.StatusInternalServerError, err.Error(), "internal_error")
	}
}
