/*
handlers_test.go - HTTP surface tests

End-to-end through the chi router against an in-memory SQLite store:
check recording, rejection status codes, day/month queries, payroll,
and the daily report endpoint.
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/payroll"
	"github.com/warp/attendance-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T, now time.Time) (*httptest.Server, *sqlite.Store) {
	t.Helper()

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.SaveEmployee(context.Background(), attendance.Employee{
		ID:         "emp-1",
		UUID:       "uuid-1",
		FullName:   "Aziza Karimova",
		TelegramID: 4242,
		BaseSalary: decimal.NewNullDecimal(decimal.RequireFromString("2600000")),
		Active:     true,
		CreatedAt:  now,
	}))

	handler := NewHandler(store, attendance.DefaultShiftConfig(), payroll.DefaultConfig(), attendance.FixedClock{At: now})
	handler.ReportsDir = t.TempDir()

	server := httptest.NewServer(NewRouter(handler))
	t.Cleanup(server.Close)
	return server, store
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

// =============================================================================
// CHECK RECORDING
// =============================================================================

func TestRecordCheck_Accepted(t *testing.T) {
	now := time.Date(2026, time.March, 9, 9, 45, 0, 0, time.Local)
	server, _ := newTestServer(t, now)

	resp := postJSON(t, server.URL+"/api/attendance/check", map[string]any{
		"employee_id": "emp-1",
		"direction":   "IN",
		"channel":     "app",
	})

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	event := decodeBody[CheckEventDTO](t, resp)
	assert.Equal(t, "emp-1", event.EmployeeID)
	assert.Equal(t, "IN", event.Direction)
	assert.True(t, event.IsLate)
	assert.Equal(t, 15, event.LateMinutes)
}

func TestRecordCheck_Duplicate_Conflict(t *testing.T) {
	now := time.Date(2026, time.March, 9, 9, 0, 0, 0, time.Local)
	server, _ := newTestServer(t, now)

	body := map[string]any{"employee_id": "emp-1", "direction": "IN", "channel": "app"}

	resp := postJSON(t, server.URL+"/api/attendance/check", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, server.URL+"/api/attendance/check", body)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	errResp := decodeBody[ErrorResponse](t, resp)
	assert.Equal(t, "already_checked_today", errResp.Reason)
}

func TestRecordCheck_OutsideWindow_Unprocessable(t *testing.T) {
	now := time.Date(2026, time.March, 9, 9, 0, 0, 0, time.Local)
	server, _ := newTestServer(t, now)

	resp := postJSON(t, server.URL+"/api/attendance/check", map[string]any{
		"employee_id":   "emp-1",
		"direction":     "IN",
		"channel":       "app",
		"proposed_time": time.Date(2026, time.March, 9, 6, 0, 0, 0, time.Local).Format(time.RFC3339),
	})

	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	errResp := decodeBody[ErrorResponse](t, resp)
	assert.Equal(t, "outside_time_window", errResp.Reason)
}

func TestRecordCheck_UnknownEmployee_NotFound(t *testing.T) {
	now := time.Date(2026, time.March, 9, 9, 0, 0, 0, time.Local)
	server, _ := newTestServer(t, now)

	resp := postJSON(t, server.URL+"/api/attendance/check", map[string]any{
		"employee_id": "emp-ghost",
		"direction":   "IN",
		"channel":     "app",
	})

	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	errResp := decodeBody[ErrorResponse](t, resp)
	assert.Equal(t, "unknown_or_inactive_employee", errResp.Reason)
}

func TestRecordCheck_ByCredential(t *testing.T) {
	// GIVEN: No employee_id but a chat-account credential
	// THEN: The credential resolves to emp-1 and the event records

	now := time.Date(2026, time.March, 9, 9, 0, 0, 0, time.Local)
	server, _ := newTestServer(t, now)

	resp := postJSON(t, server.URL+"/api/attendance/check", map[string]any{
		"credential_kind": "chat_account",
		"credential":      "4242",
		"direction":       "IN",
		"channel":         "bot",
		"latitude":        41.304502,
		"longitude":       69.321159,
	})

	// The bot channel needs a geofence decision; no Office is configured
	// on the test handler, so the location stays undecided.
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	errResp := decodeBody[ErrorResponse](t, resp)
	assert.Equal(t, "location_not_accepted", errResp.Reason)
}

func TestRecordCheck_BotWithOfficeGeofence(t *testing.T) {
	now := time.Date(2026, time.March, 9, 9, 0, 0, 0, time.Local)

	handlerStore, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { handlerStore.Close() })
	require.NoError(t, handlerStore.SaveEmployee(context.Background(), attendance.Employee{
		ID: "emp-1", UUID: "uuid-1", FullName: "Aziza Karimova", Active: true,
	}))

	handler := NewHandler(handlerStore, attendance.DefaultShiftConfig(), payroll.DefaultConfig(), attendance.FixedClock{At: now})
	handler.Office = &attendance.Office{Latitude: 41.304502, Longitude: 69.321159, RadiusMeters: 200}

	geofenced := httptest.NewServer(NewRouter(handler))
	t.Cleanup(geofenced.Close)

	// Inside the radius: accepted.
	resp := postJSON(t, geofenced.URL+"/api/attendance/check", map[string]any{
		"employee_id": "emp-1",
		"direction":   "IN",
		"channel":     "bot",
		"latitude":    41.304502,
		"longitude":   69.321159,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// A kilometer away on the next day: rejected.
	resp = postJSON(t, geofenced.URL+"/api/attendance/check", map[string]any{
		"employee_id":   "emp-1",
		"direction":     "IN",
		"channel":       "bot",
		"latitude":      41.3145,
		"longitude":     69.321159,
		"proposed_time": time.Date(2026, time.March, 10, 9, 0, 0, 0, time.Local).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	errResp := decodeBody[ErrorResponse](t, resp)
	assert.Equal(t, "location_not_accepted", errResp.Reason)
}

// =============================================================================
// QUERIES
// =============================================================================

func TestGetDayRecord_AfterInAndOut(t *testing.T) {
	now := time.Date(2026, time.March, 9, 9, 0, 0, 0, time.Local)
	server, _ := newTestServer(t, now)

	for _, c := range []map[string]any{
		{"employee_id": "emp-1", "direction": "IN", "channel": "app",
			"proposed_time": time.Date(2026, time.March, 9, 9, 0, 0, 0, time.Local).Format(time.RFC3339)},
		{"employee_id": "emp-1", "direction": "OUT", "channel": "app",
			"proposed_time": time.Date(2026, time.March, 9, 18, 0, 0, 0, time.Local).Format(time.RFC3339)},
	} {
		resp := postJSON(t, server.URL+"/api/attendance/check", c)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp, err := http.Get(server.URL + "/api/attendance/emp-1/day/2026-03-09")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	record := decodeBody[DayRecordDTO](t, resp)
	assert.Equal(t, "full_day", record.Status)
	assert.Equal(t, 9.0, record.WorkedHours)
	assert.NotNil(t, record.CheckIn)
	assert.NotNil(t, record.CheckOut)
	assert.False(t, record.IsLate)
}

func TestGetMonthlyAggregate(t *testing.T) {
	now := time.Date(2026, time.March, 9, 9, 0, 0, 0, time.Local)
	server, _ := newTestServer(t, now)

	resp := postJSON(t, server.URL+"/api/attendance/check", map[string]any{
		"employee_id": "emp-1", "direction": "IN", "channel": "app",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Get(server.URL + "/api/attendance/emp-1/month/2026/3")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	agg := decodeBody[MonthlyAggregateDTO](t, resp)
	assert.Equal(t, 26, agg.WorkingDays)
	assert.Equal(t, 1, agg.PresentDays)
	assert.Equal(t, 25, agg.AbsentDays)
	assert.Empty(t, agg.Days, "day list only included with ?days=true")

	resp, err = http.Get(server.URL + "/api/attendance/emp-1/month/2026/3?days=true")
	require.NoError(t, err)
	agg = decodeBody[MonthlyAggregateDTO](t, resp)
	assert.Len(t, agg.Days, 26)
}

func TestGetMonthlyAggregate_InvalidMonth(t *testing.T) {
	now := time.Date(2026, time.March, 9, 9, 0, 0, 0, time.Local)
	server, _ := newTestServer(t, now)

	resp, err := http.Get(server.URL + "/api/attendance/emp-1/month/2026/13")
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errResp := decodeBody[ErrorResponse](t, resp)
	assert.Equal(t, "invalid_month", errResp.Reason)
}

func TestGetPayroll(t *testing.T) {
	now := time.Date(2026, time.March, 9, 9, 0, 0, 0, time.Local)
	server, _ := newTestServer(t, now)

	resp, err := http.Get(server.URL + "/api/payroll/emp-1/2026/3")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	result := decodeBody[PayrollResultDTO](t, resp)
	assert.Equal(t, "2600000.00", result.BaseSalary)
	assert.Equal(t, "100000.00", result.DailySalary)

	found := false
	for _, d := range result.Deductions {
		if d.Cause == "absent_days" {
			found = true
			assert.Equal(t, 26, d.Days)
		}
	}
	assert.True(t, found, "an empty month deducts all 26 working days")
}

func TestGetPayroll_UnknownEmployee(t *testing.T) {
	now := time.Date(2026, time.March, 9, 9, 0, 0, 0, time.Local)
	server, _ := newTestServer(t, now)

	resp, err := http.Get(server.URL + "/api/payroll/emp-ghost/2026/3")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

// =============================================================================
// REPORTS AND EMPLOYEES
// =============================================================================

func TestGetDailyReport(t *testing.T) {
	now := time.Date(2026, time.March, 9, 9, 0, 0, 0, time.Local)
	server, _ := newTestServer(t, now)

	resp := postJSON(t, server.URL+"/api/attendance/check", map[string]any{
		"employee_id": "emp-1", "direction": "IN", "channel": "app",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Get(server.URL + "/api/reports/daily?date=2026-03-09")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	daily := decodeBody[DailyReportDTO](t, resp)
	assert.Equal(t, 1, daily.TotalEmployees)
	assert.Equal(t, 1, daily.PresentCount)
	assert.Equal(t, "2026-03-09 | 1/1 (100%) | 0 late", daily.Summary)
}

func TestCreateAndGetEmployee(t *testing.T) {
	now := time.Date(2026, time.March, 9, 9, 0, 0, 0, time.Local)
	server, _ := newTestServer(t, now)

	resp := postJSON(t, server.URL+"/api/employees", map[string]any{
		"full_name":   "Botir Rahimov",
		"position":    "Engineer",
		"base_salary": "3100000",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	created := decodeBody[EmployeeDTO](t, resp)
	assert.NotEmpty(t, created.ID)
	assert.NotEmpty(t, created.UUID)
	assert.True(t, created.Active)

	resp, err := http.Get(fmt.Sprintf("%s/api/employees/%s", server.URL, created.ID))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := decodeBody[EmployeeDTO](t, resp)
	assert.Equal(t, "Botir Rahimov", got.FullName)
	assert.Equal(t, "3100000.00", got.BaseSalary)
}

func TestCreateEmployee_MissingName(t *testing.T) {
	now := time.Date(2026, time.March, 9, 9, 0, 0, 0, time.Local)
	server, _ := newTestServer(t, now)

	resp := postJSON(t, server.URL+"/api/employees", map[string]any{"position": "Engineer"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}
