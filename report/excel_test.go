package report_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/payroll"
	"github.com/warp/attendance-engine/report"
	"github.com/xuri/excelize/v2"
)

func monthlyFixture() []report.MonthlyRow {
	clean := attendance.MonthlyAggregate{
		WorkingDays: 26, PresentDays: 26,
		WorkedHours: 221, ExpectedHours: 221, AttendanceRate: 100, PunctualityRate: 100,
	}
	messy := attendance.MonthlyAggregate{
		WorkingDays: 26, PresentDays: 24, AbsentDays: 2, LateDays: 3,
		WorkedHours: 204, ExpectedHours: 221, AttendanceRate: 92.31,
	}

	base := decimal.RequireFromString("2600000")
	return []report.MonthlyRow{
		{
			Employee:  attendance.Employee{ID: "emp-1", FullName: "Aziza Karimova", Position: "Accountant"},
			Aggregate: clean,
			Payroll:   payroll.Calculate(base, clean, payroll.DefaultConfig()),
		},
		{
			Employee:  attendance.Employee{ID: "emp-2", FullName: "Botir Rahimov"},
			Aggregate: messy,
			Payroll:   payroll.Calculate(base, messy, payroll.DefaultConfig()),
		},
	}
}

func TestWriteMonthly_WorkbookContents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attendance_2026_03.xlsx")

	require.NoError(t, report.WriteMonthly(path, 2026, time.March, monthlyFixture()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	const sheet = "2026-03"
	assert.Contains(t, f.GetSheetList(), sheet)

	header, err := f.GetCellValue(sheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, "Employee", header)

	name, _ := f.GetCellValue(sheet, "B2")
	assert.Equal(t, "Aziza Karimova", name)

	note, _ := f.GetCellValue(sheet, "M2")
	assert.Equal(t, "OK", note, "a clean month notes nothing")

	// Row 3: the messy month names its problems.
	note, _ = f.GetCellValue(sheet, "M3")
	assert.Contains(t, note, "late: 3 days")
	assert.Contains(t, note, "deductions:")

	position, _ := f.GetCellValue(sheet, "C3")
	assert.Equal(t, "unset", position)

	final, _ := f.GetCellValue(sheet, "L2")
	assert.Equal(t, "2600000.00", final)
}

func TestWriteMonthly_EmptyMonth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")

	require.NoError(t, report.WriteMonthly(path, 2026, time.April, nil))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("2026-04", "A1")
	require.NoError(t, err)
	assert.Equal(t, "#", header)
}
