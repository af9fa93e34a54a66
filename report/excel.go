package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/payroll"
)

// =============================================================================
// MONTHLY EXCEL WORKBOOK
// =============================================================================

// MonthlyRow pairs one employee with their aggregate and payroll projection.
type MonthlyRow struct {
	Employee  attendance.Employee
	Aggregate attendance.MonthlyAggregate
	Payroll   payroll.Result
}

var monthlyHeaders = []string{
	"#", "Employee", "Position", "Working days", "Present days", "Late days",
	"Early departures", "Worked hours", "Attendance %", "Base salary",
	"Deductions", "Final salary", "Note",
}

// WriteMonthly renders the monthly attendance and payroll report as an
// Excel workbook at path.
func WriteMonthly(path string, year int, month time.Month, rows []MonthlyRow) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := fmt.Sprintf("%d-%02d", year, int(month))
	f.SetSheetName("Sheet1", sheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"366092"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for col, header := range monthlyHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for i, row := range rows {
		values := []any{
			i + 1,
			row.Employee.FullName,
			orUnset(row.Employee.Position),
			row.Aggregate.WorkingDays,
			row.Aggregate.PresentDays,
			row.Aggregate.LateDays,
			row.Aggregate.EarlyDays,
			row.Aggregate.WorkedHours,
			row.Aggregate.AttendanceRate,
			row.Payroll.BaseSalary.StringFixed(2),
			row.Payroll.TotalDeductions.StringFixed(2),
			row.Payroll.FinalSalary.StringFixed(2),
			noteFor(row),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", i+1, err)
			}
		}
	}

	fitColumns(f, sheet, len(rows)+1)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func orUnset(s string) string {
	if s == "" {
		return "unset"
	}
	return s
}

// noteFor summarizes the problems of the month, or "OK" when there were none.
func noteFor(row MonthlyRow) string {
	var parts []string
	if n := row.Aggregate.LateDays; n > 0 {
		parts = append(parts, fmt.Sprintf("late: %d days", n))
	}
	if n := row.Aggregate.EarlyDays; n > 0 {
		parts = append(parts, fmt.Sprintf("early: %d days", n))
	}
	if row.Payroll.TotalDeductions.IsPositive() {
		parts = append(parts, "deductions: "+row.Payroll.TotalDeductions.StringFixed(2))
	}
	if len(parts) == 0 {
		return "OK"
	}
	return strings.Join(parts, "; ")
}

// fitColumns widens each column to its longest cell value, clamped to a
// readable range.
func fitColumns(f *excelize.File, sheet string, rowCount int) {
	const minWidth, maxWidth, padding = 8, 50, 2

	for col := 1; col <= len(monthlyHeaders); col++ {
		longest := 0
		for row := 1; row <= rowCount; row++ {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			v, err := f.GetCellValue(sheet, cell)
			if err == nil && len(v) > longest {
				longest = len(v)
			}
		}
		width := float64(longest + padding)
		if width < minWidth {
			width = minWidth
		}
		if width > maxWidth {
			width = maxWidth
		}
		name, _ := excelize.ColumnNumberToName(col)
		f.SetColWidth(sheet, name, name, width)
	}
}
