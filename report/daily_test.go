/*
daily_test.go - Daily report assembly tests

The summary line format is parsed by downstream chat consumers; its test
pins the exact rendering.
*/
package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/attendance/store"
	"github.com/warp/attendance-engine/report"
)

func seedReportDay(t *testing.T) (*store.MemoryDirectory, *store.Memory, attendance.Date) {
	t.Helper()

	directory := store.NewMemoryDirectory()
	directory.Put(attendance.Employee{ID: "emp-1", UUID: "uuid-1", FullName: "Aziza Karimova", Active: true})
	directory.Put(attendance.Employee{ID: "emp-2", UUID: "uuid-2", FullName: "Botir Rahimov", Active: true})
	directory.Put(attendance.Employee{ID: "emp-3", UUID: "uuid-3", FullName: "Charos Yusupova", Active: true})
	directory.Put(attendance.Employee{ID: "emp-4", UUID: "uuid-4", FullName: "Left Lastyear", Active: false})

	events := store.NewMemory()
	ctx := context.Background()

	// emp-1 on time, emp-2 late, emp-3 absent.
	require.NoError(t, events.Append(ctx, &attendance.CheckEvent{
		ID: "ev-1", EmployeeID: "emp-1", Direction: attendance.DirectionIn,
		Time:    time.Date(2026, time.March, 9, 9, 0, 0, 0, time.UTC),
		Channel: attendance.ChannelQR,
	}))
	require.NoError(t, events.Append(ctx, &attendance.CheckEvent{
		ID: "ev-2", EmployeeID: "emp-2", Direction: attendance.DirectionIn,
		Time:    time.Date(2026, time.March, 9, 10, 15, 0, 0, time.UTC),
		Channel: attendance.ChannelBot,
		IsLate:  true, LateMinutes: 45,
	}))

	return directory, events, attendance.NewDate(2026, time.March, 9)
}

func TestBuildDaily_Counts(t *testing.T) {
	directory, events, day := seedReportDay(t)

	daily, err := report.BuildDaily(context.Background(), directory, events, day)
	require.NoError(t, err)

	assert.Equal(t, 3, daily.TotalEmployees, "inactive employees are not counted")
	assert.Equal(t, 2, daily.PresentCount)
	assert.Equal(t, 1, daily.AbsentCount)
	assert.Equal(t, 1, daily.LateCount)
	assert.Equal(t, 1, daily.OnTimeCount)

	require.Len(t, daily.OnTime, 1)
	assert.Equal(t, "emp-1", daily.OnTime[0].Employee.ID)

	require.Len(t, daily.Late, 1)
	assert.Equal(t, "emp-2", daily.Late[0].Employee.ID)
	assert.Equal(t, 45, daily.Late[0].LateMinutes)
	assert.Equal(t, attendance.ChannelBot, daily.Late[0].Channel)

	require.Len(t, daily.Absent, 1)
	assert.Equal(t, "emp-3", daily.Absent[0].ID)
}

func TestDaily_SummaryLine_ExactFormat(t *testing.T) {
	directory, events, day := seedReportDay(t)

	daily, err := report.BuildDaily(context.Background(), directory, events, day)
	require.NoError(t, err)

	assert.Equal(t, "2026-03-09 | 2/3 (67%) | 1 late", daily.SummaryLine())
}

func TestDaily_SummaryLine_Empty(t *testing.T) {
	daily := report.Daily{Date: attendance.NewDate(2026, time.March, 9)}

	assert.Equal(t, "2026-03-09 | 0/0 (0%) | 0 late", daily.SummaryLine())
	assert.Zero(t, daily.AttendanceRate())
}

func TestBuildDaily_OutOnlyDay_CountsAbsent(t *testing.T) {
	// GIVEN: An employee with only an OUT event on the date
	// THEN: The report treats them as absent; presence keys off the IN

	directory := store.NewMemoryDirectory()
	directory.Put(attendance.Employee{ID: "emp-1", UUID: "uuid-1", Active: true})

	events := store.NewMemory()
	require.NoError(t, events.Append(context.Background(), &attendance.CheckEvent{
		ID: "ev-1", EmployeeID: "emp-1", Direction: attendance.DirectionOut,
		Time:    time.Date(2026, time.March, 9, 18, 0, 0, 0, time.UTC),
		Channel: attendance.ChannelApp,
	}))

	daily, err := report.BuildDaily(context.Background(), directory, events, attendance.NewDate(2026, time.March, 9))
	require.NoError(t, err)

	assert.Equal(t, 0, daily.PresentCount)
	assert.Equal(t, 1, daily.AbsentCount)
}
