/*
sqlite_test.go - Persistence tests against in-memory SQLite

Tests for:
- The one-check-per-day unique index
- Date range queries and ordering
- Employee upsert and credential resolution
- Nullable column round trips (location, salary, telegram id)
*/
package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func storedEvent(id string, dir attendance.Direction, at time.Time) *attendance.CheckEvent {
	return &attendance.CheckEvent{
		ID:         id,
		EmployeeID: "emp-1",
		Direction:  dir,
		Time:       at,
		Channel:    attendance.ChannelApp,
		RecordedAt: at,
	}
}

func localTime(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.Local)
}

// =============================================================================
// LEDGER TESTS
// =============================================================================

func TestStore_Append_OneCheckPerDirectionPerDay(t *testing.T) {
	// GIVEN: An IN already stored for the date
	// WHEN: A second IN arrives for the same employee and date
	// THEN: The unique index rejects it as a duplicate

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, storedEvent("ev-1", attendance.DirectionIn, localTime(2026, time.March, 9, 9, 0))))

	err := store.Append(ctx, storedEvent("ev-2", attendance.DirectionIn, localTime(2026, time.March, 9, 10, 30)))
	assert.ErrorIs(t, err, attendance.ErrDuplicateEvent)

	// OUT on the same date and IN on the next date both pass.
	assert.NoError(t, store.Append(ctx, storedEvent("ev-3", attendance.DirectionOut, localTime(2026, time.March, 9, 18, 0))))
	assert.NoError(t, store.Append(ctx, storedEvent("ev-4", attendance.DirectionIn, localTime(2026, time.March, 10, 9, 0))))
}

func TestStore_EventsOn_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	accepted := true
	in := storedEvent("ev-1", attendance.DirectionIn, localTime(2026, time.March, 9, 9, 47))
	in.Channel = attendance.ChannelBot
	in.Location = &attendance.GeoPoint{Latitude: 41.3045, Longitude: 69.3211}
	in.LocationAccepted = &accepted
	in.IsLate = true
	in.LateMinutes = 17

	require.NoError(t, store.Append(ctx, in))

	events, err := store.EventsOn(ctx, "emp-1", attendance.NewDate(2026, time.March, 9))
	require.NoError(t, err)
	require.Len(t, events, 1)

	got := events[0]
	assert.Equal(t, "ev-1", got.ID)
	assert.Equal(t, attendance.ChannelBot, got.Channel)
	assert.True(t, got.Time.Equal(in.Time))
	assert.True(t, got.IsLate)
	assert.Equal(t, 17, got.LateMinutes)
	require.NotNil(t, got.Location)
	assert.InDelta(t, 41.3045, got.Location.Latitude, 1e-9)
	require.NotNil(t, got.LocationAccepted)
	assert.True(t, *got.LocationAccepted)
}

func TestStore_EventsOn_NullColumns(t *testing.T) {
	// GIVEN: An event with no location and no acceptance decision
	// THEN: It comes back with nil pointers, not zero values

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, storedEvent("ev-1", attendance.DirectionIn, localTime(2026, time.March, 9, 9, 0))))

	events, err := store.EventsOn(ctx, "emp-1", attendance.NewDate(2026, time.March, 9))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Nil(t, events[0].Location)
	assert.Nil(t, events[0].LocationAccepted)
}

func TestStore_EventsInRange_OrderedAscending(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Insert out of chronological order across three days.
	require.NoError(t, store.Append(ctx, storedEvent("ev-3", attendance.DirectionIn, localTime(2026, time.March, 11, 8, 0))))
	require.NoError(t, store.Append(ctx, storedEvent("ev-1", attendance.DirectionIn, localTime(2026, time.March, 9, 9, 0))))
	require.NoError(t, store.Append(ctx, storedEvent("ev-2", attendance.DirectionOut, localTime(2026, time.March, 9, 18, 0))))

	events, err := store.EventsInRange(ctx, "emp-1",
		attendance.NewDate(2026, time.March, 9), attendance.NewDate(2026, time.March, 11))
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "ev-1", events[0].ID)
	assert.Equal(t, "ev-2", events[1].ID)
	assert.Equal(t, "ev-3", events[2].ID)

	// Range boundaries are inclusive on both ends.
	events, err = store.EventsInRange(ctx, "emp-1",
		attendance.NewDate(2026, time.March, 10), attendance.NewDate(2026, time.March, 11))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "ev-3", events[0].ID)
}

func TestStore_EventsOn_OtherEmployeeInvisible(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	other := storedEvent("ev-1", attendance.DirectionIn, localTime(2026, time.March, 9, 9, 0))
	other.EmployeeID = "emp-2"
	require.NoError(t, store.Append(ctx, other))

	events, err := store.EventsOn(ctx, "emp-1", attendance.NewDate(2026, time.March, 9))
	require.NoError(t, err)
	assert.Empty(t, events)
}

// =============================================================================
// EMPLOYEE DIRECTORY TESTS
// =============================================================================

func TestStore_SaveEmployee_Upsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	emp := attendance.Employee{
		ID:         "emp-1",
		UUID:       "uuid-1",
		FullName:   "Aziza Karimova",
		Position:   "Accountant",
		Phone:      "+998901234567",
		TelegramID: 4242,
		BaseSalary: decimal.NewNullDecimal(decimal.RequireFromString("2600000")),
		Active:     true,
		CreatedAt:  localTime(2026, time.January, 1, 0, 0),
	}
	require.NoError(t, store.SaveEmployee(ctx, emp))

	got, err := store.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "Aziza Karimova", got.FullName)
	assert.Equal(t, int64(4242), got.TelegramID)
	require.True(t, got.BaseSalary.Valid)
	assert.True(t, got.BaseSalary.Decimal.Equal(decimal.RequireFromString("2600000")))

	// Saving again with the same ID replaces the row.
	emp.Position = "Senior Accountant"
	emp.Active = false
	require.NoError(t, store.SaveEmployee(ctx, emp))

	got, err = store.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "Senior Accountant", got.Position)
	assert.False(t, got.Active)
}

func TestStore_GetEmployee_Missing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetEmployee(context.Background(), "emp-ghost")
	assert.ErrorIs(t, err, attendance.ErrEmployeeNotFound)
}

func TestStore_SaveEmployee_NoSalaryNoTelegram(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveEmployee(ctx, attendance.Employee{
		ID:       "emp-1",
		UUID:     "uuid-1",
		FullName: "No Salary Yet",
		Active:   true,
	}))

	got, err := store.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.False(t, got.BaseSalary.Valid)
	assert.Zero(t, got.TelegramID)
}

func TestStore_ListActive_ExcludesInactive(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveEmployee(ctx, attendance.Employee{ID: "emp-1", UUID: "uuid-1", FullName: "Active One", Active: true}))
	require.NoError(t, store.SaveEmployee(ctx, attendance.Employee{ID: "emp-2", UUID: "uuid-2", FullName: "Gone", Active: false}))

	active, err := store.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "emp-1", active[0].ID)
}

func TestStore_ResolveCredential(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveEmployee(ctx, attendance.Employee{
		ID: "emp-1", UUID: "uuid-1", FullName: "Aziza Karimova", TelegramID: 4242, Active: true,
	}))

	cases := []struct {
		name string
		cred attendance.Credential
	}{
		{"qr token", attendance.Credential{Kind: attendance.CredentialQR, Value: "uuid-1"}},
		{"face match", attendance.Credential{Kind: attendance.CredentialFace, Value: "uuid-1"}},
		{"chat account", attendance.Credential{Kind: attendance.CredentialChat, Value: "4242"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := store.ResolveCredential(ctx, tc.cred)
			require.NoError(t, err)
			assert.Equal(t, "emp-1", id)
		})
	}

	_, err := store.ResolveCredential(ctx, attendance.Credential{Kind: attendance.CredentialQR, Value: "uuid-ghost"})
	assert.ErrorIs(t, err, attendance.ErrUnresolvedCredential)
}
