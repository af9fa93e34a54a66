// Package store provides in-memory implementations of the attendance
// persistence interfaces, for tests and local development.
package store

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/warp/attendance-engine/attendance"
)

// =============================================================================
// MEMORY EVENT STORE
// =============================================================================

type Memory struct {
	mu     sync.RWMutex
	events map[string][]attendance.CheckEvent // employee id -> timestamp-ordered
	seen   map[dayKey]bool
}

type dayKey struct {
	EmployeeID string
	Date       string
	Direction  attendance.Direction
}

func NewMemory() *Memory {
	return &Memory{
		events: make(map[string][]attendance.CheckEvent),
		seen:   make(map[dayKey]bool),
	}
}

// Append adds a single event. Append-only; enforces the one-per-direction-
// per-day uniqueness the Validator relies on.
func (m *Memory) Append(_ context.Context, event *attendance.CheckEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := dayKey{
		EmployeeID: event.EmployeeID,
		Date:       event.Date().String(),
		Direction:  event.Direction,
	}
	if m.seen[k] {
		return attendance.ErrDuplicateEvent
	}

	list := m.events[event.EmployeeID]

	// Binary search for the insertion point to keep timestamp order.
	i := sort.Search(len(list), func(i int) bool {
		return list[i].Time.After(event.Time)
	})
	list = append(list, attendance.CheckEvent{})
	copy(list[i+1:], list[i:])
	list[i] = *event

	m.events[event.EmployeeID] = list
	m.seen[k] = true
	return nil
}

func (m *Memory) EventsOn(_ context.Context, employeeID string, day attendance.Date) ([]attendance.CheckEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []attendance.CheckEvent
	for _, e := range m.events[employeeID] {
		if e.Date().Equal(day) {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *Memory) EventsInRange(_ context.Context, employeeID string, from, to attendance.Date) ([]attendance.CheckEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []attendance.CheckEvent
	for _, e := range m.events[employeeID] {
		d := e.Date()
		if from.BeforeOrEqual(d) && d.BeforeOrEqual(to) {
			result = append(result, e)
		}
	}
	return result, nil
}

// =============================================================================
// MEMORY DIRECTORY
// =============================================================================

type MemoryDirectory struct {
	mu        sync.RWMutex
	employees map[string]attendance.Employee
	byUUID    map[string]string // uuid -> employee id
	byChat    map[string]string // telegram id (decimal string) -> employee id
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		employees: make(map[string]attendance.Employee),
		byUUID:    make(map[string]string),
		byChat:    make(map[string]string),
	}
}

// Put registers or replaces an employee.
func (d *MemoryDirectory) Put(emp attendance.Employee) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.employees[emp.ID] = emp
	if emp.UUID != "" {
		d.byUUID[emp.UUID] = emp.ID
	}
	if emp.TelegramID != 0 {
		d.byChat[strconv.FormatInt(emp.TelegramID, 10)] = emp.ID
	}
}

func (d *MemoryDirectory) GetEmployee(_ context.Context, employeeID string) (*attendance.Employee, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	emp, ok := d.employees[employeeID]
	if !ok {
		return nil, attendance.ErrEmployeeNotFound
	}
	return &emp, nil
}

func (d *MemoryDirectory) ListActive(_ context.Context) ([]attendance.Employee, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var result []attendance.Employee
	for _, emp := range d.employees {
		if emp.Active {
			result = append(result, emp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (d *MemoryDirectory) ResolveCredential(_ context.Context, cred attendance.Credential) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var id string
	var ok bool
	switch cred.Kind {
	case attendance.CredentialQR, attendance.CredentialFace:
		id, ok = d.byUUID[cred.Value]
	case attendance.CredentialChat:
		id, ok = d.byChat[cred.Value]
	}
	if !ok {
		return "", attendance.ErrUnresolvedCredential
	}
	return id, nil
}
