/*
store.go - Persistence and identity interfaces consumed by the engine

PURPOSE:
  Defines the boundary between the evaluation logic and its external
  collaborators. The engine issues reads/writes through these interfaces
  only; it holds no long-lived references to stored events.

APPEND-ONLY CONTRACT:
  EventStore has exactly one write operation, Append. No Update or Delete
  methods exist. Accepted check events are immutable facts.

CONCURRENCY:
  The Validator performs a read-then-decide duplicate check, which is not
  by itself safe against races. The backing store MUST enforce uniqueness
  of (employee, civil date, direction) - via a unique index or equivalent
  serialization - and return ErrDuplicateEvent on collision. Both provided
  implementations (store/sqlite, attendance/store memory) do.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite store
  - attendance/store: In-memory store for tests and development

SEE ALSO:
  - validator.go: The only writer
  - reconcile.go, aggregate.go: Readers
*/
package attendance

import "context"

// =============================================================================
// EVENT STORE - Append-only check event ledger
// =============================================================================

// EventStore persists accepted check events.
type EventStore interface {
	// Append persists exactly one event. Returns ErrDuplicateEvent if an
	// event with the same (employee, civil date, direction) already exists.
	// This is the ONLY write operation.
	Append(ctx context.Context, event *CheckEvent) error

	// EventsOn returns all events for an employee on one civil date,
	// ordered by timestamp ascending.
	EventsOn(ctx context.Context, employeeID string, day Date) ([]CheckEvent, error)

	// EventsInRange returns events with civil dates in [from, to],
	// ordered by timestamp ascending.
	EventsInRange(ctx context.Context, employeeID string, from, to Date) ([]CheckEvent, error)
}

// =============================================================================
// EMPLOYEE DIRECTORY - Identity resolution boundary
// =============================================================================

// CredentialKind identifies how a credential was captured.
type CredentialKind string

const (
	CredentialQR   CredentialKind = "qr_token"     // employee UUID from a scanned code
	CredentialFace CredentialKind = "face_match"   // employee UUID from the face matcher
	CredentialChat CredentialKind = "chat_account" // linked telegram account id
)

// Credential is an opaque identity claim. The directory owns resolution;
// the engine trusts the result.
type Credential struct {
	Kind  CredentialKind
	Value string
}

// EmployeeDirectory resolves identities and credentials.
type EmployeeDirectory interface {
	// GetEmployee returns the employee or ErrEmployeeNotFound.
	GetEmployee(ctx context.Context, employeeID string) (*Employee, error)

	// ListActive returns all active employees.
	ListActive(ctx context.Context) ([]Employee, error)

	// ResolveCredential maps a credential to an employee id, or returns
	// ErrUnresolvedCredential.
	ResolveCredential(ctx context.Context, cred Credential) (string, error)
}
