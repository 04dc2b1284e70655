// Package outbox implements the transactional outbox and the cascading
// soft-delete propagation engine.
//
// A domain mutation that soft-deletes an aggregate writes a ledger entry in
// the same transaction. After commit, a best-effort dispatcher submits the
// entry to the execution facility; a periodic sweeper redispatches anything
// the fast path missed. The worker walks the aggregate's registered relations
// and soft-deletes every reachable dependent in one transaction.
package outbox

import (
	"context"
	"encoding/json"
	"time"

	"pms/internal/core/id"
)

// Status represents the state of a ledger entry.
//
// State machine: pending -> published -> processed. Any state may move to
// failed during worker execution; failed moves back to published on a
// redispatch while retry_count < max_retries. processed is terminal and
// immutable.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPublished Status = "published"
	StatusProcessed Status = "processed"
	StatusFailed    Status = "failed"
)

// Event types handled by the worker.
const (
	// EventSoftDeletePropagate cascades a soft delete through the
	// aggregate's registered relations.
	EventSoftDeletePropagate = "soft_delete.propagate"

	// EventProjectCreated fans out dependent sales/design records for a
	// freshly created project.
	EventProjectCreated = "project.created"

	// EventAnnualLeaveGrant grants annual or monthly leave to a user for a
	// target date.
	EventAnnualLeaveGrant = "leave.annual_grant"
)

// DefaultMaxRetries bounds automatic reprocessing of a failed entry.
const DefaultMaxRetries = 3

// Event is a ledger entry in the transactional outbox.
// Entries are created in the same transaction as the entity mutation they
// describe and are never deleted by this subsystem (retained for audit).
type Event struct {
	ID id.ID `db:"id"`

	EventType     string `db:"event_type"`
	AggregateType string `db:"aggregate_type"`
	// AggregateID is a string, not a typed foreign key, so the ledger stays
	// decoupled from concrete entity types.
	AggregateID string          `db:"aggregate_id"`
	Payload     json.RawMessage `db:"payload"`

	Status Status `db:"status"`

	RetryCount int `db:"retry_count"`
	MaxRetries int `db:"max_retries"`

	ErrorMessage *string    `db:"error_message"`
	LastErrorAt  *time.Time `db:"last_error_at"`

	// DispatchHandle references the async job that last attempted this
	// entry. Traceability only, never used for correctness decisions.
	DispatchHandle *string `db:"dispatch_handle"`

	CreatedAt   time.Time  `db:"created_at"`
	PublishedAt *time.Time `db:"published_at"`
	ProcessedAt *time.Time `db:"processed_at"`
}

// NewEvent creates a pending ledger entry.
func NewEvent(eventType, aggregateType, aggregateID string, payload json.RawMessage) *Event {
	if payload == nil {
		payload = json.RawMessage(`{}`)
	}
	return &Event{
		ID:            id.New(),
		EventType:     eventType,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		Payload:       payload,
		Status:        StatusPending,
		MaxRetries:    DefaultMaxRetries,
		CreatedAt:     time.Now().UTC(),
	}
}

// ShouldRetry reports whether the entry is still eligible for automatic
// redispatch. Once retry_count reaches max_retries the entry is terminal and
// requires manual intervention.
func (e *Event) ShouldRetry() bool {
	return e.RetryCount < e.MaxRetries
}

// Repository persists ledger entries. The Create method participates in the
// caller's transaction; the Mark* methods are standalone status updates and
// all refuse to touch a processed entry.
type Repository interface {
	// Create inserts a pending entry. Must be called inside a transaction
	// so the entry commits atomically with the triggering mutation.
	Create(ctx context.Context, event *Event) error

	// CreateBatch inserts several pending entries in one round trip.
	CreateBatch(ctx context.Context, events []*Event) error

	Get(ctx context.Context, eventID id.ID) (*Event, error)

	// MarkPublished records a dispatch attempt: status published, handle
	// set, published_at set once (first dispatch wins).
	MarkPublished(ctx context.Context, eventID id.ID, handle string) error

	// MarkProcessed is the terminal success transition.
	MarkProcessed(ctx context.Context, eventID id.ID) error

	// MarkFailed records a failure. Transient failures increment
	// retry_count (capped at max_retries); permanent failures exhaust the
	// retry budget immediately so the sweeper never redispatches them.
	MarkFailed(ctx context.Context, eventID id.ID, errMsg string, permanent bool) error

	// ClaimForProcessing is a lightweight guard against concurrent
	// double-processing: it succeeds only while the entry is not yet
	// processed. Returns false when another worker already finished it.
	ClaimForProcessing(ctx context.Context, eventID id.ID) (bool, error)

	// ListStalePending returns pending entries created before cutoff whose
	// published_at is unset: entries the commit-time dispatcher failed to
	// submit.
	ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*Event, error)

	// ListStalePublished returns published entries whose processing never
	// completed within the grace window: the submission landed in a queue
	// that lost it (crash, restart, dropped buffer). Redelivery is safe,
	// ClaimForProcessing and the handlers tolerate duplicates.
	ListStalePublished(ctx context.Context, cutoff time.Time, limit int) ([]*Event, error)

	// ListRetryableFailed returns failed entries with retry budget left,
	// ordered by last_error_at.
	ListRetryableFailed(ctx context.Context, limit int) ([]*Event, error)

	// ListExhausted returns failed entries at max retries, for the
	// operational surface. Never redispatched automatically.
	ListExhausted(ctx context.Context, limit int) ([]*Event, error)
}

// Queue is the execution facility: any durable task queue with
// at-least-once submission semantics. Submit returns an opaque job handle.
type Queue interface {
	Submit(ctx context.Context, eventID id.ID) (handle string, err error)
}
