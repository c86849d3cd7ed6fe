// Package cqrs defines the contracts between the account aggregate and its
// collaborators: the durable event store with optimistic concurrency, the
// persisted record shapes, and the queries dispatched after each commit.
package cqrs

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrAggregateConflict is returned when a concurrent writer won the
	// race for an aggregate instance. The caller may retry the same
	// command against the now-current state.
	ErrAggregateConflict = errors.New(
		"command was rejected due to a conflict with another command on the same aggregate instance - may retry")

	// ErrNotFound is returned when an aggregate or view does not exist.
	ErrNotFound = errors.New("not found")
)

// Event is a persistable domain event. Account events satisfy it.
type Event interface {
	EventType() string
	EventVersion() string
}

// Metadata is the opaque bag persisted with each event record, carrying the
// correlation identifier and receipt timestamp.
type Metadata struct {
	CorrelationID uuid.UUID `json:"correlation_id"`
	ReceivedAt    time.Time `json:"received_at"`
}

// NewMetadata stamps a fresh correlation id and receipt time.
func NewMetadata() Metadata {
	return Metadata{CorrelationID: uuid.New(), ReceivedAt: time.Now().UTC()}
}

// EventEnvelope is one committed event together with its persisted identity.
// Sequence numbers are assigned by the store, starting at 1 per aggregate
// instance, strictly increasing with no gaps.
type EventEnvelope struct {
	AggregateType string
	AggregateID   string
	Sequence      int64
	Event         Event
	Metadata      Metadata
}

// EventStore is the durable append-only event log. Commit must reject a
// stale expected version with ErrAggregateConflict so the engine can
// distinguish "retry with fresh state" from a fatal storage failure.
type EventStore interface {
	// Load returns the full committed history of one aggregate instance
	// in commit order. A missing aggregate yields an empty history.
	Load(ctx context.Context, aggregateType, aggregateID string) ([]EventEnvelope, error)

	// Commit appends events under optimistic concurrency. expectedVersion
	// is the sequence of the last event the writer observed (0 for a new
	// aggregate). It returns the committed envelopes.
	Commit(
		ctx context.Context,
		aggregateType, aggregateID string,
		expectedVersion int64,
		events []Event,
		meta Metadata,
	) ([]EventEnvelope, error)
}

// Query is an observer invoked with each batch of newly committed events for
// an aggregate instance, exactly once, in commit order. Query failures are
// isolated by the engine: they are logged and never roll back the commit.
type Query interface {
	Dispatch(ctx context.Context, aggregateID string, events []EventEnvelope) error
}
