// Package eventstore provides the durable event-log implementations behind
// cqrs.EventStore: an in-memory store for tests and development, and a
// Postgres-backed store for production.
package eventstore

import (
	"context"
	"sync"

	"github.com/amirasaad/bankaccount/pkg/cqrs"
)

// Memory is an in-process event store. It honors the same optimistic
// concurrency contract as the durable store, so the engine behaves
// identically in tests.
type Memory struct {
	mu      sync.RWMutex
	streams map[string][]cqrs.EventEnvelope
}

// NewMemory creates an empty in-memory event store.
func NewMemory() *Memory {
	return &Memory{streams: make(map[string][]cqrs.EventEnvelope)}
}

func streamKey(aggregateType, aggregateID string) string {
	return aggregateType + "/" + aggregateID
}

// Load implements cqrs.EventStore.
func (m *Memory) Load(_ context.Context, aggregateType, aggregateID string) ([]cqrs.EventEnvelope, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stream := m.streams[streamKey(aggregateType, aggregateID)]
	out := make([]cqrs.EventEnvelope, len(stream))
	copy(out, stream)
	return out, nil
}

// Commit implements cqrs.EventStore. The expected version must equal the
// sequence of the last committed event or the commit is rejected with
// cqrs.ErrAggregateConflict.
func (m *Memory) Commit(
	_ context.Context,
	aggregateType, aggregateID string,
	expectedVersion int64,
	events []cqrs.Event,
	meta cqrs.Metadata,
) ([]cqrs.EventEnvelope, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := streamKey(aggregateType, aggregateID)
	stream := m.streams[key]
	if int64(len(stream)) != expectedVersion {
		return nil, cqrs.ErrAggregateConflict
	}

	committed := make([]cqrs.EventEnvelope, 0, len(events))
	for i, ev := range events {
		committed = append(committed, cqrs.EventEnvelope{
			AggregateType: aggregateType,
			AggregateID:   aggregateID,
			Sequence:      expectedVersion + int64(i) + 1,
			Event:         ev,
			Metadata:      meta,
		})
	}
	m.streams[key] = append(stream, committed...)
	return committed, nil
}

var _ cqrs.EventStore = (*Memory)(nil)
