// Package viewstore persists the materialized account views behind
// query.Repository: in-memory for tests and development, Postgres for
// production, plus an optional Redis read-through cache.
package viewstore

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/amirasaad/bankaccount/pkg/query"
)

// Memory is an in-process view repository.
type Memory struct {
	mu    sync.RWMutex
	views map[string]memoryRecord
}

type memoryRecord struct {
	version int64
	payload []byte
}

// NewMemory creates an empty in-memory view repository.
func NewMemory() *Memory {
	return &Memory{views: make(map[string]memoryRecord)}
}

// Load implements query.Repository. Views are stored serialized so callers
// never share mutable state.
func (m *Memory) Load(_ context.Context, viewID string) (*query.AccountView, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.views[viewID]
	if !ok {
		return nil, 0, nil
	}
	var view query.AccountView
	if err := json.Unmarshal(rec.payload, &view); err != nil {
		return nil, 0, err
	}
	return &view, rec.version, nil
}

// Save implements query.Repository.
func (m *Memory) Save(_ context.Context, viewID string, version int64, view *query.AccountView) error {
	payload, err := json.Marshal(view)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.views[viewID] = memoryRecord{version: version, payload: payload}
	return nil
}

var _ query.Repository = (*Memory)(nil)
