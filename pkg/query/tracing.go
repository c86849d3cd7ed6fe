package query

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/amirasaad/bankaccount/pkg/cqrs"
	"github.com/amirasaad/bankaccount/pkg/domain/account"
)

// Tracing is a cqrs.Query that serializes each committed event to a
// human-readable log line for audit. It has no effect on durability or
// correctness if it fails.
type Tracing struct {
	logger *slog.Logger
}

// NewTracing builds the audit observer.
func NewTracing(logger *slog.Logger) *Tracing {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracing{logger: logger}
}

// Dispatch logs one line per committed event.
func (t *Tracing) Dispatch(_ context.Context, aggregateID string, events []cqrs.EventEnvelope) error {
	for _, env := range events {
		var payload []byte
		if ev, ok := env.Event.(account.Event); ok {
			payload, _ = account.MarshalEvent(ev)
		} else {
			payload, _ = json.Marshal(env.Event)
		}
		t.logger.Info("event committed",
			"aggregate_id", aggregateID,
			"sequence", env.Sequence,
			"event_type", env.Event.EventType(),
			"payload", string(payload),
		)
	}
	return nil
}

var _ cqrs.Query = (*Tracing)(nil)
