package eventstore

import (
	"fmt"

	"github.com/amirasaad/bankaccount/pkg/cqrs"
	"github.com/amirasaad/bankaccount/pkg/domain/account"
)

// Codec translates between domain events and their persisted payload bytes.
type Codec interface {
	Marshal(ev cqrs.Event) ([]byte, error)
	Unmarshal(eventType string, payload []byte) (cqrs.Event, error)
}

// AccountCodec persists account events in the payload shape expected by the
// external store: a JSON object keyed by the event variant name.
type AccountCodec struct{}

// Marshal implements Codec.
func (AccountCodec) Marshal(ev cqrs.Event) ([]byte, error) {
	accountEvent, ok := ev.(account.Event)
	if !ok {
		return nil, fmt.Errorf("not an account event: %T", ev)
	}
	return account.MarshalEvent(accountEvent)
}

// Unmarshal implements Codec.
func (AccountCodec) Unmarshal(eventType string, payload []byte) (cqrs.Event, error) {
	return account.UnmarshalEvent(eventType, payload)
}
