// Package eventbus publishes committed account events to Kafka for
// downstream consumers. The publisher is one more registered query: its
// failures are logged by the engine and never affect the durable commit.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/amirasaad/bankaccount/pkg/cqrs"
	"github.com/segmentio/kafka-go"
)

// publishedEvent is the wire shape written to the topic, mirroring the
// persisted event record.
type publishedEvent struct {
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	Sequence      int64           `json:"sequence"`
	EventType     string          `json:"event_type"`
	EventVersion  string          `json:"event_version"`
	Payload       json.RawMessage `json:"payload"`
	Metadata      cqrs.Metadata   `json:"metadata"`
}

// Marshaler serializes an event into its published payload bytes.
type Marshaler interface {
	Marshal(ev cqrs.Event) ([]byte, error)
}

// KafkaPublisher writes each committed batch to a Kafka topic, keyed by
// aggregate id so one account's events stay ordered within a partition.
type KafkaPublisher struct {
	writer  *kafka.Writer
	marshal Marshaler
	logger  *slog.Logger
}

// NewKafkaPublisher builds a publisher for a comma-separated broker list.
func NewKafkaPublisher(
	brokers, topic string,
	marshal Marshaler,
	logger *slog.Logger,
) (*KafkaPublisher, error) {
	parsed := parseBrokers(brokers)
	if len(parsed) == 0 {
		return nil, fmt.Errorf("kafka publisher: brokers are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(parsed...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: writer, marshal: marshal, logger: logger}, nil
}

// Dispatch implements cqrs.Query.
func (p *KafkaPublisher) Dispatch(ctx context.Context, aggregateID string, events []cqrs.EventEnvelope) error {
	if len(events) == 0 {
		return nil
	}
	messages := make([]kafka.Message, 0, len(events))
	for _, env := range events {
		payload, err := p.marshal.Marshal(env.Event)
		if err != nil {
			return fmt.Errorf("failed to serialize %s event for publishing: %w", env.Event.EventType(), err)
		}
		value, err := json.Marshal(publishedEvent{
			AggregateType: env.AggregateType,
			AggregateID:   env.AggregateID,
			Sequence:      env.Sequence,
			EventType:     env.Event.EventType(),
			EventVersion:  env.Event.EventVersion(),
			Payload:       payload,
			Metadata:      env.Metadata,
		})
		if err != nil {
			return fmt.Errorf("failed to serialize published event: %w", err)
		}
		messages = append(messages, kafka.Message{Key: []byte(aggregateID), Value: value})
	}
	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		return fmt.Errorf("failed to publish %d events for %s: %w", len(messages), aggregateID, err)
	}
	p.logger.Debug("published committed events", "aggregate_id", aggregateID, "count", len(messages))
	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func parseBrokers(brokers string) []string {
	var out []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

var _ cqrs.Query = (*KafkaPublisher)(nil)
