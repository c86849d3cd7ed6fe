package eventstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/amirasaad/bankaccount/pkg/cqrs"
	"gorm.io/gorm"
)

// eventRecord is the bit-exact row shape expected by the external store.
type eventRecord struct {
	AggregateType string `gorm:"column:aggregate_type;primaryKey"`
	AggregateID   string `gorm:"column:aggregate_id;primaryKey"`
	Sequence      int64  `gorm:"column:sequence;primaryKey;autoIncrement:false"`
	EventType     string `gorm:"column:event_type;not null"`
	EventVersion  string `gorm:"column:event_version;not null"`
	Payload       []byte `gorm:"column:payload;type:jsonb;not null"`
	Metadata      []byte `gorm:"column:metadata;type:jsonb;not null"`
}

// TableName specifies the table name for event records.
func (eventRecord) TableName() string { return "events" }

// Gorm is the Postgres-backed event store. Optimistic concurrency rides on
// the (aggregate_type, aggregate_id, sequence) primary key: a stale writer
// inserting an already-taken sequence hits a duplicate-key violation, which
// surfaces as cqrs.ErrAggregateConflict.
type Gorm struct {
	db    *gorm.DB
	codec Codec
}

// NewGorm creates an event store on the given connection. The connection
// must be opened with gorm error translation enabled so duplicate-key
// violations map to gorm.ErrDuplicatedKey.
func NewGorm(db *gorm.DB, codec Codec) *Gorm {
	return &Gorm{db: db, codec: codec}
}

// Load implements cqrs.EventStore.
func (s *Gorm) Load(ctx context.Context, aggregateType, aggregateID string) ([]cqrs.EventEnvelope, error) {
	var records []eventRecord
	err := s.db.WithContext(ctx).
		Where("aggregate_type = ? AND aggregate_id = ?", aggregateType, aggregateID).
		Order("sequence ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load event stream %s/%s: %w", aggregateType, aggregateID, err)
	}

	envelopes := make([]cqrs.EventEnvelope, 0, len(records))
	for _, rec := range records {
		ev, err := s.codec.Unmarshal(rec.EventType, rec.Payload)
		if err != nil {
			return nil, fmt.Errorf("failed to deserialize event %s/%s#%d: %w",
				aggregateType, aggregateID, rec.Sequence, err)
		}
		var meta cqrs.Metadata
		if len(rec.Metadata) > 0 {
			if err := json.Unmarshal(rec.Metadata, &meta); err != nil {
				return nil, fmt.Errorf("failed to deserialize event metadata %s/%s#%d: %w",
					aggregateType, aggregateID, rec.Sequence, err)
			}
		}
		envelopes = append(envelopes, cqrs.EventEnvelope{
			AggregateType: rec.AggregateType,
			AggregateID:   rec.AggregateID,
			Sequence:      rec.Sequence,
			Event:         ev,
			Metadata:      meta,
		})
	}
	return envelopes, nil
}

// Commit implements cqrs.EventStore.
func (s *Gorm) Commit(
	ctx context.Context,
	aggregateType, aggregateID string,
	expectedVersion int64,
	events []cqrs.Event,
	meta cqrs.Metadata,
) ([]cqrs.EventEnvelope, error) {
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize event metadata: %w", err)
	}

	records := make([]eventRecord, 0, len(events))
	committed := make([]cqrs.EventEnvelope, 0, len(events))
	for i, ev := range events {
		payload, err := s.codec.Marshal(ev)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize %s event: %w", ev.EventType(), err)
		}
		sequence := expectedVersion + int64(i) + 1
		records = append(records, eventRecord{
			AggregateType: aggregateType,
			AggregateID:   aggregateID,
			Sequence:      sequence,
			EventType:     ev.EventType(),
			EventVersion:  ev.EventVersion(),
			Payload:       payload,
			Metadata:      metaJSON,
		})
		committed = append(committed, cqrs.EventEnvelope{
			AggregateType: aggregateType,
			AggregateID:   aggregateID,
			Sequence:      sequence,
			Event:         ev,
			Metadata:      meta,
		})
	}
	if len(records) == 0 {
		return nil, nil
	}

	if err := s.db.WithContext(ctx).Create(&records).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, cqrs.ErrAggregateConflict
		}
		return nil, fmt.Errorf("failed to commit events for %s/%s: %w", aggregateType, aggregateID, err)
	}
	return committed, nil
}

var _ cqrs.EventStore = (*Gorm)(nil)
