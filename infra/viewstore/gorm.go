package viewstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/amirasaad/bankaccount/pkg/query"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// viewRecord is the persisted view row: view_id equals the aggregate id,
// version is the sequence of the last folded event.
type viewRecord struct {
	ViewID  string `gorm:"column:view_id;primaryKey"`
	Version int64  `gorm:"column:version;not null"`
	Payload []byte `gorm:"column:payload;type:jsonb;not null"`
}

// TableName specifies the table name for view records.
func (viewRecord) TableName() string { return "account_views" }

// Gorm is the Postgres-backed view repository.
type Gorm struct {
	db *gorm.DB
}

// NewGorm creates a view repository on the given connection.
func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

// Load implements query.Repository. A missing view is not an error.
func (s *Gorm) Load(ctx context.Context, viewID string) (*query.AccountView, int64, error) {
	var rec viewRecord
	err := s.db.WithContext(ctx).First(&rec, "view_id = ?", viewID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load view %s: %w", viewID, err)
	}
	var view query.AccountView
	if err := json.Unmarshal(rec.Payload, &view); err != nil {
		return nil, 0, fmt.Errorf("failed to deserialize view %s: %w", viewID, err)
	}
	return &view, rec.Version, nil
}

// Save implements query.Repository as an upsert; the projection is applied
// outside the aggregate's transaction boundary and may be replayed.
func (s *Gorm) Save(ctx context.Context, viewID string, version int64, view *query.AccountView) error {
	payload, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("failed to serialize view %s: %w", viewID, err)
	}
	rec := viewRecord{ViewID: viewID, Version: version, Payload: payload}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "view_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"version", "payload"}),
		}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to save view %s: %w", viewID, err)
	}
	return nil
}

var _ query.Repository = (*Gorm)(nil)
