package audit

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/argus-sec/argus/internal/models"
)

// Store is the narrow interface the trail needs from an append-only
// durable backend. Implementations must not reorder or lose appends.
type Store interface {
	Append(ctx context.Context, rec *models.AuditRecord) error
	Read(ctx context.Context, logID string) (*models.AuditRecord, error)
}

// GormStore persists audit records through gorm.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore returns a store backed by the provided DB.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Append inserts the record. Records are never updated or deleted here;
// the trail is append-only by construction.
func (s *GormStore) Append(ctx context.Context, rec *models.AuditRecord) error {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

// Read fetches a record by its log id (the record UUID).
func (s *GormStore) Read(ctx context.Context, logID string) (*models.AuditRecord, error) {
	var rec models.AuditRecord
	if err := s.db.WithContext(ctx).Where("uuid = ?", logID).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return &rec, nil
}
