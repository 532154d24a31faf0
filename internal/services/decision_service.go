package services

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/argus-sec/argus/internal/models"
)

// DecisionService persists pipeline decisions so they can be audited and
// surfaced in the admin API.
type DecisionService struct {
	db *gorm.DB
}

// NewDecisionService returns a DecisionService using the provided DB
func NewDecisionService(db *gorm.DB) *DecisionService {
	return &DecisionService{db: db}
}

// Log stores a decision record
func (s *DecisionService) Log(d *models.Decision) error {
	if d == nil {
		return nil
	}
	if d.UUID == "" {
		d.UUID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	return s.db.Create(d).Error
}

// List returns recent decisions, ordered by created_at desc
func (s *DecisionService) List(limit int) ([]models.Decision, error) {
	var res []models.Decision
	q := s.db.Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&res).Error; err != nil {
		return nil, err
	}
	return res, nil
}

// ListByIdentity returns recent decisions for one identity
func (s *DecisionService) ListByIdentity(identity string, limit int) ([]models.Decision, error) {
	var res []models.Decision
	q := s.db.Where("identity = ?", identity).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&res).Error; err != nil {
		return nil, err
	}
	return res, nil
}
