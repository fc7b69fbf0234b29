package leads

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ivanbelmonte/fincalia-backend/pkg/db/models"
)

// Repository exposes lead persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a lead repository bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a lead.
func (r *Repository) Create(ctx context.Context, lead *models.Lead) (*models.Lead, error) {
	if err := r.db.WithContext(ctx).Create(lead).Error; err != nil {
		return nil, err
	}
	return lead, nil
}

// ListByProperty returns the property's leads, newest first.
func (r *Repository) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]models.Lead, error) {
	var rows []models.Lead
	err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
