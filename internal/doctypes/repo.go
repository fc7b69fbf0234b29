package doctypes

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ivanbelmonte/fincalia-backend/pkg/db/models"
)

// Repository exposes document-type persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a document-type repository bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns all document types ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.DocumentType, error) {
	var rows []models.DocumentType
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID retrieves a document type by ID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.DocumentType, error) {
	var row models.DocumentType
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// FindBySlug retrieves a document type by its slug.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.DocumentType, error) {
	var row models.DocumentType
	if err := r.db.WithContext(ctx).First(&row, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &row, nil
}
