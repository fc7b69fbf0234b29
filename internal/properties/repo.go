package properties

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ivanbelmonte/fincalia-backend/pkg/db/models"
	"github.com/ivanbelmonte/fincalia-backend/pkg/enums"
	"github.com/ivanbelmonte/fincalia-backend/pkg/pagination"
)

// Repository exposes property persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a property repository bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a property record.
func (r *Repository) Create(ctx context.Context, property *models.Property) (*models.Property, error) {
	if err := r.db.WithContext(ctx).Create(property).Error; err != nil {
		return nil, err
	}
	return property, nil
}

// FindByID retrieves a property by ID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	var p models.Property
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByReference retrieves a property by its unique listing reference.
func (r *Repository) FindByReference(ctx context.Context, reference string) (*models.Property, error) {
	var p models.Property
	if err := r.db.WithContext(ctx).First(&p, "reference = ?", reference).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPage returns one keyset page ordered by created_at DESC, id DESC. Pass
// limit+1 rows to detect the next page.
func (r *Repository) ListPage(ctx context.Context, status enums.PropertyStatus, limit int, cursor *pagination.Cursor) ([]models.Property, error) {
	query := r.db.WithContext(ctx).Model(&models.Property{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}
	var rows []models.Property
	err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateStatus transitions the property's publication status.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.PropertyStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Property{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
