package media

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ivanbelmonte/fincalia-backend/pkg/db/models"
	"github.com/ivanbelmonte/fincalia-backend/pkg/enums"
)

// ErrNotFound is returned by repository lookups when no row matches.
var ErrNotFound = gorm.ErrRecordNotFound

// Repository exposes property media persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a media repository bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListByKind returns a property's assets of one kind ordered by position
// ascending with id as the tiebreaker.
func (r *Repository) ListByKind(ctx context.Context, propertyID uuid.UUID, kind enums.MediaKind) ([]models.PropertyMedia, error) {
	var rows []models.PropertyMedia
	err := r.db.WithContext(ctx).
		Where("property_id = ? AND kind = ?", propertyID, kind).
		Order("position ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID retrieves an asset scoped to the owning property.
func (r *Repository) FindByID(ctx context.Context, propertyID, id uuid.UUID) (*models.PropertyMedia, error) {
	var row models.PropertyMedia
	err := r.db.WithContext(ctx).
		First(&row, "id = ? AND property_id = ?", id, propertyID).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ImageExistsWithHash reports whether the property already holds an image with
// the given content hash.
func (r *Repository) ImageExistsWithHash(ctx context.Context, propertyID uuid.UUID, hash string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PropertyMedia{}).
		Where("property_id = ? AND kind = ? AND content_hash = ?", propertyID, enums.MediaKindImage, hash).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// NextPosition returns max(position)+1 among the property's assets of the
// given kind, or 1 when none exist.
func (r *Repository) NextPosition(ctx context.Context, propertyID uuid.UUID, kind enums.MediaKind) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).Model(&models.PropertyMedia{}).
		Where("property_id = ? AND kind = ?", propertyID, kind).
		Select("MAX(position)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 1, nil
	}
	return *max + 1, nil
}

// CountByKind returns how many assets of the given kind the property holds.
func (r *Repository) CountByKind(ctx context.Context, propertyID uuid.UUID, kind enums.MediaKind) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PropertyMedia{}).
		Where("property_id = ? AND kind = ?", propertyID, kind).
		Count(&count).Error
	return count, err
}

// Create persists an asset row.
func (r *Repository) Create(ctx context.Context, asset *models.PropertyMedia) (*models.PropertyMedia, error) {
	if err := r.db.WithContext(ctx).Create(asset).Error; err != nil {
		return nil, err
	}
	return asset, nil
}

// Delete removes an asset scoped to the owning property. Returns ErrNotFound
// when no row was deleted.
func (r *Repository) Delete(ctx context.Context, propertyID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND property_id = ?", id, propertyID).
		Delete(&models.PropertyMedia{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPrincipal clears the principal flag on every image of the property and
// sets it on the given asset inside one transaction.
func (r *Repository) SetPrincipal(ctx context.Context, propertyID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PropertyMedia{}).
			Where("property_id = ? AND kind = ? AND is_principal", propertyID, enums.MediaKindImage).
			Update("is_principal", false).Error; err != nil {
			return err
		}
		res := tx.Model(&models.PropertyMedia{}).
			Where("id = ? AND property_id = ? AND kind = ?", id, propertyID, enums.MediaKindImage).
			Update("is_principal", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// FindPrincipal returns the property's principal image, or ErrNotFound.
func (r *Repository) FindPrincipal(ctx context.Context, propertyID uuid.UUID) (*models.PropertyMedia, error) {
	var row models.PropertyMedia
	err := r.db.WithContext(ctx).
		First(&row, "property_id = ? AND kind = ? AND is_principal", propertyID, enums.MediaKindImage).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// FirstImage returns the property's lowest-position image, or ErrNotFound.
func (r *Repository) FirstImage(ctx context.Context, propertyID uuid.UUID) (*models.PropertyMedia, error) {
	var row models.PropertyMedia
	err := r.db.WithContext(ctx).
		Where("property_id = ? AND kind = ?", propertyID, enums.MediaKindImage).
		Order("position ASC, id ASC").
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// FindVideo returns the property's single video asset, or nil when none exists.
func (r *Repository) FindVideo(ctx context.Context, propertyID uuid.UUID) (*models.PropertyMedia, error) {
	var row models.PropertyMedia
	err := r.db.WithContext(ctx).
		First(&row, "property_id = ? AND kind = ?", propertyID, enums.MediaKindVideo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ReplaceVideo deletes the existing video (if any) and inserts the new one in
// a single transaction.
func (r *Repository) ReplaceVideo(ctx context.Context, propertyID uuid.UUID, asset *models.PropertyMedia) (*models.PropertyMedia, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("property_id = ? AND kind = ?", propertyID, enums.MediaKindVideo).
			Delete(&models.PropertyMedia{}).Error; err != nil {
			return err
		}
		return tx.Create(asset).Error
	})
	if err != nil {
		return nil, err
	}
	return asset, nil
}
