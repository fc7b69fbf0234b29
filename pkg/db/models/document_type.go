package models

import (
	"time"

	"github.com/google/uuid"
)

// DocumentType labels attached documents (deed, energy certificate, floor plan).
type DocumentType struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Slug      string    `gorm:"column:slug;not null;uniqueIndex"`
	Name      string    `gorm:"column:name;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides GORM's pluralization.
func (DocumentType) TableName() string {
	return "document_types"
}
