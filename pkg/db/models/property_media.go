package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ivanbelmonte/fincalia-backend/pkg/enums"
)

// PropertyMedia stores ordered media entries for a property, including the
// binary payload. At most one image per property carries the principal flag.
type PropertyMedia struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PropertyID     uuid.UUID       `gorm:"column:property_id;type:uuid;not null;index"`
	Kind           enums.MediaKind `gorm:"column:kind;not null"`
	FileName       string          `gorm:"column:file_name;not null"`
	MimeType       string          `gorm:"column:mime_type;not null"`
	SizeBytes      int64           `gorm:"column:size_bytes;not null"`
	Content        []byte          `gorm:"column:content;not null"`
	ContentHash    string          `gorm:"column:content_hash;not null"`
	Position       int             `gorm:"column:position;not null;default:0"`
	IsPrincipal    bool            `gorm:"column:is_principal;not null;default:false"`
	DocumentTypeID *uuid.UUID      `gorm:"column:document_type_id;type:uuid"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides GORM's pluralization.
func (PropertyMedia) TableName() string {
	return "property_media"
}
