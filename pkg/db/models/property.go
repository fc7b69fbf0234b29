package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ivanbelmonte/fincalia-backend/pkg/enums"
)

// Property is a listing record owned by the back office.
type Property struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Reference   string               `gorm:"column:reference;not null;uniqueIndex"`
	Title       string               `gorm:"column:title;not null"`
	Description string               `gorm:"column:description"`
	City        string               `gorm:"column:city"`
	Province    string               `gorm:"column:province"`
	PriceCents  int64                `gorm:"column:price_cents;not null;default:0"`
	Status      enums.PropertyStatus `gorm:"column:status;not null;default:draft"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides GORM's pluralization.
func (Property) TableName() string {
	return "properties"
}
