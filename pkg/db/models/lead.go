package models

import (
	"time"

	"github.com/google/uuid"
)

// Lead is a buyer inquiry submitted against a published property.
type Lead struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PropertyID uuid.UUID `gorm:"column:property_id;type:uuid;not null;index"`
	Name       string    `gorm:"column:name;not null"`
	Email      string    `gorm:"column:email;not null"`
	Phone      string    `gorm:"column:phone"`
	Message    string    `gorm:"column:message"`
	Source     string    `gorm:"column:source"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName overrides GORM's pluralization.
func (Lead) TableName() string {
	return "leads"
}
