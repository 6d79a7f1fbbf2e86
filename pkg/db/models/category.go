package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is a read-only display grouping for products.
type Category struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BusinessID uuid.UUID `gorm:"column:business_id;type:uuid;not null;index"`
	Name       string    `gorm:"column:name;not null"`
	SortOrder  int       `gorm:"column:sort_order;not null;default:0"`
	IsActive   bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
