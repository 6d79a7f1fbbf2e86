package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductModifierGroup links a product to a modifier group. The link set for
// a product is always replaced wholesale, never patched row by row.
type ProductModifierGroup struct {
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
	GroupID   uuid.UUID `gorm:"column:group_id;type:uuid;primaryKey"`
	SortOrder int       `gorm:"column:sort_order;not null;default:0"`

	Group *ModifierGroup `gorm:"foreignKey:GroupID"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
