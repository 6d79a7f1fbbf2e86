package models

import (
	"time"

	"github.com/google/uuid"
)

// ModifierOption is one selectable entry within a modifier group. The price
// delta is a signed minor-unit amount applied on top of the product price.
type ModifierOption struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GroupID         uuid.UUID `gorm:"column:group_id;type:uuid;not null;index"`
	Name            string    `gorm:"column:name;not null"`
	PriceDeltaMinor int64     `gorm:"column:price_delta_minor;not null;default:0"`
	IsSoldOut       bool      `gorm:"column:is_sold_out;not null;default:false"`
	IsArchived      bool      `gorm:"column:is_archived;not null;default:false"`
	SortOrder       int       `gorm:"column:sort_order;not null;default:0"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
