package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vendio/catalog-backend/pkg/enums"
)

// Product is the canonical business-scoped catalog row. Money columns are
// minor-unit integers; quantity columns are scaled integers at the storage
// scale (see pkg/quantity).
type Product struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BusinessID uuid.UUID         `gorm:"column:business_id;type:uuid;not null;index"`
	Type       enums.ProductType `gorm:"column:type;not null"`
	Name       string            `gorm:"column:name;not null"`
	SKU        *string           `gorm:"column:sku"`
	Barcode    *string           `gorm:"column:barcode"`
	UnitID     *uuid.UUID        `gorm:"column:unit_id;type:uuid"`
	CategoryID *uuid.UUID        `gorm:"column:category_id;type:uuid"`

	PriceMinor *int64 `gorm:"column:price_minor"`
	CostMinor  *int64 `gorm:"column:cost_minor"`

	TrackInventory     bool   `gorm:"column:track_inventory;not null;default:false"`
	OnHandCached       int64  `gorm:"column:on_hand_cached;not null;default:0"`
	ReorderPointScaled *int64 `gorm:"column:reorder_point_scaled"`

	DurationInitialMinutes    *int `gorm:"column:duration_initial_minutes"`
	DurationProcessingMinutes *int `gorm:"column:duration_processing_minutes"`
	DurationFinalMinutes      *int `gorm:"column:duration_final_minutes"`
	ProcessingEnabled         bool `gorm:"column:processing_enabled;not null;default:false"`

	IsActive bool `gorm:"column:is_active;not null;default:true"`

	Unit           *Unit                  `gorm:"foreignKey:UnitID"`
	Category       *Category              `gorm:"foreignKey:CategoryID"`
	ModifierGroups []ProductModifierGroup `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
