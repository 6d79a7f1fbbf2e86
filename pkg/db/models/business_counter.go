package models

import (
	"time"

	"github.com/google/uuid"
)

// BusinessCounter holds the per-business SKU sequence. The row is only ever
// mutated through an atomic increment-or-create upsert, never read-then-write.
type BusinessCounter struct {
	BusinessID           uuid.UUID `gorm:"column:business_id;type:uuid;primaryKey"`
	NextProductSkuNumber int64     `gorm:"column:next_product_sku_number;not null;default:2"`
	UpdatedAt            time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
