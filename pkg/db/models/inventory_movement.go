package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vendio/catalog-backend/pkg/enums"
)

// InventoryMovement is one immutable row of the stock ledger. Rows are only
// ever appended; the cached product balance is derived from their signed sum.
type InventoryMovement struct {
	ID                  uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BusinessID          uuid.UUID            `gorm:"column:business_id;type:uuid;not null;index"`
	ProductID           uuid.UUID            `gorm:"column:product_id;type:uuid;not null;index"`
	StoreID             *uuid.UUID           `gorm:"column:store_id;type:uuid"`
	QuantityDeltaScaled int64                `gorm:"column:quantity_delta_scaled;not null"`
	Reason              enums.MovementReason `gorm:"column:reason;not null"`
	Note                *string              `gorm:"column:note"`
	IdempotencyKey      *string              `gorm:"column:idempotency_key"`
	RelatedSaleID       *uuid.UUID           `gorm:"column:related_sale_id;type:uuid"`
	CreatedAt           time.Time            `gorm:"column:created_at;autoCreateTime"`
}
