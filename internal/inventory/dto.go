package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/vendio/catalog-backend/pkg/db/models"
	"github.com/vendio/catalog-backend/pkg/enums"
	"github.com/vendio/catalog-backend/pkg/quantity"
)

// MovementDTO is the transport shape of one ledger entry. The delta is
// rendered as a signed decimal string at the product unit's scale.
type MovementDTO struct {
	ID             uuid.UUID            `json:"id"`
	ProductID      uuid.UUID            `json:"product_id"`
	StoreID        *uuid.UUID           `json:"store_id,omitempty"`
	QuantityDelta  string               `json:"quantity_delta"`
	Reason         enums.MovementReason `json:"reason"`
	Note           *string              `json:"note,omitempty"`
	IdempotencyKey *string              `json:"idempotency_key,omitempty"`
	RelatedSaleID  *uuid.UUID           `json:"related_sale_id,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
}

// MovementListResult is a page of ledger entries.
type MovementListResult struct {
	Movements  []MovementDTO `json:"movements"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// NewMovementDTO maps a movement row into its transport shape.
func NewMovementDTO(movement *models.InventoryMovement, unitScale int) MovementDTO {
	return MovementDTO{
		ID:             movement.ID,
		ProductID:      movement.ProductID,
		StoreID:        movement.StoreID,
		QuantityDelta:  quantity.FromStorage(movement.QuantityDeltaScaled, unitScale),
		Reason:         movement.Reason,
		Note:           movement.Note,
		IdempotencyKey: movement.IdempotencyKey,
		RelatedSaleID:  movement.RelatedSaleID,
		CreatedAt:      movement.CreatedAt,
	}
}
