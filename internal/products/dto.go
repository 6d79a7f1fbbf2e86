package products

import (
	"time"

	"github.com/google/uuid"

	"github.com/vendio/catalog-backend/pkg/db/models"
	"github.com/vendio/catalog-backend/pkg/enums"
	"github.com/vendio/catalog-backend/pkg/money"
	"github.com/vendio/catalog-backend/pkg/quantity"
)

// ProductDTO is the hydrated transport shape of a product. Money values are
// rendered both as minor-unit integers and display strings; quantities as
// decimal strings at the unit's precision scale.
type ProductDTO struct {
	ID         uuid.UUID         `json:"id"`
	BusinessID uuid.UUID         `json:"business_id"`
	Type       enums.ProductType `json:"type"`
	Name       string            `json:"name"`
	SKU        *string           `json:"sku,omitempty"`
	Barcode    *string           `json:"barcode,omitempty"`

	Unit     *UnitDTO     `json:"unit,omitempty"`
	Category *CategoryDTO `json:"category,omitempty"`

	PriceMinor   *int64  `json:"price_minor,omitempty"`
	PriceDisplay *string `json:"price,omitempty"`
	CostMinor    *int64  `json:"cost_minor,omitempty"`
	CostDisplay  *string `json:"cost,omitempty"`

	TrackInventory bool    `json:"track_inventory"`
	OnHand         string  `json:"on_hand"`
	ReorderPoint   *string `json:"reorder_point,omitempty"`

	DurationInitialMinutes    *int `json:"duration_initial_minutes,omitempty"`
	DurationProcessingMinutes *int `json:"duration_processing_minutes,omitempty"`
	DurationFinalMinutes      *int `json:"duration_final_minutes,omitempty"`
	ProcessingEnabled         bool `json:"processing_enabled"`

	ModifierGroups []ProductModifierGroupDTO `json:"modifier_groups"`

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UnitDTO is the embedded unit summary.
type UnitDTO struct {
	ID             uuid.UUID          `json:"id"`
	Name           string             `json:"name"`
	Abbreviation   string             `json:"abbreviation"`
	Category       enums.UnitCategory `json:"category"`
	PrecisionScale int                `json:"precision_scale"`
}

// CategoryDTO is the embedded category summary.
type CategoryDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ProductModifierGroupDTO is one attached group with its live options.
type ProductModifierGroupDTO struct {
	ID            uuid.UUID           `json:"id"`
	Name          string              `json:"name"`
	SelectionType enums.SelectionType `json:"selection_type"`
	IsRequired    bool                `json:"is_required"`
	MinSelected   int                 `json:"min_selected"`
	MaxSelected   int                 `json:"max_selected"`
	SortOrder     int                 `json:"sort_order"`
	Options       []ModifierOptionDTO `json:"options"`
}

// ModifierOptionDTO is one selectable option on an attached group.
type ModifierOptionDTO struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	PriceDeltaMinor   int64     `json:"price_delta_minor"`
	PriceDeltaDisplay string    `json:"price_delta"`
	IsSoldOut         bool      `json:"is_sold_out"`
	SortOrder         int       `json:"sort_order"`
}

// NewProductDTO maps a hydrated product row into its transport shape.
func NewProductDTO(product *models.Product) *ProductDTO {
	scale := 0
	dto := &ProductDTO{
		ID:                        product.ID,
		BusinessID:                product.BusinessID,
		Type:                      product.Type,
		Name:                      product.Name,
		SKU:                       product.SKU,
		Barcode:                   product.Barcode,
		PriceMinor:                product.PriceMinor,
		PriceDisplay:              money.FormatPtr(product.PriceMinor),
		CostMinor:                 product.CostMinor,
		CostDisplay:               money.FormatPtr(product.CostMinor),
		TrackInventory:            product.TrackInventory,
		DurationInitialMinutes:    product.DurationInitialMinutes,
		DurationProcessingMinutes: product.DurationProcessingMinutes,
		DurationFinalMinutes:      product.DurationFinalMinutes,
		ProcessingEnabled:         product.ProcessingEnabled,
		IsActive:                  product.IsActive,
		CreatedAt:                 product.CreatedAt,
		UpdatedAt:                 product.UpdatedAt,
	}

	if product.Unit != nil {
		scale = product.Unit.PrecisionScale
		dto.Unit = &UnitDTO{
			ID:             product.Unit.ID,
			Name:           product.Unit.Name,
			Abbreviation:   product.Unit.Abbreviation,
			Category:       product.Unit.Category,
			PrecisionScale: product.Unit.PrecisionScale,
		}
	}
	if product.Category != nil {
		dto.Category = &CategoryDTO{ID: product.Category.ID, Name: product.Category.Name}
	}

	dto.OnHand = quantity.FromStorage(product.OnHandCached, scale)
	if product.ReorderPointScaled != nil {
		reorder := quantity.FromStorage(*product.ReorderPointScaled, scale)
		dto.ReorderPoint = &reorder
	}

	dto.ModifierGroups = make([]ProductModifierGroupDTO, 0, len(product.ModifierGroups))
	for _, link := range product.ModifierGroups {
		if link.Group == nil || link.Group.IsArchived {
			continue
		}
		group := ProductModifierGroupDTO{
			ID:            link.Group.ID,
			Name:          link.Group.Name,
			SelectionType: link.Group.SelectionType,
			IsRequired:    link.Group.IsRequired,
			MinSelected:   link.Group.MinSelected,
			MaxSelected:   link.Group.MaxSelected,
			SortOrder:     link.SortOrder,
			Options:       make([]ModifierOptionDTO, 0, len(link.Group.Options)),
		}
		for _, option := range link.Group.Options {
			group.Options = append(group.Options, ModifierOptionDTO{
				ID:                option.ID,
				Name:              option.Name,
				PriceDeltaMinor:   option.PriceDeltaMinor,
				PriceDeltaDisplay: money.Format(option.PriceDeltaMinor),
				IsSoldOut:         option.IsSoldOut,
				SortOrder:         option.SortOrder,
			})
		}
		dto.ModifierGroups = append(dto.ModifierGroups, group)
	}
	return dto
}
