package products

import (
	"time"

	"github.com/google/uuid"

	"github.com/vendio/catalog-backend/pkg/db/models"
	"github.com/vendio/catalog-backend/pkg/enums"
	"github.com/vendio/catalog-backend/pkg/money"
	"github.com/vendio/catalog-backend/pkg/pagination"
	"github.com/vendio/catalog-backend/pkg/quantity"
)

// ListProductsInput narrows and pages the business catalog.
type ListProductsInput struct {
	BusinessID uuid.UUID
	Pagination pagination.Params
	Filters    ProductListFilters
}

// ProductSummary is the list-row shape of a product.
type ProductSummary struct {
	ID           uuid.UUID         `json:"id"`
	Type         enums.ProductType `json:"type"`
	Name         string            `json:"name"`
	SKU          *string           `json:"sku,omitempty"`
	Barcode      *string           `json:"barcode,omitempty"`
	UnitName     *string           `json:"unit_name,omitempty"`
	CategoryName *string           `json:"category_name,omitempty"`
	PriceMinor   *int64            `json:"price_minor,omitempty"`
	PriceDisplay *string           `json:"price,omitempty"`

	TrackInventory bool   `json:"track_inventory"`
	OnHand         string `json:"on_hand"`

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductListResult is one page of summaries plus the next cursor.
type ProductListResult struct {
	Products   []ProductSummary `json:"products"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// NewProductSummary maps a product row with preloaded unit/category into its
// list shape.
func NewProductSummary(product *models.Product) ProductSummary {
	scale := 0
	summary := ProductSummary{
		ID:             product.ID,
		Type:           product.Type,
		Name:           product.Name,
		SKU:            product.SKU,
		Barcode:        product.Barcode,
		PriceMinor:     product.PriceMinor,
		PriceDisplay:   money.FormatPtr(product.PriceMinor),
		TrackInventory: product.TrackInventory,
		IsActive:       product.IsActive,
		CreatedAt:      product.CreatedAt,
	}
	if product.Unit != nil {
		scale = product.Unit.PrecisionScale
		name := product.Unit.Name
		summary.UnitName = &name
	}
	if product.Category != nil {
		name := product.Category.Name
		summary.CategoryName = &name
	}
	summary.OnHand = quantity.FromStorage(product.OnHandCached, scale)
	return summary
}
