package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/vendio/catalog-backend/api/middleware"
	"github.com/vendio/catalog-backend/api/responses"
	"github.com/vendio/catalog-backend/api/validators"
	productsvc "github.com/vendio/catalog-backend/internal/products"
	"github.com/vendio/catalog-backend/pkg/enums"
	pkgerrors "github.com/vendio/catalog-backend/pkg/errors"
	"github.com/vendio/catalog-backend/pkg/logger"
	"github.com/vendio/catalog-backend/pkg/pagination"
	"github.com/vendio/catalog-backend/pkg/types"
)

// CreateProduct handles catalog item creation for the tenant in context.
func CreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		businessID := middleware.BusinessIDFromContext(r.Context())

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), businessID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// UpdateProduct applies a partial patch to a product.
func UpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		businessID := middleware.BusinessIDFromContext(r.Context())
		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), businessID, productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// GetProduct returns the full detail of one product.
func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		businessID := middleware.BusinessIDFromContext(r.Context())
		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Get(r.Context(), businessID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// ListProducts pages the tenant's catalog with optional filters.
func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		businessID := middleware.BusinessIDFromContext(r.Context())

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := productsvc.ListProductsInput{
			BusinessID: businessID,
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
		}
		input.Filters.Query = validators.SanitizeString(r.URL.Query().Get("q"), 120)

		if rawType := strings.TrimSpace(r.URL.Query().Get("type")); rawType != "" {
			productType, parseErr := enums.ParseProductType(rawType)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid type filter"))
				return
			}
			input.Filters.Type = &productType
		}

		isActive, err := validators.ParseQueryBool(r, "is_active")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.Filters.IsActive = isActive

		if rawCategory := strings.TrimSpace(r.URL.Query().Get("category_id")); rawCategory != "" {
			categoryID, parseErr := uuid.Parse(rawCategory)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid category_id filter"))
				return
			}
			input.Filters.CategoryID = &categoryID
		}

		result, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// DeleteProduct soft-deletes a product. The ledger history stays intact.
func DeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		businessID := middleware.BusinessIDFromContext(r.Context())
		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), businessID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type createProductRequest struct {
	Type       string  `json:"type" validate:"required,oneof=physical service"`
	Name       string  `json:"name" validate:"required"`
	SKU        *string `json:"sku,omitempty"`
	Barcode    *string `json:"barcode,omitempty"`
	UnitID     *string `json:"unit_id,omitempty"`
	CategoryID *string `json:"category_id,omitempty"`

	PriceMinor *string `json:"price_minor,omitempty"`
	Price      *string `json:"price,omitempty"`
	CostMinor  *string `json:"cost_minor,omitempty"`
	Cost       *string `json:"cost,omitempty"`

	TrackInventory bool    `json:"track_inventory"`
	ReorderPoint   *string `json:"reorder_point,omitempty"`
	InitialOnHand  *string `json:"initial_on_hand,omitempty"`

	DurationInitialMinutes    *int `json:"duration_initial_minutes,omitempty"`
	DurationProcessingMinutes *int `json:"duration_processing_minutes,omitempty"`
	DurationFinalMinutes      *int `json:"duration_final_minutes,omitempty"`
	ProcessingEnabled         bool `json:"processing_enabled"`

	ModifierGroupIDs []string `json:"modifier_group_ids,omitempty"`
}

func (r createProductRequest) toCreateInput() (productsvc.CreateProductInput, error) {
	productType, err := enums.ParseProductType(strings.TrimSpace(r.Type))
	if err != nil {
		return productsvc.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type")
	}

	unitID, err := parseUUIDPtr(r.UnitID, "unit_id")
	if err != nil {
		return productsvc.CreateProductInput{}, err
	}
	categoryID, err := parseUUIDPtr(r.CategoryID, "category_id")
	if err != nil {
		return productsvc.CreateProductInput{}, err
	}
	groupIDs, err := parseUUIDList(r.ModifierGroupIDs, "modifier_group_ids")
	if err != nil {
		return productsvc.CreateProductInput{}, err
	}

	return productsvc.CreateProductInput{
		Type:       productType,
		Name:       r.Name,
		SKU:        r.SKU,
		Barcode:    r.Barcode,
		UnitID:     unitID,
		CategoryID: categoryID,

		PriceMinor: r.PriceMinor,
		Price:      r.Price,
		CostMinor:  r.CostMinor,
		Cost:       r.Cost,

		TrackInventory: r.TrackInventory,
		ReorderPoint:   r.ReorderPoint,
		InitialOnHand:  r.InitialOnHand,

		DurationInitialMinutes:    r.DurationInitialMinutes,
		DurationProcessingMinutes: r.DurationProcessingMinutes,
		DurationFinalMinutes:      r.DurationFinalMinutes,
		ProcessingEnabled:         r.ProcessingEnabled,

		ModifierGroupIDs: groupIDs,
	}, nil
}

type updateProductRequest struct {
	Name       types.Optional[string]    `json:"name"`
	SKU        types.Optional[string]    `json:"sku"`
	Barcode    types.Optional[string]    `json:"barcode"`
	UnitID     types.Optional[uuid.UUID] `json:"unit_id"`
	CategoryID types.Optional[uuid.UUID] `json:"category_id"`

	PriceMinor types.Optional[string] `json:"price_minor"`
	Price      types.Optional[string] `json:"price"`
	CostMinor  types.Optional[string] `json:"cost_minor"`
	Cost       types.Optional[string] `json:"cost"`

	TrackInventory types.Optional[bool]   `json:"track_inventory"`
	ReorderPoint   types.Optional[string] `json:"reorder_point"`
	IsActive       types.Optional[bool]   `json:"is_active"`

	DurationInitialMinutes    types.Optional[int]  `json:"duration_initial_minutes"`
	DurationProcessingMinutes types.Optional[int]  `json:"duration_processing_minutes"`
	DurationFinalMinutes      types.Optional[int]  `json:"duration_final_minutes"`
	ProcessingEnabled         types.Optional[bool] `json:"processing_enabled"`

	ModifierGroupIDs *[]string `json:"modifier_group_ids,omitempty"`
}

func (r updateProductRequest) toUpdateInput() (productsvc.UpdateProductInput, error) {
	input := productsvc.UpdateProductInput{
		Name:       r.Name,
		SKU:        r.SKU,
		Barcode:    r.Barcode,
		UnitID:     r.UnitID,
		CategoryID: r.CategoryID,

		PriceMinor: r.PriceMinor,
		Price:      r.Price,
		CostMinor:  r.CostMinor,
		Cost:       r.Cost,

		TrackInventory: r.TrackInventory,
		ReorderPoint:   r.ReorderPoint,
		IsActive:       r.IsActive,

		DurationInitialMinutes:    r.DurationInitialMinutes,
		DurationProcessingMinutes: r.DurationProcessingMinutes,
		DurationFinalMinutes:      r.DurationFinalMinutes,
		ProcessingEnabled:         r.ProcessingEnabled,
	}

	if r.ModifierGroupIDs != nil {
		groupIDs, err := parseUUIDList(*r.ModifierGroupIDs, "modifier_group_ids")
		if err != nil {
			return productsvc.UpdateProductInput{}, err
		}
		if groupIDs == nil {
			groupIDs = []uuid.UUID{}
		}
		input.ModifierGroupIDs = &groupIDs
	}

	return input, nil
}
