package controllers

import (
	"net/http"
	"strings"

	"github.com/vendio/catalog-backend/api/middleware"
	"github.com/vendio/catalog-backend/api/responses"
	"github.com/vendio/catalog-backend/api/validators"
	inventorysvc "github.com/vendio/catalog-backend/internal/inventory"
	"github.com/vendio/catalog-backend/pkg/enums"
	pkgerrors "github.com/vendio/catalog-backend/pkg/errors"
	"github.com/vendio/catalog-backend/pkg/logger"
	"github.com/vendio/catalog-backend/pkg/pagination"
)

// AdjustStock appends a ledger movement and updates the cached balance.
func AdjustStock(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		businessID := middleware.BusinessIDFromContext(r.Context())
		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload adjustStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reason, err := enums.ParseMovementReason(strings.TrimSpace(payload.Reason))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid reason"))
			return
		}

		relatedSaleID, err := parseUUIDPtr(payload.RelatedSaleID, "related_sale_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := inventorysvc.AdjustStockInput{
			ProductID:      productID,
			StoreID:        middleware.StoreIDFromContext(r.Context()),
			Quantity:       payload.Quantity,
			Reason:         reason,
			Note:           payload.Note,
			IdempotencyKey: payload.IdempotencyKey,
			RelatedSaleID:  relatedSaleID,
		}

		movement, err := svc.Adjust(r.Context(), businessID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, movement)
	}
}

// ListMovements pages a product's ledger newest first.
func ListMovements(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		businessID := middleware.BusinessIDFromContext(r.Context())
		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		result, err := svc.ListMovements(r.Context(), businessID, productID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// ReconcileStock recomputes the ledger balance and repairs the cache when it
// has drifted.
func ReconcileStock(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		businessID := middleware.BusinessIDFromContext(r.Context())
		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Reconcile(r.Context(), businessID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type adjustStockRequest struct {
	Quantity       string  `json:"quantity" validate:"required"`
	Reason         string  `json:"reason" validate:"required"`
	Note           *string `json:"note,omitempty"`
	IdempotencyKey *string `json:"idempotency_key,omitempty"`
	RelatedSaleID  *string `json:"related_sale_id,omitempty"`
}
