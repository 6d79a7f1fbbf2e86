package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/vendio/catalog-backend/api/middleware"
	"github.com/vendio/catalog-backend/api/responses"
	"github.com/vendio/catalog-backend/internal/categories"
	"github.com/vendio/catalog-backend/internal/units"
	"github.com/vendio/catalog-backend/pkg/enums"
	pkgerrors "github.com/vendio/catalog-backend/pkg/errors"
	"github.com/vendio/catalog-backend/pkg/logger"
)

type unitResponse struct {
	ID             uuid.UUID          `json:"id"`
	Name           string             `json:"name"`
	Abbreviation   string             `json:"abbreviation"`
	Category       enums.UnitCategory `json:"category"`
	PrecisionScale int                `json:"precision_scale"`
}

type categoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sort_order"`
}

// ListUnits returns the tenant's active units of measure.
func ListUnits(repo *units.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "unit repository unavailable"))
			return
		}

		businessID := middleware.BusinessIDFromContext(r.Context())

		rows, err := repo.ListByBusiness(r.Context(), businessID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list units"))
			return
		}

		items := make([]unitResponse, 0, len(rows))
		for _, row := range rows {
			items = append(items, unitResponse{
				ID:             row.ID,
				Name:           row.Name,
				Abbreviation:   row.Abbreviation,
				Category:       row.Category,
				PrecisionScale: row.PrecisionScale,
			})
		}

		responses.WriteSuccess(w, map[string]any{"units": items})
	}
}

// ListCategories returns the tenant's active categories in sort order.
func ListCategories(repo *categories.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category repository unavailable"))
			return
		}

		businessID := middleware.BusinessIDFromContext(r.Context())

		rows, err := repo.ListByBusiness(r.Context(), businessID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list categories"))
			return
		}

		items := make([]categoryResponse, 0, len(rows))
		for _, row := range rows {
			items = append(items, categoryResponse{
				ID:        row.ID,
				Name:      row.Name,
				SortOrder: row.SortOrder,
			})
		}

		responses.WriteSuccess(w, map[string]any{"categories": items})
	}
}
