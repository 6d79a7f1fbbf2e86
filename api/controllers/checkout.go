package controllers

import (
	"net/http"

	"github.com/vendio/catalog-backend/api/middleware"
	"github.com/vendio/catalog-backend/api/responses"
	"github.com/vendio/catalog-backend/api/validators"
	checkoutsvc "github.com/vendio/catalog-backend/internal/checkout"
	pkgerrors "github.com/vendio/catalog-backend/pkg/errors"
	"github.com/vendio/catalog-backend/pkg/logger"
)

// CheckoutQuote prices a cart: validates modifier selections and returns
// exact line and grand totals.
func CheckoutQuote(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		businessID := middleware.BusinessIDFromContext(r.Context())

		var payload quoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Quote(r.Context(), businessID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, quote)
	}
}

type quoteRequest struct {
	Lines []quoteLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type quoteLineRequest struct {
	ProductID string   `json:"product_id" validate:"required,uuid"`
	Quantity  string   `json:"quantity" validate:"required"`
	OptionIDs []string `json:"option_ids,omitempty"`
}

func (r quoteRequest) toInput() (checkoutsvc.QuoteInput, error) {
	input := checkoutsvc.QuoteInput{}
	for _, line := range r.Lines {
		productID, err := parseUUIDPtr(&line.ProductID, "product_id")
		if err != nil {
			return checkoutsvc.QuoteInput{}, err
		}
		optionIDs, err := parseUUIDList(line.OptionIDs, "option_ids")
		if err != nil {
			return checkoutsvc.QuoteInput{}, err
		}
		input.Lines = append(input.Lines, checkoutsvc.QuoteLineInput{
			ProductID: *productID,
			Quantity:  line.Quantity,
			OptionIDs: optionIDs,
		})
	}
	return input, nil
}
