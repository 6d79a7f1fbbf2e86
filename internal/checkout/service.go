package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendio/catalog-backend/internal/modifiers"
	"github.com/vendio/catalog-backend/pkg/db/models"
	pkgerrors "github.com/vendio/catalog-backend/pkg/errors"
	"github.com/vendio/catalog-backend/pkg/money"
	"github.com/vendio/catalog-backend/pkg/quantity"
)

// Service prices a cart against the catalog. Payment capture is external;
// this core only validates selections and computes totals.
type Service interface {
	Quote(ctx context.Context, businessID uuid.UUID, input QuoteInput) (*QuoteDTO, error)
}

// QuoteInput is one cart to price.
type QuoteInput struct {
	Lines []QuoteLineInput
}

// QuoteLineInput is one cart line: a product, a quantity, and the chosen
// modifier option ids.
type QuoteLineInput struct {
	ProductID uuid.UUID
	Quantity  string
	OptionIDs []uuid.UUID
}

// QuoteDTO carries per-line and grand totals in minor units plus display
// strings.
type QuoteDTO struct {
	Lines        []QuoteLineDTO `json:"lines"`
	TotalMinor   int64          `json:"total_minor"`
	TotalDisplay string         `json:"total"`
}

// QuoteLineDTO is one priced line.
type QuoteLineDTO struct {
	ProductID        uuid.UUID `json:"product_id"`
	ProductName      string    `json:"product_name"`
	Quantity         string    `json:"quantity"`
	UnitPriceMinor   int64     `json:"unit_price_minor"`
	ModifierDelta    int64     `json:"modifier_delta_minor"`
	LineTotalMinor   int64     `json:"line_total_minor"`
	LineTotalDisplay string    `json:"line_total"`
	UnitPriceDisplay string    `json:"unit_price"`
}

type productLoader interface {
	FindForStock(ctx context.Context, businessID, productID uuid.UUID) (*models.Product, int, error)
}

type attachedGroupLoader interface {
	FindAttachedGroups(ctx context.Context, productID uuid.UUID) ([]modifiers.AttachedGroup, error)
}

type service struct {
	products productLoader
	groups   attachedGroupLoader
}

// NewService constructs the checkout service.
func NewService(products productLoader, groups attachedGroupLoader) (Service, error) {
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if groups == nil {
		return nil, fmt.Errorf("attached group loader required")
	}
	return &service{products: products, groups: groups}, nil
}

// Quote validates every line's modifier selection and computes exact totals:
// (base price + modifier delta) × quantity, in minor units, never floats.
func (s *service) Quote(ctx context.Context, businessID uuid.UUID, input QuoteInput) (*QuoteDTO, error) {
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one line is required")
	}

	quote := &QuoteDTO{Lines: make([]QuoteLineDTO, 0, len(input.Lines))}
	total := decimal.Zero
	for _, line := range input.Lines {
		product, unitScale, err := s.products.FindForStock(ctx, businessID, line.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not active").
				WithDetails(map[string]string{"product_id": line.ProductID.String()})
		}
		if product.PriceMinor == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product has no price").
				WithDetails(map[string]string{"product_id": line.ProductID.String()})
		}

		qtyScaled, err := quantity.ToStorage(line.Quantity, unitScale, false, "quantity")
		if err != nil {
			return nil, err
		}
		if qtyScaled <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}

		attached, err := s.groups.FindAttachedGroups(ctx, line.ProductID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load attached groups")
		}
		delta, err := modifiers.ValidateSelection(attached, line.OptionIDs)
		if err != nil {
			return nil, err
		}

		unitPrice := *product.PriceMinor + delta
		qty := decimal.New(qtyScaled, -quantity.StorageScale)
		lineTotal := decimal.NewFromInt(unitPrice).Mul(qty).Round(0)

		quote.Lines = append(quote.Lines, QuoteLineDTO{
			ProductID:        line.ProductID,
			ProductName:      product.Name,
			Quantity:         quantity.FromStorage(qtyScaled, unitScale),
			UnitPriceMinor:   unitPrice,
			ModifierDelta:    delta,
			LineTotalMinor:   lineTotal.IntPart(),
			LineTotalDisplay: money.Format(lineTotal.IntPart()),
			UnitPriceDisplay: money.Format(unitPrice),
		})
		total = total.Add(lineTotal)
	}

	quote.TotalMinor = total.IntPart()
	quote.TotalDisplay = money.Format(quote.TotalMinor)
	return quote, nil
}
