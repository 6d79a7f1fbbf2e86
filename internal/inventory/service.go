package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendio/catalog-backend/pkg/db"
	"github.com/vendio/catalog-backend/pkg/db/models"
	"github.com/vendio/catalog-backend/pkg/enums"
	pkgerrors "github.com/vendio/catalog-backend/pkg/errors"
	"github.com/vendio/catalog-backend/pkg/logger"
	"github.com/vendio/catalog-backend/pkg/metrics"
	"github.com/vendio/catalog-backend/pkg/pagination"
	"github.com/vendio/catalog-backend/pkg/quantity"
)

// Service exposes the stock ledger operations. All mutations are recorded as
// immutable movements; the product's cached balance is only ever changed in
// the same transaction as the movement insert.
type Service interface {
	Adjust(ctx context.Context, businessID uuid.UUID, input AdjustStockInput) (*MovementDTO, error)
	AppendInTx(ctx context.Context, tx *gorm.DB, input AppendInput) (*models.InventoryMovement, error)
	ListMovements(ctx context.Context, businessID, productID uuid.UUID, params pagination.Params) (*MovementListResult, error)
	Reconcile(ctx context.Context, businessID, productID uuid.UUID) (*ReconcileResult, error)
}

// AdjustStockInput is the validated payload for a manual stock mutation.
type AdjustStockInput struct {
	ProductID      uuid.UUID
	StoreID        *uuid.UUID
	Quantity       string
	Reason         enums.MovementReason
	Note           *string
	IdempotencyKey *string
	RelatedSaleID  *uuid.UUID
}

// AppendInput carries a fully resolved movement for insertion inside an open
// transaction. Quantity is the raw decimal string; UnitScale is the precision
// scale of the product's unit (0 for unitless products).
type AppendInput struct {
	BusinessID     uuid.UUID
	ProductID      uuid.UUID
	StoreID        *uuid.UUID
	Quantity       string
	UnitScale      int
	Reason         enums.MovementReason
	Note           *string
	IdempotencyKey *string
	RelatedSaleID  *uuid.UUID
}

// ReconcileResult reports a ledger-vs-cache comparison for one product.
type ReconcileResult struct {
	ProductID     uuid.UUID `json:"product_id"`
	LedgerBalance int64     `json:"ledger_balance"`
	CachedBalance int64     `json:"cached_balance"`
	Repaired      bool      `json:"repaired"`
}

type productLoader interface {
	FindForStock(ctx context.Context, businessID, productID uuid.UUID) (*models.Product, int, error)
}

type service struct {
	repo     Repository
	dbClient *db.Client
	products productLoader
	logg     *logger.Logger
	metrics  *metrics.CatalogMetrics
}

// NewService wires the stock ledger service.
func NewService(repo Repository, dbClient *db.Client, products productLoader, logg *logger.Logger, catalogMetrics *metrics.CatalogMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		dbClient: dbClient,
		products: products,
		logg:     logg,
		metrics:  catalogMetrics,
	}, nil
}

// Adjust validates and commits one manual stock movement in its own
// transaction.
func (s *service) Adjust(ctx context.Context, businessID uuid.UUID, input AdjustStockInput) (*MovementDTO, error) {
	if !input.Reason.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid movement reason %q", input.Reason))
	}

	product, unitScale, err := s.products.FindForStock(ctx, businessID, input.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.TrackInventory {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product does not track inventory")
	}

	var created *models.InventoryMovement
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		movement, appendErr := s.AppendInTx(ctx, tx, AppendInput{
			BusinessID:     businessID,
			ProductID:      input.ProductID,
			StoreID:        input.StoreID,
			Quantity:       input.Quantity,
			UnitScale:      unitScale,
			Reason:         input.Reason,
			Note:           input.Note,
			IdempotencyKey: input.IdempotencyKey,
			RelatedSaleID:  input.RelatedSaleID,
		})
		if appendErr != nil {
			return appendErr
		}
		created = movement
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjust stock")
	}

	s.metrics.IncStockMovement(created.Reason.String())
	dto := NewMovementDTO(created, unitScale)
	return &dto, nil
}

// AppendInTx inserts one movement and applies its delta to the cached balance
// inside the caller's transaction. The conditional update rejects any delta
// that would take the balance negative.
func (s *service) AppendInTx(ctx context.Context, tx *gorm.DB, input AppendInput) (*models.InventoryMovement, error) {
	delta, err := s.resolveDelta(input)
	if err != nil {
		return nil, err
	}

	txRepo := s.repo.WithTx(tx)

	movement := &models.InventoryMovement{
		ID:                  uuid.New(),
		BusinessID:          input.BusinessID,
		ProductID:           input.ProductID,
		StoreID:             input.StoreID,
		QuantityDeltaScaled: delta,
		Reason:              input.Reason,
		Note:                input.Note,
		IdempotencyKey:      input.IdempotencyKey,
		RelatedSaleID:       input.RelatedSaleID,
	}
	if err := txRepo.CreateMovement(ctx, movement); err != nil {
		if db.IsUniqueViolation(err, db.ConstraintMovementIdempotency) {
			return nil, pkgerrors.New(pkgerrors.CodeIdempotency, "movement with this idempotency key was already recorded").
				WithDetails(map[string]any{"product_id": input.ProductID.String()})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert movement")
	}

	// Adjustments carry caller-validated signs and bypass the guard; every
	// other outbound reason must not take the balance negative.
	var affected int64
	if input.Reason.AllowsNegativeQuantity() {
		affected, err = txRepo.ApplyDeltaUnchecked(ctx, input.ProductID, delta)
	} else {
		affected, err = txRepo.ApplyDelta(ctx, input.ProductID, delta)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: apply stock delta")
	}
	if affected == 0 {
		if input.Reason.AllowsNegativeQuantity() {
			return nil, productNotFound(input.ProductID)
		}
		s.metrics.IncStockRejection()
		return nil, pkgerrors.NewReason(
			pkgerrors.CodeConflict,
			pkgerrors.ReasonStockInsufficient,
			"movement would take on-hand below zero",
		).WithDetails(map[string]any{"product_id": input.ProductID.String()})
	}
	return movement, nil
}

// ListMovements returns the movement history for a product, newest first.
func (s *service) ListMovements(ctx context.Context, businessID, productID uuid.UUID, params pagination.Params) (*MovementListResult, error) {
	_, unitScale, err := s.products.FindForStock(ctx, businessID, productID)
	if err != nil {
		return nil, err
	}

	rows, nextCursor, err := s.repo.ListByProduct(ctx, productID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list movements")
	}

	movements := make([]MovementDTO, 0, len(rows))
	for i := range rows {
		movements = append(movements, NewMovementDTO(&rows[i], unitScale))
	}
	return &MovementListResult{Movements: movements, NextCursor: nextCursor}, nil
}

// Reconcile recomputes the ledger sum and repairs the cached balance when the
// two disagree. Used by the consistency sweep; divergence is logged because it
// indicates a write path bypassed the ledger.
func (s *service) Reconcile(ctx context.Context, businessID, productID uuid.UUID) (*ReconcileResult, error) {
	if _, _, err := s.products.FindForStock(ctx, businessID, productID); err != nil {
		return nil, err
	}

	result := &ReconcileResult{ProductID: productID}
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		ledgerSum, err := txRepo.SumByProduct(ctx, productID)
		if err != nil {
			return err
		}
		cached, err := txRepo.CachedBalance(ctx, productID)
		if err != nil {
			return err
		}

		result.LedgerBalance = ledgerSum
		result.CachedBalance = cached
		if ledgerSum == cached {
			return nil
		}

		result.Repaired = true
		return txRepo.SetCachedBalance(ctx, productID, ledgerSum)
	}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, productNotFound(productID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reconcile stock")
	}

	if result.Repaired {
		ctx = s.logg.WithProductID(ctx, productID.String())
		s.logg.Warn(ctx, fmt.Sprintf("stock cache drift repaired: ledger=%d cached=%d", result.LedgerBalance, result.CachedBalance))
	}
	return result, nil
}

func (s *service) resolveDelta(input AppendInput) (int64, error) {
	allowNegative := input.Reason.AllowsNegativeQuantity()
	scaled, err := quantity.ToStorage(input.Quantity, input.UnitScale, allowNegative, "quantity")
	if err != nil {
		return 0, err
	}
	if scaled == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be zero")
	}
	if allowNegative {
		return scaled, nil
	}
	if scaled < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive for this reason")
	}
	return input.Reason.DeltaSign() * scaled, nil
}

func productNotFound(id uuid.UUID) *pkgerrors.Error {
	return pkgerrors.NewReason(
		pkgerrors.CodeNotFound,
		pkgerrors.ReasonProductNotFound,
		"product not found",
	).WithDetails(map[string]string{"product_id": id.String()})
}
