package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendio/catalog-backend/internal/categories"
	"github.com/vendio/catalog-backend/internal/inventory"
	"github.com/vendio/catalog-backend/internal/units"
	"github.com/vendio/catalog-backend/pkg/config"
	"github.com/vendio/catalog-backend/pkg/db"
	"github.com/vendio/catalog-backend/pkg/db/models"
	"github.com/vendio/catalog-backend/pkg/enums"
	pkgerrors "github.com/vendio/catalog-backend/pkg/errors"
	"github.com/vendio/catalog-backend/pkg/logger"
	"github.com/vendio/catalog-backend/pkg/metrics"
	"github.com/vendio/catalog-backend/pkg/money"
	"github.com/vendio/catalog-backend/pkg/quantity"
	"github.com/vendio/catalog-backend/pkg/types"
)

const (
	maxDurationMinutes = 1440
)

// Service exposes business-scoped product management.
type Service interface {
	Create(ctx context.Context, businessID uuid.UUID, input CreateProductInput) (*ProductDTO, error)
	Update(ctx context.Context, businessID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	Get(ctx context.Context, businessID, productID uuid.UUID) (*ProductDTO, error)
	List(ctx context.Context, input ListProductsInput) (*ProductListResult, error)
	Delete(ctx context.Context, businessID, productID uuid.UUID) error
}

// CreateProductInput holds the validated payload to create a product. Money
// fields come as a minor/legacy string pair; quantity fields as decimal
// strings validated against the resolved unit scale.
type CreateProductInput struct {
	Type       enums.ProductType
	Name       string
	SKU        *string
	Barcode    *string
	UnitID     *uuid.UUID
	CategoryID *uuid.UUID

	PriceMinor *string
	Price      *string
	CostMinor  *string
	Cost       *string

	TrackInventory bool
	ReorderPoint   *string
	InitialOnHand  *string

	DurationInitialMinutes    *int
	DurationProcessingMinutes *int
	DurationFinalMinutes      *int
	ProcessingEnabled         bool

	ModifierGroupIDs []uuid.UUID
}

// UpdateProductInput holds the three-state patch for a product. Absent fields
// are left unchanged; explicit null clears. Type is immutable post-creation.
type UpdateProductInput struct {
	Name       types.Optional[string]
	SKU        types.Optional[string]
	Barcode    types.Optional[string]
	UnitID     types.Optional[uuid.UUID]
	CategoryID types.Optional[uuid.UUID]

	PriceMinor types.Optional[string]
	Price      types.Optional[string]
	CostMinor  types.Optional[string]
	Cost       types.Optional[string]

	TrackInventory types.Optional[bool]
	ReorderPoint   types.Optional[string]
	IsActive       types.Optional[bool]

	DurationInitialMinutes    types.Optional[int]
	DurationProcessingMinutes types.Optional[int]
	DurationFinalMinutes      types.Optional[int]
	ProcessingEnabled         types.Optional[bool]

	ModifierGroupIDs *[]uuid.UUID
}

type stockAppender interface {
	AppendInTx(ctx context.Context, tx *gorm.DB, input inventory.AppendInput) (*models.InventoryMovement, error)
}

type modifierGroupLoader interface {
	FindGroups(ctx context.Context, businessID uuid.UUID, ids []uuid.UUID) ([]models.ModifierGroup, error)
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	units    *units.Repository
	cats     *categories.Repository
	groups   modifierGroupLoader
	stock    stockAppender
	sku      *SkuGenerator
	cfg      config.CatalogConfig
	logg     *logger.Logger
	metrics  *metrics.CatalogMetrics
}

// NewService constructs the product service.
func NewService(
	repo *Repository,
	dbClient *db.Client,
	unitRepo *units.Repository,
	categoryRepo *categories.Repository,
	groupLoader modifierGroupLoader,
	stock stockAppender,
	skuGen *SkuGenerator,
	cfg config.CatalogConfig,
	logg *logger.Logger,
	catalogMetrics *metrics.CatalogMetrics,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if unitRepo == nil {
		return nil, fmt.Errorf("unit repository required")
	}
	if categoryRepo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	if groupLoader == nil {
		return nil, fmt.Errorf("modifier group loader required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock appender required")
	}
	if skuGen == nil {
		return nil, fmt.Errorf("sku generator required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		dbClient: dbClient,
		units:    unitRepo,
		cats:     categoryRepo,
		groups:   groupLoader,
		stock:    stock,
		sku:      skuGen,
		cfg:      cfg,
		logg:     logg,
		metrics:  catalogMetrics,
	}, nil
}

// Create persists a product, its optional initial-stock movement, and its
// modifier-group links in one transaction.
func (s *service) Create(ctx context.Context, businessID uuid.UUID, input CreateProductInput) (*ProductDTO, error) {
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid product type %q", input.Type))
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	// Best-effort cap check outside the transaction. Racing creates may
	// overshoot slightly; the post-insert recount logs and counts it.
	count, err := s.repo.CountByBusiness(ctx, businessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count products")
	}
	if count >= int64(s.cfg.ProductCap) {
		return nil, pkgerrors.NewReason(
			pkgerrors.CodeConflict,
			pkgerrors.ReasonCatalogLimitReached,
			fmt.Sprintf("business catalog is limited to %d products", s.cfg.ProductCap),
		)
	}

	price, err := money.Resolve(input.PriceMinor, input.Price, "price")
	if err != nil {
		return nil, err
	}
	cost, err := money.Resolve(input.CostMinor, input.Cost, "cost")
	if err != nil {
		return nil, err
	}

	var unit *models.Unit
	unitScale := 0
	if input.UnitID != nil {
		unit, err = s.units.Resolve(ctx, businessID, *input.UnitID)
		if err != nil {
			return nil, err
		}
		unitScale = unit.PrecisionScale
	}
	if input.CategoryID != nil {
		if _, err := s.cats.Resolve(ctx, businessID, *input.CategoryID); err != nil {
			return nil, err
		}
	}

	product := &models.Product{
		ID:         uuid.New(),
		BusinessID: businessID,
		Type:       input.Type,
		Name:       name,
		UnitID:     input.UnitID,
		CategoryID: input.CategoryID,
		PriceMinor: price,
		CostMinor:  cost,
		IsActive:   true,
	}

	initialOnHand := ""
	switch input.Type {
	case enums.ProductTypeService:
		if unit == nil || unit.Category != enums.UnitCategoryTime {
			return nil, pkgerrors.NewReason(
				pkgerrors.CodeValidation,
				pkgerrors.ReasonServiceTimeUnitRequired,
				"service products require a time-category unit",
			)
		}
		initial, processing, final, err := resolveServiceDurations(
			input.DurationInitialMinutes,
			input.DurationProcessingMinutes,
			input.DurationFinalMinutes,
			input.ProcessingEnabled,
			true,
		)
		if err != nil {
			return nil, err
		}
		product.DurationInitialMinutes = &initial
		product.DurationProcessingMinutes = &processing
		product.DurationFinalMinutes = &final
		product.ProcessingEnabled = input.ProcessingEnabled
		// Services never track stock; reorder and initial stock are dropped.
		product.TrackInventory = false

	case enums.ProductTypePhysical:
		product.TrackInventory = input.TrackInventory
		if input.ReorderPoint != nil {
			scaled, err := validateQuantityField(*input.ReorderPoint, unitScale, "reorder_point", pkgerrors.ReasonInvalidReorderPoint)
			if err != nil {
				return nil, err
			}
			product.ReorderPointScaled = &scaled
		}
		if input.InitialOnHand != nil {
			if _, err := validateQuantityField(*input.InitialOnHand, unitScale, "initial_on_hand", pkgerrors.ReasonInvalidInitialOnHand); err != nil {
				return nil, err
			}
			if !quantity.IsZero(*input.InitialOnHand) {
				if !input.TrackInventory {
					return nil, pkgerrors.New(pkgerrors.CodeValidation, "initial_on_hand requires track_inventory")
				}
				initialOnHand = *input.InitialOnHand
			}
		}
	}

	links, err := s.resolveGroupLinks(ctx, businessID, input.ModifierGroupIDs)
	if err != nil {
		return nil, err
	}

	explicitSKU := false
	if input.SKU != nil && strings.TrimSpace(*input.SKU) != "" {
		norm := NormalizeSKU(*input.SKU)
		explicitSKU = true
		exists, err := s.repo.SKUExists(ctx, businessID, norm, nil)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check sku")
		}
		if exists {
			return nil, skuConflict(norm)
		}
		product.SKU = &norm
	}
	if input.Barcode != nil && strings.TrimSpace(*input.Barcode) != "" {
		norm := NormalizeSKU(*input.Barcode)
		exists, err := s.repo.BarcodeExists(ctx, businessID, norm, nil)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check barcode")
		}
		if exists {
			return nil, barcodeConflict(norm)
		}
		product.Barcode = &norm
	}

	var detail *models.Product
	runCreate := func(ctx context.Context) error {
		detail = nil
		return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
			txRepo := s.repo.WithTx(tx)

			if _, err := txRepo.CreateProduct(ctx, product); err != nil {
				return err
			}
			if initialOnHand != "" {
				if _, err := s.stock.AppendInTx(ctx, tx, inventory.AppendInput{
					BusinessID: businessID,
					ProductID:  product.ID,
					Quantity:   initialOnHand,
					UnitScale:  unitScale,
					Reason:     enums.MovementReasonStockIn,
				}); err != nil {
					return err
				}
			}
			if err := txRepo.ReplaceModifierGroups(ctx, product.ID, withProductID(product.ID, links)); err != nil {
				return err
			}

			hydrated, err := txRepo.GetDetail(ctx, businessID, product.ID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return s.createdRowMissing(ctx, product.ID)
				}
				return err
			}
			detail = hydrated

			newCount, err := txRepo.CountByBusiness(ctx, businessID)
			if err != nil {
				return err
			}
			if newCount > int64(s.cfg.ProductCap) {
				s.metrics.IncCatalogOverCap()
				wctx := s.logg.WithBusinessID(ctx, businessID.String())
				s.logg.Warn(wctx, fmt.Sprintf("catalog cap overshot: %d products against cap %d", newCount, s.cfg.ProductCap))
			}
			return nil
		})
	}

	if explicitSKU {
		err = runCreate(ctx)
	} else {
		err = s.sku.GenerateWithRetry(ctx, businessID, func(ctx context.Context, skuValue string) error {
			product.ID = uuid.New()
			product.SKU = &skuValue
			return runCreate(ctx)
		})
	}
	if err != nil {
		return nil, classifyProductWriteError(err)
	}

	return NewProductDTO(detail), nil
}

// Update applies a partial patch in one transaction. Uniqueness pre-checks
// exclude the product itself; reorder precision is re-validated against the
// unit in force after the patch.
func (s *service) Update(ctx context.Context, businessID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, businessID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, productNotFound(productID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	if input.Name.IsSet() {
		name, ok := input.Name.Value()
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be cleared")
		}
		product.Name = name
	}

	if set, val, err := resolveMoneyPatch(input.PriceMinor, input.Price, "price"); err != nil {
		return nil, err
	} else if set {
		product.PriceMinor = val
	}
	if set, val, err := resolveMoneyPatch(input.CostMinor, input.Cost, "cost"); err != nil {
		return nil, err
	} else if set {
		product.CostMinor = val
	}

	// Resolve the effective unit first since reorder validation depends on it.
	currentScale, err := s.currentUnitScale(ctx, product)
	if err != nil {
		return nil, err
	}
	effectiveScale := currentScale
	unitChanged := false
	var effectiveUnit *models.Unit
	if input.UnitID.IsSet() {
		unitChanged = true
		if unitID, ok := input.UnitID.Value(); ok {
			effectiveUnit, err = s.units.Resolve(ctx, businessID, unitID)
			if err != nil {
				return nil, err
			}
			id := unitID
			product.UnitID = &id
			effectiveScale = effectiveUnit.PrecisionScale
		} else {
			product.UnitID = nil
			effectiveScale = 0
		}
	}

	if input.CategoryID.IsSet() {
		if catID, ok := input.CategoryID.Value(); ok {
			if _, err := s.cats.Resolve(ctx, businessID, catID); err != nil {
				return nil, err
			}
			id := catID
			product.CategoryID = &id
		} else {
			product.CategoryID = nil
		}
	}

	switch product.Type {
	case enums.ProductTypeService:
		if track, ok := input.TrackInventory.Value(); ok && track {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "service products cannot track inventory")
		}
		if input.ReorderPoint.IsSet() && !input.ReorderPoint.IsNull() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "service products cannot carry a reorder point")
		}
		if unitChanged && (effectiveUnit == nil || effectiveUnit.Category != enums.UnitCategoryTime) {
			return nil, pkgerrors.NewReason(
				pkgerrors.CodeValidation,
				pkgerrors.ReasonServiceTimeUnitRequired,
				"service products require a time-category unit",
			)
		}
		if err := s.applyDurationPatch(product, input); err != nil {
			return nil, err
		}

	case enums.ProductTypePhysical:
		if input.TrackInventory.IsSet() {
			track, ok := input.TrackInventory.Value()
			if !ok {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "track_inventory cannot be null")
			}
			product.TrackInventory = track
		}
		if input.ReorderPoint.IsSet() {
			if value, ok := input.ReorderPoint.Value(); ok {
				scaled, err := validateQuantityField(value, effectiveScale, "reorder_point", pkgerrors.ReasonInvalidReorderPoint)
				if err != nil {
					return nil, err
				}
				product.ReorderPointScaled = &scaled
			} else {
				product.ReorderPointScaled = nil
			}
		} else if unitChanged && product.ReorderPointScaled != nil && !fitsScale(*product.ReorderPointScaled, effectiveScale) {
			return nil, pkgerrors.NewReason(
				pkgerrors.CodeValidation,
				pkgerrors.ReasonInvalidReorderPoint,
				fmt.Sprintf("stored reorder point exceeds the new unit precision scale %d", effectiveScale),
			)
		}
		// The cached balance must stay renderable without loss at the new
		// scale; an ADJUSTMENT has to bring it in range first.
		if unitChanged && !fitsScale(product.OnHandCached, effectiveScale) {
			return nil, pkgerrors.NewReason(
				pkgerrors.CodeValidation,
				pkgerrors.ReasonQuantityPrecisionInvalid,
				fmt.Sprintf("on-hand stock carries more precision than the new unit scale %d", effectiveScale),
			)
		}
	}

	if input.SKU.IsSet() {
		if raw, ok := input.SKU.Value(); ok && strings.TrimSpace(raw) != "" {
			norm := NormalizeSKU(raw)
			exists, err := s.repo.SKUExists(ctx, businessID, norm, &productID)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check sku")
			}
			if exists {
				return nil, skuConflict(norm)
			}
			product.SKU = &norm
		} else {
			product.SKU = nil
		}
	}
	if input.Barcode.IsSet() {
		if raw, ok := input.Barcode.Value(); ok && strings.TrimSpace(raw) != "" {
			norm := NormalizeSKU(raw)
			exists, err := s.repo.BarcodeExists(ctx, businessID, norm, &productID)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check barcode")
			}
			if exists {
				return nil, barcodeConflict(norm)
			}
			product.Barcode = &norm
		} else {
			product.Barcode = nil
		}
	}

	if input.IsActive.IsSet() {
		active, ok := input.IsActive.Value()
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "is_active cannot be null")
		}
		product.IsActive = active
	}

	var links []models.ProductModifierGroup
	if input.ModifierGroupIDs != nil {
		links, err = s.resolveGroupLinks(ctx, businessID, *input.ModifierGroupIDs)
		if err != nil {
			return nil, err
		}
	}

	var detail *models.Product
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		if _, err := txRepo.UpdateProduct(ctx, product); err != nil {
			return err
		}
		if input.ModifierGroupIDs != nil {
			if err := txRepo.ReplaceModifierGroups(ctx, product.ID, withProductID(product.ID, links)); err != nil {
				return err
			}
		}

		hydrated, err := txRepo.GetDetail(ctx, businessID, product.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return s.createdRowMissing(ctx, product.ID)
			}
			return err
		}
		detail = hydrated
		return nil
	}); err != nil {
		return nil, classifyProductWriteError(err)
	}

	return NewProductDTO(detail), nil
}

// Get returns the hydrated product.
func (s *service) Get(ctx context.Context, businessID, productID uuid.UUID) (*ProductDTO, error) {
	detail, err := s.repo.GetDetail(ctx, businessID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, productNotFound(productID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product detail")
	}
	return NewProductDTO(detail), nil
}

// List returns a keyset-paginated page of product summaries.
func (s *service) List(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	rows, nextCursor, err := s.repo.ListSummaries(ctx, productListQuery{
		BusinessID: input.BusinessID,
		Pagination: input.Pagination,
		Filters:    input.Filters,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}

	summaries := make([]ProductSummary, 0, len(rows))
	for i := range rows {
		summaries = append(summaries, NewProductSummary(&rows[i]))
	}
	return &ProductListResult{Products: summaries, NextCursor: nextCursor}, nil
}

// Delete soft-deletes the product.
func (s *service) Delete(ctx context.Context, businessID, productID uuid.UUID) error {
	affected, err := s.repo.SoftDelete(ctx, businessID, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product")
	}
	if affected == 0 {
		return productNotFound(productID)
	}
	return nil
}

func (s *service) currentUnitScale(ctx context.Context, product *models.Product) (int, error) {
	if product.UnitID == nil {
		return 0, nil
	}
	unit, err := s.units.FindByID(ctx, *product.UnitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load unit")
	}
	return unit.PrecisionScale, nil
}

func (s *service) applyDurationPatch(product *models.Product, input UpdateProductInput) error {
	initial := optionalIntPatch(product.DurationInitialMinutes, input.DurationInitialMinutes)
	processing := optionalIntPatch(product.DurationProcessingMinutes, input.DurationProcessingMinutes)
	final := optionalIntPatch(product.DurationFinalMinutes, input.DurationFinalMinutes)

	processingEnabled := product.ProcessingEnabled
	if input.ProcessingEnabled.IsSet() {
		value, ok := input.ProcessingEnabled.Value()
		if !ok {
			return pkgerrors.New(pkgerrors.CodeValidation, "processing_enabled cannot be null")
		}
		processingEnabled = value
	}

	i, p, f, err := resolveServiceDurations(initial, processing, final, processingEnabled, true)
	if err != nil {
		return err
	}
	product.DurationInitialMinutes = &i
	product.DurationProcessingMinutes = &p
	product.DurationFinalMinutes = &f
	product.ProcessingEnabled = processingEnabled
	return nil
}

func optionalIntPatch(current *int, patch types.Optional[int]) *int {
	if !patch.IsSet() {
		return current
	}
	return patch.Ptr()
}

func (s *service) resolveGroupLinks(ctx context.Context, businessID uuid.UUID, ids []uuid.UUID) ([]models.ProductModifierGroup, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > s.cfg.GroupsPerProductCap {
		return nil, pkgerrors.NewReason(
			pkgerrors.CodeConflict,
			pkgerrors.ReasonGroupsPerProductLimit,
			fmt.Sprintf("a product may carry at most %d modifier groups", s.cfg.GroupsPerProductCap),
		)
	}

	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate modifier group ids")
		}
		seen[id] = struct{}{}
	}

	groups, err := s.groups.FindGroups(ctx, businessID, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load modifier groups")
	}
	byID := make(map[uuid.UUID]*models.ModifierGroup, len(groups))
	for i := range groups {
		byID[groups[i].ID] = &groups[i]
	}

	links := make([]models.ProductModifierGroup, 0, len(ids))
	for idx, id := range ids {
		group, ok := byID[id]
		if !ok || group.IsArchived {
			return nil, pkgerrors.NewReason(
				pkgerrors.CodeValidation,
				pkgerrors.ReasonModifierGroupInvalid,
				"modifier group does not exist or is archived",
			).WithDetails(map[string]string{"group_id": id.String()})
		}
		links = append(links, models.ProductModifierGroup{
			GroupID:   id,
			SortOrder: idx,
		})
	}
	return links, nil
}

// createdRowMissing reports the re-read-after-write invariant failure. It is
// never mapped to a domain code; something below the core misbehaved.
func (s *service) createdRowMissing(ctx context.Context, productID uuid.UUID) error {
	ctx = s.logg.WithProductID(ctx, productID.String())
	err := pkgerrors.New(pkgerrors.CodeInternal, "product row not found after write in the same transaction")
	s.logg.Error(ctx, "post-write re-read failed", err)
	return err
}

func resolveServiceDurations(initial, processing, final *int, processingEnabled bool, required bool) (int, int, int, error) {
	if required && (initial == nil || final == nil) {
		return 0, 0, 0, durationInvalid("duration_initial_minutes and duration_final_minutes are required")
	}
	i := intOrZero(initial)
	f := intOrZero(final)

	var p int
	if processingEnabled {
		if processing == nil {
			return 0, 0, 0, durationInvalid("duration_processing_minutes is required when processing is enabled")
		}
		p = *processing
	} else if processing != nil && *processing != 0 {
		return 0, 0, 0, durationInvalid("duration_processing_minutes must be 0 when processing is disabled")
	}

	for _, segment := range []int{i, p, f} {
		if segment < 0 || segment > maxDurationMinutes {
			return 0, 0, 0, durationInvalid(fmt.Sprintf("each duration segment must be between 0 and %d minutes", maxDurationMinutes))
		}
	}
	total := i + p + f
	if total <= 0 || total > maxDurationMinutes {
		return 0, 0, 0, durationInvalid(fmt.Sprintf("total duration must be between 1 and %d minutes", maxDurationMinutes))
	}
	return i, p, f, nil
}

func intOrZero(value *int) int {
	if value == nil {
		return 0
	}
	return *value
}

func durationInvalid(message string) *pkgerrors.Error {
	return pkgerrors.NewReason(pkgerrors.CodeValidation, pkgerrors.ReasonServiceDurationInvalid, message)
}

// validateQuantityField validates a quantity string at the unit scale and
// converts it to storage scale. Bare syntax failures are re-tagged with the
// field-specific reason; precision failures keep their own.
func validateQuantityField(value string, scale int, label string, fallback pkgerrors.Reason) (int64, error) {
	scaled, err := quantity.ToStorage(value, scale, false, label)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Reason() == "" {
			return 0, typed.WithReason(fallback)
		}
		return 0, err
	}
	return scaled, nil
}

// resolveMoneyPatch folds a three-state minor/legacy pair into a patch value.
func resolveMoneyPatch(minor, legacy types.Optional[string], field string) (bool, *int64, error) {
	if !minor.IsSet() && !legacy.IsSet() {
		return false, nil, nil
	}
	mPtr := minor.Ptr()
	lPtr := legacy.Ptr()
	if mPtr == nil && lPtr == nil {
		return true, nil, nil
	}
	value, err := money.Resolve(mPtr, lPtr, field)
	if err != nil {
		return false, nil, err
	}
	return true, value, nil
}

// fitsScale reports whether a storage-scale value carries no fractional
// digits beyond the given display scale.
func fitsScale(scaled int64, scale int) bool {
	factor := int64(1)
	for i := scale; i < quantity.StorageScale; i++ {
		factor *= 10
	}
	return scaled%factor == 0
}

func withProductID(productID uuid.UUID, links []models.ProductModifierGroup) []models.ProductModifierGroup {
	out := make([]models.ProductModifierGroup, len(links))
	for i, link := range links {
		link.ProductID = productID
		out[i] = link
	}
	return out
}

// classifyProductWriteError maps store-raised unique violations onto the
// domain conflicts by constraint. Domain errors pass through untouched and
// driver text never reaches the caller.
func classifyProductWriteError(err error) error {
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		return err
	}
	switch {
	case db.IsUniqueViolation(err, db.ConstraintProductSKU):
		return pkgerrors.NewReason(pkgerrors.CodeConflict, pkgerrors.ReasonSkuAlreadyExists, "sku already in use")
	case db.IsUniqueViolation(err, db.ConstraintProductBarcode):
		return pkgerrors.NewReason(pkgerrors.CodeConflict, pkgerrors.ReasonBarcodeAlreadyExists, "barcode already in use")
	case db.IsUniqueViolation(err, ""):
		return pkgerrors.NewReason(pkgerrors.CodeConflict, pkgerrors.ReasonProductCodeConflict, "product code already in use")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write product")
	}
}

func skuConflict(sku string) *pkgerrors.Error {
	return pkgerrors.NewReason(
		pkgerrors.CodeConflict,
		pkgerrors.ReasonSkuAlreadyExists,
		"sku already in use",
	).WithDetails(map[string]string{"sku": sku})
}

func barcodeConflict(barcode string) *pkgerrors.Error {
	return pkgerrors.NewReason(
		pkgerrors.CodeConflict,
		pkgerrors.ReasonBarcodeAlreadyExists,
		"barcode already in use",
	).WithDetails(map[string]string{"barcode": barcode})
}

func productNotFound(id uuid.UUID) *pkgerrors.Error {
	return pkgerrors.NewReason(
		pkgerrors.CodeNotFound,
		pkgerrors.ReasonProductNotFound,
		"product not found",
	).WithDetails(map[string]string{"product_id": id.String()})
}
