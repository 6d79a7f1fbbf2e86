package inventory

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vendio/catalog-backend/pkg/db"
	"github.com/vendio/catalog-backend/pkg/db/models"
	"github.com/vendio/catalog-backend/pkg/enums"
	pkgerrors "github.com/vendio/catalog-backend/pkg/errors"
	"github.com/vendio/catalog-backend/pkg/logger"
	"github.com/vendio/catalog-backend/pkg/metrics"
	"github.com/vendio/catalog-backend/pkg/pagination"
)

func setupInventoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:inventory_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  business_id TEXT NOT NULL,
  type TEXT NOT NULL,
  name TEXT NOT NULL,
  sku TEXT,
  barcode TEXT,
  unit_id TEXT,
  category_id TEXT,
  price_minor INTEGER,
  cost_minor INTEGER,
  track_inventory INTEGER NOT NULL DEFAULT 0,
  on_hand_cached INTEGER NOT NULL DEFAULT 0,
  reorder_point_scaled INTEGER,
  duration_initial_minutes INTEGER,
  duration_processing_minutes INTEGER,
  duration_final_minutes INTEGER,
  processing_enabled INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	movements := `
CREATE TABLE IF NOT EXISTS inventory_movements (
  id TEXT PRIMARY KEY,
  business_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  store_id TEXT,
  quantity_delta_scaled INTEGER NOT NULL,
  reason TEXT NOT NULL,
  note TEXT,
  idempotency_key TEXT,
  related_sale_id TEXT,
  created_at DATETIME
);`
	idemIndex := `
CREATE UNIQUE INDEX IF NOT EXISTS idx_movements_product_idem_key
  ON inventory_movements (product_id, idempotency_key)
  WHERE idempotency_key IS NOT NULL;`

	require.NoError(t, conn.Exec(products).Error)
	require.NoError(t, conn.Exec(movements).Error)
	require.NoError(t, conn.Exec(idemIndex).Error)
	return conn
}

// stubProductLoader reads product rows straight from the test database. The
// unit scale is fixed per stub since units are not under test here.
type stubProductLoader struct {
	db    *gorm.DB
	scale int
}

func (l stubProductLoader) FindForStock(ctx context.Context, businessID, productID uuid.UUID) (*models.Product, int, error) {
	var product models.Product
	if err := l.db.WithContext(ctx).First(&product, "id = ? AND business_id = ?", productID, businessID).Error; err != nil {
		return nil, 0, pkgerrors.NewReason(pkgerrors.CodeNotFound, pkgerrors.ReasonProductNotFound, "product not found")
	}
	return &product, l.scale, nil
}

func newInventoryService(t *testing.T, conn *gorm.DB, scale int) Service {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(
		NewRepository(conn),
		db.NewWithConn(conn),
		stubProductLoader{db: conn, scale: scale},
		logg,
		metrics.NewCatalogMetrics(nil),
	)
	require.NoError(t, err)
	return svc
}

func seedTrackedProduct(t *testing.T, conn *gorm.DB, businessID uuid.UUID, onHand int64) uuid.UUID {
	t.Helper()

	product := &models.Product{
		ID:             uuid.New(),
		BusinessID:     businessID,
		Type:           enums.ProductTypePhysical,
		Name:           "Beans",
		TrackInventory: true,
		OnHandCached:   onHand,
	}
	require.NoError(t, conn.Create(product).Error)
	return product.ID
}

func cachedBalance(t *testing.T, conn *gorm.DB, productID uuid.UUID) int64 {
	t.Helper()

	var product models.Product
	require.NoError(t, conn.First(&product, "id = ?", productID).Error)
	return product.OnHandCached
}

func TestAdjustStockIn(t *testing.T) {
	t.Parallel()

	conn := setupInventoryTestDB(t)
	svc := newInventoryService(t, conn, 0)
	businessID := uuid.New()
	productID := seedTrackedProduct(t, conn, businessID, 0)

	movement, err := svc.Adjust(context.Background(), businessID, AdjustStockInput{
		ProductID: productID,
		Quantity:  "3",
		Reason:    enums.MovementReasonStockIn,
	})
	require.NoError(t, err)
	require.Equal(t, "3", movement.QuantityDelta)
	require.Equal(t, enums.MovementReasonStockIn, movement.Reason)

	require.Equal(t, int64(300000), cachedBalance(t, conn, productID))

	var count int64
	require.NoError(t, conn.Model(&models.InventoryMovement{}).Where("product_id = ?", productID).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestAdjustStockOutInsufficient(t *testing.T) {
	t.Parallel()

	conn := setupInventoryTestDB(t)
	svc := newInventoryService(t, conn, 0)
	businessID := uuid.New()
	productID := seedTrackedProduct(t, conn, businessID, 300000)

	_, err := svc.Adjust(context.Background(), businessID, AdjustStockInput{
		ProductID: productID,
		Quantity:  "5",
		Reason:    enums.MovementReasonStockOut,
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.ReasonStockInsufficient, pkgerrors.ReasonOf(err))
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())

	// The rejected movement must leave no trace: balance intact, ledger empty.
	require.Equal(t, int64(300000), cachedBalance(t, conn, productID))
	var count int64
	require.NoError(t, conn.Model(&models.InventoryMovement{}).Where("product_id = ?", productID).Count(&count).Error)
	require.Zero(t, count)
}

func TestAdjustStockOutExact(t *testing.T) {
	t.Parallel()

	conn := setupInventoryTestDB(t)
	svc := newInventoryService(t, conn, 0)
	businessID := uuid.New()
	productID := seedTrackedProduct(t, conn, businessID, 300000)

	_, err := svc.Adjust(context.Background(), businessID, AdjustStockInput{
		ProductID: productID,
		Quantity:  "3",
		Reason:    enums.MovementReasonStockOut,
	})
	require.NoError(t, err)
	require.Zero(t, cachedBalance(t, conn, productID))
}

func TestAdjustmentMayGoNegative(t *testing.T) {
	t.Parallel()

	conn := setupInventoryTestDB(t)
	svc := newInventoryService(t, conn, 0)
	businessID := uuid.New()
	productID := seedTrackedProduct(t, conn, businessID, 300000)

	movement, err := svc.Adjust(context.Background(), businessID, AdjustStockInput{
		ProductID: productID,
		Quantity:  "-7",
		Reason:    enums.MovementReasonAdjustment,
	})
	require.NoError(t, err)
	require.Equal(t, "-7", movement.QuantityDelta)
	require.Equal(t, int64(-400000), cachedBalance(t, conn, productID))
}

func TestAdjustNegativeRejectedForDirectionalReasons(t *testing.T) {
	t.Parallel()

	conn := setupInventoryTestDB(t)
	svc := newInventoryService(t, conn, 0)
	businessID := uuid.New()
	productID := seedTrackedProduct(t, conn, businessID, 300000)

	for _, reason := range []enums.MovementReason{
		enums.MovementReasonStockIn,
		enums.MovementReasonStockOut,
		enums.MovementReasonSale,
		enums.MovementReasonReturn,
	} {
		_, err := svc.Adjust(context.Background(), businessID, AdjustStockInput{
			ProductID: productID,
			Quantity:  "-1",
			Reason:    reason,
		})
		require.Error(t, err, "reason %s must reject signed input", reason)
	}
}

func TestAdjustZeroQuantityRejected(t *testing.T) {
	t.Parallel()

	conn := setupInventoryTestDB(t)
	svc := newInventoryService(t, conn, 0)
	businessID := uuid.New()
	productID := seedTrackedProduct(t, conn, businessID, 0)

	_, err := svc.Adjust(context.Background(), businessID, AdjustStockInput{
		ProductID: productID,
		Quantity:  "0",
		Reason:    enums.MovementReasonAdjustment,
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestAdjustUntrackedProductRejected(t *testing.T) {
	t.Parallel()

	conn := setupInventoryTestDB(t)
	svc := newInventoryService(t, conn, 0)
	businessID := uuid.New()

	product := &models.Product{
		ID:         uuid.New(),
		BusinessID: businessID,
		Type:       enums.ProductTypePhysical,
		Name:       "Untracked",
	}
	require.NoError(t, conn.Create(product).Error)

	_, err := svc.Adjust(context.Background(), businessID, AdjustStockInput{
		ProductID: product.ID,
		Quantity:  "1",
		Reason:    enums.MovementReasonStockIn,
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestAdjustIdempotencyKeyReuse(t *testing.T) {
	t.Parallel()

	conn := setupInventoryTestDB(t)
	svc := newInventoryService(t, conn, 0)
	businessID := uuid.New()
	productID := seedTrackedProduct(t, conn, businessID, 0)

	key := "pos-receipt-81"
	_, err := svc.Adjust(context.Background(), businessID, AdjustStockInput{
		ProductID:      productID,
		Quantity:       "3",
		Reason:         enums.MovementReasonStockIn,
		IdempotencyKey: &key,
	})
	require.NoError(t, err)

	_, err = svc.Adjust(context.Background(), businessID, AdjustStockInput{
		ProductID:      productID,
		Quantity:       "3",
		Reason:         enums.MovementReasonStockIn,
		IdempotencyKey: &key,
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeIdempotency, pkgerrors.As(err).Code())

	// The duplicate must not double-apply.
	require.Equal(t, int64(300000), cachedBalance(t, conn, productID))
}

func TestFractionalQuantityScale(t *testing.T) {
	t.Parallel()

	conn := setupInventoryTestDB(t)
	svc := newInventoryService(t, conn, 3)
	businessID := uuid.New()
	productID := seedTrackedProduct(t, conn, businessID, 0)

	movement, err := svc.Adjust(context.Background(), businessID, AdjustStockInput{
		ProductID: productID,
		Quantity:  "0.125",
		Reason:    enums.MovementReasonStockIn,
	})
	require.NoError(t, err)
	require.Equal(t, "0.125", movement.QuantityDelta)

	_, err = svc.Adjust(context.Background(), businessID, AdjustStockInput{
		ProductID: productID,
		Quantity:  "0.0001",
		Reason:    enums.MovementReasonStockIn,
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.ReasonQuantityPrecisionInvalid, pkgerrors.ReasonOf(err))
}

func TestReconcileRepairsDrift(t *testing.T) {
	t.Parallel()

	conn := setupInventoryTestDB(t)
	svc := newInventoryService(t, conn, 0)
	businessID := uuid.New()
	productID := seedTrackedProduct(t, conn, businessID, 0)

	_, err := svc.Adjust(context.Background(), businessID, AdjustStockInput{
		ProductID: productID,
		Quantity:  "10",
		Reason:    enums.MovementReasonStockIn,
	})
	require.NoError(t, err)

	// Corrupt the cache out of band.
	require.NoError(t, conn.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("on_hand_cached", 123).Error)

	result, err := svc.Reconcile(context.Background(), businessID, productID)
	require.NoError(t, err)
	require.True(t, result.Repaired)
	require.Equal(t, int64(1000000), result.LedgerBalance)
	require.Equal(t, int64(123), result.CachedBalance)
	require.Equal(t, int64(1000000), cachedBalance(t, conn, productID))

	// A second pass finds nothing to repair.
	result, err = svc.Reconcile(context.Background(), businessID, productID)
	require.NoError(t, err)
	require.False(t, result.Repaired)
}

func TestListMovementsPagination(t *testing.T) {
	t.Parallel()

	conn := setupInventoryTestDB(t)
	svc := newInventoryService(t, conn, 0)
	businessID := uuid.New()
	productID := seedTrackedProduct(t, conn, businessID, 0)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := NewRepository(conn)
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.CreateMovement(context.Background(), &models.InventoryMovement{
			ID:                  uuid.New(),
			BusinessID:          businessID,
			ProductID:           productID,
			QuantityDeltaScaled: int64((i + 1) * 100000),
			Reason:              enums.MovementReasonStockIn,
			CreatedAt:           base.Add(time.Duration(i) * time.Minute),
		}))
	}

	first, err := svc.ListMovements(context.Background(), businessID, productID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Movements, 2)
	require.NotEmpty(t, first.NextCursor)
	require.Equal(t, "3", first.Movements[0].QuantityDelta)
	require.Equal(t, "2", first.Movements[1].QuantityDelta)

	second, err := svc.ListMovements(context.Background(), businessID, productID, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Movements, 1)
	require.Empty(t, second.NextCursor)
	require.Equal(t, "1", second.Movements[0].QuantityDelta)
}
