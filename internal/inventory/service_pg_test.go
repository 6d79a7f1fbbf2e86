package inventory

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/vendio/catalog-backend/pkg/enums"
	pkgerrors "github.com/vendio/catalog-backend/pkg/errors"
)

// TestConcurrentStockOut needs a real postgres because the guard depends on
// row-level locking under concurrent writers. Set VENDIO_TEST_DATABASE_URL to
// run it.
func TestConcurrentStockOut(t *testing.T) {
	dsn := os.Getenv("VENDIO_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("VENDIO_TEST_DATABASE_URL not set")
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	svc := newInventoryService(t, conn, 0)
	businessID := uuid.New()
	productID := seedTrackedProduct(t, conn, businessID, 500000)

	const writers = 20
	var wg sync.WaitGroup
	results := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Adjust(context.Background(), businessID, AdjustStockInput{
				ProductID: productID,
				Quantity:  "1",
				Reason:    enums.MovementReasonStockOut,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		require.Equal(t, pkgerrors.ReasonStockInsufficient, pkgerrors.ReasonOf(err))
	}
	require.Equal(t, 5, succeeded)
	require.Zero(t, cachedBalance(t, conn, productID))

	var count int64
	require.NoError(t, conn.Table("inventory_movements").Where("product_id = ?", productID).Count(&count).Error)
	require.Equal(t, int64(5), count)
}
