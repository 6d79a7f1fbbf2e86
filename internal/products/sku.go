package products

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"gorm.io/gorm"

	"github.com/vendio/catalog-backend/pkg/db"
	pkgerrors "github.com/vendio/catalog-backend/pkg/errors"
	"github.com/vendio/catalog-backend/pkg/metrics"
)

// counterUpsert atomically reserves the next SKU number for a business. The
// row is created with next=2 when absent, so the returned value minus one is
// always the reserved number. Never read-then-write.
const counterUpsert = `
INSERT INTO business_counters (business_id, next_product_sku_number, updated_at)
VALUES (?, 2, CURRENT_TIMESTAMP)
ON CONFLICT (business_id)
DO UPDATE SET next_product_sku_number = business_counters.next_product_sku_number + 1,
              updated_at = CURRENT_TIMESTAMP
RETURNING next_product_sku_number
`

// SkuGenerator reserves business-unique SKU numbers and drives the bounded
// retry loop around a single reserve-then-insert attempt.
type SkuGenerator struct {
	db          *gorm.DB
	prefix      string
	maxAttempts int
	metrics     *metrics.CatalogMetrics
}

// NewSkuGenerator builds a generator using the deployment-fixed prefix.
func NewSkuGenerator(gdb *gorm.DB, prefix string, maxAttempts int, catalogMetrics *metrics.CatalogMetrics) *SkuGenerator {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &SkuGenerator{
		db:          gdb,
		prefix:      prefix,
		maxAttempts: maxAttempts,
		metrics:     catalogMetrics,
	}
}

// NormalizeSKU trims and collapses internal whitespace in a caller-supplied
// SKU or barcode.
func NormalizeSKU(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// Reserve upserts the business counter and formats the reserved number. The
// upsert runs outside any caller transaction: a rolled-back insert burns the
// number instead of holding a lock on the counter row.
func (g *SkuGenerator) Reserve(ctx context.Context, businessID uuid.UUID) (string, error) {
	var next int64
	if err := g.db.WithContext(ctx).Raw(counterUpsert, businessID).Scan(&next).Error; err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reserve sku number")
	}
	return g.Format(next - 1), nil
}

// Format renders a reserved number as the wire SKU string.
func (g *SkuGenerator) Format(number int64) string {
	return fmt.Sprintf("%s%06d", g.prefix, number)
}

// GenerateWithRetry reserves a fresh SKU and runs attempt with it, retrying
// on SKU collisions up to the attempt bound. Any other failure, including a
// barcode collision, is terminal since a new SKU cannot fix it.
func (g *SkuGenerator) GenerateWithRetry(ctx context.Context, businessID uuid.UUID, attempt func(ctx context.Context, sku string) error) error {
	backoff := retry.WithMaxRetries(uint64(g.maxAttempts-1), retry.NewConstant(time.Millisecond))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		sku, rerr := g.Reserve(ctx, businessID)
		if rerr != nil {
			return rerr
		}
		aerr := attempt(ctx, sku)
		if aerr == nil {
			return nil
		}
		if db.IsUniqueViolation(aerr, db.ConstraintProductSKU) {
			g.metrics.IncSKURetry()
			return retry.RetryableError(aerr)
		}
		return aerr
	})
	if err == nil {
		return nil
	}
	if db.IsUniqueViolation(err, db.ConstraintProductSKU) {
		g.metrics.IncSKUExhausted()
		return pkgerrors.NewReason(
			pkgerrors.CodeConflict,
			pkgerrors.ReasonSkuGenerationFailed,
			fmt.Sprintf("could not generate a unique sku after %d attempts", g.maxAttempts),
		)
	}
	return err
}
