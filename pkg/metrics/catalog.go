package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CatalogMetrics records counters for the catalog write paths. A nil receiver
// or unregistered metrics are safe no-ops so tests can pass nil.
type CatalogMetrics struct {
	skuRetries      prometheus.Counter
	skuExhausted    prometheus.Counter
	catalogOverCap  prometheus.Counter
	stockMovements  *prometheus.CounterVec
	stockRejections prometheus.Counter
}

// NewCatalogMetrics registers the catalog metrics on the provided registerer.
func NewCatalogMetrics(reg prometheus.Registerer) *CatalogMetrics {
	if reg == nil {
		return &CatalogMetrics{}
	}
	skuRetries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalog_sku_reservation_retries_total",
		Help: "Retries of the SKU reservation loop after a uniqueness collision.",
	})
	skuExhausted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalog_sku_reservation_exhausted_total",
		Help: "Product creates that failed after exhausting all SKU reservation attempts.",
	})
	catalogOverCap := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalog_product_cap_overshoot_total",
		Help: "Product creates observed above the per-business catalog cap.",
	})
	stockMovements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_stock_movements_total",
		Help: "Committed inventory ledger movements by reason.",
	}, []string{"reason"})
	stockRejections := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalog_stock_rejections_total",
		Help: "Stock movements rejected because the balance would go negative.",
	})
	reg.MustRegister(skuRetries, skuExhausted, catalogOverCap, stockMovements, stockRejections)
	return &CatalogMetrics{
		skuRetries:      skuRetries,
		skuExhausted:    skuExhausted,
		catalogOverCap:  catalogOverCap,
		stockMovements:  stockMovements,
		stockRejections: stockRejections,
	}
}

// IncSKURetry counts one retried SKU reservation attempt.
func (c *CatalogMetrics) IncSKURetry() {
	if c == nil || c.skuRetries == nil {
		return
	}
	c.skuRetries.Inc()
}

// IncSKUExhausted counts a create that ran out of SKU attempts.
func (c *CatalogMetrics) IncSKUExhausted() {
	if c == nil || c.skuExhausted == nil {
		return
	}
	c.skuExhausted.Inc()
}

// IncCatalogOverCap counts a create admitted above the catalog cap.
func (c *CatalogMetrics) IncCatalogOverCap() {
	if c == nil || c.catalogOverCap == nil {
		return
	}
	c.catalogOverCap.Inc()
}

// IncStockMovement counts a committed ledger movement for the given reason.
func (c *CatalogMetrics) IncStockMovement(reason string) {
	if c == nil || c.stockMovements == nil {
		return
	}
	if reason == "" {
		reason = "unknown"
	}
	c.stockMovements.WithLabelValues(reason).Inc()
}

// IncStockRejection counts a movement rejected by the non-negative guard.
func (c *CatalogMetrics) IncStockRejection() {
	if c == nil || c.stockRejections == nil {
		return
	}
	c.stockRejections.Inc()
}
