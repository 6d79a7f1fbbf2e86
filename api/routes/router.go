package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vendio/catalog-backend/api/controllers"
	"github.com/vendio/catalog-backend/api/middleware"
	"github.com/vendio/catalog-backend/internal/categories"
	checkoutsvc "github.com/vendio/catalog-backend/internal/checkout"
	inventorysvc "github.com/vendio/catalog-backend/internal/inventory"
	modifiersvc "github.com/vendio/catalog-backend/internal/modifiers"
	productsvc "github.com/vendio/catalog-backend/internal/products"
	"github.com/vendio/catalog-backend/internal/units"
	"github.com/vendio/catalog-backend/pkg/config"
	"github.com/vendio/catalog-backend/pkg/db"
	"github.com/vendio/catalog-backend/pkg/logger"
	pkgredis "github.com/vendio/catalog-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *pkgredis.Client,
	promGatherer prometheus.Gatherer,
	productService productsvc.Service,
	inventoryService inventorysvc.Service,
	modifierService modifiersvc.Service,
	checkoutService checkoutsvc.Service,
	unitRepo *units.Repository,
	categoryRepo *categories.Repository,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if promGatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(promGatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.BusinessContext(logg))
		var idempotencyStore pkgredis.IdempotencyStore
		if redisClient != nil {
			idempotencyStore = redisClient
		}
		r.Use(middleware.Idempotency(idempotencyStore, cfg.Catalog.IdempotencyTTL(), logg))

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.CreateProduct(productService, logg))
			r.Get("/", controllers.ListProducts(productService, logg))
			r.Get("/{productId}", controllers.GetProduct(productService, logg))
			r.Patch("/{productId}", controllers.UpdateProduct(productService, logg))
			r.Delete("/{productId}", controllers.DeleteProduct(productService, logg))

			r.Post("/{productId}/stock/adjust", controllers.AdjustStock(inventoryService, logg))
			r.Post("/{productId}/stock/reconcile", controllers.ReconcileStock(inventoryService, logg))
			r.Get("/{productId}/movements", controllers.ListMovements(inventoryService, logg))
		})

		r.Route("/modifier-groups", func(r chi.Router) {
			r.Post("/", controllers.CreateModifierGroup(modifierService, logg))
			r.Get("/", controllers.ListModifierGroups(modifierService, logg))
			r.Get("/{groupId}", controllers.GetModifierGroup(modifierService, logg))
			r.Patch("/{groupId}", controllers.UpdateModifierGroup(modifierService, logg))
			r.Post("/{groupId}/archive", controllers.ArchiveModifierGroup(modifierService, logg))
			r.Post("/{groupId}/options", controllers.AddModifierOption(modifierService, logg))
		})

		r.Route("/modifier-options", func(r chi.Router) {
			r.Patch("/{optionId}", controllers.UpdateModifierOption(modifierService, logg))
			r.Post("/{optionId}/archive", controllers.ArchiveModifierOption(modifierService, logg))
			r.Get("/{optionId}/availability/preview", controllers.PreviewSharedAvailability(modifierService, logg))
			r.Post("/{optionId}/availability/apply", controllers.ApplySharedAvailability(modifierService, logg))
		})

		r.Post("/checkout/quote", controllers.CheckoutQuote(checkoutService, logg))

		r.Get("/units", controllers.ListUnits(unitRepo, logg))
		r.Get("/categories", controllers.ListCategories(categoryRepo, logg))
	})

	return r
}
