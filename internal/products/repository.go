package products

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendio/catalog-backend/pkg/db/models"
	"github.com/vendio/catalog-backend/pkg/enums"
	pkgerrors "github.com/vendio/catalog-backend/pkg/errors"
	"github.com/vendio/catalog-backend/pkg/pagination"
)

// Repository wires together product persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads the business-scoped product without associations.
func (r *Repository) FindByID(ctx context.Context, businessID, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		First(&product, "id = ? AND business_id = ?", id, businessID).
		Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindForStock loads the product together with its unit precision scale for
// ledger operations. Missing rows surface as the domain not-found error.
func (r *Repository) FindForStock(ctx context.Context, businessID, productID uuid.UUID) (*models.Product, int, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Unit").
		First(&product, "id = ? AND business_id = ?", productID, businessID).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, pkgerrors.NewReason(
				pkgerrors.CodeNotFound,
				pkgerrors.ReasonProductNotFound,
				"product not found",
			).WithDetails(map[string]string{"product_id": productID.String()})
		}
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	scale := 0
	if product.Unit != nil {
		scale = product.Unit.PrecisionScale
	}
	return &product, scale, nil
}

// CreateProduct inserts a new product row.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct saves an existing product row.
func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// SoftDelete flips the product inactive; rows are never physically removed.
func (r *Repository) SoftDelete(ctx context.Context, businessID, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND business_id = ?", id, businessID).
		UpdateColumns(map[string]any{
			"is_active":  false,
			"updated_at": time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}

// GetDetail fetches the product with its unit, category, and modifier groups
// hydrated. Used both for reads and for the post-write re-read inside the
// write transaction.
func (r *Repository) GetDetail(ctx context.Context, businessID, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Unit").
		Preload("Category").
		Preload("ModifierGroups", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("ModifierGroups.Group").
		Preload("ModifierGroups.Group.Options", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_archived = ?", false).Order("sort_order ASC")
		}).
		First(&product, "id = ? AND business_id = ?", id, businessID).
		Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// CountByBusiness counts all products, active or not, for the cap check.
func (r *Repository) CountByBusiness(ctx context.Context, businessID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("business_id = ?", businessID).
		Count(&count).
		Error
	return count, err
}

// SKUExists reports whether another product in the business already carries
// the SKU. excludeID skips the product being updated.
func (r *Repository) SKUExists(ctx context.Context, businessID uuid.UUID, sku string, excludeID *uuid.UUID) (bool, error) {
	return r.codeExists(ctx, businessID, "sku", sku, excludeID)
}

// BarcodeExists reports whether another product in the business already
// carries the barcode.
func (r *Repository) BarcodeExists(ctx context.Context, businessID uuid.UUID, barcode string, excludeID *uuid.UUID) (bool, error) {
	return r.codeExists(ctx, businessID, "barcode", barcode, excludeID)
}

func (r *Repository) codeExists(ctx context.Context, businessID uuid.UUID, column, value string, excludeID *uuid.UUID) (bool, error) {
	qb := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("business_id = ? AND "+column+" = ?", businessID, value)
	if excludeID != nil {
		qb = qb.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := qb.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ReplaceModifierGroups swaps the product's group links wholesale.
func (r *Repository) ReplaceModifierGroups(ctx context.Context, productID uuid.UUID, links []models.ProductModifierGroup) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("product_id = ?", productID).Delete(&models.ProductModifierGroup{}).Error; err != nil {
		return err
	}
	if len(links) == 0 {
		return nil
	}
	return tx.Create(&links).Error
}

type productListQuery struct {
	BusinessID uuid.UUID
	Pagination pagination.Params
	Filters    ProductListFilters
}

// ListSummaries returns a keyset-paginated page of product summaries.
func (r *Repository) ListSummaries(ctx context.Context, query productListQuery) ([]models.Product, string, error) {
	pageSize := pagination.NormalizeLimit(query.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(query.Pagination.Limit)

	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, "", err
	}

	qb := r.db.WithContext(ctx).
		Preload("Unit").
		Preload("Category").
		Where("business_id = ?", query.BusinessID)

	filter := query.Filters
	if filter.Type != nil {
		qb = qb.Where("type = ?", *filter.Type)
	}
	if filter.IsActive != nil {
		qb = qb.Where("is_active = ?", *filter.IsActive)
	}
	if filter.CategoryID != nil {
		qb = qb.Where("category_id = ?", *filter.CategoryID)
	}
	if search := strings.TrimSpace(filter.Query); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(name) LIKE ? OR LOWER(sku) LIKE ? OR LOWER(barcode) LIKE ?)", pattern, pattern, pattern)
	}

	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Product
	if err := qb.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limitWithBuffer).
		Find(&rows).
		Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, nextCursor, nil
}

// ProductListFilters narrows the business list.
type ProductListFilters struct {
	Query      string
	Type       *enums.ProductType
	IsActive   *bool
	CategoryID *uuid.UUID
}
