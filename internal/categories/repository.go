package categories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendio/catalog-backend/pkg/db/models"
	pkgerrors "github.com/vendio/catalog-backend/pkg/errors"
)

// Repository exposes read access to product categories.
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

// FindByID loads a category by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// Resolve loads a category for use on a product write. Missing, foreign, or
// inactive categories are rejected as validation failures.
func (r *Repository) Resolve(ctx context.Context, businessID, id uuid.UUID) (*models.Category, error) {
	category, err := r.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidCategory(id)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	if category.BusinessID != businessID || !category.IsActive {
		return nil, invalidCategory(id)
	}
	return category, nil
}

// ListByBusiness returns the active categories ordered for display.
func (r *Repository) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]models.Category, error) {
	var rows []models.Category
	err := r.db.WithContext(ctx).
		Where("business_id = ? AND is_active = ?", businessID, true).
		Order("sort_order ASC, name ASC").
		Find(&rows).
		Error
	return rows, err
}

func invalidCategory(id uuid.UUID) *pkgerrors.Error {
	return pkgerrors.New(
		pkgerrors.CodeValidation,
		"category does not exist or is not active",
	).WithDetails(map[string]string{"category_id": id.String()})
}
