package units

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendio/catalog-backend/pkg/db/models"
	pkgerrors "github.com/vendio/catalog-backend/pkg/errors"
)

// Repository exposes read access to the measurement unit catalog. Units are
// seeded data; this service never mutates them.
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

// FindByID loads a unit regardless of active state.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Unit, error) {
	var unit models.Unit
	if err := r.db.WithContext(ctx).First(&unit, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &unit, nil
}

// Resolve loads a unit for use on a product write. A missing, foreign, or
// inactive unit is rejected as an invalid reference rather than a not-found.
func (r *Repository) Resolve(ctx context.Context, businessID, id uuid.UUID) (*models.Unit, error) {
	unit, err := r.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidUnit(id)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load unit")
	}
	if unit.BusinessID != businessID || !unit.IsActive {
		return nil, invalidUnit(id)
	}
	return unit, nil
}

// ListByBusiness returns the active units for a business ordered by name.
func (r *Repository) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]models.Unit, error) {
	var rows []models.Unit
	err := r.db.WithContext(ctx).
		Where("business_id = ? AND is_active = ?", businessID, true).
		Order("name ASC").
		Find(&rows).
		Error
	return rows, err
}

func invalidUnit(id uuid.UUID) *pkgerrors.Error {
	return pkgerrors.NewReason(
		pkgerrors.CodeValidation,
		pkgerrors.ReasonInvalidUnit,
		"unit does not exist or is not active",
	).WithDetails(map[string]string{"unit_id": id.String()})
}
