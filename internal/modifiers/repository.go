package modifiers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendio/catalog-backend/pkg/db/models"
)

// Repository wires modifier group and option persistence.
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

// CreateGroup inserts a new modifier group.
func (r *Repository) CreateGroup(ctx context.Context, group *models.ModifierGroup) error {
	return r.db.WithContext(ctx).Create(group).Error
}

// UpdateGroup saves an existing group row.
func (r *Repository) UpdateGroup(ctx context.Context, group *models.ModifierGroup) error {
	return r.db.WithContext(ctx).Save(group).Error
}

// FindGroup loads one business-scoped group with its live options.
func (r *Repository) FindGroup(ctx context.Context, businessID, id uuid.UUID) (*models.ModifierGroup, error) {
	var group models.ModifierGroup
	err := r.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_archived = ?", false).Order("sort_order ASC")
		}).
		First(&group, "id = ? AND business_id = ?", id, businessID).
		Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// FindGroups loads the business-scoped groups matching ids, without options.
func (r *Repository) FindGroups(ctx context.Context, businessID uuid.UUID, ids []uuid.UUID) ([]models.ModifierGroup, error) {
	var rows []models.ModifierGroup
	err := r.db.WithContext(ctx).
		Where("business_id = ? AND id IN ?", businessID, ids).
		Find(&rows).
		Error
	return rows, err
}

// ListGroups returns the non-archived groups with live options.
func (r *Repository) ListGroups(ctx context.Context, businessID uuid.UUID) ([]models.ModifierGroup, error) {
	var rows []models.ModifierGroup
	err := r.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_archived = ?", false).Order("sort_order ASC")
		}).
		Where("business_id = ? AND is_archived = ?", businessID, false).
		Order("sort_order ASC, name ASC").
		Find(&rows).
		Error
	return rows, err
}

// CountGroups counts the non-archived groups for the cap check.
func (r *Repository) CountGroups(ctx context.Context, businessID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ModifierGroup{}).
		Where("business_id = ? AND is_archived = ?", businessID, false).
		Count(&count).
		Error
	return count, err
}

// CreateOption inserts a new option row.
func (r *Repository) CreateOption(ctx context.Context, option *models.ModifierOption) error {
	return r.db.WithContext(ctx).Create(option).Error
}

// UpdateOption saves an existing option row.
func (r *Repository) UpdateOption(ctx context.Context, option *models.ModifierOption) error {
	return r.db.WithContext(ctx).Save(option).Error
}

// FindOption loads an option together with its owning group, scoped to the
// business through the group.
func (r *Repository) FindOption(ctx context.Context, businessID, id uuid.UUID) (*models.ModifierOption, *models.ModifierGroup, error) {
	var option models.ModifierOption
	if err := r.db.WithContext(ctx).First(&option, "id = ?", id).Error; err != nil {
		return nil, nil, err
	}
	var group models.ModifierGroup
	if err := r.db.WithContext(ctx).
		First(&group, "id = ? AND business_id = ?", option.GroupID, businessID).
		Error; err != nil {
		return nil, nil, err
	}
	return &option, &group, nil
}

// CountOptions counts the non-archived options in a group for the cap check.
func (r *Repository) CountOptions(ctx context.Context, groupID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ModifierOption{}).
		Where("group_id = ? AND is_archived = ?", groupID, false).
		Count(&count).
		Error
	return count, err
}

// ListLiveOptions returns every non-archived option in non-archived groups of
// the business, with group metadata for preview grouping. Name matching is
// done by the caller since normalization collapses whitespace.
func (r *Repository) ListLiveOptions(ctx context.Context, businessID uuid.UUID) ([]models.ModifierOption, map[uuid.UUID]*models.ModifierGroup, error) {
	var groups []models.ModifierGroup
	if err := r.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_archived = ?", false).Order("sort_order ASC")
		}).
		Where("business_id = ? AND is_archived = ?", businessID, false).
		Find(&groups).
		Error; err != nil {
		return nil, nil, err
	}

	byID := make(map[uuid.UUID]*models.ModifierGroup, len(groups))
	var options []models.ModifierOption
	for i := range groups {
		byID[groups[i].ID] = &groups[i]
		options = append(options, groups[i].Options...)
	}
	return options, byID, nil
}

// SetSoldOut flips the sold-out flag on the given live options in one update.
func (r *Repository) SetSoldOut(ctx context.Context, optionIDs []uuid.UUID, soldOut bool) (int64, error) {
	if len(optionIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.ModifierOption{}).
		Where("id IN ? AND is_archived = ?", optionIDs, false).
		UpdateColumn("is_sold_out", soldOut)
	return result.RowsAffected, result.Error
}

// FindAttachedGroups loads the modifier groups linked to a product with all
// their options, for selection validation.
func (r *Repository) FindAttachedGroups(ctx context.Context, productID uuid.UUID) ([]AttachedGroup, error) {
	var links []models.ProductModifierGroup
	if err := r.db.WithContext(ctx).
		Preload("Group").
		Preload("Group.Options").
		Where("product_id = ?", productID).
		Order("sort_order ASC").
		Find(&links).
		Error; err != nil {
		return nil, err
	}

	attached := make([]AttachedGroup, 0, len(links))
	for _, link := range links {
		if link.Group == nil {
			continue
		}
		attached = append(attached, AttachedGroup{
			Group:   link.Group,
			Options: link.Group.Options,
		})
	}
	return attached, nil
}
