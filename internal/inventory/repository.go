package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendio/catalog-backend/pkg/db/models"
	"github.com/vendio/catalog-backend/pkg/pagination"
)

// Repository manages persistence for the stock ledger and the cached balance.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateMovement(ctx context.Context, movement *models.InventoryMovement) error
	ApplyDelta(ctx context.Context, productID uuid.UUID, delta int64) (int64, error)
	ApplyDeltaUnchecked(ctx context.Context, productID uuid.UUID, delta int64) (int64, error)
	ListByProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) ([]models.InventoryMovement, string, error)
	SumByProduct(ctx context.Context, productID uuid.UUID) (int64, error)
	CachedBalance(ctx context.Context, productID uuid.UUID) (int64, error)
	SetCachedBalance(ctx context.Context, productID uuid.UUID, balance int64) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateMovement(ctx context.Context, movement *models.InventoryMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// ApplyDelta adds delta to the cached balance only when the result stays
// non-negative. It returns the number of rows updated; zero means the product
// row is missing or the guard rejected the movement.
func (r *repository) ApplyDelta(ctx context.Context, productID uuid.UUID, delta int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND on_hand_cached + ? >= 0", productID, delta).
		UpdateColumn("on_hand_cached", gorm.Expr("on_hand_cached + ?", delta))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ApplyDeltaUnchecked adds delta without the non-negative guard. Adjustments
// carry caller-validated signs and may take the balance below zero.
func (r *repository) ApplyDeltaUnchecked(ctx context.Context, productID uuid.UUID, delta int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("on_hand_cached", gorm.Expr("on_hand_cached + ?", delta))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ListByProduct returns the movement history newest first using keyset
// pagination.
func (r *repository) ListByProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) ([]models.InventoryMovement, string, error) {
	pageSize := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}

	qb := r.db.WithContext(ctx).
		Where("product_id = ?", productID)
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.InventoryMovement
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

// SumByProduct computes the authoritative balance from the ledger rows.
func (r *repository) SumByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	var total struct {
		Sum int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.InventoryMovement{}).
		Select("COALESCE(SUM(quantity_delta_scaled), 0) AS sum").
		Where("product_id = ?", productID).
		Scan(&total).
		Error
	return total.Sum, err
}

func (r *repository) CachedBalance(ctx context.Context, productID uuid.UUID) (int64, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Select("on_hand_cached").
		First(&product, "id = ?", productID).
		Error; err != nil {
		return 0, err
	}
	return product.OnHandCached, nil
}

func (r *repository) SetCachedBalance(ctx context.Context, productID uuid.UUID, balance int64) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumns(map[string]any{
			"on_hand_cached": balance,
			"updated_at":     time.Now().UTC(),
		}).
		Error
}
