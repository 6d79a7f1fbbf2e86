package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vendio/catalog-backend/pkg/enums"
)

// ModifierGroup defines a set of options and the cardinality rules governing
// how many may be selected per order line.
type ModifierGroup struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BusinessID    uuid.UUID           `gorm:"column:business_id;type:uuid;not null;index"`
	Name          string              `gorm:"column:name;not null"`
	SelectionType enums.SelectionType `gorm:"column:selection_type;not null"`
	IsRequired    bool                `gorm:"column:is_required;not null;default:false"`
	MinSelected   int                 `gorm:"column:min_selected;not null;default:0"`
	MaxSelected   int                 `gorm:"column:max_selected;not null;default:1"`
	SortOrder     int                 `gorm:"column:sort_order;not null;default:0"`
	IsArchived    bool                `gorm:"column:is_archived;not null;default:false"`

	Options []ModifierOption `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
