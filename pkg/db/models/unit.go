package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vendio/catalog-backend/pkg/enums"
)

// Unit is a read-only measurement unit. PrecisionScale drives how many
// fractional digits quantities of products using this unit may carry.
type Unit struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BusinessID     uuid.UUID          `gorm:"column:business_id;type:uuid;not null;index"`
	Name           string             `gorm:"column:name;not null"`
	Abbreviation   string             `gorm:"column:abbreviation;not null"`
	Category       enums.UnitCategory `gorm:"column:category;not null"`
	PrecisionScale int                `gorm:"column:precision_scale;not null;default:0"`
	IsActive       bool               `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
