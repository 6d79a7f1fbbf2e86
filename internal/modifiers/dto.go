package modifiers

import (
	"time"

	"github.com/google/uuid"

	"github.com/vendio/catalog-backend/pkg/db/models"
	"github.com/vendio/catalog-backend/pkg/enums"
	"github.com/vendio/catalog-backend/pkg/money"
)

// GroupDTO is the transport shape of a modifier group with its live options.
type GroupDTO struct {
	ID            uuid.UUID           `json:"id"`
	Name          string              `json:"name"`
	SelectionType enums.SelectionType `json:"selection_type"`
	IsRequired    bool                `json:"is_required"`
	MinSelected   int                 `json:"min_selected"`
	MaxSelected   int                 `json:"max_selected"`
	SortOrder     int                 `json:"sort_order"`
	Options       []OptionDTO         `json:"options"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// OptionDTO is the transport shape of one option.
type OptionDTO struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	PriceDeltaMinor   int64     `json:"price_delta_minor"`
	PriceDeltaDisplay string    `json:"price_delta"`
	IsSoldOut         bool      `json:"is_sold_out"`
	SortOrder         int       `json:"sort_order"`
}

// NewGroupDTO maps a group row with its options into the transport shape.
func NewGroupDTO(group *models.ModifierGroup) GroupDTO {
	dto := GroupDTO{
		ID:            group.ID,
		Name:          group.Name,
		SelectionType: group.SelectionType,
		IsRequired:    group.IsRequired,
		MinSelected:   group.MinSelected,
		MaxSelected:   group.MaxSelected,
		SortOrder:     group.SortOrder,
		Options:       make([]OptionDTO, 0, len(group.Options)),
		CreatedAt:     group.CreatedAt,
		UpdatedAt:     group.UpdatedAt,
	}
	for _, option := range group.Options {
		dto.Options = append(dto.Options, OptionDTO{
			ID:                option.ID,
			Name:              option.Name,
			PriceDeltaMinor:   option.PriceDeltaMinor,
			PriceDeltaDisplay: money.Format(option.PriceDeltaMinor),
			IsSoldOut:         option.IsSoldOut,
			SortOrder:         option.SortOrder,
		})
	}
	return dto
}
