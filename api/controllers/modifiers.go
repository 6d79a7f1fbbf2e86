package controllers

import (
	"net/http"

	"github.com/vendio/catalog-backend/api/middleware"
	"github.com/vendio/catalog-backend/api/responses"
	"github.com/vendio/catalog-backend/api/validators"
	modifiersvc "github.com/vendio/catalog-backend/internal/modifiers"
	pkgerrors "github.com/vendio/catalog-backend/pkg/errors"
	"github.com/vendio/catalog-backend/pkg/logger"
)

// CreateModifierGroup creates a group with its initial options.
func CreateModifierGroup(svc modifiersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "modifier service unavailable"))
			return
		}

		businessID := middleware.BusinessIDFromContext(r.Context())

		var payload createGroupRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		group, err := svc.CreateGroup(r.Context(), businessID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, group)
	}
}

// UpdateModifierGroup patches group metadata and selection rules.
func UpdateModifierGroup(svc modifiersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "modifier service unavailable"))
			return
		}

		businessID := middleware.BusinessIDFromContext(r.Context())
		groupID, err := pathUUID(r, "groupId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateGroupRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		group, err := svc.UpdateGroup(r.Context(), businessID, groupID, modifiersvc.UpdateGroupInput{
			Name:        payload.Name,
			IsRequired:  payload.IsRequired,
			MinSelected: payload.MinSelected,
			MaxSelected: payload.MaxSelected,
			SortOrder:   payload.SortOrder,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, group)
	}
}

// ArchiveModifierGroup hides a group from selection without deleting it.
func ArchiveModifierGroup(svc modifiersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "modifier service unavailable"))
			return
		}

		businessID := middleware.BusinessIDFromContext(r.Context())
		groupID, err := pathUUID(r, "groupId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ArchiveGroup(r.Context(), businessID, groupID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "archived"})
	}
}

// GetModifierGroup returns one group with its live options.
func GetModifierGroup(svc modifiersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "modifier service unavailable"))
			return
		}

		businessID := middleware.BusinessIDFromContext(r.Context())
		groupID, err := pathUUID(r, "groupId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		group, err := svc.GetGroup(r.Context(), businessID, groupID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, group)
	}
}

// ListModifierGroups lists the tenant's non-archived groups.
func ListModifierGroups(svc modifiersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "modifier service unavailable"))
			return
		}

		businessID := middleware.BusinessIDFromContext(r.Context())

		groups, err := svc.ListGroups(r.Context(), businessID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"groups": groups})
	}
}

// AddModifierOption appends an option to a group.
func AddModifierOption(svc modifiersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "modifier service unavailable"))
			return
		}

		businessID := middleware.BusinessIDFromContext(r.Context())
		groupID, err := pathUUID(r, "groupId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload optionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		group, err := svc.AddOption(r.Context(), businessID, groupID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, group)
	}
}

// UpdateModifierOption patches one option.
func UpdateModifierOption(svc modifiersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "modifier service unavailable"))
			return
		}

		businessID := middleware.BusinessIDFromContext(r.Context())
		optionID, err := pathUUID(r, "optionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateOptionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		group, err := svc.UpdateOption(r.Context(), businessID, optionID, modifiersvc.UpdateOptionInput{
			Name:            payload.Name,
			PriceDeltaMinor: payload.PriceDeltaMinor,
			IsSoldOut:       payload.IsSoldOut,
			SortOrder:       payload.SortOrder,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, group)
	}
}

// ArchiveModifierOption hides one option from selection.
func ArchiveModifierOption(svc modifiersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "modifier service unavailable"))
			return
		}

		businessID := middleware.BusinessIDFromContext(r.Context())
		optionID, err := pathUUID(r, "optionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ArchiveOption(r.Context(), businessID, optionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "archived"})
	}
}

// PreviewSharedAvailability lists every same-named live option that a shared
// sold-out toggle would touch.
func PreviewSharedAvailability(svc modifiersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "modifier service unavailable"))
			return
		}

		businessID := middleware.BusinessIDFromContext(r.Context())
		optionID, err := pathUUID(r, "optionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		preview, err := svc.PreviewSharedAvailability(r.Context(), businessID, optionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, preview)
	}
}

// ApplySharedAvailability flips sold-out for same-named options across the
// selected groups.
func ApplySharedAvailability(svc modifiersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "modifier service unavailable"))
			return
		}

		businessID := middleware.BusinessIDFromContext(r.Context())
		optionID, err := pathUUID(r, "optionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload applyAvailabilityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		groupIDs, err := parseUUIDList(payload.GroupIDs, "group_ids")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		affected, err := svc.ApplySharedAvailability(r.Context(), businessID, modifiersvc.ApplySharedAvailabilityInput{
			OptionID: optionID,
			GroupIDs: groupIDs,
			SoldOut:  payload.SoldOut,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"options_updated": affected})
	}
}

type createGroupRequest struct {
	Name          string          `json:"name" validate:"required"`
	SelectionType string          `json:"selection_type" validate:"required"`
	IsRequired    bool            `json:"is_required"`
	MinSelected   int             `json:"min_selected"`
	MaxSelected   int             `json:"max_selected" validate:"required,min=1"`
	SortOrder     int             `json:"sort_order"`
	Options       []optionRequest `json:"options,omitempty" validate:"omitempty,dive"`
}

func (r createGroupRequest) toInput() modifiersvc.CreateGroupInput {
	input := modifiersvc.CreateGroupInput{
		Name:          r.Name,
		SelectionType: r.SelectionType,
		IsRequired:    r.IsRequired,
		MinSelected:   r.MinSelected,
		MaxSelected:   r.MaxSelected,
		SortOrder:     r.SortOrder,
	}
	for _, option := range r.Options {
		input.Options = append(input.Options, option.toInput())
	}
	return input
}

type updateGroupRequest struct {
	Name        *string `json:"name,omitempty"`
	IsRequired  *bool   `json:"is_required,omitempty"`
	MinSelected *int    `json:"min_selected,omitempty"`
	MaxSelected *int    `json:"max_selected,omitempty"`
	SortOrder   *int    `json:"sort_order,omitempty"`
}

type optionRequest struct {
	Name            string `json:"name" validate:"required"`
	PriceDeltaMinor int64  `json:"price_delta_minor"`
	IsSoldOut       bool   `json:"is_sold_out"`
	SortOrder       int    `json:"sort_order"`
}

func (r optionRequest) toInput() modifiersvc.OptionInput {
	return modifiersvc.OptionInput{
		Name:            r.Name,
		PriceDeltaMinor: r.PriceDeltaMinor,
		IsSoldOut:       r.IsSoldOut,
		SortOrder:       r.SortOrder,
	}
}

type updateOptionRequest struct {
	Name            *string `json:"name,omitempty"`
	PriceDeltaMinor *int64  `json:"price_delta_minor,omitempty"`
	IsSoldOut       *bool   `json:"is_sold_out,omitempty"`
	SortOrder       *int    `json:"sort_order,omitempty"`
}

type applyAvailabilityRequest struct {
	GroupIDs []string `json:"group_ids" validate:"required,min=1"`
	SoldOut  bool     `json:"sold_out"`
}
