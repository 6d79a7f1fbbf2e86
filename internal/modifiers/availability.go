package modifiers

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/vendio/catalog-backend/pkg/errors"
)

// NormalizeOptionName folds an option name for shared-availability matching:
// trim, collapse internal whitespace, lowercase.
func NormalizeOptionName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// SharedAvailabilityPreview lists every live option across the business that
// shares the source option's normalized name, grouped by modifier group.
type SharedAvailabilityPreview struct {
	OptionID       uuid.UUID               `json:"option_id"`
	NormalizedName string                  `json:"normalized_name"`
	Groups         []SharedAvailabilityHit `json:"groups"`
}

// SharedAvailabilityHit is one group carrying matching options.
type SharedAvailabilityHit struct {
	GroupID   uuid.UUID   `json:"group_id"`
	GroupName string      `json:"group_name"`
	OptionIDs []uuid.UUID `json:"option_ids"`
	SoldOut   bool        `json:"sold_out"`
}

// ApplySharedAvailabilityInput selects a subset of the previewed groups and
// the target sold-out flag.
type ApplySharedAvailabilityInput struct {
	OptionID uuid.UUID
	GroupIDs []uuid.UUID
	SoldOut  bool
}

// PreviewSharedAvailability resolves the source option and returns every live
// same-named option in the business grouped by modifier group.
func (s *service) PreviewSharedAvailability(ctx context.Context, businessID, optionID uuid.UUID) (*SharedAvailabilityPreview, error) {
	option, _, err := s.repo.FindOption(ctx, businessID, optionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, optionNotFound(optionID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load option")
	}

	normalized := NormalizeOptionName(option.Name)
	options, groupsByID, err := s.repo.ListLiveOptions(ctx, businessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list options")
	}

	hitsByGroup := make(map[uuid.UUID]*SharedAvailabilityHit)
	order := make([]uuid.UUID, 0)
	for i := range options {
		candidate := &options[i]
		if NormalizeOptionName(candidate.Name) != normalized {
			continue
		}
		hit, ok := hitsByGroup[candidate.GroupID]
		if !ok {
			group := groupsByID[candidate.GroupID]
			if group == nil {
				continue
			}
			hit = &SharedAvailabilityHit{
				GroupID:   group.ID,
				GroupName: group.Name,
				SoldOut:   true,
			}
			hitsByGroup[candidate.GroupID] = hit
			order = append(order, candidate.GroupID)
		}
		hit.OptionIDs = append(hit.OptionIDs, candidate.ID)
		if !candidate.IsSoldOut {
			hit.SoldOut = false
		}
	}

	preview := &SharedAvailabilityPreview{
		OptionID:       optionID,
		NormalizedName: normalized,
		Groups:         make([]SharedAvailabilityHit, 0, len(order)),
	}
	for _, groupID := range order {
		preview.Groups = append(preview.Groups, *hitsByGroup[groupID])
	}
	return preview, nil
}

// ApplySharedAvailability toggles sold-out on the matching options of the
// selected groups in one batched update. The selection must be a non-empty
// subset of the preview; an empty subset is a validation error, never a
// silent no-op.
func (s *service) ApplySharedAvailability(ctx context.Context, businessID uuid.UUID, input ApplySharedAvailabilityInput) (int64, error) {
	if len(input.GroupIDs) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "at least one group must be selected")
	}

	preview, err := s.PreviewSharedAvailability(ctx, businessID, input.OptionID)
	if err != nil {
		return 0, err
	}

	validGroups := make(map[uuid.UUID][]uuid.UUID, len(preview.Groups))
	for _, hit := range preview.Groups {
		validGroups[hit.GroupID] = hit.OptionIDs
	}

	var optionIDs []uuid.UUID
	for _, groupID := range input.GroupIDs {
		ids, ok := validGroups[groupID]
		if !ok {
			return 0, pkgerrors.NewReason(
				pkgerrors.CodeValidation,
				pkgerrors.ReasonModifierGroupInvalid,
				"group is not part of the shared-availability preview",
			).WithDetails(map[string]string{"group_id": groupID.String()})
		}
		optionIDs = append(optionIDs, ids...)
	}

	var affected int64
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		n, err := s.repo.WithTx(tx).SetSoldOut(ctx, optionIDs, input.SoldOut)
		if err != nil {
			return err
		}
		affected = n
		return nil
	}); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply shared availability")
	}
	return affected, nil
}
