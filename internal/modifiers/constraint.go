package modifiers

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/vendio/catalog-backend/pkg/db/models"
	"github.com/vendio/catalog-backend/pkg/enums"
	pkgerrors "github.com/vendio/catalog-backend/pkg/errors"
)

// GroupRules is the structural rule set of a modifier group.
type GroupRules struct {
	SelectionType enums.SelectionType
	IsRequired    bool
	MinSelected   int
	MaxSelected   int
}

// ValidateGroupRules checks the structural invariants on a group definition.
// SINGLE groups pin the maximum at one; required groups must demand at least
// one selection.
func ValidateGroupRules(rules GroupRules) error {
	if !rules.SelectionType.IsValid() {
		return rulesInvalid(fmt.Sprintf("invalid selection type %q", rules.SelectionType))
	}
	if rules.MinSelected < 0 {
		return rulesInvalid("min_selected must not be negative")
	}
	if rules.MaxSelected < 1 {
		return rulesInvalid("max_selected must be at least 1")
	}
	if rules.SelectionType == enums.SelectionTypeSingle {
		if rules.MaxSelected != 1 {
			return rulesInvalid("single-select groups must have max_selected = 1")
		}
		if rules.MinSelected > 1 {
			return rulesInvalid("single-select groups must have min_selected of 0 or 1")
		}
	}
	if rules.MinSelected > rules.MaxSelected {
		return rulesInvalid("min_selected must not exceed max_selected")
	}
	if rules.IsRequired && rules.MinSelected < 1 {
		return rulesInvalid("required groups must have min_selected of at least 1")
	}
	return nil
}

// AttachedGroup pairs a group definition with its options for selection
// validation. Callers pass the raw attached rows; archived groups and
// options are excluded here, not upstream.
type AttachedGroup struct {
	Group   *models.ModifierGroup
	Options []models.ModifierOption
}

// ValidateSelection checks one cart line's chosen option ids against the
// product's attached groups and returns the signed price delta sum in minor
// units. Validation fails fast on the first violated group: a misconfigured
// modifier should block the sale outright.
func ValidateSelection(attached []AttachedGroup, selectedOptionIDs []uuid.UUID) (int64, error) {
	type liveOption struct {
		option *models.ModifierOption
		group  *models.ModifierGroup
	}
	optionIndex := make(map[uuid.UUID]liveOption)
	for i := range attached {
		group := attached[i].Group
		if group == nil || group.IsArchived {
			continue
		}
		for j := range attached[i].Options {
			option := &attached[i].Options[j]
			if option.IsArchived {
				continue
			}
			optionIndex[option.ID] = liveOption{option: option, group: group}
		}
	}

	seen := make(map[uuid.UUID]struct{}, len(selectedOptionIDs))
	countsByGroup := make(map[uuid.UUID]int)
	var deltaMinor int64
	for _, id := range selectedOptionIDs {
		if _, dup := seen[id]; dup {
			return 0, selectionInvalid("option selected more than once", id)
		}
		seen[id] = struct{}{}

		entry, ok := optionIndex[id]
		if !ok {
			return 0, selectionInvalid("option is not available on this product", id)
		}
		if entry.option.IsSoldOut {
			return 0, pkgerrors.NewReason(
				pkgerrors.CodeValidation,
				pkgerrors.ReasonOptionSoldOut,
				"selected option is sold out",
			).WithDetails(map[string]string{"option_id": id.String()})
		}
		countsByGroup[entry.group.ID]++
		deltaMinor += entry.option.PriceDeltaMinor
	}

	for i := range attached {
		group := attached[i].Group
		if group == nil || group.IsArchived {
			continue
		}
		count := countsByGroup[group.ID]

		// The SINGLE cap holds even if max_selected was misconfigured.
		if group.SelectionType == enums.SelectionTypeSingle && count > 1 {
			return 0, pkgerrors.NewReason(
				pkgerrors.CodeValidation,
				pkgerrors.ReasonSelectionSingleOnly,
				"single-select group allows at most one option",
			).WithDetails(map[string]string{"group_id": group.ID.String()})
		}
		if count > group.MaxSelected {
			return 0, pkgerrors.NewReason(
				pkgerrors.CodeValidation,
				pkgerrors.ReasonSelectionLimitExceeded,
				fmt.Sprintf("group allows at most %d selections", group.MaxSelected),
			).WithDetails(map[string]string{"group_id": group.ID.String()})
		}
		if count < group.MinSelected || (group.IsRequired && count == 0) {
			return 0, pkgerrors.NewReason(
				pkgerrors.CodeValidation,
				pkgerrors.ReasonSelectionRequired,
				fmt.Sprintf("group requires at least %d selections", group.MinSelected),
			).WithDetails(map[string]string{"group_id": group.ID.String()})
		}
	}

	return deltaMinor, nil
}

func rulesInvalid(message string) *pkgerrors.Error {
	return pkgerrors.NewReason(pkgerrors.CodeValidation, pkgerrors.ReasonModifierRulesInvalid, message)
}

func selectionInvalid(message string, optionID uuid.UUID) *pkgerrors.Error {
	return pkgerrors.NewReason(
		pkgerrors.CodeValidation,
		pkgerrors.ReasonSelectionInvalid,
		message,
	).WithDetails(map[string]string{"option_id": optionID.String()})
}
