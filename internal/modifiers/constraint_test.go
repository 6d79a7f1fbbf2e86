package modifiers

import (
	"testing"

	"github.com/google/uuid"

	"github.com/vendio/catalog-backend/pkg/db/models"
	"github.com/vendio/catalog-backend/pkg/enums"
	pkgerrors "github.com/vendio/catalog-backend/pkg/errors"
)

func TestValidateGroupRules(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		rules   GroupRules
		wantErr bool
	}{
		{
			name:  "valid single optional",
			rules: GroupRules{SelectionType: enums.SelectionTypeSingle, MaxSelected: 1},
		},
		{
			name:  "valid single required",
			rules: GroupRules{SelectionType: enums.SelectionTypeSingle, IsRequired: true, MinSelected: 1, MaxSelected: 1},
		},
		{
			name:  "valid multi",
			rules: GroupRules{SelectionType: enums.SelectionTypeMulti, MinSelected: 1, MaxSelected: 3},
		},
		{
			name:    "invalid selection type",
			rules:   GroupRules{SelectionType: enums.SelectionType("RANKED"), MaxSelected: 1},
			wantErr: true,
		},
		{
			name:    "single with max above one",
			rules:   GroupRules{SelectionType: enums.SelectionTypeSingle, MaxSelected: 3},
			wantErr: true,
		},
		{
			name:    "min above max",
			rules:   GroupRules{SelectionType: enums.SelectionTypeMulti, MinSelected: 4, MaxSelected: 2},
			wantErr: true,
		},
		{
			name:    "negative min",
			rules:   GroupRules{SelectionType: enums.SelectionTypeMulti, MinSelected: -1, MaxSelected: 2},
			wantErr: true,
		},
		{
			name:    "zero max",
			rules:   GroupRules{SelectionType: enums.SelectionTypeMulti, MinSelected: 0, MaxSelected: 0},
			wantErr: true,
		},
		{
			name:    "required with zero min",
			rules:   GroupRules{SelectionType: enums.SelectionTypeMulti, IsRequired: true, MinSelected: 0, MaxSelected: 2},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateGroupRules(tc.rules)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if pkgerrors.ReasonOf(err) != pkgerrors.ReasonModifierRulesInvalid {
					t.Fatalf("expected MODIFIER_RULES_INVALID, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func buildAttachedGroup(selectionType enums.SelectionType, required bool, min, max int, options ...models.ModifierOption) AttachedGroup {
	group := &models.ModifierGroup{
		ID:            uuid.New(),
		Name:          "group",
		SelectionType: selectionType,
		IsRequired:    required,
		MinSelected:   min,
		MaxSelected:   max,
	}
	for i := range options {
		options[i].GroupID = group.ID
		if options[i].ID == uuid.Nil {
			options[i].ID = uuid.New()
		}
	}
	return AttachedGroup{Group: group, Options: options}
}

func TestValidateSelection(t *testing.T) {
	t.Parallel()

	small := models.ModifierOption{ID: uuid.New(), Name: "Small", PriceDeltaMinor: 0}
	large := models.ModifierOption{ID: uuid.New(), Name: "Large", PriceDeltaMinor: 150}
	bacon := models.ModifierOption{ID: uuid.New(), Name: "Bacon", PriceDeltaMinor: 200}
	cheese := models.ModifierOption{ID: uuid.New(), Name: "Cheese", PriceDeltaMinor: 100}
	soldOut := models.ModifierOption{ID: uuid.New(), Name: "Avocado", PriceDeltaMinor: 250, IsSoldOut: true}

	size := buildAttachedGroup(enums.SelectionTypeSingle, true, 1, 1, small, large)
	toppings := buildAttachedGroup(enums.SelectionTypeMulti, false, 0, 2, bacon, cheese, soldOut)
	attached := []AttachedGroup{size, toppings}

	t.Run("valid selection sums deltas", func(t *testing.T) {
		delta, err := ValidateSelection(attached, []uuid.UUID{large.ID, bacon.ID, cheese.ID})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if delta != 450 {
			t.Fatalf("expected delta 450, got %d", delta)
		}
	})

	t.Run("required group unselected", func(t *testing.T) {
		_, err := ValidateSelection(attached, []uuid.UUID{bacon.ID})
		if pkgerrors.ReasonOf(err) != pkgerrors.ReasonSelectionRequired {
			t.Fatalf("expected MODIFIER_SELECTION_REQUIRED, got %v", err)
		}
	})

	t.Run("single group with two picks", func(t *testing.T) {
		_, err := ValidateSelection(attached, []uuid.UUID{small.ID, large.ID})
		if pkgerrors.ReasonOf(err) != pkgerrors.ReasonSelectionSingleOnly {
			t.Fatalf("expected MODIFIER_SELECTION_SINGLE_ONLY, got %v", err)
		}
	})

	t.Run("multi group above max", func(t *testing.T) {
		extra := models.ModifierOption{ID: uuid.New(), Name: "Onion", PriceDeltaMinor: 50}
		wide := buildAttachedGroup(enums.SelectionTypeMulti, false, 0, 2, bacon, cheese, extra)
		_, err := ValidateSelection([]AttachedGroup{size, wide}, []uuid.UUID{large.ID, bacon.ID, cheese.ID, extra.ID})
		if pkgerrors.ReasonOf(err) != pkgerrors.ReasonSelectionLimitExceeded {
			t.Fatalf("expected MODIFIER_SELECTION_LIMIT_EXCEEDED, got %v", err)
		}
	})

	t.Run("sold out option", func(t *testing.T) {
		_, err := ValidateSelection(attached, []uuid.UUID{large.ID, soldOut.ID})
		if pkgerrors.ReasonOf(err) != pkgerrors.ReasonOptionSoldOut {
			t.Fatalf("expected MODIFIER_OPTION_SOLD_OUT, got %v", err)
		}
	})

	t.Run("unknown option", func(t *testing.T) {
		_, err := ValidateSelection(attached, []uuid.UUID{large.ID, uuid.New()})
		if pkgerrors.ReasonOf(err) != pkgerrors.ReasonSelectionInvalid {
			t.Fatalf("expected MODIFIER_SELECTION_INVALID, got %v", err)
		}
	})

	t.Run("duplicate option", func(t *testing.T) {
		_, err := ValidateSelection(attached, []uuid.UUID{large.ID, bacon.ID, bacon.ID})
		if pkgerrors.ReasonOf(err) != pkgerrors.ReasonSelectionInvalid {
			t.Fatalf("expected MODIFIER_SELECTION_INVALID, got %v", err)
		}
	})

	t.Run("archived group is invisible", func(t *testing.T) {
		archived := buildAttachedGroup(enums.SelectionTypeMulti, true, 1, 2, models.ModifierOption{ID: uuid.New(), Name: "Ghost"})
		archived.Group.IsArchived = true
		delta, err := ValidateSelection([]AttachedGroup{size, archived}, []uuid.UUID{large.ID})
		if err != nil {
			t.Fatalf("archived group must not constrain: %v", err)
		}
		if delta != 150 {
			t.Fatalf("expected delta 150, got %d", delta)
		}
	})

	t.Run("archived option not selectable", func(t *testing.T) {
		gone := models.ModifierOption{ID: uuid.New(), Name: "Gone", IsArchived: true}
		group := buildAttachedGroup(enums.SelectionTypeMulti, false, 0, 2, gone)
		_, err := ValidateSelection([]AttachedGroup{group}, []uuid.UUID{gone.ID})
		if pkgerrors.ReasonOf(err) != pkgerrors.ReasonSelectionInvalid {
			t.Fatalf("expected MODIFIER_SELECTION_INVALID, got %v", err)
		}
	})
}
