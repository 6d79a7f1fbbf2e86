package modifiers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vendio/catalog-backend/pkg/config"
	"github.com/vendio/catalog-backend/pkg/db"
	"github.com/vendio/catalog-backend/pkg/db/models"
	pkgerrors "github.com/vendio/catalog-backend/pkg/errors"
)

func setupModifierTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:modifiers_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	groups := `
CREATE TABLE IF NOT EXISTS modifier_groups (
  id TEXT PRIMARY KEY,
  business_id TEXT NOT NULL,
  name TEXT NOT NULL,
  selection_type TEXT NOT NULL,
  is_required INTEGER NOT NULL DEFAULT 0,
  min_selected INTEGER NOT NULL DEFAULT 0,
  max_selected INTEGER NOT NULL DEFAULT 1,
  sort_order INTEGER NOT NULL DEFAULT 0,
  is_archived INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	options := `
CREATE TABLE IF NOT EXISTS modifier_options (
  id TEXT PRIMARY KEY,
  group_id TEXT NOT NULL,
  name TEXT NOT NULL,
  price_delta_minor INTEGER NOT NULL DEFAULT 0,
  is_sold_out INTEGER NOT NULL DEFAULT 0,
  is_archived INTEGER NOT NULL DEFAULT 0,
  sort_order INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(groups).Error)
	require.NoError(t, conn.Exec(options).Error)
	return conn
}

func newModifierService(t *testing.T, conn *gorm.DB, cfg config.CatalogConfig) Service {
	t.Helper()

	svc, err := NewService(NewRepository(conn), db.NewWithConn(conn), cfg)
	require.NoError(t, err)
	return svc
}

func modifierTestConfig() config.CatalogConfig {
	return config.CatalogConfig{
		ModifierGroupCap:  200,
		ModifierOptionCap: 100,
	}
}

func TestCreateGroupWithOptions(t *testing.T) {
	t.Parallel()

	conn := setupModifierTestDB(t)
	svc := newModifierService(t, conn, modifierTestConfig())
	businessID := uuid.New()

	group, err := svc.CreateGroup(context.Background(), businessID, CreateGroupInput{
		Name:          "  Size ",
		SelectionType: "SINGLE",
		IsRequired:    true,
		MinSelected:   1,
		MaxSelected:   1,
		Options: []OptionInput{
			{Name: "Small", SortOrder: 0},
			{Name: "Large", PriceDeltaMinor: 150, SortOrder: 1},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "Size", group.Name)
	require.Len(t, group.Options, 2)
	require.Equal(t, int64(150), group.Options[1].PriceDeltaMinor)
	require.Equal(t, "1.50", group.Options[1].PriceDeltaDisplay)
}

func TestCreateGroupRejectsInvalidRules(t *testing.T) {
	t.Parallel()

	conn := setupModifierTestDB(t)
	svc := newModifierService(t, conn, modifierTestConfig())
	businessID := uuid.New()

	_, err := svc.CreateGroup(context.Background(), businessID, CreateGroupInput{
		Name:          "Size",
		SelectionType: "SINGLE",
		MinSelected:   0,
		MaxSelected:   3,
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.ReasonModifierRulesInvalid, pkgerrors.ReasonOf(err))

	_, err = svc.CreateGroup(context.Background(), businessID, CreateGroupInput{
		Name:          "Size",
		SelectionType: "RANKED",
		MaxSelected:   1,
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.ReasonModifierRulesInvalid, pkgerrors.ReasonOf(err))
}

func TestGroupCap(t *testing.T) {
	t.Parallel()

	conn := setupModifierTestDB(t)
	cfg := modifierTestConfig()
	cfg.ModifierGroupCap = 1
	svc := newModifierService(t, conn, cfg)
	businessID := uuid.New()

	_, err := svc.CreateGroup(context.Background(), businessID, CreateGroupInput{
		Name:          "Size",
		SelectionType: "SINGLE",
		MaxSelected:   1,
	})
	require.NoError(t, err)

	_, err = svc.CreateGroup(context.Background(), businessID, CreateGroupInput{
		Name:          "Milk",
		SelectionType: "SINGLE",
		MaxSelected:   1,
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.ReasonGroupLimitReached, pkgerrors.ReasonOf(err))
}

func TestOptionCap(t *testing.T) {
	t.Parallel()

	conn := setupModifierTestDB(t)
	cfg := modifierTestConfig()
	cfg.ModifierOptionCap = 2
	svc := newModifierService(t, conn, cfg)
	businessID := uuid.New()

	group, err := svc.CreateGroup(context.Background(), businessID, CreateGroupInput{
		Name:          "Toppings",
		SelectionType: "MULTI",
		MaxSelected:   2,
		Options: []OptionInput{
			{Name: "Bacon"},
			{Name: "Cheese"},
		},
	})
	require.NoError(t, err)

	_, err = svc.AddOption(context.Background(), businessID, group.ID, OptionInput{Name: "Onion"})
	require.Error(t, err)
	require.Equal(t, pkgerrors.ReasonOptionLimitReached, pkgerrors.ReasonOf(err))
}

func TestUpdateGroupRevalidatesRules(t *testing.T) {
	t.Parallel()

	conn := setupModifierTestDB(t)
	svc := newModifierService(t, conn, modifierTestConfig())
	businessID := uuid.New()

	group, err := svc.CreateGroup(context.Background(), businessID, CreateGroupInput{
		Name:          "Toppings",
		SelectionType: "MULTI",
		MinSelected:   0,
		MaxSelected:   3,
	})
	require.NoError(t, err)

	three := 3
	one := 1
	_, err = svc.UpdateGroup(context.Background(), businessID, group.ID, UpdateGroupInput{
		MinSelected: &three,
		MaxSelected: &one,
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.ReasonModifierRulesInvalid, pkgerrors.ReasonOf(err))

	two := 2
	updated, err := svc.UpdateGroup(context.Background(), businessID, group.ID, UpdateGroupInput{
		MaxSelected: &two,
	})
	require.NoError(t, err)
	require.Equal(t, 2, updated.MaxSelected)
}

func TestArchiveGroupHidesIt(t *testing.T) {
	t.Parallel()

	conn := setupModifierTestDB(t)
	svc := newModifierService(t, conn, modifierTestConfig())
	businessID := uuid.New()

	group, err := svc.CreateGroup(context.Background(), businessID, CreateGroupInput{
		Name:          "Size",
		SelectionType: "SINGLE",
		MaxSelected:   1,
	})
	require.NoError(t, err)

	require.NoError(t, svc.ArchiveGroup(context.Background(), businessID, group.ID))

	// Archived groups behave as missing on every path.
	_, err = svc.UpdateGroup(context.Background(), businessID, group.ID, UpdateGroupInput{})
	require.Error(t, err)
	require.Equal(t, pkgerrors.ReasonModifierGroupNotFound, pkgerrors.ReasonOf(err))

	groups, err := svc.ListGroups(context.Background(), businessID)
	require.NoError(t, err)
	require.Empty(t, groups)

	// The row itself survives for historical references.
	var stored models.ModifierGroup
	require.NoError(t, conn.First(&stored, "id = ?", group.ID).Error)
	require.True(t, stored.IsArchived)
}

func TestArchiveOption(t *testing.T) {
	t.Parallel()

	conn := setupModifierTestDB(t)
	svc := newModifierService(t, conn, modifierTestConfig())
	businessID := uuid.New()

	group, err := svc.CreateGroup(context.Background(), businessID, CreateGroupInput{
		Name:          "Size",
		SelectionType: "SINGLE",
		MaxSelected:   1,
		Options:       []OptionInput{{Name: "Small"}, {Name: "Large"}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.ArchiveOption(context.Background(), businessID, group.Options[0].ID))

	got, err := svc.GetGroup(context.Background(), businessID, group.ID)
	require.NoError(t, err)
	require.Len(t, got.Options, 1)
	require.Equal(t, "Large", got.Options[0].Name)

	err = svc.ArchiveOption(context.Background(), businessID, group.Options[0].ID)
	require.Error(t, err)
	require.Equal(t, pkgerrors.ReasonModifierOptionNotFound, pkgerrors.ReasonOf(err))
}

func TestSharedAvailability(t *testing.T) {
	t.Parallel()

	conn := setupModifierTestDB(t)
	svc := newModifierService(t, conn, modifierTestConfig())
	businessID := uuid.New()

	sizes, err := svc.CreateGroup(context.Background(), businessID, CreateGroupInput{
		Name:          "Drink Size",
		SelectionType: "SINGLE",
		MaxSelected:   1,
		Options:       []OptionInput{{Name: "Large", SortOrder: 0}, {Name: "Small", SortOrder: 1}},
	})
	require.NoError(t, err)
	cups, err := svc.CreateGroup(context.Background(), businessID, CreateGroupInput{
		Name:          "Cup Size",
		SelectionType: "SINGLE",
		MaxSelected:   1,
		Options:       []OptionInput{{Name: " large "}},
	})
	require.NoError(t, err)
	other, err := svc.CreateGroup(context.Background(), uuid.New(), CreateGroupInput{
		Name:          "Foreign",
		SelectionType: "SINGLE",
		MaxSelected:   1,
		Options:       []OptionInput{{Name: "Large"}},
	})
	require.NoError(t, err)

	sourceID := sizes.Options[0].ID
	preview, err := svc.PreviewSharedAvailability(context.Background(), businessID, sourceID)
	require.NoError(t, err)
	require.Equal(t, "large", preview.NormalizedName)
	require.Len(t, preview.Groups, 2)

	// Selecting a group outside the preview is rejected.
	_, err = svc.ApplySharedAvailability(context.Background(), businessID, ApplySharedAvailabilityInput{
		OptionID: sourceID,
		GroupIDs: []uuid.UUID{other.ID},
		SoldOut:  true,
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.ReasonModifierGroupInvalid, pkgerrors.ReasonOf(err))

	affected, err := svc.ApplySharedAvailability(context.Background(), businessID, ApplySharedAvailabilityInput{
		OptionID: sourceID,
		GroupIDs: []uuid.UUID{sizes.ID, cups.ID},
		SoldOut:  true,
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), affected)

	got, err := svc.GetGroup(context.Background(), businessID, sizes.ID)
	require.NoError(t, err)
	for _, option := range got.Options {
		if option.Name == "Large" {
			require.True(t, option.IsSoldOut)
		} else {
			require.False(t, option.IsSoldOut)
		}
	}

	// The same-named option in the untouched business is unaffected.
	var stored models.ModifierOption
	require.NoError(t, conn.First(&stored, "id = ?", other.Options[0].ID).Error)
	require.False(t, stored.IsSoldOut)
}
