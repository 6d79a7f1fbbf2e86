package modifiers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendio/catalog-backend/pkg/config"
	"github.com/vendio/catalog-backend/pkg/db"
	"github.com/vendio/catalog-backend/pkg/db/models"
	"github.com/vendio/catalog-backend/pkg/enums"
	pkgerrors "github.com/vendio/catalog-backend/pkg/errors"
)

// Service exposes modifier group and option management plus the shared
// availability propagation.
type Service interface {
	CreateGroup(ctx context.Context, businessID uuid.UUID, input CreateGroupInput) (*GroupDTO, error)
	UpdateGroup(ctx context.Context, businessID, groupID uuid.UUID, input UpdateGroupInput) (*GroupDTO, error)
	ArchiveGroup(ctx context.Context, businessID, groupID uuid.UUID) error
	GetGroup(ctx context.Context, businessID, groupID uuid.UUID) (*GroupDTO, error)
	ListGroups(ctx context.Context, businessID uuid.UUID) ([]GroupDTO, error)

	AddOption(ctx context.Context, businessID, groupID uuid.UUID, input OptionInput) (*GroupDTO, error)
	UpdateOption(ctx context.Context, businessID, optionID uuid.UUID, input UpdateOptionInput) (*GroupDTO, error)
	ArchiveOption(ctx context.Context, businessID, optionID uuid.UUID) error

	PreviewSharedAvailability(ctx context.Context, businessID, optionID uuid.UUID) (*SharedAvailabilityPreview, error)
	ApplySharedAvailability(ctx context.Context, businessID uuid.UUID, input ApplySharedAvailabilityInput) (int64, error)
}

// CreateGroupInput holds the payload for a new modifier group.
type CreateGroupInput struct {
	Name          string
	SelectionType string
	IsRequired    bool
	MinSelected   int
	MaxSelected   int
	SortOrder     int
	Options       []OptionInput
}

// UpdateGroupInput holds the optional mutation values for a group.
type UpdateGroupInput struct {
	Name        *string
	IsRequired  *bool
	MinSelected *int
	MaxSelected *int
	SortOrder   *int
}

// OptionInput holds the payload for a new option.
type OptionInput struct {
	Name            string
	PriceDeltaMinor int64
	IsSoldOut       bool
	SortOrder       int
}

// UpdateOptionInput holds the optional mutation values for an option.
type UpdateOptionInput struct {
	Name            *string
	PriceDeltaMinor *int64
	IsSoldOut       *bool
	SortOrder       *int
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	cfg      config.CatalogConfig
}

// NewService constructs the modifier service.
func NewService(repo *Repository, dbClient *db.Client, cfg config.CatalogConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("modifier repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient, cfg: cfg}, nil
}

// CreateGroup validates the rule set and persists the group with its options
// in one transaction.
func (s *service) CreateGroup(ctx context.Context, businessID uuid.UUID, input CreateGroupInput) (*GroupDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	selectionType, err := parseSelectionType(input.SelectionType)
	if err != nil {
		return nil, err
	}
	if err := ValidateGroupRules(GroupRules{
		SelectionType: selectionType,
		IsRequired:    input.IsRequired,
		MinSelected:   input.MinSelected,
		MaxSelected:   input.MaxSelected,
	}); err != nil {
		return nil, err
	}
	if len(input.Options) > s.cfg.ModifierOptionCap {
		return nil, optionLimit(s.cfg.ModifierOptionCap)
	}
	for _, option := range input.Options {
		if strings.TrimSpace(option.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "option name is required")
		}
	}

	count, err := s.repo.CountGroups(ctx, businessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count groups")
	}
	if count >= int64(s.cfg.ModifierGroupCap) {
		return nil, pkgerrors.NewReason(
			pkgerrors.CodeConflict,
			pkgerrors.ReasonGroupLimitReached,
			fmt.Sprintf("business is limited to %d modifier groups", s.cfg.ModifierGroupCap),
		)
	}

	group := &models.ModifierGroup{
		ID:            uuid.New(),
		BusinessID:    businessID,
		Name:          name,
		SelectionType: selectionType,
		IsRequired:    input.IsRequired,
		MinSelected:   input.MinSelected,
		MaxSelected:   input.MaxSelected,
		SortOrder:     input.SortOrder,
	}
	for _, option := range input.Options {
		group.Options = append(group.Options, models.ModifierOption{
			ID:              uuid.New(),
			GroupID:         group.ID,
			Name:            strings.TrimSpace(option.Name),
			PriceDeltaMinor: option.PriceDeltaMinor,
			IsSoldOut:       option.IsSoldOut,
			SortOrder:       option.SortOrder,
		})
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).CreateGroup(ctx, group)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create modifier group")
	}

	return s.GetGroup(ctx, businessID, group.ID)
}

// UpdateGroup applies a partial patch and re-validates the resulting rules.
// Selection type is fixed at creation.
func (s *service) UpdateGroup(ctx context.Context, businessID, groupID uuid.UUID, input UpdateGroupInput) (*GroupDTO, error) {
	group, err := s.loadGroup(ctx, businessID, groupID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
		}
		group.Name = name
	}
	if input.IsRequired != nil {
		group.IsRequired = *input.IsRequired
	}
	if input.MinSelected != nil {
		group.MinSelected = *input.MinSelected
	}
	if input.MaxSelected != nil {
		group.MaxSelected = *input.MaxSelected
	}
	if input.SortOrder != nil {
		group.SortOrder = *input.SortOrder
	}

	if err := ValidateGroupRules(GroupRules{
		SelectionType: group.SelectionType,
		IsRequired:    group.IsRequired,
		MinSelected:   group.MinSelected,
		MaxSelected:   group.MaxSelected,
	}); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateGroup(ctx, group); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update modifier group")
	}
	return s.GetGroup(ctx, businessID, groupID)
}

// ArchiveGroup retires a group; modifier definitions are never deleted.
func (s *service) ArchiveGroup(ctx context.Context, businessID, groupID uuid.UUID) error {
	group, err := s.loadGroup(ctx, businessID, groupID)
	if err != nil {
		return err
	}
	group.IsArchived = true
	if err := s.repo.UpdateGroup(ctx, group); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: archive modifier group")
	}
	return nil
}

// GetGroup returns one group with its live options.
func (s *service) GetGroup(ctx context.Context, businessID, groupID uuid.UUID) (*GroupDTO, error) {
	group, err := s.repo.FindGroup(ctx, businessID, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, groupNotFound(groupID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load modifier group")
	}
	dto := NewGroupDTO(group)
	return &dto, nil
}

// ListGroups returns the live groups of a business.
func (s *service) ListGroups(ctx context.Context, businessID uuid.UUID) ([]GroupDTO, error) {
	groups, err := s.repo.ListGroups(ctx, businessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list modifier groups")
	}
	out := make([]GroupDTO, 0, len(groups))
	for i := range groups {
		out = append(out, NewGroupDTO(&groups[i]))
	}
	return out, nil
}

// AddOption appends one option to a live group, enforcing the per-group cap.
func (s *service) AddOption(ctx context.Context, businessID, groupID uuid.UUID, input OptionInput) (*GroupDTO, error) {
	group, err := s.loadGroup(ctx, businessID, groupID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "option name is required")
	}

	count, err := s.repo.CountOptions(ctx, group.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count options")
	}
	if count >= int64(s.cfg.ModifierOptionCap) {
		return nil, optionLimit(s.cfg.ModifierOptionCap)
	}

	option := &models.ModifierOption{
		ID:              uuid.New(),
		GroupID:         group.ID,
		Name:            name,
		PriceDeltaMinor: input.PriceDeltaMinor,
		IsSoldOut:       input.IsSoldOut,
		SortOrder:       input.SortOrder,
	}
	if err := s.repo.CreateOption(ctx, option); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create option")
	}
	return s.GetGroup(ctx, businessID, groupID)
}

// UpdateOption applies a partial patch to one option.
func (s *service) UpdateOption(ctx context.Context, businessID, optionID uuid.UUID, input UpdateOptionInput) (*GroupDTO, error) {
	option, group, err := s.loadOption(ctx, businessID, optionID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "option name is required")
		}
		option.Name = name
	}
	if input.PriceDeltaMinor != nil {
		option.PriceDeltaMinor = *input.PriceDeltaMinor
	}
	if input.IsSoldOut != nil {
		option.IsSoldOut = *input.IsSoldOut
	}
	if input.SortOrder != nil {
		option.SortOrder = *input.SortOrder
	}

	if err := s.repo.UpdateOption(ctx, option); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update option")
	}
	return s.GetGroup(ctx, businessID, group.ID)
}

// ArchiveOption retires a single option.
func (s *service) ArchiveOption(ctx context.Context, businessID, optionID uuid.UUID) error {
	option, _, err := s.loadOption(ctx, businessID, optionID)
	if err != nil {
		return err
	}
	option.IsArchived = true
	if err := s.repo.UpdateOption(ctx, option); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: archive option")
	}
	return nil
}

func (s *service) loadGroup(ctx context.Context, businessID, groupID uuid.UUID) (*models.ModifierGroup, error) {
	group, err := s.repo.FindGroup(ctx, businessID, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, groupNotFound(groupID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load modifier group")
	}
	if group.IsArchived {
		return nil, groupNotFound(groupID)
	}
	return group, nil
}

func (s *service) loadOption(ctx context.Context, businessID, optionID uuid.UUID) (*models.ModifierOption, *models.ModifierGroup, error) {
	option, group, err := s.repo.FindOption(ctx, businessID, optionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, optionNotFound(optionID)
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load option")
	}
	if option.IsArchived || group.IsArchived {
		return nil, nil, optionNotFound(optionID)
	}
	return option, group, nil
}

func parseSelectionType(raw string) (enums.SelectionType, error) {
	selectionType, err := enums.ParseSelectionType(strings.TrimSpace(raw))
	if err != nil {
		return "", pkgerrors.NewReason(pkgerrors.CodeValidation, pkgerrors.ReasonModifierRulesInvalid, err.Error())
	}
	return selectionType, nil
}

func optionLimit(cap int) *pkgerrors.Error {
	return pkgerrors.NewReason(
		pkgerrors.CodeConflict,
		pkgerrors.ReasonOptionLimitReached,
		fmt.Sprintf("a modifier group is limited to %d options", cap),
	)
}

func groupNotFound(id uuid.UUID) *pkgerrors.Error {
	return pkgerrors.NewReason(
		pkgerrors.CodeNotFound,
		pkgerrors.ReasonModifierGroupNotFound,
		"modifier group not found",
	).WithDetails(map[string]string{"group_id": id.String()})
}

func optionNotFound(id uuid.UUID) *pkgerrors.Error {
	return pkgerrors.NewReason(
		pkgerrors.CodeNotFound,
		pkgerrors.ReasonModifierOptionNotFound,
		"modifier option not found",
	).WithDetails(map[string]string{"option_id": id.String()})
}
