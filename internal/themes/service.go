package themes

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbtypes "github.com/marcosvillarreal/reelstack-backend/pkg/db/types"
	pkgerrors "github.com/marcosvillarreal/reelstack-backend/pkg/errors"
)

// Service owns theme CRUD. Builtin presets are readable by every account but
// only user-created themes can be changed.
type Service struct {
	repo *Repository
}

// ServiceParams bundles the theme service dependencies.
type ServiceParams struct {
	Repo *Repository
}

// NewService constructs the theme service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("theme repository is required")
	}
	return &Service{repo: params.Repo}, nil
}

// List returns builtin presets plus the owner's themes.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID) ([]*ThemeDTO, error) {
	rows, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list themes")
	}
	return FromModels(rows), nil
}

// Create persists a new user theme.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, dto CreateThemeDTO) (*ThemeDTO, error) {
	theme, err := s.repo.Create(ctx, dto.ToModel(ownerID))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create theme")
	}
	return FromModel(theme), nil
}

// Get loads one theme visible to the owner.
func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*ThemeDTO, error) {
	theme, err := s.repo.FindVisible(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "theme not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load theme")
	}
	return FromModel(theme), nil
}

// Update applies a partial patch to a user theme. Builtin presets cannot be
// edited and surface NotFound.
func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, dto UpdateThemeDTO) (*ThemeDTO, error) {
	theme, err := s.repo.FindOwned(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "theme not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load theme")
	}

	if dto.Name != nil {
		theme.Name = *dto.Name
	}
	if dto.Description != nil {
		theme.Description = dto.Description
	}
	if dto.Mood != nil {
		theme.Mood = dto.Mood
	}
	if dto.Colors != nil {
		theme.Colors = dbtypes.StringList(append([]string(nil), (*dto.Colors)...))
	}
	if err := s.repo.Save(ctx, theme); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update theme")
	}
	return FromModel(theme), nil
}

// Delete removes a user theme.
func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "theme not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete theme")
	}
	return nil
}
