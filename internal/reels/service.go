package reels

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbtypes "github.com/marcosvillarreal/reelstack-backend/pkg/db/types"
	pkgerrors "github.com/marcosvillarreal/reelstack-backend/pkg/errors"
)

// Service owns reel CRUD.
type Service struct {
	repo *Repository
}

// ServiceParams bundles the reel service dependencies.
type ServiceParams struct {
	Repo *Repository
}

// NewService constructs the reel service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("reel repository is required")
	}
	return &Service{repo: params.Repo}, nil
}

// List returns the owner's reels newest-first.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID, skip, limit int) ([]*ReelDTO, error) {
	rows, err := s.repo.List(ctx, ownerID, skip, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list reels")
	}
	return FromModels(rows), nil
}

// Create persists a new reel.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, dto CreateReelDTO) (*ReelDTO, error) {
	reel, err := s.repo.Create(ctx, dto.ToModel(ownerID))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create reel")
	}
	return FromModel(reel), nil
}

// Get loads one reel scoped to the owner.
func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*ReelDTO, error) {
	reel, err := s.repo.FindByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reel not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load reel")
	}
	return FromModel(reel), nil
}

// Update applies a partial patch to a reel.
func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, dto UpdateReelDTO) (*ReelDTO, error) {
	reel, err := s.repo.FindByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reel not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load reel")
	}

	if dto.Title != nil {
		reel.Title = *dto.Title
	}
	if dto.Description != nil {
		reel.Description = dto.Description
	}
	if dto.AssetIDs != nil {
		reel.AssetIDs = dbtypes.UUIDArray(append([]uuid.UUID(nil), (*dto.AssetIDs)...))
	}
	if dto.ThemeID != nil {
		reel.ThemeID = dto.ThemeID
	}
	if err := s.repo.Save(ctx, reel); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update reel")
	}
	return FromModel(reel), nil
}

// Delete removes an owner's reel.
func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "reel not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete reel")
	}
	return nil
}
