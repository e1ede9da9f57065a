package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marcosvillarreal/reelstack-backend/internal/imaging"
	dbtypes "github.com/marcosvillarreal/reelstack-backend/pkg/db/types"
	pkgerrors "github.com/marcosvillarreal/reelstack-backend/pkg/errors"
)

// ObjectStorage is the narrow storage surface the asset service needs.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, body io.Reader) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
	KeyFromURL(url string) string
}

// Service owns asset CRUD and the per-asset thumbnail pipeline.
type Service struct {
	repo      *Repository
	resolver  *VersionResolver
	storage   ObjectStorage
	processor *imaging.Processor
}

// ServiceParams bundles the asset service dependencies.
type ServiceParams struct {
	Repo      *Repository
	Resolver  *VersionResolver
	Storage   ObjectStorage
	Processor *imaging.Processor
}

// NewService constructs the asset service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("asset repository is required")
	}
	if params.Resolver == nil {
		return nil, fmt.Errorf("version resolver is required")
	}
	return &Service{
		repo:      params.Repo,
		resolver:  params.Resolver,
		storage:   params.Storage,
		processor: params.Processor,
	}, nil
}

// Resolver exposes the version resolver for collaborators.
func (s *Service) Resolver() *VersionResolver {
	return s.resolver
}

// Repo exposes the repository for collaborators.
func (s *Service) Repo() *Repository {
	return s.repo
}

// List returns the owner's assets newest-first.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID, skip, limit int) ([]*AssetDTO, error) {
	rows, err := s.repo.List(ctx, ownerID, skip, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list assets")
	}
	return FromModels(rows), nil
}

// Create persists a new root asset.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, dto CreateAssetDTO) (*AssetDTO, error) {
	asset, err := s.repo.Create(ctx, dto.ToModel(ownerID))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create asset")
	}
	return FromModel(asset), nil
}

// Get loads one asset scoped to the owner.
func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*AssetDTO, error) {
	asset, err := s.repo.FindByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "asset not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load asset")
	}
	return FromModel(asset), nil
}

// Update applies a partial patch of annotation and placement fields.
func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, dto UpdateAssetDTO) (*AssetDTO, error) {
	if _, err := s.repo.FindByID(ctx, ownerID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "asset not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load asset")
	}

	values := map[string]any{}
	if dto.X != nil {
		values["x"] = *dto.X
	}
	if dto.Y != nil {
		values["y"] = *dto.Y
	}
	if dto.Scale != nil {
		values["scale"] = *dto.Scale
	}
	if dto.Rotation != nil {
		values["rotation"] = *dto.Rotation
	}
	if dto.Caption != nil {
		values["caption"] = *dto.Caption
	}
	if dto.LocalTags != nil {
		values["local_tags"] = dbtypes.StringList(*dto.LocalTags)
	}
	if len(values) > 0 {
		if err := s.repo.UpdateColumns(ctx, ownerID, id, values); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update asset")
		}
	}

	refreshed, err := s.repo.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload asset")
	}
	return FromModel(refreshed), nil
}

// Delete removes the asset, promoting its direct children to roots.
func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := s.repo.DeletePromotingChildren(ctx, ownerID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "asset not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete asset")
	}
	return nil
}

// ListVersions returns the asset followed by its direct versions.
func (s *Service) ListVersions(ctx context.Context, ownerID, id uuid.UUID) ([]*AssetDTO, error) {
	asset, err := s.repo.FindByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "asset not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load asset")
	}
	children, err := s.repo.ListChildren(ctx, ownerID, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list versions")
	}
	out := make([]*AssetDTO, 0, len(children)+1)
	out = append(out, FromModel(asset))
	out = append(out, FromModels(children)...)
	return out, nil
}

// GenerateThumbnail downloads the asset bytes, renders a square thumbnail,
// uploads it, and records the thumbnail URL on the same row.
func (s *Service) GenerateThumbnail(ctx context.Context, ownerID, id uuid.UUID) (*AssetDTO, error) {
	if s.storage == nil || s.processor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "thumbnail pipeline not configured")
	}

	asset, err := s.repo.FindByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "asset not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load asset")
	}

	key := s.storage.KeyFromURL(asset.StorageURL)
	if key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "asset object is not addressable")
	}

	reader, err := s.storage.Download(ctx, key)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "download asset")
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read asset")
	}

	thumb, err := s.processor.Thumbnail(data)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render thumbnail")
	}

	thumbKey := ThumbnailKey(key)
	if err := s.storage.Upload(ctx, thumbKey, bytes.NewReader(thumb.Data)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload thumbnail")
	}

	url := s.storage.PublicURL(thumbKey)
	if err := s.repo.UpdateColumns(ctx, ownerID, id, map[string]any{"thumbnail_url": url}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record thumbnail url")
	}

	asset.ThumbnailURL = &url
	return FromModel(asset), nil
}

// ThumbnailKey derives the object key for an asset's thumbnail.
func ThumbnailKey(key string) string {
	ext := path.Ext(key)
	return strings.TrimSuffix(key, ext) + "_thumb.jpg"
}
