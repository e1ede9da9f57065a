package batch

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

	"github.com/marcosvillarreal/reelstack-backend/internal/assets"
	"github.com/marcosvillarreal/reelstack-backend/internal/imaging"
	"github.com/marcosvillarreal/reelstack-backend/pkg/db/models"
	dbtypes "github.com/marcosvillarreal/reelstack-backend/pkg/db/types"
	"github.com/marcosvillarreal/reelstack-backend/pkg/enums"
	"github.com/marcosvillarreal/reelstack-backend/pkg/vision"
)

// Executor runs one batch operation against one asset. Callers own outcome
// reporting; the executor only returns an error describing what went wrong.
type Executor struct {
	repo      *assets.Repository
	resolver  *assets.VersionResolver
	storage   assets.ObjectStorage
	analyzer  vision.Analyzer
	processor *imaging.Processor
}

// ExecutorParams bundles the executor dependencies.
type ExecutorParams struct {
	Repo      *assets.Repository
	Resolver  *assets.VersionResolver
	Storage   assets.ObjectStorage
	Analyzer  vision.Analyzer
	Processor *imaging.Processor
}

// NewExecutor constructs a per-asset task executor.
func NewExecutor(params ExecutorParams) (*Executor, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("asset repository is required")
	}
	if params.Resolver == nil {
		return nil, fmt.Errorf("version resolver is required")
	}
	if params.Storage == nil {
		return nil, fmt.Errorf("object storage is required")
	}
	return &Executor{
		repo:      params.Repo,
		resolver:  params.Resolver,
		storage:   params.Storage,
		analyzer:  params.Analyzer,
		processor: params.Processor,
	}, nil
}

// Analyze runs vision analysis over the asset bytes and writes tags, caption
// and the analyzed flag back onto the same row. No new version is created.
func (e *Executor) Analyze(ctx context.Context, ownerID, assetID uuid.UUID) error {
	if e.analyzer == nil {
		return fmt.Errorf("vision analyzer not configured")
	}

	asset, data, err := e.fetch(ctx, ownerID, assetID)
	if err != nil {
		return err
	}

	analysis, err := e.analyzer.Analyze(ctx, data)
	if err != nil {
		return fmt.Errorf("analyze asset: %w", err)
	}

	values := map[string]any{
		"tags":     dbtypes.StringList(analysis.Tags),
		"analyzed": true,
		"status":   enums.AssetStatusCompleted,
	}
	if analysis.Caption != "" {
		values["caption"] = analysis.Caption
	}
	if err := e.repo.UpdateColumns(ctx, ownerID, asset.ID, values); err != nil {
		return fmt.Errorf("record analysis: %w", err)
	}
	return nil
}

// Filter applies the named filter to the asset bytes, uploads the result
// under a derived key and registers it as a new version. The original row is
// untouched.
func (e *Executor) Filter(ctx context.Context, ownerID, assetID uuid.UUID, kind enums.FilterKind) error {
	if e.processor == nil {
		return fmt.Errorf("image processor not configured")
	}

	asset, data, err := e.fetch(ctx, ownerID, assetID)
	if err != nil {
		return err
	}

	result, err := e.processor.Filter(data, kind)
	if err != nil {
		return fmt.Errorf("apply filter: %w", err)
	}

	key := derivedKey(e.storage.KeyFromURL(asset.StorageURL), kind)
	if err := e.storage.Upload(ctx, key, bytes.NewReader(result.Data)); err != nil {
		return fmt.Errorf("upload filtered asset: %w", err)
	}

	_, err = e.resolver.DeriveVersion(ctx, ownerID, asset.ID, assets.NewVersionInput{
		OriginalFilename: derivedFilename(asset.OriginalFilename, kind),
		MimeType:         asset.MimeType,
		FileSize:         int64(len(result.Data)),
		StorageURL:       e.storage.PublicURL(key),
		ThumbnailURL:     asset.ThumbnailURL,
		Width:            result.Width,
		Height:           result.Height,
	})
	if err != nil {
		return fmt.Errorf("register filtered version: %w", err)
	}
	return nil
}

func (e *Executor) fetch(ctx context.Context, ownerID, assetID uuid.UUID) (*models.Asset, []byte, error) {
	asset, err := e.repo.FindByID(ctx, ownerID, assetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("asset %s not found", assetID)
		}
		return nil, nil, fmt.Errorf("load asset: %w", err)
	}

	key := e.storage.KeyFromURL(asset.StorageURL)
	if key == "" {
		return nil, nil, fmt.Errorf("asset %s is not addressable", assetID)
	}
	reader, err := e.storage.Download(ctx, key)
	if err != nil {
		return nil, nil, fmt.Errorf("download asset: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, nil, fmt.Errorf("read asset: %w", err)
	}
	return asset, data, nil
}

func derivedKey(key string, kind enums.FilterKind) string {
	ext := path.Ext(key)
	return strings.TrimSuffix(key, ext) + "_" + kind.String() + ext
}

func derivedFilename(name string, kind enums.FilterKind) string {
	ext := path.Ext(name)
	return strings.TrimSuffix(name, ext) + "_" + kind.String() + ext
}
