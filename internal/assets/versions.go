package assets

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"gorm.io/gorm"

	"github.com/marcosvillarreal/reelstack-backend/pkg/db"
	"github.com/marcosvillarreal/reelstack-backend/pkg/db/models"
	"github.com/marcosvillarreal/reelstack-backend/pkg/enums"
	pkgerrors "github.com/marcosvillarreal/reelstack-backend/pkg/errors"
)

const versionConstraint = "idx_assets_parent_version"

// VersionResolver assigns version numbers to derived assets. A per-parent
// mutex serializes in-process assignment; the (parent_id, version_number)
// unique index catches races from other processes, which are retried a
// bounded number of times.
type VersionResolver struct {
	repo *Repository

	mu      sync.Mutex
	parents map[uuid.UUID]*sync.Mutex

	maxAttempts  uint64
	retryBackoff time.Duration
}

// NewVersionResolver builds a resolver over the assets repository.
func NewVersionResolver(repo *Repository, maxAttempts int) *VersionResolver {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &VersionResolver{
		repo:         repo,
		parents:      make(map[uuid.UUID]*sync.Mutex),
		maxAttempts:  uint64(maxAttempts),
		retryBackoff: 25 * time.Millisecond,
	}
}

// DeriveVersion creates a new version of parentID for ownerID. The parent row
// is never mutated. Returns CodeNotFound when the parent does not exist or
// belongs to another owner, CodeConflict when version assignment keeps
// colliding after retries.
func (v *VersionResolver) DeriveVersion(ctx context.Context, ownerID, parentID uuid.UUID, input NewVersionInput) (*models.Asset, error) {
	parent, err := v.repo.FindByID(ctx, ownerID, parentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "parent asset not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load parent asset")
	}

	lock := v.parentLock(parent.ID)
	lock.Lock()
	defer lock.Unlock()

	status := input.Status
	if status == "" {
		status = enums.AssetStatusCompleted
	}

	var created *models.Asset
	backoff := retry.WithMaxRetries(v.maxAttempts-1, retry.NewConstant(v.retryBackoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		maxVersion, err := v.repo.MaxSiblingVersion(ctx, parent.ID)
		if err != nil {
			return err
		}

		asset := &models.Asset{
			UserID:           ownerID,
			OriginalFilename: input.OriginalFilename,
			MimeType:         input.MimeType,
			FileSize:         input.FileSize,
			StorageURL:       input.StorageURL,
			ThumbnailURL:     input.ThumbnailURL,
			Width:            input.Width,
			Height:           input.Height,
			X:                parent.X,
			Y:                parent.Y,
			Scale:            parent.Scale,
			Rotation:         parent.Rotation,
			Status:           status,
			ParentID:         &parent.ID,
			VersionNumber:    maxVersion + 1,
			IsOriginal:       false,
		}
		if _, err := v.repo.Create(ctx, asset); err != nil {
			if db.IsUniqueViolation(err, versionConstraint) {
				return retry.RetryableError(err)
			}
			return err
		}
		created = asset
		return nil
	})
	if err != nil {
		if db.IsUniqueViolation(err, versionConstraint) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "version number contention")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create version")
	}
	return created, nil
}

func (v *VersionResolver) parentLock(parentID uuid.UUID) *sync.Mutex {
	v.mu.Lock()
	defer v.mu.Unlock()
	if lock, ok := v.parents[parentID]; ok {
		return lock
	}
	lock := &sync.Mutex{}
	v.parents[parentID] = lock
	return lock
}
