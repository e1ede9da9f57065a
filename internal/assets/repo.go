package assets

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marcosvillarreal/reelstack-backend/pkg/db/models"
)

// Repository exposes asset persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an assets repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the asset and returns the persisted row.
func (r *Repository) Create(ctx context.Context, asset *models.Asset) (*models.Asset, error) {
	if err := r.db.WithContext(ctx).Create(asset).Error; err != nil {
		return nil, err
	}
	return asset, nil
}

// FindByID loads an asset scoped to its owner.
func (r *Repository) FindByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Asset, error) {
	var asset models.Asset
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&asset).Error
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// List returns the owner's assets newest-first with skip/limit paging.
func (r *Repository) List(ctx context.Context, ownerID uuid.UUID, skip, limit int) ([]models.Asset, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []models.Asset
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Offset(skip).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListChildren returns the direct versions of a parent ordered by version number.
func (r *Repository) ListChildren(ctx context.Context, ownerID, parentID uuid.UUID) ([]models.Asset, error) {
	var out []models.Asset
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND parent_id = ?", ownerID, parentID).
		Order("version_number ASC").
		Find(&out).Error
	return out, err
}

// MaxSiblingVersion returns the highest version number among a parent's
// children, or 1 when it has none, so the first derived version is 2.
func (r *Repository) MaxSiblingVersion(ctx context.Context, parentID uuid.UUID) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).
		Model(&models.Asset{}).
		Where("parent_id = ?", parentID).
		Select("MAX(version_number)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 1, nil
	}
	return *max, nil
}

// Save persists all fields of an already-loaded asset.
func (r *Repository) Save(ctx context.Context, asset *models.Asset) error {
	return r.db.WithContext(ctx).Save(asset).Error
}

// UpdateColumns applies a partial column update to an owner's asset.
func (r *Repository) UpdateColumns(ctx context.Context, ownerID, id uuid.UUID, values map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Asset{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Updates(values).Error
}

// DeletePromotingChildren removes the asset and promotes its direct children to
// roots in the same transaction: parent_id cleared, is_original set.
func (r *Repository) DeletePromotingChildren(ctx context.Context, ownerID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var asset models.Asset
		if err := tx.Where("id = ? AND user_id = ?", id, ownerID).First(&asset).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Asset{}).
			Where("parent_id = ?", id).
			Updates(map[string]any{"parent_id": nil, "is_original": true}).Error; err != nil {
			return err
		}
		return tx.Delete(&asset).Error
	})
}
