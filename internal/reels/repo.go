package reels

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marcosvillarreal/reelstack-backend/pkg/db/models"
)

// Repository exposes reel persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a reels repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the reel and returns the persisted row.
func (r *Repository) Create(ctx context.Context, reel *models.Reel) (*models.Reel, error) {
	if err := r.db.WithContext(ctx).Create(reel).Error; err != nil {
		return nil, err
	}
	return reel, nil
}

// FindByID loads a reel scoped to its owner.
func (r *Repository) FindByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Reel, error) {
	var reel models.Reel
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&reel).Error
	if err != nil {
		return nil, err
	}
	return &reel, nil
}

// List returns the owner's reels newest-first with skip/limit paging.
func (r *Repository) List(ctx context.Context, ownerID uuid.UUID, skip, limit int) ([]models.Reel, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []models.Reel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Offset(skip).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// Save persists all fields of an already-loaded reel.
func (r *Repository) Save(ctx context.Context, reel *models.Reel) error {
	return r.db.WithContext(ctx).Save(reel).Error
}

// Delete removes an owner's reel. Returns gorm.ErrRecordNotFound when the
// reel does not exist or belongs to another owner.
func (r *Repository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&models.Reel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
