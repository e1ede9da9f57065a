package themes

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marcosvillarreal/reelstack-backend/pkg/db/models"
)

// Repository exposes theme persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a themes repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the theme and returns the persisted row.
func (r *Repository) Create(ctx context.Context, theme *models.Theme) (*models.Theme, error) {
	if err := r.db.WithContext(ctx).Create(theme).Error; err != nil {
		return nil, err
	}
	return theme, nil
}

// FindVisible loads a theme the owner can see: their own or a builtin preset.
func (r *Repository) FindVisible(ctx context.Context, ownerID, id uuid.UUID) (*models.Theme, error) {
	var theme models.Theme
	err := r.db.WithContext(ctx).
		Where("id = ? AND (user_id = ? OR is_builtin = ?)", id, ownerID, true).
		First(&theme).Error
	if err != nil {
		return nil, err
	}
	return &theme, nil
}

// FindOwned loads a theme only when the owner created it. Builtin presets are
// never owned.
func (r *Repository) FindOwned(ctx context.Context, ownerID, id uuid.UUID) (*models.Theme, error) {
	var theme models.Theme
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND is_builtin = ?", id, ownerID, false).
		First(&theme).Error
	if err != nil {
		return nil, err
	}
	return &theme, nil
}

// List returns builtin presets followed by the owner's themes, each group
// newest-first.
func (r *Repository) List(ctx context.Context, ownerID uuid.UUID) ([]models.Theme, error) {
	var out []models.Theme
	err := r.db.WithContext(ctx).
		Where("user_id = ? OR is_builtin = ?", ownerID, true).
		Order("is_builtin DESC, created_at DESC").
		Find(&out).Error
	return out, err
}

// Save persists all fields of an already-loaded theme.
func (r *Repository) Save(ctx context.Context, theme *models.Theme) error {
	return r.db.WithContext(ctx).Save(theme).Error
}

// Delete removes an owner's theme. Builtin presets and foreign themes report
// gorm.ErrRecordNotFound.
func (r *Repository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND is_builtin = ?", id, ownerID, false).
		Delete(&models.Theme{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
