package reels

import (
	"time"

	"github.com/google/uuid"

	"github.com/marcosvillarreal/reelstack-backend/pkg/db/models"
	dbtypes "github.com/marcosvillarreal/reelstack-backend/pkg/db/types"
)

// ReelDTO is the transport shape for one reel.
type ReelDTO struct {
	ID          uuid.UUID   `json:"id"`
	UserID      uuid.UUID   `json:"user_id"`
	Title       string      `json:"title"`
	Description *string     `json:"description,omitempty"`
	AssetIDs    []uuid.UUID `json:"asset_ids"`
	ThemeID     *uuid.UUID  `json:"theme_id,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// CreateReelDTO holds the data required to persist a new reel.
type CreateReelDTO struct {
	Title       string      `json:"title" validate:"required,max=200"`
	Description *string     `json:"description,omitempty" validate:"omitempty,max=2000"`
	AssetIDs    []uuid.UUID `json:"asset_ids"`
	ThemeID     *uuid.UUID  `json:"theme_id,omitempty"`
}

// UpdateReelDTO carries the patchable reel fields. Pointer fields distinguish
// "absent" from zero values.
type UpdateReelDTO struct {
	Title       *string      `json:"title,omitempty" validate:"omitempty,max=200"`
	Description *string      `json:"description,omitempty" validate:"omitempty,max=2000"`
	AssetIDs    *[]uuid.UUID `json:"asset_ids,omitempty"`
	ThemeID     *uuid.UUID   `json:"theme_id,omitempty"`
}

func FromModel(r *models.Reel) *ReelDTO {
	if r == nil {
		return nil
	}
	return &ReelDTO{
		ID:          r.ID,
		UserID:      r.UserID,
		Title:       r.Title,
		Description: r.Description,
		AssetIDs:    append([]uuid.UUID(nil), r.AssetIDs...),
		ThemeID:     r.ThemeID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func FromModels(list []models.Reel) []*ReelDTO {
	out := make([]*ReelDTO, 0, len(list))
	for i := range list {
		out = append(out, FromModel(&list[i]))
	}
	return out
}

func (c CreateReelDTO) ToModel(ownerID uuid.UUID) *models.Reel {
	return &models.Reel{
		UserID:      ownerID,
		Title:       c.Title,
		Description: c.Description,
		AssetIDs:    dbtypes.UUIDArray(append([]uuid.UUID(nil), c.AssetIDs...)),
		ThemeID:     c.ThemeID,
	}
}
