package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbtypes "github.com/marcosvillarreal/reelstack-backend/pkg/db/types"
)

// Reel is an ordered collection of assets a user assembles for export.
type Reel struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	Title       string            `gorm:"column:title;not null"`
	Description *string           `gorm:"column:description"`
	AssetIDs    dbtypes.UUIDArray `gorm:"type:uuid[];column:asset_ids;not null;default:ARRAY[]::uuid[]"`
	ThemeID     *uuid.UUID        `gorm:"column:theme_id;type:uuid"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (r *Reel) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
