package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbtypes "github.com/marcosvillarreal/reelstack-backend/pkg/db/types"
)

// Theme is a reusable visual preset applied to reels.
type Theme struct {
	ID          uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      *uuid.UUID         `gorm:"column:user_id;type:uuid;index"`
	Name        string             `gorm:"column:name;not null"`
	Description *string            `gorm:"column:description"`
	Mood        *string            `gorm:"column:mood"`
	Colors      dbtypes.StringList `gorm:"column:colors;type:jsonb;not null;default:'[]'"`
	IsBuiltin   bool               `gorm:"column:is_builtin;not null;default:false"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (t *Theme) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
