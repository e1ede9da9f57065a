package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbtypes "github.com/marcosvillarreal/reelstack-backend/pkg/db/types"
	"github.com/marcosvillarreal/reelstack-backend/pkg/enums"
)

// Asset is one image on a user's canvas. Assets form version trees: an
// original is a root (ParentID nil, IsOriginal true) and every derived
// version points at its parent with a version number unique among siblings.
type Asset struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`

	OriginalFilename string `gorm:"column:original_filename;not null"`
	MimeType         string `gorm:"column:mime_type;not null"`
	FileSize         int64  `gorm:"column:file_size;not null;default:0"`

	StorageURL   string  `gorm:"column:storage_url;not null"`
	ThumbnailURL *string `gorm:"column:thumbnail_url"`

	Width  int `gorm:"column:width;not null;default:0"`
	Height int `gorm:"column:height;not null;default:0"`

	// Canvas placement.
	X        float64 `gorm:"column:x;not null;default:0"`
	Y        float64 `gorm:"column:y;not null;default:0"`
	Scale    float64 `gorm:"column:scale;not null;default:1"`
	Rotation float64 `gorm:"column:rotation;not null;default:0"`

	Tags      dbtypes.StringList `gorm:"column:tags;type:jsonb;not null;default:'[]'"`
	LocalTags dbtypes.StringList `gorm:"column:local_tags;type:jsonb;not null;default:'[]'"`
	Caption   *string            `gorm:"column:caption"`
	Analyzed  bool               `gorm:"column:analyzed;not null;default:false"`

	Status enums.AssetStatus `gorm:"column:status;type:text;not null;default:'completed'"`

	ParentID      *uuid.UUID `gorm:"column:parent_id;type:uuid;uniqueIndex:idx_assets_parent_version"`
	VersionNumber int        `gorm:"column:version_number;not null;default:1;uniqueIndex:idx_assets_parent_version"`
	// No gorm default tag: derived versions write false explicitly, and a
	// default would make gorm skip the zero value on insert.
	IsOriginal bool `gorm:"column:is_original;not null"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (a *Asset) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
