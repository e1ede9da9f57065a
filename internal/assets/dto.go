package assets

import (
	"time"

	"github.com/google/uuid"

	"github.com/marcosvillarreal/reelstack-backend/pkg/db/models"
	"github.com/marcosvillarreal/reelstack-backend/pkg/enums"
)

// AssetDTO is the transport shape for one asset.
type AssetDTO struct {
	ID               uuid.UUID         `json:"id"`
	UserID           uuid.UUID         `json:"user_id"`
	OriginalFilename string            `json:"original_filename"`
	MimeType         string            `json:"mime_type"`
	FileSize         int64             `json:"file_size"`
	StorageURL       string            `json:"storage_url"`
	ThumbnailURL     *string           `json:"thumbnail_url,omitempty"`
	Width            int               `json:"width"`
	Height           int               `json:"height"`
	X                float64           `json:"x"`
	Y                float64           `json:"y"`
	Scale            float64           `json:"scale"`
	Rotation         float64           `json:"rotation"`
	Tags             []string          `json:"tags"`
	LocalTags        []string          `json:"local_tags"`
	Caption          *string           `json:"caption,omitempty"`
	Analyzed         bool              `json:"analyzed"`
	Status           enums.AssetStatus `json:"status"`
	ParentID         *uuid.UUID        `json:"parent_id,omitempty"`
	VersionNumber    int               `json:"version_number"`
	IsOriginal       bool              `json:"is_original"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// CreateAssetDTO holds the data required to persist a new root asset.
type CreateAssetDTO struct {
	OriginalFilename string  `json:"original_filename" validate:"required"`
	MimeType         string  `json:"mime_type" validate:"required"`
	FileSize         int64   `json:"file_size" validate:"gte=0"`
	StorageURL       string  `json:"storage_url" validate:"required,url"`
	ThumbnailURL     *string `json:"thumbnail_url,omitempty" validate:"omitempty,url"`
	Width            int     `json:"width" validate:"gte=0"`
	Height           int     `json:"height" validate:"gte=0"`
	X                float64 `json:"x"`
	Y                float64 `json:"y"`
	Scale            float64 `json:"scale"`
	Rotation         float64 `json:"rotation"`
}

// UpdateAssetDTO carries the patchable annotation and placement fields.
// Pointer fields distinguish "absent" from zero values.
type UpdateAssetDTO struct {
	X         *float64  `json:"x,omitempty"`
	Y         *float64  `json:"y,omitempty"`
	Scale     *float64  `json:"scale,omitempty"`
	Rotation  *float64  `json:"rotation,omitempty"`
	LocalTags *[]string `json:"local_tags,omitempty"`
	Caption   *string   `json:"caption,omitempty"`
}

// NewVersionInput describes the derived asset handed to the version resolver.
type NewVersionInput struct {
	OriginalFilename string
	MimeType         string
	FileSize         int64
	StorageURL       string
	ThumbnailURL     *string
	Width            int
	Height           int
	Status           enums.AssetStatus
}

func FromModel(a *models.Asset) *AssetDTO {
	if a == nil {
		return nil
	}
	return &AssetDTO{
		ID:               a.ID,
		UserID:           a.UserID,
		OriginalFilename: a.OriginalFilename,
		MimeType:         a.MimeType,
		FileSize:         a.FileSize,
		StorageURL:       a.StorageURL,
		ThumbnailURL:     a.ThumbnailURL,
		Width:            a.Width,
		Height:           a.Height,
		X:                a.X,
		Y:                a.Y,
		Scale:            a.Scale,
		Rotation:         a.Rotation,
		Tags:             append([]string(nil), a.Tags...),
		LocalTags:        append([]string(nil), a.LocalTags...),
		Caption:          a.Caption,
		Analyzed:         a.Analyzed,
		Status:           a.Status,
		ParentID:         a.ParentID,
		VersionNumber:    a.VersionNumber,
		IsOriginal:       a.IsOriginal,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

func FromModels(list []models.Asset) []*AssetDTO {
	out := make([]*AssetDTO, 0, len(list))
	for i := range list {
		out = append(out, FromModel(&list[i]))
	}
	return out
}

func (c CreateAssetDTO) ToModel(ownerID uuid.UUID) *models.Asset {
	scale := c.Scale
	if scale == 0 {
		scale = 1
	}
	return &models.Asset{
		UserID:           ownerID,
		OriginalFilename: c.OriginalFilename,
		MimeType:         c.MimeType,
		FileSize:         c.FileSize,
		StorageURL:       c.StorageURL,
		ThumbnailURL:     c.ThumbnailURL,
		Width:            c.Width,
		Height:           c.Height,
		X:                c.X,
		Y:                c.Y,
		Scale:            scale,
		Rotation:         c.Rotation,
		Status:           enums.AssetStatusCompleted,
		VersionNumber:    1,
		IsOriginal:       true,
	}
}
