package themes

import (
	"time"

	"github.com/google/uuid"

	"github.com/marcosvillarreal/reelstack-backend/pkg/db/models"
	dbtypes "github.com/marcosvillarreal/reelstack-backend/pkg/db/types"
)

// ThemeDTO is the transport shape for one theme.
type ThemeDTO struct {
	ID          uuid.UUID  `json:"id"`
	UserID      *uuid.UUID `json:"user_id,omitempty"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	Mood        *string    `json:"mood,omitempty"`
	Colors      []string   `json:"colors"`
	IsBuiltin   bool       `json:"is_builtin"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateThemeDTO holds the data required to persist a new theme.
type CreateThemeDTO struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=2000"`
	Mood        *string  `json:"mood,omitempty" validate:"omitempty,max=50"`
	Colors      []string `json:"colors" validate:"dive,hexcolor"`
}

// UpdateThemeDTO carries the patchable theme fields.
type UpdateThemeDTO struct {
	Name        *string   `json:"name,omitempty" validate:"omitempty,max=100"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=2000"`
	Mood        *string   `json:"mood,omitempty" validate:"omitempty,max=50"`
	Colors      *[]string `json:"colors,omitempty" validate:"omitempty,dive,hexcolor"`
}

func FromModel(m *models.Theme) *ThemeDTO {
	if m == nil {
		return nil
	}
	return &ThemeDTO{
		ID:          m.ID,
		UserID:      m.UserID,
		Name:        m.Name,
		Description: m.Description,
		Mood:        m.Mood,
		Colors:      append([]string(nil), m.Colors...),
		IsBuiltin:   m.IsBuiltin,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func FromModels(list []models.Theme) []*ThemeDTO {
	out := make([]*ThemeDTO, 0, len(list))
	for i := range list {
		out = append(out, FromModel(&list[i]))
	}
	return out
}

func (c CreateThemeDTO) ToModel(ownerID uuid.UUID) *models.Theme {
	return &models.Theme{
		UserID:      &ownerID,
		Name:        c.Name,
		Description: c.Description,
		Mood:        c.Mood,
		Colors:      dbtypes.StringList(append([]string(nil), c.Colors...)),
	}
}
