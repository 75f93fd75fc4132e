package profiles

import (
	"time"

	"github.com/google/uuid"

	"github.com/MarceloMarchiori/m3class-backend/internal/access"
	"github.com/MarceloMarchiori/m3class-backend/pkg/db/models"
	"github.com/MarceloMarchiori/m3class-backend/pkg/enums"
)

// ProfileDTO is the transport shape that omits sensitive credentials.
type ProfileDTO struct {
	ID             uuid.UUID             `json:"id"`
	Email          string                `json:"email"`
	Name           string                `json:"name"`
	Phone          *string               `json:"phone,omitempty"`
	UserType       enums.UserType        `json:"user_type"`
	SecretariaRole *enums.SecretariaRole `json:"secretaria_role,omitempty"`
	SchoolID       *uuid.UUID            `json:"school_id,omitempty"`
	IsActive       bool                  `json:"is_active"`
	LastLoginAt    *time.Time            `json:"last_login_at,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// CreateProfileDTO holds the data required by the repo to persist a new profile.
type CreateProfileDTO struct {
	Email          string
	PasswordHash   string
	Name           string
	Phone          *string
	UserType       enums.UserType
	SecretariaRole *enums.SecretariaRole
	SchoolID       *uuid.UUID
	IsActive       *bool
}

// ResolvedProfile is the profile joined with its authoritative school scope.
type ResolvedProfile struct {
	Profile   ProfileDTO  `json:"profile"`
	SchoolIDs []uuid.UUID `json:"school_ids"`
}

// Identity converts the resolved profile into the authorizer's input shape.
func (r *ResolvedProfile) Identity() access.Identity {
	if r == nil {
		return access.Identity{}
	}
	return access.Identity{
		UserID:         r.Profile.ID,
		Name:           r.Profile.Name,
		UserType:       r.Profile.UserType,
		SecretariaRole: r.Profile.SecretariaRole,
		SchoolIDs:      append([]uuid.UUID(nil), r.SchoolIDs...),
	}
}

func FromModel(p *models.Profile) *ProfileDTO {
	if p == nil {
		return nil
	}

	return &ProfileDTO{
		ID:             p.ID,
		Email:          p.Email,
		Name:           p.Name,
		Phone:          p.Phone,
		UserType:       p.UserType,
		SecretariaRole: p.SecretariaRole,
		SchoolID:       p.SchoolID,
		IsActive:       p.IsActive,
		LastLoginAt:    p.LastLoginAt,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func (c CreateProfileDTO) ToModel() *models.Profile {
	isActive := true
	if c.IsActive != nil {
		isActive = *c.IsActive
	}

	return &models.Profile{
		Email:          c.Email,
		PasswordHash:   c.PasswordHash,
		Name:           c.Name,
		Phone:          c.Phone,
		UserType:       c.UserType,
		SecretariaRole: c.SecretariaRole,
		SchoolID:       c.SchoolID,
		IsActive:       isActive,
	}
}
