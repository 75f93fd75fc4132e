package schools

import (
	"time"

	"github.com/google/uuid"

	"github.com/MarceloMarchiori/m3class-backend/pkg/db/models"
	"github.com/MarceloMarchiori/m3class-backend/pkg/enums"
)

// SchoolDTO exposes safe tenant data in API responses.
type SchoolDTO struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	SchoolType  enums.SchoolType `json:"school_type"`
	CNPJ        *string          `json:"cnpj,omitempty"`
	Email       *string          `json:"email,omitempty"`
	Phone       *string          `json:"phone,omitempty"`
	Address     *string          `json:"address,omitempty"`
	City        *string          `json:"city,omitempty"`
	State       *string          `json:"state,omitempty"`
	ZipCode     *string          `json:"zip_code,omitempty"`
	AdminUserID *uuid.UUID       `json:"admin_user_id,omitempty"`
	IsActive    bool             `json:"is_active"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// CreateSchoolDTO holds creation-time data for a new school.
type CreateSchoolDTO struct {
	Name        string
	SchoolType  *enums.SchoolType
	CNPJ        *string
	Email       *string
	Phone       *string
	Address     *string
	City        *string
	State       *string
	ZipCode     *string
	AdminUserID *uuid.UUID
}

// FromModel maps the persisted school into a DTO.
func FromModel(m *models.School) *SchoolDTO {
	if m == nil {
		return nil
	}
	return &SchoolDTO{
		ID:          m.ID,
		Name:        m.Name,
		SchoolType:  m.SchoolType,
		CNPJ:        m.CNPJ,
		Email:       m.Email,
		Phone:       m.Phone,
		Address:     m.Address,
		City:        m.City,
		State:       m.State,
		ZipCode:     m.ZipCode,
		AdminUserID: m.AdminUserID,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ToModel prepares the GORM model from creation DTO, supplying defaults.
func (c CreateSchoolDTO) ToModel() *models.School {
	model := &models.School{
		Name:        c.Name,
		SchoolType:  enums.SchoolTypeTradicional,
		CNPJ:        c.CNPJ,
		Email:       c.Email,
		Phone:       c.Phone,
		Address:     c.Address,
		City:        c.City,
		State:       c.State,
		ZipCode:     c.ZipCode,
		AdminUserID: c.AdminUserID,
		IsActive:    true,
	}
	if c.SchoolType != nil {
		model.SchoolType = *c.SchoolType
	}
	return model
}
