package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/MarceloMarchiori/m3class-backend/pkg/enums"
)

// Profile represents the canonical identity entity. UserType drives every
// authorization decision, so it is never nullable.
type Profile struct {
	ID             uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email          string                `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash   string                `gorm:"column:password_hash;not null"`
	Name           string                `gorm:"column:name;not null"`
	Phone          *string               `gorm:"column:phone"`
	UserType       enums.UserType        `gorm:"column:user_type;type:user_type;not null"`
	SecretariaRole *enums.SecretariaRole `gorm:"column:secretaria_role;type:secretaria_role"`
	SchoolID       *uuid.UUID            `gorm:"column:school_id;type:uuid"`
	IsActive       bool                  `gorm:"column:is_active;not null;default:true"`
	LastLoginAt    *time.Time            `gorm:"column:last_login_at"`
	CreatedAt      time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
