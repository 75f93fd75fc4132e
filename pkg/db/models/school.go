package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/MarceloMarchiori/m3class-backend/pkg/enums"
)

// School represents the canonical tenant model.
type School struct {
	ID          uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string           `gorm:"column:name;not null"`
	SchoolType  enums.SchoolType `gorm:"column:school_type;type:school_type;not null;default:'tradicional'"`
	CNPJ        *string          `gorm:"column:cnpj;uniqueIndex"`
	Email       *string          `gorm:"column:email"`
	Phone       *string          `gorm:"column:phone"`
	Address     *string          `gorm:"column:address"`
	City        *string          `gorm:"column:city"`
	State       *string          `gorm:"column:state"`
	ZipCode     *string          `gorm:"column:zip_code"`
	AdminUserID *uuid.UUID       `gorm:"column:admin_user_id;type:uuid"`
	IsActive    bool             `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
