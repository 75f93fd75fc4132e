package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MarceloMarchiori/m3class-backend/pkg/enums"
)

// SchoolSubscription persists the billing plan state per school.
type SchoolSubscription struct {
	ID                 uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SchoolID           uuid.UUID                `gorm:"column:school_id;type:uuid;not null;index"`
	PlanName           string                   `gorm:"column:plan_name;not null"`
	MonthlyValue       decimal.Decimal          `gorm:"column:monthly_value;type:numeric(12,2);not null"`
	Status             enums.SubscriptionStatus `gorm:"column:status;type:subscription_status;not null;default:'active'"`
	CurrentPeriodStart *time.Time               `gorm:"column:current_period_start"`
	CurrentPeriodEnd   time.Time                `gorm:"column:current_period_end;not null"`
	CanceledAt         *time.Time               `gorm:"column:canceled_at"`
	CreatedAt          time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
